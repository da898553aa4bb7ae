package roleclient

import (
	"context"
	"sync"

	"slidesync-be/internal/model"
	"slidesync-be/internal/pkg/logger"
	"slidesync-be/internal/protocol"
	"slidesync-be/pkg/display"
	"slidesync-be/pkg/raster"
	"slidesync-be/pkg/render"
)

// Controller is the presenter-facing role. It shows the current slide plus a
// preview of the next one, and it is the client that opens the deck and
// reports the real page count back to the server.
type Controller struct {
	client *Client
	engine raster.Engine
	log    logger.ILogger

	mainLayout    render.Layout
	previewLayout render.Layout

	mu      sync.Mutex
	adapter *render.Adapter
	deckURL string

	main    *display.DoubleBuffer
	preview *display.DoubleBuffer
}

func NewController(client *Client, engine raster.Engine, mainLayout, previewLayout render.Layout, log logger.ILogger) *Controller {
	c := &Controller{
		client:        client,
		engine:        engine,
		log:           log,
		mainLayout:    mainLayout,
		previewLayout: previewLayout,
	}
	c.main = display.NewDoubleBuffer(c.paintMain)
	c.preview = display.NewDoubleBuffer(c.paintPreview)
	client.OnStateChanged = c.apply
	return c
}

func (c *Controller) apply(state model.PresentationState, event string) {
	ctx := context.Background()

	if !state.Loaded() {
		c.closeDeck()
		return
	}

	if event == protocol.EventPdfLoaded || !c.hasDeck(state.PDFURL) {
		if err := c.openDeck(ctx, state.PDFURL); err != nil {
			c.log.Error("controller", "Failed to open deck", map[string]interface{}{"pdfUrl": state.PDFURL, "error": err.Error()})
			return
		}
	}

	c.renderSpread(ctx, state)
	if event == protocol.EventPdfLoaded {
		c.client.Resettle(func() { c.renderSpread(ctx, c.client.State()) })
	}
}

// openDeck opens the document and reports its page count, which the server
// broadcasts so every role learns the deck bounds.
func (c *Controller) openDeck(ctx context.Context, url string) error {
	doc, err := c.engine.Open(ctx, url)
	if err != nil {
		return err
	}

	c.mu.Lock()
	if c.adapter != nil {
		c.adapter.Close()
	}
	c.adapter = render.NewAdapter(doc)
	c.deckURL = url
	total := c.adapter.NumPages()
	c.mu.Unlock()

	if err := c.client.SetTotalSlides(total); err != nil {
		c.log.Warn("controller", "Failed to report page count", map[string]interface{}{"error": err.Error()})
	}
	return nil
}

func (c *Controller) hasDeck(url string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.adapter != nil && c.deckURL == url
}

func (c *Controller) closeDeck() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.adapter != nil {
		c.adapter.Close()
		c.adapter = nil
		c.deckURL = ""
	}
}

// renderSpread paints the current slide and, when one exists, the next slide
// into the preview pane.
func (c *Controller) renderSpread(ctx context.Context, state model.PresentationState) {
	c.main.Render(ctx, state.CurrentSlide)

	next := state.CurrentSlide + 1
	c.mu.Lock()
	pages := 0
	if c.adapter != nil {
		pages = c.adapter.NumPages()
	}
	c.mu.Unlock()
	if next <= pages {
		c.preview.Render(ctx, next)
	}
}

func (c *Controller) paintMain(ctx context.Context, page int, dst *display.Surface) error {
	return c.paint(ctx, page, dst, c.mainLayout, render.MainSlideOptions)
}

func (c *Controller) paintPreview(ctx context.Context, page int, dst *display.Surface) error {
	return c.paint(ctx, page, dst, c.previewLayout, render.PreviewOptions)
}

func (c *Controller) paint(ctx context.Context, page int, dst *display.Surface, layout render.Layout, opts render.FitOptions) error {
	c.mu.Lock()
	adapter := c.adapter
	c.mu.Unlock()
	if adapter == nil {
		dst.Image = nil
		return nil
	}
	img, err := adapter.Paint(ctx, page, layout, opts)
	if err != nil {
		return err
	}
	dst.Image = img
	return nil
}

// Next asks the server for the following page; bounds are enforced there.
func (c *Controller) Next() error {
	return c.client.ChangePage(c.client.State().CurrentSlide + 1)
}

func (c *Controller) Previous() error {
	return c.client.ChangePage(c.client.State().CurrentSlide - 1)
}

func (c *Controller) GoTo(page int) error {
	return c.client.ChangePage(page)
}

// End clears the presentation for every connected role.
func (c *Controller) End() error {
	return c.client.EndPresentation()
}

// MainSurface exposes the visible current-slide frame.
func (c *Controller) MainSurface() *display.Surface {
	return c.main.Visible()
}

// PreviewSurface exposes the visible next-slide frame.
func (c *Controller) PreviewSurface() *display.Surface {
	return c.preview.Visible()
}

func (c *Controller) Close() {
	c.closeDeck()
}

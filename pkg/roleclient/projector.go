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

// Projector is the audience-facing role: one full-screen surface showing the
// current slide only. It never originates page changes or page counts; it
// just follows broadcasts.
type Projector struct {
	client *Client
	engine raster.Engine
	log    logger.ILogger

	layout render.Layout

	mu      sync.Mutex
	adapter *render.Adapter
	deckURL string

	screen *display.DoubleBuffer
}

func NewProjector(client *Client, engine raster.Engine, layout render.Layout, log logger.ILogger) *Projector {
	p := &Projector{
		client: client,
		engine: engine,
		log:    log,
		layout: layout,
	}
	p.screen = display.NewDoubleBuffer(p.paint)
	client.OnStateChanged = p.apply
	return p
}

func (p *Projector) apply(state model.PresentationState, event string) {
	ctx := context.Background()

	if !state.Loaded() {
		p.closeDeck()
		return
	}

	if event == protocol.EventPdfLoaded || !p.hasDeck(state.PDFURL) {
		if err := p.openDeck(ctx, state.PDFURL); err != nil {
			p.log.Error("projector", "Failed to open deck", map[string]interface{}{"pdfUrl": state.PDFURL, "error": err.Error()})
			return
		}
	}

	p.screen.Render(ctx, state.CurrentSlide)
	if event == protocol.EventPdfLoaded {
		p.client.Resettle(func() { p.screen.Render(ctx, p.client.State().CurrentSlide) })
	}
}

func (p *Projector) openDeck(ctx context.Context, url string) error {
	doc, err := p.engine.Open(ctx, url)
	if err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.adapter != nil {
		p.adapter.Close()
	}
	p.adapter = render.NewAdapter(doc)
	p.deckURL = url
	return nil
}

func (p *Projector) hasDeck(url string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.adapter != nil && p.deckURL == url
}

func (p *Projector) closeDeck() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.adapter != nil {
		p.adapter.Close()
		p.adapter = nil
		p.deckURL = ""
	}
}

func (p *Projector) paint(ctx context.Context, page int, dst *display.Surface) error {
	p.mu.Lock()
	adapter := p.adapter
	p.mu.Unlock()
	if adapter == nil {
		dst.Image = nil
		return nil
	}
	img, err := adapter.Paint(ctx, page, p.layout, render.ProjectorOptions)
	if err != nil {
		return err
	}
	dst.Image = img
	return nil
}

// Surface exposes the visible frame.
func (p *Projector) Surface() *display.Surface {
	return p.screen.Visible()
}

func (p *Projector) Close() {
	p.closeDeck()
}

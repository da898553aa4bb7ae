package roleclient

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"slidesync-be/internal/model"
	"slidesync-be/internal/pkg/logger"
	"slidesync-be/internal/protocol"

	"github.com/gorilla/websocket"
)

// Default delays for the post-event re-render: containers report stale
// dimensions right after a layout change, so clients paint again shortly
// after to pick up the settled size.
var defaultRerenderDelays = []time.Duration{200 * time.Millisecond, 400 * time.Millisecond}

// Options configures a real-time client.
type Options struct {
	// URL is the websocket endpoint, e.g. ws://host:3000/ws.
	URL    string
	Logger logger.ILogger
	// RerenderDelays overrides the settle re-render schedule. Tests inject
	// short delays here.
	RerenderDelays []time.Duration
}

// Client maintains one websocket connection and a local mirror of the
// authoritative presentation state. The mirror is updated exclusively from
// server events; user actions are sent as requests and take effect only when
// the resulting broadcast comes back.
type Client struct {
	conn *websocket.Conn
	log  logger.ILogger

	delays []time.Duration

	mu    sync.Mutex
	state model.PresentationState

	writeMu sync.Mutex

	// OnStateChanged runs after the mirror absorbed a server event. The
	// event name tells role clients whether a new deck arrived or just the
	// page moved.
	OnStateChanged func(state model.PresentationState, event string)
}

// Dial connects to the real-time endpoint.
func Dial(ctx context.Context, opts Options) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, opts.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", opts.URL, err)
	}

	delays := opts.RerenderDelays
	if delays == nil {
		delays = defaultRerenderDelays
	}

	return &Client{
		conn:   conn,
		log:    opts.Logger,
		delays: delays,
		state:  model.Empty(),
	}, nil
}

// Run reads server events until the connection drops or ctx is canceled.
func (c *Client) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		c.conn.Close()
	}()

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("read: %w", err)
		}
		c.handleMessage(raw)
	}
}

func (c *Client) handleMessage(raw []byte) {
	var env protocol.Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		c.log.Warn("roleclient", "Dropping malformed server message", map[string]interface{}{"error": err.Error()})
		return
	}

	c.mu.Lock()
	switch env.Event {
	case protocol.EventInitialState, protocol.EventStateUpdated:
		var state model.PresentationState
		if err := json.Unmarshal(env.Data, &state); err != nil {
			c.mu.Unlock()
			c.log.Warn("roleclient", "Dropping malformed state payload", map[string]interface{}{"event": env.Event, "error": err.Error()})
			return
		}
		c.state = state
	case protocol.EventPageUpdated:
		var p protocol.PageUpdatedPayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			c.mu.Unlock()
			c.log.Warn("roleclient", "Dropping malformed page payload", map[string]interface{}{"error": err.Error()})
			return
		}
		c.state.CurrentSlide = p.CurrentSlide
		c.state.TotalSlides = p.TotalSlides
	case protocol.EventPdfLoaded:
		var p protocol.PdfLoadedPayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			c.mu.Unlock()
			c.log.Warn("roleclient", "Dropping malformed deck payload", map[string]interface{}{"error": err.Error()})
			return
		}
		// A fresh deck: the page count is unknown until some client opens
		// the file and reports it back.
		c.state = model.PresentationState{
			PDFURL:       p.PdfUrl,
			FileName:     p.FileName,
			CurrentSlide: p.CurrentSlide,
		}
	default:
		c.mu.Unlock()
		c.log.Warn("roleclient", "Ignoring unknown event", map[string]interface{}{"event": env.Event})
		return
	}
	state := c.state
	cb := c.OnStateChanged
	c.mu.Unlock()

	if cb != nil {
		cb(state, env.Event)
	}
}

// State returns the current mirror of the server state.
func (c *Client) State() model.PresentationState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// ChangePage asks the server to move to page. The mirror is not touched; the
// move shows up via the pageUpdated broadcast or not at all.
func (c *Client) ChangePage(page int) error {
	return c.send(protocol.EventChangePage, protocol.ChangePagePayload{Page: page})
}

// SetTotalSlides reports the page count discovered by opening the deck.
func (c *Client) SetTotalSlides(total int) error {
	return c.send(protocol.EventSetTotalSlides, protocol.SetTotalSlidesPayload{TotalSlides: total})
}

// EndPresentation asks the server to clear the deck for everyone.
func (c *Client) EndPresentation() error {
	return c.send(protocol.EventEndPresentation, nil)
}

func (c *Client) send(event string, payload interface{}) error {
	raw, err := protocol.Marshal(event, payload)
	if err != nil {
		return err
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, raw)
}

// Resettle re-runs render on the configured settle schedule, used after deck
// loads and layout changes where the first paint may see stale dimensions.
func (c *Client) Resettle(render func()) {
	for _, d := range c.delays {
		time.AfterFunc(d, render)
	}
}

// Close tears down the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

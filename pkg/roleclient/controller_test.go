package roleclient

import (
	"context"
	"encoding/json"
	"errors"
	"image"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"slidesync-be/internal/pkg/logger"
	"slidesync-be/internal/protocol"
	"slidesync-be/pkg/raster"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRasterPage struct {
	size raster.Size
}

func (p fakeRasterPage) Size() raster.Size { return p.size }
func (p fakeRasterPage) Rotation() int     { return 0 }
func (p fakeRasterPage) Render(ctx context.Context, vp raster.Viewport, dst *image.RGBA) error {
	return nil
}

type fakeRasterDoc struct {
	pages  int
	closed bool
}

func (d *fakeRasterDoc) NumPages() int { return d.pages }
func (d *fakeRasterDoc) Page(ctx context.Context, number int) (raster.Page, error) {
	if number < 1 || number > d.pages {
		return nil, errors.New("page out of bounds")
	}
	return fakeRasterPage{size: raster.Size{Width: 600, Height: 800}}, nil
}
func (d *fakeRasterDoc) Close() error {
	d.closed = true
	return nil
}

type fakeRasterEngine struct {
	mu     sync.Mutex
	pages  int
	opened []string
	docs   []*fakeRasterDoc
}

func (e *fakeRasterEngine) Open(ctx context.Context, ref string) (raster.Document, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.opened = append(e.opened, ref)
	doc := &fakeRasterDoc{pages: e.pages}
	e.docs = append(e.docs, doc)
	return doc, nil
}

func fixedLayout(w, h float64) func() (float64, float64) {
	return func() (float64, float64) { return w, h }
}

// recorderServer accepts one websocket connection and records every envelope
// the client sends.
func recorderServer(t *testing.T) (url string, received <-chan protocol.Envelope) {
	t.Helper()
	upgrader := websocket.Upgrader{}
	out := make(chan protocol.Envelope, 16)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var env protocol.Envelope
			if json.Unmarshal(msg, &env) == nil {
				out <- env
			}
		}
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http"), out
}

func waitEnvelope(t *testing.T, ch <-chan protocol.Envelope) protocol.Envelope {
	t.Helper()
	select {
	case env := <-ch:
		return env
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a client request")
		return protocol.Envelope{}
	}
}

func TestControllerOpensDeckAndReportsPageCount(t *testing.T) {
	url, received := recorderServer(t)
	client, err := Dial(context.Background(), Options{URL: url, Logger: logger.NewNopLogger(), RerenderDelays: []time.Duration{}})
	require.NoError(t, err)
	defer client.Close()

	engine := &fakeRasterEngine{pages: 9}
	ctrl := NewController(client, engine, fixedLayout(1024, 768), fixedLayout(320, 240), logger.NewNopLogger())
	defer ctrl.Close()

	raw, err := protocol.Marshal(protocol.EventPdfLoaded, protocol.PdfLoadedPayload{
		PdfUrl: "/uploads/deck.pdf", FileName: "deck.pdf", CurrentSlide: 1,
	})
	require.NoError(t, err)
	client.handleMessage(raw)

	env := waitEnvelope(t, received)
	require.Equal(t, protocol.EventSetTotalSlides, env.Event)
	var p protocol.SetTotalSlidesPayload
	require.NoError(t, json.Unmarshal(env.Data, &p))
	assert.Equal(t, 9, p.TotalSlides)

	assert.Equal(t, []string{"/uploads/deck.pdf"}, engine.opened)
	assert.Eventually(t, func() bool { return ctrl.MainSurface().Page == 1 }, time.Second, 5*time.Millisecond)
	assert.Eventually(t, func() bool { return ctrl.PreviewSurface().Page == 2 }, time.Second, 5*time.Millisecond)
}

func TestControllerFollowsPageBroadcasts(t *testing.T) {
	url, received := recorderServer(t)
	client, err := Dial(context.Background(), Options{URL: url, Logger: logger.NewNopLogger(), RerenderDelays: []time.Duration{}})
	require.NoError(t, err)
	defer client.Close()

	engine := &fakeRasterEngine{pages: 9}
	ctrl := NewController(client, engine, fixedLayout(1024, 768), fixedLayout(320, 240), logger.NewNopLogger())
	defer ctrl.Close()

	load, _ := protocol.Marshal(protocol.EventPdfLoaded, protocol.PdfLoadedPayload{PdfUrl: "/uploads/deck.pdf", FileName: "deck.pdf", CurrentSlide: 1})
	client.handleMessage(load)
	waitEnvelope(t, received)

	move, _ := protocol.Marshal(protocol.EventPageUpdated, protocol.PageUpdatedPayload{CurrentSlide: 4, TotalSlides: 9})
	client.handleMessage(move)

	assert.Eventually(t, func() bool { return ctrl.MainSurface().Page == 4 }, time.Second, 5*time.Millisecond)
	assert.Eventually(t, func() bool { return ctrl.PreviewSurface().Page == 5 }, time.Second, 5*time.Millisecond)

	// The deck is only opened once; page moves reuse the open document.
	engine.mu.Lock()
	assert.Len(t, engine.opened, 1)
	engine.mu.Unlock()
}

func TestControllerSkipsPreviewPastTheLastPage(t *testing.T) {
	url, received := recorderServer(t)
	client, err := Dial(context.Background(), Options{URL: url, Logger: logger.NewNopLogger(), RerenderDelays: []time.Duration{}})
	require.NoError(t, err)
	defer client.Close()

	engine := &fakeRasterEngine{pages: 3}
	ctrl := NewController(client, engine, fixedLayout(1024, 768), fixedLayout(320, 240), logger.NewNopLogger())
	defer ctrl.Close()

	load, _ := protocol.Marshal(protocol.EventPdfLoaded, protocol.PdfLoadedPayload{PdfUrl: "/uploads/deck.pdf", FileName: "deck.pdf", CurrentSlide: 1})
	client.handleMessage(load)
	waitEnvelope(t, received)
	assert.Eventually(t, func() bool { return ctrl.PreviewSurface().Page == 2 }, time.Second, 5*time.Millisecond)

	move, _ := protocol.Marshal(protocol.EventPageUpdated, protocol.PageUpdatedPayload{CurrentSlide: 3, TotalSlides: 3})
	client.handleMessage(move)

	assert.Eventually(t, func() bool { return ctrl.MainSurface().Page == 3 }, time.Second, 5*time.Millisecond)
	// Preview stays on the last frame it painted; there is no page 4.
	assert.Equal(t, 2, ctrl.PreviewSurface().Page)
}

func TestControllerClearsDeckOnEndedPresentation(t *testing.T) {
	url, received := recorderServer(t)
	client, err := Dial(context.Background(), Options{URL: url, Logger: logger.NewNopLogger(), RerenderDelays: []time.Duration{}})
	require.NoError(t, err)
	defer client.Close()

	engine := &fakeRasterEngine{pages: 5}
	ctrl := NewController(client, engine, fixedLayout(1024, 768), fixedLayout(320, 240), logger.NewNopLogger())
	defer ctrl.Close()

	load, _ := protocol.Marshal(protocol.EventPdfLoaded, protocol.PdfLoadedPayload{PdfUrl: "/uploads/deck.pdf", FileName: "deck.pdf", CurrentSlide: 1})
	client.handleMessage(load)
	waitEnvelope(t, received)

	cleared, _ := protocol.Marshal(protocol.EventStateUpdated, map[string]interface{}{"pdfUrl": "", "fileName": "", "currentSlide": 1, "totalSlides": 0})
	client.handleMessage(cleared)

	engine.mu.Lock()
	doc := engine.docs[0]
	engine.mu.Unlock()
	assert.Eventually(t, func() bool { return doc.closed }, time.Second, 5*time.Millisecond)
}

func TestProjectorRendersCurrentPageOnly(t *testing.T) {
	url, received := recorderServer(t)
	client, err := Dial(context.Background(), Options{URL: url, Logger: logger.NewNopLogger(), RerenderDelays: []time.Duration{}})
	require.NoError(t, err)
	defer client.Close()

	engine := &fakeRasterEngine{pages: 9}
	proj := NewProjector(client, engine, fixedLayout(1920, 1080), logger.NewNopLogger())
	defer proj.Close()

	load, _ := protocol.Marshal(protocol.EventPdfLoaded, protocol.PdfLoadedPayload{PdfUrl: "/uploads/deck.pdf", FileName: "deck.pdf", CurrentSlide: 1})
	client.handleMessage(load)
	assert.Eventually(t, func() bool { return proj.Surface().Page == 1 }, time.Second, 5*time.Millisecond)

	move, _ := protocol.Marshal(protocol.EventPageUpdated, protocol.PageUpdatedPayload{CurrentSlide: 6, TotalSlides: 9})
	client.handleMessage(move)
	assert.Eventually(t, func() bool { return proj.Surface().Page == 6 }, time.Second, 5*time.Millisecond)

	// The projector never originates requests.
	select {
	case env := <-received:
		t.Fatalf("unexpected client request: %s", env.Event)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestRemoteNavigation(t *testing.T) {
	url, received := recorderServer(t)
	client, err := Dial(context.Background(), Options{URL: url, Logger: logger.NewNopLogger(), RerenderDelays: []time.Duration{}})
	require.NoError(t, err)
	defer client.Close()

	remote := NewRemote(client)

	move, _ := protocol.Marshal(protocol.EventPageUpdated, protocol.PageUpdatedPayload{CurrentSlide: 4, TotalSlides: 9})
	client.handleMessage(move)
	current, total := remote.Position()
	assert.Equal(t, 4, current)
	assert.Equal(t, 9, total)

	require.NoError(t, remote.Forward())
	env := waitEnvelope(t, received)
	require.Equal(t, protocol.EventChangePage, env.Event)
	var p protocol.ChangePagePayload
	require.NoError(t, json.Unmarshal(env.Data, &p))
	assert.Equal(t, 5, p.Page)

	require.NoError(t, remote.Back())
	env = waitEnvelope(t, received)
	require.NoError(t, json.Unmarshal(env.Data, &p))
	assert.Equal(t, 3, p.Page, "navigation is relative to the mirror, not local guesses")
}

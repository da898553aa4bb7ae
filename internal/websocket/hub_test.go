package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"testing"
	"time"

	"slidesync-be/internal/model"
	"slidesync-be/internal/pkg/logger"
	"slidesync-be/internal/protocol"
	"slidesync-be/internal/service"
	"slidesync-be/internal/state"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	gws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type realtimeFixture struct {
	engine service.ISyncService
	url    string
}

func startRealtime(t *testing.T) *realtimeFixture {
	t.Helper()

	log := logger.NewNopLogger()
	bus := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 64}, watermill.NopLogger{})
	t.Cleanup(func() { bus.Close() })

	engine := service.NewSyncService(state.NewStore(), bus, nil, log)
	hub := NewHub(engine, bus, nil, log)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(func(conn *websocket.Conn) {
		ServeWs(hub, engine, log, conn)
	}))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go app.Listener(ln)
	t.Cleanup(func() { app.Shutdown() })

	return &realtimeFixture{
		engine: engine,
		url:    fmt.Sprintf("ws://%s/ws", ln.Addr().String()),
	}
}

func dialClient(t *testing.T, url string) *gws.Conn {
	t.Helper()
	var conn *gws.Conn
	var err error
	// The listener goroutine may not be accepting yet on the first attempt.
	for i := 0; i < 20; i++ {
		conn, _, err = gws.DefaultDialer.Dial(url, nil)
		if err == nil {
			t.Cleanup(func() { conn.Close() })
			return conn
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Fatalf("dial %s: %v", url, err)
	return nil
}

func readEnvelope(t *testing.T, conn *gws.Conn) protocol.Envelope {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)
	var env protocol.Envelope
	require.NoError(t, json.Unmarshal(raw, &env))
	return env
}

func sendEnvelope(t *testing.T, conn *gws.Conn, event string, payload interface{}) {
	t.Helper()
	raw, err := protocol.Marshal(event, payload)
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(gws.TextMessage, raw))
}

func TestRealtimeGreetsWithSnapshot(t *testing.T) {
	fx := startRealtime(t)
	conn := dialClient(t, fx.url)

	env := readEnvelope(t, conn)
	require.Equal(t, protocol.EventInitialState, env.Event)

	var st model.PresentationState
	require.NoError(t, json.Unmarshal(env.Data, &st))
	assert.False(t, st.Loaded())
	assert.Equal(t, 1, st.CurrentSlide)
}

func TestRealtimePageChangeReachesEveryClient(t *testing.T) {
	fx := startRealtime(t)
	controller := dialClient(t, fx.url)
	projector := dialClient(t, fx.url)
	readEnvelope(t, controller)
	readEnvelope(t, projector)

	fx.engine.LoadDeck("/uploads/deck.pdf", "deck.pdf")
	require.Equal(t, protocol.EventPdfLoaded, readEnvelope(t, controller).Event)
	require.Equal(t, protocol.EventPdfLoaded, readEnvelope(t, projector).Event)

	sendEnvelope(t, controller, protocol.EventSetTotalSlides, protocol.SetTotalSlidesPayload{TotalSlides: 10})
	require.Equal(t, protocol.EventStateUpdated, readEnvelope(t, controller).Event)
	require.Equal(t, protocol.EventStateUpdated, readEnvelope(t, projector).Event)

	sendEnvelope(t, controller, protocol.EventChangePage, protocol.ChangePagePayload{Page: 3})

	for _, conn := range []*gws.Conn{controller, projector} {
		env := readEnvelope(t, conn)
		require.Equal(t, protocol.EventPageUpdated, env.Event)
		var p protocol.PageUpdatedPayload
		require.NoError(t, json.Unmarshal(env.Data, &p))
		assert.Equal(t, 3, p.CurrentSlide)
		assert.Equal(t, 10, p.TotalSlides)
	}
}

func TestRealtimeRejectedRequestsProduceNoBroadcast(t *testing.T) {
	fx := startRealtime(t)
	conn := dialClient(t, fx.url)
	readEnvelope(t, conn)

	fx.engine.LoadDeck("/uploads/deck.pdf", "deck.pdf")
	readEnvelope(t, conn)
	sendEnvelope(t, conn, protocol.EventSetTotalSlides, protocol.SetTotalSlidesPayload{TotalSlides: 5})
	readEnvelope(t, conn)

	// Out-of-range pages and malformed envelopes are dropped without any
	// error event: the next broadcast the client sees is the one for the
	// first accepted request.
	sendEnvelope(t, conn, protocol.EventChangePage, protocol.ChangePagePayload{Page: 6})
	sendEnvelope(t, conn, protocol.EventChangePage, protocol.ChangePagePayload{Page: 0})
	require.NoError(t, conn.WriteMessage(gws.TextMessage, []byte("{broken")))
	sendEnvelope(t, conn, protocol.EventChangePage, protocol.ChangePagePayload{Page: 2})

	env := readEnvelope(t, conn)
	require.Equal(t, protocol.EventPageUpdated, env.Event)
	var p protocol.PageUpdatedPayload
	require.NoError(t, json.Unmarshal(env.Data, &p))
	assert.Equal(t, 2, p.CurrentSlide)
}

func TestRealtimeLateJoinerSeesCurrentPosition(t *testing.T) {
	fx := startRealtime(t)
	controller := dialClient(t, fx.url)
	readEnvelope(t, controller)

	fx.engine.LoadDeck("/uploads/deck.pdf", "deck.pdf")
	readEnvelope(t, controller)
	fx.engine.SetTotalSlides(10)
	readEnvelope(t, controller)
	fx.engine.ChangePage(7)
	readEnvelope(t, controller)

	late := dialClient(t, fx.url)
	env := readEnvelope(t, late)
	require.Equal(t, protocol.EventInitialState, env.Event)

	var st model.PresentationState
	require.NoError(t, json.Unmarshal(env.Data, &st))
	assert.Equal(t, "/uploads/deck.pdf", st.PDFURL)
	assert.Equal(t, 7, st.CurrentSlide)
	assert.Equal(t, 10, st.TotalSlides)
}

func TestRealtimeEndPresentationClearsEveryClient(t *testing.T) {
	fx := startRealtime(t)
	controller := dialClient(t, fx.url)
	remote := dialClient(t, fx.url)
	readEnvelope(t, controller)
	readEnvelope(t, remote)

	fx.engine.LoadDeck("/uploads/deck.pdf", "deck.pdf")
	readEnvelope(t, controller)
	readEnvelope(t, remote)

	sendEnvelope(t, remote, protocol.EventEndPresentation, nil)

	for _, conn := range []*gws.Conn{controller, remote} {
		env := readEnvelope(t, conn)
		require.Equal(t, protocol.EventStateUpdated, env.Event)
		var st model.PresentationState
		require.NoError(t, json.Unmarshal(env.Data, &st))
		assert.False(t, st.Loaded())
	}
}

package websocket

import (
	"encoding/json"
	"time"

	"slidesync-be/internal/pkg/logger"
	"slidesync-be/internal/protocol"
	"slidesync-be/internal/service"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1024
)

// Session is one live real-time connection from a role client. It holds no
// presentation state; a client that reconnects gets a fresh Session and
// resynchronizes from the initialState snapshot.
type Session struct {
	Hub *Hub

	Conn *websocket.Conn

	ID uuid.UUID

	// Buffered channel of outbound envelopes.
	Send chan []byte

	engine service.ISyncService
	logger logger.ILogger
}

// readPump pumps envelopes from the websocket connection into the engine.
func (s *Session) readPump() {
	defer func() {
		s.Hub.unregister <- s
		s.Conn.Close()
	}()
	s.Conn.SetReadLimit(maxMessageSize)
	s.Conn.SetReadDeadline(time.Now().Add(pongWait))
	s.Conn.SetPongHandler(func(string) error {
		s.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := s.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				s.logger.Warn("Session", "Unexpected close", map[string]interface{}{"session_id": s.ID, "error": err})
			}
			break
		}
		s.dispatch(data)
	}
}

// dispatch applies one client-originated event. Malformed payloads and
// rejected mutations are dropped silently: the protocol defines no error
// event, so the client's signal of failure is the absent broadcast.
func (s *Session) dispatch(data []byte) {
	var env protocol.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		s.logger.Warn("Session", "Malformed envelope", map[string]interface{}{"session_id": s.ID, "error": err})
		return
	}

	switch env.Event {
	case protocol.EventChangePage:
		var p protocol.ChangePagePayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return
		}
		s.engine.ChangePage(p.Page)

	case protocol.EventSetTotalSlides:
		var p protocol.SetTotalSlidesPayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return
		}
		s.engine.SetTotalSlides(p.TotalSlides)

	case protocol.EventEndPresentation:
		s.engine.EndPresentation()

	default:
		s.logger.Debug("Session", "Unknown event", map[string]interface{}{"session_id": s.ID, "event": env.Event})
	}
}

// writePump pumps envelopes from the hub to the websocket connection.
func (s *Session) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.Conn.Close()
	}()

	for {
		select {
		case data, ok := <-s.Send:
			s.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				s.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := s.Conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			s.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

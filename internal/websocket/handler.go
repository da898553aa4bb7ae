package websocket

import (
	"slidesync-be/internal/pkg/logger"
	"slidesync-be/internal/service"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// ServeWs runs the session loops for an upgraded connection. It blocks until
// the connection closes.
func ServeWs(hub *Hub, engine service.ISyncService, log logger.ILogger, c *websocket.Conn) {
	sess := &Session{
		Hub:    hub,
		Conn:   c,
		ID:     uuid.New(),
		Send:   make(chan []byte, 256),
		engine: engine,
		logger: log,
	}
	sess.Hub.register <- sess

	go sess.writePump()
	sess.readPump()
}

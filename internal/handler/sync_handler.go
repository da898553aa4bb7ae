package handler

import (
	"slidesync-be/internal/pkg/logger"
	"slidesync-be/internal/service"
	internalWS "slidesync-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// SyncHandler exposes the real-time channel. Sessions are anonymous: role
// clients carry no credentials and the projector may sit on a hallway
// machine, so authentication stays outside this surface.
type SyncHandler struct {
	hub    *internalWS.Hub
	engine service.ISyncService
	logger logger.ILogger
}

func NewSyncHandler(hub *internalWS.Hub, engine service.ISyncService, log logger.ILogger) *SyncHandler {
	return &SyncHandler{
		hub:    hub,
		engine: engine,
		logger: log,
	}
}

// ServeWs handles websocket requests from the peer.
func (h *SyncHandler) ServeWs(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return websocket.New(func(conn *websocket.Conn) {
			h.logger.Info("SyncHandler", "Starting WebSocket session", nil)
			internalWS.ServeWs(h.hub, h.engine, h.logger, conn)
			h.logger.Info("SyncHandler", "WebSocket session ended", nil)
		})(c)
	}
	return fiber.ErrUpgradeRequired
}

// RegisterRoutes registers the real-time route.
func (h *SyncHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/ws", h.ServeWs)
}

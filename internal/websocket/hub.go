package websocket

import (
	"context"
	"encoding/json"

	"slidesync-be/internal/pkg/logger"
	"slidesync-be/internal/protocol"
	"slidesync-be/internal/service"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const clusterChannel = "slidesync_cluster"

// Hub tracks every live session and fans committed broadcasts out to all of
// them. Broadcast handling, registration, and unregistration run on one
// goroutine, so every session observes commits in the order the engine
// published them and a late joiner's snapshot is never older than the last
// commit it will receive.
type Hub struct {
	id string

	sessions map[uuid.UUID]*Session

	register   chan *Session
	unregister chan *Session

	engine     service.ISyncService
	subscriber message.Subscriber

	// Redis connection for cross-instance relay; may be nil.
	rdb *redis.Client

	logger logger.ILogger
}

func NewHub(engine service.ISyncService, subscriber message.Subscriber, rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		id:         uuid.NewString(),
		sessions:   make(map[uuid.UUID]*Session),
		register:   make(chan *Session),
		unregister: make(chan *Session),
		engine:     engine,
		subscriber: subscriber,
		rdb:        rdb,
		logger:     log,
	}
}

// clusterPayload wraps a relayed envelope with its origin so an instance can
// skip messages it published itself.
type clusterPayload struct {
	Origin  string          `json:"origin"`
	Message json.RawMessage `json:"message"`
}

func (h *Hub) Run(ctx context.Context) {
	broadcasts, err := h.subscriber.Subscribe(ctx, service.BroadcastTopic)
	if err != nil {
		h.logger.Error("Hub", "Failed to subscribe to broadcast topic", map[string]interface{}{"error": err})
		return
	}

	var relayed chan *redis.Message
	if h.rdb != nil {
		relayed = h.subscribeToCluster(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			return

		case sess := <-h.register:
			h.sendInitialState(sess)
			h.sessions[sess.ID] = sess
			h.logger.Info("Hub", "Session registered", map[string]interface{}{"session_id": sess.ID})

		case sess := <-h.unregister:
			if _, ok := h.sessions[sess.ID]; ok {
				delete(h.sessions, sess.ID)
				close(sess.Send)
				h.logger.Info("Hub", "Session unregistered", map[string]interface{}{"session_id": sess.ID})
			}

		case msg, ok := <-broadcasts:
			if !ok {
				return
			}
			h.fanOut(msg.Payload)
			h.relayToCluster(ctx, msg.Payload)
			msg.Ack()

		case msg, ok := <-relayed:
			if !ok {
				relayed = nil
				continue
			}
			var payload clusterPayload
			if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
				h.logger.Warn("Hub", "Bad cluster payload", map[string]interface{}{"error": err})
				continue
			}
			if payload.Origin == h.id {
				continue
			}
			h.fanOut(payload.Message)
		}
	}
}

// sendInitialState pushes a full snapshot before the session joins the
// broadcast set, so a reconnecting client resynchronizes from it alone.
func (h *Hub) sendInitialState(sess *Session) {
	data, err := protocol.Marshal(protocol.EventInitialState, h.engine.Snapshot())
	if err != nil {
		h.logger.Error("Hub", "Failed to marshal initial state", map[string]interface{}{"error": err})
		return
	}
	select {
	case sess.Send <- data:
	default:
	}
}

func (h *Hub) fanOut(data []byte) {
	for id, sess := range h.sessions {
		select {
		case sess.Send <- data:
		default:
			// Slow consumer: drop the session rather than stall the hub.
			h.logger.Warn("Hub", "Session send buffer full, dropping", map[string]interface{}{"session_id": id})
			delete(h.sessions, id)
			close(sess.Send)
		}
	}
}

func (h *Hub) relayToCluster(ctx context.Context, data []byte) {
	if h.rdb == nil {
		return
	}
	payload, _ := json.Marshal(clusterPayload{Origin: h.id, Message: data})
	if err := h.rdb.Publish(ctx, clusterChannel, payload).Err(); err != nil {
		h.logger.Warn("Hub", "Failed to relay broadcast to cluster", map[string]interface{}{"error": err})
	}
}

func (h *Hub) subscribeToCluster(ctx context.Context) chan *redis.Message {
	pubsub := h.rdb.Subscribe(ctx, clusterChannel)
	out := make(chan *redis.Message)
	go func() {
		defer pubsub.Close()
		defer close(out)
		for msg := range pubsub.Channel() {
			select {
			case out <- msg:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Package realtime streams response events to form owners watching the
// responses page. Redis pub/sub fans events out across instances.
package realtime

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// PingInterval and PongWait are used for heartbeat.
	PingInterval = 30
	PongWait     = 60
)

// Hub maintains form_id -> set of connections and broadcasts messages.
// Uses Redis pub/sub for horizontal scaling: local broadcast + publish to Redis.
type Hub struct {
	// formID -> map[clientID]*Client
	forms  map[uuid.UUID]map[string]*Client
	subs   map[uuid.UUID]func() // cancel Redis subscription per form
	mu     sync.RWMutex
	logger *zap.Logger
	pub    RedisPublisher
	sub    RedisSubscriber
}

// RedisPublisher is the interface for publishing to Redis (for cross-instance broadcast).
type RedisPublisher interface {
	PublishFormEvent(formID uuid.UUID, event string, payload []byte) error
}

// RedisSubscriber subscribes to form channels and invokes handler for incoming events.
type RedisSubscriber interface {
	SubscribeForm(formID uuid.UUID, handler func(event string, payload []byte)) (cancel func(), err error)
}

// NewHub creates a new WebSocket hub.
func NewHub(logger *zap.Logger, pub RedisPublisher, sub RedisSubscriber) *Hub {
	return &Hub{
		forms:  make(map[uuid.UUID]map[string]*Client),
		subs:   make(map[uuid.UUID]func()),
		logger: logger,
		pub:    pub,
		sub:    sub,
	}
}

// Register adds a client to a form room. Starts the Redis subscription for the
// form if this is the first client.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	if h.forms[c.FormID] == nil {
		h.forms[c.FormID] = make(map[string]*Client)
		if h.sub != nil {
			cancel, err := h.sub.SubscribeForm(c.FormID, func(event string, payload []byte) {
				h.BroadcastToForm(c.FormID, event, json.RawMessage(payload))
			})
			if err != nil {
				h.logger.Warn("form event subscription failed, local broadcast only",
					zap.String("form_id", c.FormID.String()), zap.Error(err))
			} else {
				h.subs[c.FormID] = cancel
			}
		}
	}
	h.forms[c.FormID][c.ID] = c
	h.mu.Unlock()
	h.logger.Debug("client watching form", zap.String("client_id", c.ID), zap.String("form_id", c.FormID.String()))
}

// Unregister removes a client from a form room. Cancels the Redis subscription
// when the last client leaves.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if m, ok := h.forms[c.FormID]; ok {
		delete(m, c.ID)
		if len(m) == 0 {
			delete(h.forms, c.FormID)
			if cancel, ok := h.subs[c.FormID]; ok {
				cancel()
				delete(h.subs, c.FormID)
			}
		}
	}
	h.mu.Unlock()
	h.logger.Debug("client left form", zap.String("client_id", c.ID), zap.String("form_id", c.FormID.String()))
}

// BroadcastToForm sends a message to all clients watching a form (local only).
func (h *Hub) BroadcastToForm(formID uuid.UUID, event string, payload interface{}) {
	var data []byte
	switch v := payload.(type) {
	case []byte:
		data = v
	case json.RawMessage:
		data = v
	default:
		data, _ = json.Marshal(payload)
	}
	msg := WSMessage{Event: event, Data: data}

	// snapshot under the lock; the map mutates under Register/Unregister
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.forms[formID]))
	for _, c := range h.forms[formID] {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		select {
		case c.send <- msg:
		default:
			// buffer full, skip
		}
	}
}

// BroadcastToFormAndPublish sends to local clients and publishes to Redis for
// other instances.
func (h *Hub) BroadcastToFormAndPublish(formID uuid.UUID, event string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	h.BroadcastToForm(formID, event, json.RawMessage(data))
	if h.pub != nil {
		_ = h.pub.PublishFormEvent(formID, event, data)
	}
}

// ViewerCount returns the number of connected clients watching a form.
func (h *Hub) ViewerCount(formID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.forms[formID])
}

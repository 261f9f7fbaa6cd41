package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Hub хранит подключённых подписчиков и рассылает им сообщения.
type Hub struct {
	clients map[*Client]struct{}
	mu      sync.RWMutex
	now     func() time.Time
	logger  *zap.Logger
}

func NewHub(now func() time.Time, logger *zap.Logger) *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		now:     now,
		logger:  logger,
	}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	h.logger.Info("Подписчик уведомлений подключен", zap.String("user_id", c.UserID))
}

func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.Send)
	h.logger.Info("Подписчик уведомлений отключен", zap.String("user_id", c.UserID))
}

func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast never blocks: a subscriber whose buffer is full is dropped.
func (h *Hub) Broadcast(messageType string, payload interface{}) error {
	message, err := json.Marshal(Envelope{Type: messageType, Payload: payload, Timestamp: h.now()})
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.Send <- message:
		default:
			delete(h.clients, c)
			close(c.Send)
			h.logger.Warn("Медленный подписчик отключен", zap.String("user_id", c.UserID))
		}
	}
	return nil
}

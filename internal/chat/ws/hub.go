package ws

import (
	"context"
	"encoding/json"
	"sync"

	chatdomain "github.com/mzotova/threadline/internal/chat/domain"
	"github.com/mzotova/threadline/internal/common/logger"
	"github.com/mzotova/threadline/internal/observability/metrics"
)

// Hub fans thread events out to the owning user's open connections. A user
// may hold several connections at once (one per tab).
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*Client]struct{}

	register   chan *Client
	unregister chan *Client
	log        *logger.Logger
}

func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		log:        log,
	}
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return

		case client := <-h.register:
			h.mu.Lock()
			set, ok := h.clients[client.userID]
			if !ok {
				set = make(map[*Client]struct{})
				h.clients[client.userID] = set
			}
			set[client] = struct{}{}
			h.mu.Unlock()
			metrics.WebSocketConnections.Inc()
			h.log.Infof("websocket connected user_id=%s", client.userID)

		case client := <-h.unregister:
			h.mu.Lock()
			if set, ok := h.clients[client.userID]; ok {
				if _, registered := set[client]; registered {
					delete(set, client)
					close(client.send)
					metrics.WebSocketConnections.Dec()
					if len(set) == 0 {
						delete(h.clients, client.userID)
					}
				}
			}
			h.mu.Unlock()
		}
	}
}

// MessageCreated implements the chat service's Notifier.
func (h *Hub) MessageCreated(userID string, msg chatdomain.Message) {
	event := Event{
		Type: TypeMessageCreated,
		Payload: MessagePayload{
			ID:        msg.ID,
			ThreadID:  msg.ThreadID,
			Role:      string(msg.Role),
			Content:   msg.Content,
			CreatedAt: msg.CreatedAt,
		},
	}

	data, err := json.Marshal(event)
	if err != nil {
		h.log.Errorf("websocket event marshal failed: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients[userID] {
		select {
		case client.send <- data:
		default:
			// Slow consumer; drop the event rather than block the submit path.
			h.log.Warnf("websocket send buffer full user_id=%s", userID)
		}
	}
}

func (h *Hub) shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, set := range h.clients {
		for client := range set {
			close(client.send)
			metrics.WebSocketConnections.Dec()
		}
	}
	h.clients = make(map[string]map[*Client]struct{})
}

package websocket

import (
	"encoding/json"
	"sync"

	"ai-advisor-be/internal/pkg/logger"
)

// Push is the frame sent to connected clients.
type Push struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Hub tracks websocket clients per user and pushes advisory updates
// (turn completed, calculator finished) to them. Sessions live in one
// process, so there is no cross-instance fan-out.
type Hub struct {
	// UserID -> list of clients (multi-device)
	clients map[string][]*Client

	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex

	logger logger.ILogger
}

func NewHub(log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[string][]*Client),
		logger:     log,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.UserID] = append(h.clients[client.UserID], client)
			h.mu.Unlock()
			h.logger.Info("Hub", "Client registered", map[string]interface{}{"user_id": client.UserID})

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.UserID]; ok {
				for i, c := range clients {
					if c == client {
						h.clients[client.UserID] = append(clients[:i], clients[i+1:]...)
						close(client.Send)
						break
					}
				}
				if len(h.clients[client.UserID]) == 0 {
					delete(h.clients, client.UserID)
					h.logger.Info("Hub", "Client completely unregistered", map[string]interface{}{"user_id": client.UserID})
				}
			}
			h.mu.Unlock()
		}
	}
}

// Send pushes an update to every connection of one user.
func (h *Hub) Send(userID string, push Push) {
	data, _ := json.Marshal(push)

	h.mu.RLock()
	clients, found := h.clients[userID]
	h.mu.RUnlock()
	if !found {
		return
	}

	for _, client := range clients {
		select {
		case client.Send <- data:
		default:
			h.logger.Warn("Hub", "Client Send buffer full, dropping message", map[string]interface{}{"user_id": userID})
			close(client.Send)
			h.unregister <- client
		}
	}
}

// Broadcast pushes an update to all connected clients.
func (h *Hub) Broadcast(push Push) {
	data, _ := json.Marshal(push)

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, clients := range h.clients {
		for _, client := range clients {
			select {
			case client.Send <- data:
			default:
				close(client.Send)
				h.unregister <- client
			}
		}
	}
}

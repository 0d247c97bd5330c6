package websocket

import (
	"encoding/json"
	"log"
	"sync"
)

// Hub maintains active WebSocket connections and fans refresh signals out to
// a user's devices. A user may hold several connections at once (phone,
// tablet, admin page); a state change on one is broadcast to the others.
type Hub struct {
	// Registered clients per user id
	clients map[string]map[*Client]bool

	// Inbound messages to broadcast
	broadcast chan *Message

	// Register requests from clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	// Mutex for thread-safe client map access
	mu sync.RWMutex
}

// Message targets all of one user's connections, optionally excluding the
// connection that caused the change.
type Message struct {
	UserID  string
	Exclude *Client
	Data    interface{}
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		broadcast:  make(chan *Message, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if h.clients[client.UserID] == nil {
				h.clients[client.UserID] = make(map[*Client]bool)
			}
			h.clients[client.UserID][client] = true
			n := len(h.clients[client.UserID])
			h.mu.Unlock()
			log.Printf("✅ [WEBSOCKET] Client connected (user %s, %d device(s))", client.UserID, n)

		case client := <-h.unregister:
			h.mu.Lock()
			if conns, ok := h.clients[client.UserID]; ok && conns[client] {
				delete(conns, client)
				close(client.send)
				if len(conns) == 0 {
					delete(h.clients, client.UserID)
				}
				log.Printf("🔴 [WEBSOCKET] Client disconnected (user %s, %d device(s) left)", client.UserID, len(conns))
			}
			h.mu.Unlock()

		case message := <-h.broadcast:
			data, err := json.Marshal(message.Data)
			if err != nil {
				log.Printf("❌ [WEBSOCKET] Failed to encode message: %v", err)
				continue
			}
			h.mu.RLock()
			for client := range h.clients[message.UserID] {
				if client == message.Exclude {
					continue
				}
				select {
				case client.send <- data:
				default:
					// Slow consumer: drop the connection rather than block the hub.
					go func(c *Client) { h.unregister <- c }(client)
				}
			}
			h.mu.RUnlock()
		}
	}
}

// NotifyStateUpdated tells a user's other devices the state document changed
// and hands them the new refresh token.
func (h *Hub) NotifyStateUpdated(userID, refreshToken string) {
	h.broadcast <- &Message{
		UserID: userID,
		Data: map[string]string{
			"type":  "state_updated",
			"token": refreshToken,
		},
	}
}

// NotifySyncCompleted tells a user's devices a push finished so they can
// pull.
func (h *Hub) NotifySyncCompleted(userID string, deliveries int) {
	h.broadcast <- &Message{
		UserID: userID,
		Data: map[string]interface{}{
			"type":       "sync_completed",
			"deliveries": deliveries,
		},
	}
}

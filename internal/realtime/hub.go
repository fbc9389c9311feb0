// Package realtime tracks live websocket connections and routes chat
// messages between them.
package realtime

import (
	"sync"

	"github.com/rs/zerolog/log"
)

const clientBuffer = 256

// Client is one websocket connection owned by a user. Messages are handed to
// the connection's writer through a buffered outbox; a full outbox drops the
// message rather than blocking the hub.
type Client struct {
	ID     string
	UserID string

	send    chan []byte
	closing sync.Once
}

func NewClient(id, userID string) *Client {
	return &Client{
		ID:     id,
		UserID: userID,
		send:   make(chan []byte, clientBuffer),
	}
}

// Outbox is consumed by the connection's writer goroutine. It is closed when
// the client is unregistered.
func (c *Client) Outbox() <-chan []byte {
	return c.send
}

func (c *Client) deliver(msg []byte) {
	select {
	case c.send <- msg:
	default:
		log.Warn().
			Str("connection_id", c.ID).
			Str("user_id", c.UserID).
			Msg("Dropping realtime message, client outbox full")
	}
}

func (c *Client) close() {
	c.closing.Do(func() { close(c.send) })
}

// Hub is the in-process registry of live connections. A user may hold several
// connections at once, for example one per browser tab.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
	byUser  map[string]map[string]*Client
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*Client),
		byUser:  make(map[string]map[string]*Client),
	}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c.ID] = c
	if _, ok := h.byUser[c.UserID]; !ok {
		h.byUser[c.UserID] = make(map[string]*Client)
	}
	h.byUser[c.UserID][c.ID] = c
}

// Unregister removes the connection and closes its outbox.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c.ID]; ok {
		delete(h.clients, c.ID)
		delete(h.byUser[c.UserID], c.ID)
		if len(h.byUser[c.UserID]) == 0 {
			delete(h.byUser, c.UserID)
		}
	}
	h.mu.Unlock()
	c.close()
}

// SendToConnection delivers a message to one specific connection.
func (h *Hub) SendToConnection(connID string, msg []byte) bool {
	h.mu.RLock()
	c, ok := h.clients[connID]
	h.mu.RUnlock()
	if !ok {
		return false
	}
	c.deliver(msg)
	return true
}

// SendToUser delivers a message to every live connection of one user and
// reports how many connections received it.
func (h *Hub) SendToUser(userID string, msg []byte) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.byUser[userID] {
		c.deliver(msg)
	}
	return len(h.byUser[userID])
}

// Broadcast delivers a message to every live connection.
func (h *Hub) Broadcast(msg []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients {
		c.deliver(msg)
	}
}

// Connected reports whether the user has at least one live connection.
func (h *Hub) Connected(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.byUser[userID]) > 0
}

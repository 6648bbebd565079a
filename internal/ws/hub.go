package ws

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Event is the envelope pushed to connected clients.
type Event struct {
	Type      string    `json:"type"`
	Message   string    `json:"message,omitempty"`
	Payload   any       `json:"payload,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Hub manages active WebSocket connections and fans engine events out to
// them. It implements the engine's Notifier collaborator: delivery is
// one-way, best-effort, with no ordering guarantee relative to persistence.
type Hub struct {
	mu     sync.RWMutex
	conns  map[*websocket.Conn]struct{}
	logger *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		conns:  make(map[*websocket.Conn]struct{}),
		logger: logger,
	}
}

// Register adds a connection.
func (h *Hub) Register(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[conn] = struct{}{}
}

// Unregister removes a connection.
func (h *Hub) Unregister(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.conns, conn)
}

// Notify broadcasts a plain notification message to every client.
func (h *Hub) Notify(message string) {
	h.Broadcast(Event{
		Type:      "notification",
		Message:   message,
		Timestamp: time.Now(),
	})
}

// Broadcast sends the event to all active connections. Connections that
// fail are closed; removal happens on the next Register/Unregister.
func (h *Hub) Broadcast(event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for conn := range h.conns {
		if err := conn.WriteJSON(event); err != nil {
			h.logger.Debug("Dropping websocket client", "error", err)
			conn.Close()
		}
	}
}

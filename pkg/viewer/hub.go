package viewer

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const writeWait = 5 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  4096,
	WriteBufferSize: 64 * 1024,
}

// client is one connected page. Only its write pump writes to conn.
type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
}

// Hub fans messages out to connected pages. A client whose queue is full
// misses the message instead of stalling the engine loop.
type Hub struct {
	mu      sync.Mutex
	clients map[string]*client
	buffer  int
	logger  *slog.Logger
}

// NewHub creates a hub queueing up to buffer messages per client.
func NewHub(buffer int, logger *slog.Logger) *Hub {
	if buffer <= 0 {
		buffer = 16
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{clients: make(map[string]*client), buffer: buffer, logger: logger}
}

func (h *Hub) add(conn *websocket.Conn) *client {
	c := &client{id: uuid.New().String(), conn: conn, send: make(chan []byte, h.buffer)}
	h.mu.Lock()
	h.clients[c.id] = c
	h.mu.Unlock()
	h.logger.Info("viewer connected", "client", c.id, "remote", conn.RemoteAddr().String())
	return c
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c.id]; !ok {
		return
	}
	delete(h.clients, c.id)
	close(c.send)
	h.logger.Info("viewer disconnected", "client", c.id)
}

// Len returns the number of connected clients.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Broadcast queues msg for every client.
func (h *Hub) Broadcast(msg []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, c := range h.clients {
		h.enqueue(c, msg)
	}
}

// Send queues msg for a single client.
func (h *Hub) Send(c *client, msg []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c.id]; ok {
		h.enqueue(c, msg)
	}
}

func (h *Hub) enqueue(c *client, msg []byte) {
	select {
	case c.send <- msg:
	default:
		h.logger.Warn("viewer too slow, message dropped", "client", c.id)
	}
}

// writePump drains the client's queue until the hub closes it.
func (h *Hub) writePump(c *client) {
	for msg := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			h.logger.Warn("viewer write failed", "client", c.id, "error", err)
			_ = c.conn.Close()
			for range c.send {
			}
			return
		}
	}
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeWait))
}

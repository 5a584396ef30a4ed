package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/inkframe/inkframe/pkg/logger"
)

// Event is a push notification to connected web clients.
type Event struct {
	Type string `json:"type"`
	ID   string `json:"id,omitempty"`
}

const writeTimeout = 5 * time.Second

// Hub fans events out to every connected websocket client. Slow or dead
// clients are dropped rather than allowed to stall the broadcast.
type Hub struct {
	log logger.Logger

	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
}

// NewHub creates an empty hub.
func NewHub(log logger.Logger) *Hub {
	return &Hub{log: log, conns: make(map[*websocket.Conn]struct{})}
}

// Broadcast sends the event to all connected clients.
func (h *Hub) Broadcast(ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		h.log.Error("failed to encode event: %v", err)
		return
	}

	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.conns))
	for c := range h.conns {
		conns = append(conns, c)
	}
	h.mu.Unlock()

	for _, c := range conns {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		err := c.Write(ctx, websocket.MessageText, data)
		cancel()
		if err != nil {
			h.drop(c)
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

func (h *Hub) add(c *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[c] = struct{}{}
}

func (h *Hub) drop(c *websocket.Conn) {
	h.mu.Lock()
	_, ok := h.conns[c]
	delete(h.conns, c)
	h.mu.Unlock()
	if ok {
		c.Close(websocket.StatusNormalClosure, "")
	}
}

// ServeHTTP upgrades the request to a websocket and keeps it registered
// until the client disconnects. Incoming messages are discarded; the
// stream is push-only.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	c, err := websocket.Accept(w, r, &websocket.AcceptOptions{InsecureSkipVerify: true})
	if err != nil {
		h.log.Warning("websocket accept failed: %v", err)
		return
	}
	h.add(c)
	defer h.drop(c)

	for {
		if _, _, err := c.Read(r.Context()); err != nil {
			return
		}
	}
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.conns))
	for c := range h.conns {
		conns = append(conns, c)
	}
	h.conns = make(map[*websocket.Conn]struct{})
	h.mu.Unlock()

	for _, c := range conns {
		c.Close(websocket.StatusGoingAway, "shutting down")
	}
}

package server

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"portalhub/internal/notification"
)

const (
	// HeartbeatInterval is how often every open stream receives a
	// heartbeat envelope so clients can tell silence from death.
	HeartbeatInterval = 30 * time.Second

	// ReplayDelay is the pause before active notifications are replayed
	// to a freshly registered connection, giving the client time to
	// finish setting up.
	ReplayDelay = time.Second

	// sendBuffer bounds each connection's outbound queue. A client that
	// cannot drain it is dropped rather than blocking the fan-out.
	sendBuffer = 16
)

// Conn is one registered stream connection. The HTTP handler drains
// Messages and writes each payload as an SSE frame.
type Conn struct {
	ID   string
	send chan []byte
}

// Messages returns the outbound queue. The channel is closed when the hub
// drops the connection.
func (c *Conn) Messages() <-chan []byte {
	return c.send
}

// Hub fans notifications out to every open stream connection. A write
// failure on one connection never blocks delivery to the others; the
// failing connection is simply dropped.
type Hub struct {
	mu          sync.RWMutex
	conns       map[string]*Conn
	store       *Store
	replayDelay time.Duration
	now         func() time.Time
}

// NewHub creates a hub replaying catch-up notifications from store.
func NewHub(store *Store) *Hub {
	return &Hub{
		conns:       make(map[string]*Conn),
		store:       store,
		replayDelay: ReplayDelay,
		now:         time.Now,
	}
}

// Register adds a connection to the fan-out set. The welcome envelope is
// queued immediately; every currently-active notification is replayed
// individually after a short delay. Replay is the only catch-up mechanism.
func (h *Hub) Register() *Conn {
	c := &Conn{
		ID:   uuid.NewString(),
		send: make(chan []byte, sendBuffer),
	}

	h.mu.Lock()
	h.conns[c.ID] = c
	h.mu.Unlock()

	if data, err := notification.NewConnectedEnvelope(h.now()).ToJSON(); err == nil {
		h.push(c, data)
	}

	time.AfterFunc(h.replayDelay, func() { h.replay(c) })

	slog.Info("stream connection registered", "conn_id", c.ID, "connections", h.Count())
	return c
}

// Unregister removes a connection and closes its queue.
func (h *Hub) Unregister(c *Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.conns[c.ID]; ok {
		delete(h.conns, c.ID)
		close(c.send)
		slog.Info("stream connection closed", "conn_id", c.ID, "connections", len(h.conns))
	}
}

// Broadcast sends a notification envelope to every open connection and
// returns how many received it. Connections whose queue is full are
// dropped, not retried.
func (h *Hub) Broadcast(n notification.Notification) int {
	data, err := notification.NewNotificationEnvelope(n).ToJSON()
	if err != nil {
		return 0
	}
	sent := h.broadcast(data)
	slog.Info("broadcast notification", "notification_id", n.ID, "clients", sent)
	return sent
}

// Count returns the number of open connections.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// RunHeartbeat pushes a heartbeat envelope to every connection on a fixed
// interval until the context is cancelled.
func (h *Hub) RunHeartbeat(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if data, err := notification.NewHeartbeatEnvelope(h.now()).ToJSON(); err == nil {
				h.broadcast(data)
			}
		case <-ctx.Done():
			return
		}
	}
}

// Close drops every connection, ending their handler loops.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, c := range h.conns {
		delete(h.conns, id)
		close(c.send)
	}
}

func (h *Hub) replay(c *Conn) {
	for _, n := range h.store.Active() {
		data, err := notification.NewNotificationEnvelope(n).ToJSON()
		if err != nil {
			continue
		}
		if !h.push(c, data) {
			return
		}
	}
}

// broadcast queues data on every connection, dropping the ones that fail.
func (h *Hub) broadcast(data []byte) int {
	h.mu.RLock()
	conns := make([]*Conn, 0, len(h.conns))
	for _, c := range h.conns {
		conns = append(conns, c)
	}
	h.mu.RUnlock()

	sent := 0
	for _, c := range conns {
		if h.push(c, data) {
			sent++
		}
	}
	return sent
}

// push queues data on one connection. Sends happen under the read lock and
// channel close under the write lock, so a queued send never races a close.
func (h *Hub) push(c *Conn, data []byte) bool {
	h.mu.RLock()
	_, open := h.conns[c.ID]
	if !open {
		h.mu.RUnlock()
		return false
	}
	select {
	case c.send <- data:
		h.mu.RUnlock()
		return true
	default:
		h.mu.RUnlock()
		slog.Warn("dropping slow stream connection", "conn_id", c.ID)
		h.Unregister(c)
		return false
	}
}

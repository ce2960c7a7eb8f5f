// Package hub tracks connected raters, fans transaction broadcasts out to
// them, and routes incoming warnings to the aggregation window waiting on the
// matching correlation id. The connection set and window table are the only
// shared mutable state in the pipeline; all mutation is serialized behind one
// mutex, and broadcast iterates over a snapshot so concurrent connects and
// disconnects cannot corrupt delivery.
package hub

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/txwarden/txwarden/internal/metrics"
	"github.com/txwarden/txwarden/internal/model"
)

// Sender delivers one wire frame to a rater. Implementations are expected to
// apply their own write deadline; a returned error removes the connection.
type Sender interface {
	Send(frame []byte) error
}

// RaterConn is one live rater connection. Owned by the Hub; no per-transaction
// state lives here.
type RaterConn struct {
	ID     string
	sender Sender
}

// Hub is the rater registry and warning router.
type Hub struct {
	mu      sync.Mutex
	conns   map[string]*RaterConn
	windows map[string]chan model.Warning
}

// New creates an empty Hub.
func New() *Hub {
	return &Hub{
		conns:   make(map[string]*RaterConn),
		windows: make(map[string]chan model.Warning),
	}
}

// Register admits a new rater connection. Never fails.
func (h *Hub) Register(s Sender) *RaterConn {
	conn := &RaterConn{
		ID:     "r-" + uuid.NewString(),
		sender: s,
	}
	h.mu.Lock()
	h.conns[conn.ID] = conn
	n := len(h.conns)
	h.mu.Unlock()
	metrics.ConnectedRaters.Set(float64(n))
	return conn
}

// Unregister removes a connection. Idempotent: removing an already-removed
// connection is a no-op.
func (h *Hub) Unregister(conn *RaterConn) {
	if conn == nil {
		return
	}
	h.mu.Lock()
	delete(h.conns, conn.ID)
	n := len(h.conns)
	h.mu.Unlock()
	metrics.ConnectedRaters.Set(float64(n))
}

// ConnCount returns the number of currently registered raters.
func (h *Hub) ConnCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

// Broadcast delivers a transaction message to every rater registered at call
// time. Delivery is best-effort per connection: a failed send unregisters that
// rater and does not affect the others or fail the broadcast. Connections that
// join mid-broadcast miss it; there is no replay.
func (h *Hub) Broadcast(msg TransactionMessage) error {
	frame, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode broadcast: %w", err)
	}

	h.mu.Lock()
	snapshot := make([]*RaterConn, 0, len(h.conns))
	for _, c := range h.conns {
		snapshot = append(snapshot, c)
	}
	h.mu.Unlock()

	for _, conn := range snapshot {
		if err := conn.sender.Send(frame); err != nil {
			log.Printf("hub: delivery to rater %s failed, dropping connection: %v", conn.ID, err)
			metrics.BroadcastFailures.Inc()
			h.Unregister(conn)
		}
	}
	return nil
}

// SubmitWarning routes a rater warning to the window waiting on the given
// correlation id. The first warning resolves the window; the window is removed
// from the table before delivery, so every later warning for the same id finds
// no window and is silently dropped. Never blocks the submitting rater.
func (h *Hub) SubmitWarning(correlationID, message string) {
	h.mu.Lock()
	ch, ok := h.windows[correlationID]
	if ok {
		delete(h.windows, correlationID)
	}
	h.mu.Unlock()

	if !ok {
		metrics.WarningsDropped.Inc()
		return
	}

	// Channel is buffered with capacity 1 and only ever written once.
	ch <- model.Warning{
		CorrelationID: correlationID,
		Message:       message,
		SubmittedAt:   time.Now().UTC(),
	}
	metrics.WarningsReceived.Inc()
}

// openWindow registers a fresh window channel for the id, replacing any stale
// one left by an abandoned pipeline.
func (h *Hub) openWindow(correlationID string) chan model.Warning {
	ch := make(chan model.Warning, 1)
	h.mu.Lock()
	h.windows[correlationID] = ch
	h.mu.Unlock()
	return ch
}

// closeWindow unregisters the window if it is still the one we opened.
func (h *Hub) closeWindow(correlationID string, ch chan model.Warning) {
	h.mu.Lock()
	if cur, ok := h.windows[correlationID]; ok && cur == ch {
		delete(h.windows, correlationID)
	}
	h.mu.Unlock()
}

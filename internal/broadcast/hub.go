// internal/broadcast/hub.go
package broadcast

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Broadcaster is the publish side of the fanout. The coordinator depends on
// this interface rather than the Hub so tests can substitute a capturing fake.
type Broadcaster interface {
	Publish(event string, payload map[string]interface{})
}

// Conn wraps a single client's presence in the fanout. Messages are queued on
// OutChan and drained by the connection's write pump.
type Conn struct {
	ID      uuid.UUID
	Cancel  context.CancelFunc // kills the connection's read loop if needed
	OutChan chan map[string]interface{}

	// mu orders Write against the close in Hub.Remove. Publish sends outside
	// the hub mutex, so without this a send could hit a just-closed channel.
	mu     sync.Mutex
	closed bool

	log *logrus.Logger
}

// Write pushes a message onto the connection's OutChan non-blockingly.
// If the connection was removed or the channel is full the message is
// dropped and logged; delivery is fire-and-forget by contract.
func (c *Conn) Write(msg map[string]interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		if c.log != nil {
			msgType, _ := msg["type"].(string)
			c.log.Warnf("broadcast: conn %s already removed, dropped message type '%s'", c.ID, msgType)
		}
		return
	}
	select {
	case c.OutChan <- msg:
	default:
		if c.log != nil {
			msgType, _ := msg["type"].(string)
			c.log.Warnf("broadcast: OutChan for conn %s full, dropped message type '%s'", c.ID, msgType)
		}
	}
}

// WriteError is a convenience to send an error object to one client.
func (c *Conn) WriteError(msg string) {
	c.Write(map[string]interface{}{
		"type":    "error",
		"message": msg,
	})
}

// Hub delivers coordinator events to every connected client. There is one hub
// per process; clients are not addressed individually. Publish preserves the
// order events were issued because each call completes under the hub mutex.
type Hub struct {
	mu    sync.Mutex
	conns map[uuid.UUID]*Conn
	log   *logrus.Logger
}

// NewHub returns an empty Hub logging through the given logger.
func NewHub(logger *logrus.Logger) *Hub {
	return &Hub{
		conns: make(map[uuid.UUID]*Conn),
		log:   logger,
	}
}

// Add registers a connection with the hub and returns its Conn wrapper.
func (h *Hub) Add(connID uuid.UUID, cancel context.CancelFunc, buf int) *Conn {
	conn := &Conn{
		ID:      connID,
		Cancel:  cancel,
		OutChan: make(chan map[string]interface{}, buf),
		log:     h.log,
	}
	h.mu.Lock()
	h.conns[connID] = conn
	h.mu.Unlock()
	return conn
}

// Remove drops a connection from the hub and closes its outbound channel.
func (h *Hub) Remove(connID uuid.UUID) {
	h.mu.Lock()
	conn, ok := h.conns[connID]
	if ok {
		delete(h.conns, connID)
	}
	h.mu.Unlock()

	if !ok {
		return
	}
	conn.mu.Lock()
	conn.closed = true
	close(conn.OutChan)
	conn.mu.Unlock()
	if conn.Cancel != nil {
		conn.Cancel()
	}
}

// Publish sends the named event with its payload to every connected client.
// The "type" key carries the event name, matching the flat packet format the
// websocket layer speaks. No acknowledgement, no per-client retry.
func (h *Hub) Publish(event string, payload map[string]interface{}) {
	msg := make(map[string]interface{}, len(payload)+1)
	msg["type"] = event
	for k, v := range payload {
		msg[k] = v
	}

	h.mu.Lock()
	conns := make([]*Conn, 0, len(h.conns))
	for _, conn := range h.conns {
		conns = append(conns, conn)
	}
	h.mu.Unlock()

	for _, conn := range conns {
		conn.Write(msg)
	}
}

// Len returns the number of connected clients.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

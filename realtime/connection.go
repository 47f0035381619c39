// Package realtime is the presence-and-delivery core of the chat system.
// It tracks which users currently hold a live connection, fans persisted
// messages out to the recipient's connections, and broadcasts presence
// changes to everyone connected. Transports (websocket, tests) plug in
// through the Sink interface; persistence and identity are collaborators,
// not residents.
package realtime

import (
	"chat-relay/domain"
	"chat-relay/domain/event"
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// State is the lifecycle position of a connection. Transitions are guarded:
// a connection moves Connecting → Authenticated → Registered → Closing →
// Closed, and Closed is final. A rejected handshake jumps straight from
// Connecting to Closed without ever being registered.
type State int32

const (
	StateConnecting State = iota
	StateAuthenticated
	StateRegistered
	StateClosing
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateAuthenticated:
		return "authenticated"
	case StateRegistered:
		return "registered"
	case StateClosing:
		return "closing"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Sink is the write side of one connection, as the core sees it.
// Consume must not block past the sink's own delivery timeout.
type Sink interface {
	Consume(ctx context.Context, e event.DomainEvent) error
	Close()
}

// Connection is a live bidirectional channel to one client process.
// It is owned by the Lifecycle from accept to close; the Registry only
// holds a non-owning reference for lookups.
type Connection struct {
	ID        string
	CreatedAt time.Time

	sink Sink

	mu     sync.Mutex
	userID domain.UserID
	state  State
}

func NewConnection(sink Sink) *Connection {
	return &Connection{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		sink:      sink,
		state:     StateConnecting,
	}
}

func (c *Connection) UserID() domain.UserID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.userID
}

func (c *Connection) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Connection) Sink() Sink {
	return c.sink
}

// advance performs a guarded transition. Exactly one caller wins a given
// transition; every other caller observes false and must treat the call
// as a no-op. This is what makes double-close safe.
func (c *Connection) advance(from, to State) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != from {
		return false
	}
	c.state = to
	return true
}

// bindUser attaches the verified identity during the handshake.
// The identity is immutable for the rest of the connection's lifetime.
func (c *Connection) bindUser(id domain.UserID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.userID = id
}

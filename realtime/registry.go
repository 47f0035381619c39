package realtime

import (
	"chat-relay/domain"
	"log/slog"
	"sync"
)

// Registry is the concurrency-safe mapping from user identity to that user's
// live connections. It is the only shared mutable structure of the delivery
// layer: every access goes through its operations, and no I/O or callback
// ever runs while its lock is held.
//
// Two indexes are kept in step: byUser for fan-out lookups, byConn to make
// register/unregister idempotent under duplicate or racing signals.
type Registry struct {
	mu     sync.RWMutex
	log    *slog.Logger
	byUser map[domain.UserID]map[string]*Connection
	byConn map[string]*Connection
}

func NewRegistry(log *slog.Logger) *Registry {
	return &Registry{
		log:    log,
		byUser: make(map[domain.UserID]map[string]*Connection),
		byConn: make(map[string]*Connection),
	}
}

// Register adds a connection to its user's set, creating the entry on first
// connection. Registering the same connection twice is a no-op.
func (r *Registry) Register(c *Connection) {
	user := c.UserID()

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, dup := r.byConn[c.ID]; dup {
		return
	}

	set := r.byUser[user]
	if set == nil {
		set = make(map[string]*Connection)
		r.byUser[user] = set
	}
	set[c.ID] = c
	r.byConn[c.ID] = c
}

// Unregister removes a connection and deletes the user's entry when its set
// becomes empty: a user with zero connections is not online. Unregistering
// a connection that is not present is a no-op, which absorbs double-disconnect
// races.
func (r *Registry) Unregister(c *Connection) {
	user := c.UserID()

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byConn[c.ID]; !ok {
		return
	}
	delete(r.byConn, c.ID)

	if set := r.byUser[user]; set != nil {
		delete(set, c.ID)
		if len(set) == 0 {
			delete(r.byUser, user)
		}
	}
}

// ConnectionsFor returns a snapshot of the user's live connections; callers
// may iterate it freely, mutations to it never reach the registry.
func (r *Registry) ConnectionsFor(user domain.UserID) []*Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set := r.byUser[user]
	if len(set) == 0 {
		if set != nil {
			// Empty sets must be removed on unregister; seeing one means the
			// internal invariant was broken.
			r.log.Error("registry invariant violated: empty connection set kept",
				"user_id", user)
		}
		return nil
	}

	out := make([]*Connection, 0, len(set))
	for _, c := range set {
		out = append(out, c)
	}
	return out
}

// OnlineUsers returns a snapshot of every user with at least one live
// connection.
func (r *Registry) OnlineUsers() []domain.UserID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.onlineUsersLocked()
}

// Snapshot returns the online-user set and every live connection under a
// single read lock, so a presence broadcast reflects one registry state
// that actually existed.
func (r *Registry) Snapshot() ([]domain.UserID, []*Connection) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conns := make([]*Connection, 0, len(r.byConn))
	for _, c := range r.byConn {
		conns = append(conns, c)
	}
	return r.onlineUsersLocked(), conns
}

func (r *Registry) onlineUsersLocked() []domain.UserID {
	users := make([]domain.UserID, 0, len(r.byUser))
	for user, set := range r.byUser {
		if len(set) == 0 {
			r.log.Error("registry invariant violated: empty connection set kept",
				"user_id", user)
			continue
		}
		users = append(users, user)
	}
	return users
}

package realtime

import (
	"sync"
	"testing"

	"chat-relay/domain"

	"github.com/stretchr/testify/require"
)

func registeredConn(user domain.UserID) *Connection {
	c := NewConnection(&recordingSink{})
	c.bindUser(user)
	c.advance(StateConnecting, StateAuthenticated)
	c.advance(StateAuthenticated, StateRegistered)
	return c
}

func TestRegistry_OnlineUsers(t *testing.T) {
	t.Run("should report exactly the users holding at least one connection", func(t *testing.T) {
		req := require.New(t)

		// Given two users, one of them with two connections
		r := NewRegistry(testLogger())
		alice1 := registeredConn("alice")
		alice2 := registeredConn("alice")
		bob := registeredConn("bob")

		// When all three connections register
		r.Register(alice1)
		r.Register(alice2)
		r.Register(bob)

		// Then the online set contains each user once
		req.ElementsMatch([]domain.UserID{"alice", "bob"}, r.OnlineUsers())
		req.Len(r.ConnectionsFor("alice"), 2)
		req.Len(r.ConnectionsFor("bob"), 1)
	})

	t.Run("should keep a user online until the last connection leaves", func(t *testing.T) {
		req := require.New(t)

		r := NewRegistry(testLogger())
		first := registeredConn("alice")
		second := registeredConn("alice")
		r.Register(first)
		r.Register(second)

		// When one of the two connections unregisters
		r.Unregister(first)

		// Then the user is still online through the remaining one
		req.ElementsMatch([]domain.UserID{"alice"}, r.OnlineUsers())

		// When the last connection unregisters
		r.Unregister(second)

		// Then the user disappears from the online set entirely
		req.Empty(r.OnlineUsers())
		req.Empty(r.ConnectionsFor("alice"))
	})
}

func TestRegistry_Idempotency(t *testing.T) {
	t.Run("should treat a duplicate register as a no-op", func(t *testing.T) {
		req := require.New(t)

		r := NewRegistry(testLogger())
		c := registeredConn("alice")

		r.Register(c)
		r.Register(c)

		req.Len(r.ConnectionsFor("alice"), 1)

		// A single unregister fully removes it
		r.Unregister(c)
		req.Empty(r.OnlineUsers())
	})

	t.Run("should treat unregistering an absent connection as a no-op", func(t *testing.T) {
		req := require.New(t)

		r := NewRegistry(testLogger())
		present := registeredConn("alice")
		absent := registeredConn("alice")
		r.Register(present)

		// When a connection that was never registered unregisters twice
		r.Unregister(absent)
		r.Unregister(absent)

		// Then the registered sibling is untouched
		req.ElementsMatch([]domain.UserID{"alice"}, r.OnlineUsers())
		req.Len(r.ConnectionsFor("alice"), 1)
	})
}

func TestRegistry_SnapshotIsolation(t *testing.T) {
	req := require.New(t)

	r := NewRegistry(testLogger())
	r.Register(registeredConn("alice"))
	r.Register(registeredConn("bob"))

	users, conns := r.Snapshot()
	req.Len(users, 2)
	req.Len(conns, 2)

	// Mutating the returned slices never reaches the registry
	users[0] = "mallory"
	conns[0] = nil

	req.ElementsMatch([]domain.UserID{"alice", "bob"}, r.OnlineUsers())
	for _, c := range r.ConnectionsFor("alice") {
		req.NotNil(c)
	}
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	req := require.New(t)

	r := NewRegistry(testLogger())
	const perUser = 20
	users := []domain.UserID{"alice", "bob", "carol"}

	var wg sync.WaitGroup
	for _, user := range users {
		for i := 0; i < perUser; i++ {
			wg.Add(1)
			go func(user domain.UserID) {
				defer wg.Done()
				c := registeredConn(user)
				r.Register(c)
				_ = r.OnlineUsers()
				_ = r.ConnectionsFor(user)
				r.Unregister(c)
			}(user)
		}
	}
	wg.Wait()

	// Every connection registered and unregistered once: nothing remains
	req.Empty(r.OnlineUsers())
	_, conns := r.Snapshot()
	req.Empty(conns)
}

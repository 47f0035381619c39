package realtime

import (
	"context"
	"testing"

	"chat-relay/domain"
	"chat-relay/errors"

	"github.com/stretchr/testify/require"
)

func TestBroadcaster_Announce(t *testing.T) {
	ctx := context.Background()

	t.Run("should push the full online set to every live connection", func(t *testing.T) {
		req := require.New(t)

		registry := NewRegistry(testLogger())
		broadcaster := NewBroadcaster(testLogger(), registry)

		alice := registeredConn("alice")
		bob := registeredConn("bob")
		registry.Register(alice)
		registry.Register(bob)

		failed := broadcaster.Announce(ctx)

		req.Empty(failed)
		for _, c := range []*Connection{alice, bob} {
			snk := c.Sink().(*recordingSink)
			req.ElementsMatch([]domain.UserID{"alice", "bob"}, snk.lastPresence())
		}
	})

	t.Run("should recompute the set from the registry on every call", func(t *testing.T) {
		req := require.New(t)

		registry := NewRegistry(testLogger())
		broadcaster := NewBroadcaster(testLogger(), registry)

		alice := registeredConn("alice")
		bob := registeredConn("bob")
		registry.Register(alice)
		registry.Register(bob)
		broadcaster.Announce(ctx)

		// When the registry changes between two announcements
		registry.Unregister(bob)
		broadcaster.Announce(ctx)

		// Then the second broadcast reflects the current state, not a cache
		snk := alice.Sink().(*recordingSink)
		req.ElementsMatch([]domain.UserID{"alice"}, snk.lastPresence())
	})

	t.Run("should report a failing connection without aborting delivery to the rest", func(t *testing.T) {
		req := require.New(t)

		registry := NewRegistry(testLogger())
		broadcaster := NewBroadcaster(testLogger(), registry)

		healthy := registeredConn("alice")
		broken := registeredConn("bob")
		brokenSink := broken.Sink().(*recordingSink)
		brokenSink.failWith = errors.ErrSinkFull
		registry.Register(healthy)
		registry.Register(broken)

		failed := broadcaster.Announce(ctx)

		// The healthy connection still received the update
		healthySink := healthy.Sink().(*recordingSink)
		req.ElementsMatch([]domain.UserID{"alice", "bob"}, healthySink.lastPresence())

		// The broken one is reported for teardown, nothing more
		req.Len(failed, 1)
		req.Equal(broken.ID, failed[0].ID)
		req.False(brokenSink.Closed())
	})
}

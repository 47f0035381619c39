package realtime

import (
	"chat-relay/domain/event"
	"context"
	"log/slog"
	"time"
)

// Broadcaster recomputes the online-user set from the registry and pushes it
// to every live connection. No delta computation: online sets stay small
// compared to message volume in this domain, so resending the full set keeps
// the protocol trivial.
type Broadcaster struct {
	log      *slog.Logger
	registry *Registry
}

func NewBroadcaster(log *slog.Logger, registry *Registry) *Broadcaster {
	return &Broadcaster{log: log, registry: registry}
}

// Announce pushes a presence update to every connection found in one registry
// snapshot. A push failing on one connection never aborts delivery to the
// others; failed connections are returned so the caller can run the normal
// teardown for each of them.
func (b *Broadcaster) Announce(ctx context.Context) []*Connection {
	users, conns := b.registry.Snapshot()
	evt := event.PresenceUpdated{Users: users, At: time.Now().UTC()}

	var failed []*Connection
	for _, c := range conns {
		if err := c.Sink().Consume(ctx, evt); err != nil {
			b.log.Warn("presence push failed",
				"connection_id", c.ID,
				"user_id", c.UserID(),
				"error", err)
			failed = append(failed, c)
		}
	}
	return failed
}

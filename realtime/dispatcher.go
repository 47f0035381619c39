package realtime

import (
	"chat-relay/domain"
	"chat-relay/domain/event"
	"context"
	"log/slog"
)

// ConnectionCloser is the teardown entry point failed connections are handed
// to. Implemented by Lifecycle.
type ConnectionCloser interface {
	Close(ctx context.Context, c *Connection)
}

// Dispatcher pushes already-persisted messages to the recipient's live
// connections. It never stores anything: the persisted record remains the
// durable source of truth, live delivery is best effort on top of it.
type Dispatcher struct {
	log      *slog.Logger
	registry *Registry
	closer   ConnectionCloser
}

func NewDispatcher(log *slog.Logger, registry *Registry, closer ConnectionCloser) *Dispatcher {
	return &Dispatcher{log: log, registry: registry, closer: closer}
}

// Dispatch fans one message out to every live connection of its recipient,
// independently. A recipient with zero connections is a successful no-op
// (offline delivery is satisfied by the next history load). A push failure
// on one connection triggers the implicit-disconnect path for that
// connection only and never blocks or fails delivery to siblings.
//
// Relative order of Dispatch calls for the same recipient is preserved on
// each connection by its sink's buffered channel; no ordering exists across
// recipients or across a recipient's different connections.
func (d *Dispatcher) Dispatch(ctx context.Context, msg domain.Message) {
	conns := d.registry.ConnectionsFor(msg.RecipientID)
	if len(conns) == 0 {
		d.log.Debug("recipient offline, live delivery skipped",
			"recipient_id", msg.RecipientID,
			"message_id", msg.ID)
		return
	}

	evt := event.MessageDelivered{Message: msg}
	for _, c := range conns {
		if err := c.Sink().Consume(ctx, evt); err != nil {
			d.log.Warn("message push failed, treating as implicit disconnect",
				"connection_id", c.ID,
				"user_id", c.UserID(),
				"message_id", msg.ID,
				"error", err)
			d.closer.Close(ctx, c)
		}
	}
}

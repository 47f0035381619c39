package event

import (
	"chat-relay/domain"
	"time"
)

// DomainEvent is anything pushed to a connected client through its sink.
type DomainEvent interface {
	OccurredAt() time.Time
}

// MessageDelivered carries a persisted message to the recipient's
// live connections.
type MessageDelivered struct {
	Message domain.Message
}

func (m MessageDelivered) OccurredAt() time.Time {
	return m.Message.CreatedAt
}

// PresenceUpdated carries the full online-user set. It is recomputed from
// the registry for every broadcast, never cached.
type PresenceUpdated struct {
	Users []domain.UserID
	At    time.Time
}

func (p PresenceUpdated) OccurredAt() time.Time {
	return p.At
}

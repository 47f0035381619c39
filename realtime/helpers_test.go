package realtime

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"chat-relay/domain"
	"chat-relay/domain/event"
	"chat-relay/errors"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// recordingSink captures every event pushed to a connection. Setting failWith
// simulates a dead client whose pushes fail.
type recordingSink struct {
	mu       sync.Mutex
	events   []event.DomainEvent
	failWith error
	closed   bool
}

func (s *recordingSink) Consume(_ context.Context, e event.DomainEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return s.failWith
	}
	s.events = append(s.events, e)
	return nil
}

func (s *recordingSink) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

func (s *recordingSink) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *recordingSink) Events() []event.DomainEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]event.DomainEvent, len(s.events))
	copy(out, s.events)
	return out
}

// lastPresence returns the user set of the most recent presence update
// pushed to this sink, or nil if none was received.
func (s *recordingSink) lastPresence() []domain.UserID {
	events := s.Events()
	for i := len(events) - 1; i >= 0; i-- {
		if p, ok := events[i].(event.PresenceUpdated); ok {
			return p.Users
		}
	}
	return nil
}

func (s *recordingSink) presenceCount() int {
	count := 0
	for _, e := range s.Events() {
		if _, ok := e.(event.PresenceUpdated); ok {
			count++
		}
	}
	return count
}

// staticVerifier maps raw credentials to user identities for lifecycle tests.
type staticVerifier struct {
	users map[string]domain.UserID
	err   error
}

func (v *staticVerifier) VerifyCredential(credential string) (domain.UserID, error) {
	if v.err != nil {
		return "", v.err
	}
	id, ok := v.users[credential]
	if !ok {
		return "", errors.ErrInvalidCredentials
	}
	return id, nil
}

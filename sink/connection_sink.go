package sink

import (
	"chat-relay/contract"
	"chat-relay/domain/event"
	"chat-relay/errors"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// ConnectionSink buffers outbound events for a single live connection.
// The write pump of that connection is the only consumer, so the buffered
// channel preserves the order in which events were consumed, which is what
// gives per-connection delivery ordering.
//
// Consume never blocks past the delivery timeout: a buffer that stays full
// means the client stopped reading, and the caller treats the returned error
// as an implicit disconnect.
type ConnectionSink struct {
	log             *slog.Logger
	events          chan event.DomainEvent
	deliveryTimeout time.Duration
	closeOnce       sync.Once
	closed          chan struct{}
}

var _ contract.EventSink = (*ConnectionSink)(nil)

func NewConnectionSink(log *slog.Logger, bufferSize int, deliveryTimeout time.Duration) *ConnectionSink {
	return &ConnectionSink{
		log:             log,
		events:          make(chan event.DomainEvent, bufferSize),
		deliveryTimeout: deliveryTimeout,
		closed:          make(chan struct{}),
	}
}

// Consume implements the EventSink interface.
func (s *ConnectionSink) Consume(ctx context.Context, e event.DomainEvent) error {
	select {
	case <-s.closed:
		return errors.ErrSinkClosed
	default:
	}

	timer := time.NewTimer(s.deliveryTimeout)
	defer timer.Stop()

	select {
	case s.events <- e:
		return nil
	case <-s.closed:
		return errors.ErrSinkClosed
	case <-timer.C:
		return fmt.Errorf("%w: no slot freed within %s", errors.ErrSinkFull, s.deliveryTimeout)
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Events exposes the buffered events to the connection's write pump.
func (s *ConnectionSink) Events() <-chan event.DomainEvent {
	return s.events
}

// Done is closed once the sink is closed; the write pump selects on it
// to learn that the connection was torn down.
func (s *ConnectionSink) Done() <-chan struct{} {
	return s.closed
}

// Close is idempotent; it may race with a concurrent Consume, which will
// then observe ErrSinkClosed instead of blocking until its timeout.
func (s *ConnectionSink) Close() {
	s.closeOnce.Do(func() {
		close(s.closed)
	})
}

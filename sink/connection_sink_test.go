package sink

import (
	"chat-relay/domain"
	"chat-relay/domain/event"
	"chat-relay/errors"
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	// Silencing logs for clean test output
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestConnectionSink_PreservesConsumeOrder(t *testing.T) {
	req := require.New(t)
	s := NewConnectionSink(testLogger(), 8, time.Second)
	ctx := context.Background()

	first := event.PresenceUpdated{Users: []domain.UserID{"u1"}, At: time.Now()}
	second := event.PresenceUpdated{Users: []domain.UserID{"u1", "u2"}, At: time.Now()}

	req.NoError(s.Consume(ctx, first))
	req.NoError(s.Consume(ctx, second))

	req.Equal(first, <-s.Events())
	req.Equal(second, <-s.Events())
}

func TestConnectionSink_FullBufferTimesOut(t *testing.T) {
	req := require.New(t)
	s := NewConnectionSink(testLogger(), 1, 20*time.Millisecond)
	ctx := context.Background()

	evt := event.PresenceUpdated{At: time.Now()}
	req.NoError(s.Consume(ctx, evt))

	// Nobody drains the buffer, so the second push must fail fast.
	err := s.Consume(ctx, evt)
	req.ErrorIs(err, errors.ErrSinkFull)
}

func TestConnectionSink_ClosedSinkRejectsEvents(t *testing.T) {
	req := require.New(t)
	s := NewConnectionSink(testLogger(), 1, time.Second)

	s.Close()
	// Close is idempotent
	s.Close()

	err := s.Consume(context.Background(), event.PresenceUpdated{At: time.Now()})
	req.ErrorIs(err, errors.ErrSinkClosed)
}

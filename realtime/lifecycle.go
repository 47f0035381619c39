package realtime

import (
	"chat-relay/domain"
	"chat-relay/errors"
	"context"
	"fmt"
	"log/slog"
)

// TokenVerifier is the identity collaborator: it validates the credential
// presented at handshake time and returns the identity it is bound to.
// Consumed exactly once per handshake; the result is trusted for the
// connection's lifetime.
type TokenVerifier interface {
	VerifyCredential(credential string) (domain.UserID, error)
}

// Lifecycle owns every connection from accept to close. It drives the state
// machine Connecting → Authenticated → Registered → Closing → Closed,
// keeps the registry in step, and triggers presence broadcasts on each
// state change that other clients can observe.
type Lifecycle struct {
	log      *slog.Logger
	registry *Registry
	presence *Broadcaster
	verifier TokenVerifier
}

func NewLifecycle(log *slog.Logger, registry *Registry, presence *Broadcaster,
	verifier TokenVerifier) *Lifecycle {
	return &Lifecycle{
		log:      log,
		registry: registry,
		presence: presence,
		verifier: verifier,
	}
}

// Handshake binds an inbound connection to a verified user identity and
// registers it. On credential failure the connection goes straight to Closed:
// it is never registered, no broadcast happens, and no other component ever
// observes it.
func (m *Lifecycle) Handshake(ctx context.Context, credential string, sink Sink) (*Connection, error) {
	c := NewConnection(sink)

	userID, err := m.verifier.VerifyCredential(credential)
	if err != nil {
		c.advance(StateConnecting, StateClosed)
		sink.Close()
		m.log.Info("handshake rejected", "connection_id", c.ID, "error", err)
		return nil, fmt.Errorf("%w: %v", errors.ErrHandshakeRejected, err)
	}

	c.bindUser(userID)
	if !c.advance(StateConnecting, StateAuthenticated) ||
		!c.advance(StateAuthenticated, StateRegistered) {
		// Nothing else holds a reference to c yet, so a lost transition here
		// means a caller misused the API.
		return nil, fmt.Errorf("%w: connection in state %s", errors.ErrHandshakeRejected, c.State())
	}

	m.registry.Register(c)
	m.log.Info("connection registered",
		"connection_id", c.ID,
		"user_id", userID)

	m.announce(ctx)
	return c, nil
}

// Close drives Registered → Closing → Closed: unregister, presence broadcast,
// sink release. It is safe to invoke concurrently from the read pump, the
// write pump, and failed-push handlers; the guarded Closing transition makes
// exactly one invocation perform the teardown, every other one is a no-op.
// A closed connection identifier is never reused.
func (m *Lifecycle) Close(ctx context.Context, c *Connection) {
	if !c.advance(StateRegistered, StateClosing) {
		return
	}

	m.registry.Unregister(c)
	c.Sink().Close()
	c.advance(StateClosing, StateClosed)

	m.log.Info("connection closed",
		"connection_id", c.ID,
		"user_id", c.UserID())

	m.announce(ctx)
}

// announce runs a presence broadcast and converts each failed push into the
// normal teardown for that connection. The recursion terminates because a
// connection can only fail and be closed once.
func (m *Lifecycle) announce(ctx context.Context) {
	for _, failed := range m.presence.Announce(ctx) {
		m.log.Warn("treating failed presence push as implicit disconnect",
			"connection_id", failed.ID,
			"user_id", failed.UserID())
		m.Close(ctx, failed)
	}
}

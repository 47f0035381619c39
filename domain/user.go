// Package domain contains core concepts of the chat system.
// This file defines user identity as seen by the delivery layer.
// No runtime, network, or UI logic should be added here.
package domain

// UserID is the opaque, stable identifier of an authenticated user.
// It is issued by the auth layer and never changes for the lifetime
// of a connection.
type UserID string

func (id UserID) String() string {
	return string(id)
}

package domain

import (
	"time"

	"github.com/google/uuid"
)

// Message represents an immutable one-to-one chat message.
// It is constructed once by the service layer, persisted, and then
// handed to the dispatcher for live delivery. Nothing mutates it afterwards.
type Message struct {
	ID          uuid.UUID // unique identifier
	SenderID    UserID
	RecipientID UserID
	Content     string
	CreatedAt   time.Time
}

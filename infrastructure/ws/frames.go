package ws

import (
	"encoding/json"
	"fmt"
	"time"

	"chat-relay/domain"
	"chat-relay/domain/event"

	"github.com/samber/lo"
)

// Wire frames pushed to clients. Two shapes only: the full presence set and
// a delivered message.

type presenceFrame struct {
	Type  string   `json:"type"`
	Users []string `json:"users"`
}

type messageFrame struct {
	Type    string         `json:"type"`
	Payload messagePayload `json:"payload"`
}

type messagePayload struct {
	ID          string    `json:"id"`
	SenderID    string    `json:"senderId"`
	RecipientID string    `json:"recipientId"`
	Content     string    `json:"content"`
	CreatedAt   time.Time `json:"createdAt"`
}

// encodeFrame turns a domain event into its wire representation.
func encodeFrame(e event.DomainEvent) ([]byte, error) {
	switch evt := e.(type) {
	case event.PresenceUpdated:
		return json.Marshal(presenceFrame{
			Type:  "presence",
			Users: lo.Map(evt.Users, func(id domain.UserID, _ int) string { return id.String() }),
		})
	case event.MessageDelivered:
		return json.Marshal(messageFrame{
			Type: "message",
			Payload: messagePayload{
				ID:          evt.Message.ID.String(),
				SenderID:    evt.Message.SenderID.String(),
				RecipientID: evt.Message.RecipientID.String(),
				Content:     evt.Message.Content,
				CreatedAt:   evt.Message.CreatedAt,
			},
		})
	default:
		return nil, fmt.Errorf("no wire encoding for event %T", e)
	}
}

package services

import (
	"chat-relay/domain"
	"chat-relay/errors"
	"chat-relay/repositories"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MessageDispatcher is the live-delivery collaborator. Implemented by the
// realtime dispatcher; delivery is best effort, persistence is the source
// of truth.
type MessageDispatcher interface {
	Dispatch(ctx context.Context, msg domain.Message)
}

// PresenceSource exposes the current online-user set.
type PresenceSource interface {
	OnlineUsers() []domain.UserID
}

type SendMessageCommand struct {
	SenderID    domain.UserID
	RecipientID domain.UserID
	Content     string
}

type IChatService interface {
	SendMessage(ctx context.Context, cmd SendMessageCommand) (domain.Message, error)
	GetConversation(a, b domain.UserID, cursor *string) ([]domain.Message, *string, error)
	OnlineUsers() []domain.UserID
}

type ChatService struct {
	messages         repositories.IMessageRepository
	dispatcher       MessageDispatcher
	presence         PresenceSource
	maxContentLength int
}

func NewChatService(messages repositories.IMessageRepository, dispatcher MessageDispatcher,
	presence PresenceSource, maxContentLength int) *ChatService {
	return &ChatService{
		messages:         messages,
		dispatcher:       dispatcher,
		presence:         presence,
		maxContentLength: maxContentLength,
	}
}

// SendMessage validates and persists a message, then hands the stored record
// to the dispatcher. The message is durable before any live push happens, so
// a delivery failure never loses it.
func (s *ChatService) SendMessage(ctx context.Context, cmd SendMessageCommand) (domain.Message, error) {
	content := strings.TrimSpace(cmd.Content)
	if content == "" {
		return domain.Message{}, errors.ErrEmptyContent
	}
	if len(content) > s.maxContentLength {
		return domain.Message{}, fmt.Errorf("%w: %d characters over the %d limit",
			errors.ErrContentTooLong, len(content)-s.maxContentLength, s.maxContentLength)
	}

	message := domain.Message{
		ID:          uuid.New(),
		SenderID:    cmd.SenderID,
		RecipientID: cmd.RecipientID,
		Content:     content,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.messages.StoreMessage(message); err != nil {
		return domain.Message{}, fmt.Errorf("storing message: %w", err)
	}

	s.dispatcher.Dispatch(ctx, message)
	return message, nil
}

func (s *ChatService) GetConversation(a, b domain.UserID, cursor *string) ([]domain.Message, *string, error) {
	return s.messages.GetConversation(a, b, cursor)
}

func (s *ChatService) OnlineUsers() []domain.UserID {
	return s.presence.OnlineUsers()
}

// Package http is the REST edge: account creation, login, message
// creation and history, and the initial presence snapshot. Live delivery
// happens on the websocket route, not here.
package http

import (
	"log/slog"
	"net/http"

	"chat-relay/auth"
	"chat-relay/domain"
	"chat-relay/errors"
	"chat-relay/services"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
)

type Handlers struct {
	log  *slog.Logger
	auth services.IAuthService
	chat services.IChatService
}

func NewHandlers(log *slog.Logger, authService services.IAuthService, chatService services.IChatService) *Handlers {
	return &Handlers{log: log, auth: authService, chat: chatService}
}

type credentialsRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type sendMessageRequest struct {
	RecipientID string `json:"recipientId" binding:"required"`
	Content     string `json:"content" binding:"required"`
}

func (h *Handlers) Register(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
		return
	}

	token, err := h.auth.Register(req.Email, req.Password)
	if err != nil {
		h.log.Info("registration rejected", "email", req.Email, "error", err)
		c.JSON(errors.MapToHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"token": token})
}

func (h *Handlers) Login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
		return
	}

	token, err := h.auth.Login(req.Email, req.Password)
	if err != nil {
		c.JSON(errors.MapToHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	// The browser client authenticates the websocket handshake with this cookie
	c.SetCookie("jwt", string(token), 24*60*60, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"token": token})
}

func (h *Handlers) SendMessage(c *gin.Context) {
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "recipientId and content are required"})
		return
	}

	message, err := h.chat.SendMessage(c.Request.Context(), services.SendMessageCommand{
		SenderID:    domain.UserID(auth.CallerID(c)),
		RecipientID: domain.UserID(req.RecipientID),
		Content:     req.Content,
	})
	if err != nil {
		c.JSON(errors.MapToHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":          message.ID,
		"senderId":    message.SenderID,
		"recipientId": message.RecipientID,
		"content":     message.Content,
		"createdAt":   message.CreatedAt,
	})
}

func (h *Handlers) GetConversation(c *gin.Context) {
	caller := domain.UserID(auth.CallerID(c))
	other := domain.UserID(c.Param("user"))

	var cursor *string
	if raw := c.Query("cursor"); raw != "" {
		cursor = &raw
	}

	messages, nextCursor, err := h.chat.GetConversation(caller, other, cursor)
	if err != nil {
		c.JSON(errors.MapToHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"messages": lo.Map(messages, func(m domain.Message, _ int) gin.H {
			return gin.H{
				"id":          m.ID,
				"senderId":    m.SenderID,
				"recipientId": m.RecipientID,
				"content":     m.Content,
				"createdAt":   m.CreatedAt,
			}
		}),
		"cursor": nextCursor,
	})
}

func (h *Handlers) OnlineUsers(c *gin.Context) {
	users := h.chat.OnlineUsers()
	c.JSON(http.StatusOK, gin.H{
		"users": lo.Map(users, func(id domain.UserID, _ int) string { return id.String() }),
	})
}

func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

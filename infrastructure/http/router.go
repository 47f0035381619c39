package http

import (
	"log/slog"

	"chat-relay/auth"
	"chat-relay/infrastructure/ws"

	"github.com/gin-gonic/gin"
)

// NewRouter mounts the REST edge and the websocket route. The auth routes
// and the websocket handshake are public; the websocket route authenticates
// inside the handshake itself, everything else sits behind the JWT middleware.
func NewRouter(log *slog.Logger, handlers *Handlers, wsHandler *ws.Handler, tokens auth.TokenManager) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/api/health", handlers.Health)
	router.POST("/api/auth/register", handlers.Register)
	router.POST("/api/auth/login", handlers.Login)
	router.GET("/ws", wsHandler.Serve)

	authorized := router.Group("/api", auth.Middleware(tokens))
	{
		authorized.POST("/messages", handlers.SendMessage)
		authorized.GET("/messages/:user", handlers.GetConversation)
		authorized.GET("/presence/online", handlers.OnlineUsers)
	}

	return router
}

package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Context keys under which the middleware stores the caller's identity.
const (
	UserIDKey = "user_id"
	RolesKey  = "roles"
)

// Middleware handles JWT validation for incoming HTTP calls. Routes mounted
// behind it can read the caller's identity from the gin context; everything
// else is rejected before reaching a handler.
func Middleware(tokens TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. Retrieve and validate the Authorization header
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization token is missing"})
			return
		}

		// 2. Validate the JWT and extract claims
		claims, err := tokens.Validate(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		// 3. Inject user identity into the request context for handlers
		c.Set(UserIDKey, claims.UserID)
		c.Set(RolesKey, claims.Roles)
		c.Next()
	}
}

// CallerID reads the authenticated user id stored by Middleware.
func CallerID(c *gin.Context) string {
	return c.GetString(UserIDKey)
}

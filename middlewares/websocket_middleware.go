package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// WebSocketAuthMiddleware reads the token from ?token= since browsers cannot
// set headers on a websocket handshake. A Bearer header is accepted too.
func WebSocketAuthMiddleware(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			token = strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		}
		if token == "" {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		claims, err := auth.Authenticate(token)
		if err != nil {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		c.Set(SubjectKey, claims.Subject)
		c.Set(RoleKey, claims.Role)
		c.Next()
	}
}

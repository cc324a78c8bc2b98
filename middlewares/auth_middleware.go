package middlewares

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/gourmet-house/utils"
)

const (
	SubjectKey = "subject"
	RoleKey    = "role"
)

type Authenticator interface {
	Authenticate(token string) (*utils.CustomClaims, error)
}

func AuthMiddleware(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("Authorization header missing"))
			c.Abort()
			return
		}

		tokenString, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("Invalid authorization format"))
			c.Abort()
			return
		}

		claims, err := auth.Authenticate(strings.TrimSpace(tokenString))
		if err != nil {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("Invalid or expired token"))
			c.Abort()
			return
		}

		c.Set(SubjectKey, claims.Subject)
		c.Set(RoleKey, claims.Role)
		c.Next()
	}
}

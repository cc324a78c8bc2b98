package middlewares

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/gourmet-house/utils"
)

// RoleCheck must run after one of the auth middlewares.
func RoleCheck(required string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRole, exists := c.Get(RoleKey)
		if !exists {
			utils.RespondError(c, http.StatusUnauthorized, fmt.Errorf("unauthorized"))
			c.Abort()
			return
		}

		if userRole != required {
			utils.RespondError(c, http.StatusForbidden, fmt.Errorf("%s access required", required))
			c.Abort()
			return
		}

		c.Next()
	}
}

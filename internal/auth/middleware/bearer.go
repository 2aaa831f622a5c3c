package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sentinel-red/sentinel-backend/internal/auth"
)

// BearerToken copies the Authorization bearer token into the context
// without enforcing it.
func BearerToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := extractToken(c); token != "" {
			c.Set(auth.CtxToken, token)
		}
		c.Next()
	}
}

// extractToken extracts the Bearer token from the Authorization header
func extractToken(c *gin.Context) string {
	bearerToken := c.GetHeader("Authorization")
	if len(bearerToken) > 7 && strings.HasPrefix(bearerToken, "Bearer ") {
		return strings.TrimSpace(bearerToken[7:])
	}
	return ""
}

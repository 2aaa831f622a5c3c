package auth

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const CtxToken = "auth_token"

// Token returns the bearer token placed by middleware.BearerToken.
func Token(c *gin.Context) string {
	return strings.TrimSpace(c.GetString(CtxToken))
}

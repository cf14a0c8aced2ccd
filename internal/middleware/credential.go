package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/pageza/ai-recipe-generator/backend/internal/service"
)

// CredentialChecker reports whether an API key is available
type CredentialChecker interface {
	Configured() bool
}

// RequireCredential rejects model-backed requests while no API key is set
func RequireCredential(creds CredentialChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !creds.Configured() {
			_ = c.Error(&service.GenerationError{Kind: service.ErrNotConfigured})
			c.Abort()
			return
		}
		c.Next()
	}
}

package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/pageza/ai-recipe-generator/backend/internal/session"
)

const sessionContextKey = "session"

// SessionLookup resolves a session id
type SessionLookup interface {
	Get(id string) (*session.Session, bool)
}

// LoadSession resolves the :id path parameter to a session and stores it in
// the request context
func LoadSession(lookup SessionLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := lookup.Get(c.Param("id"))
		if !ok {
			_ = c.Error(session.ErrNotFound)
			c.Abort()
			return
		}
		c.Set(sessionContextKey, s)
		c.Next()
	}
}

// CurrentSession returns the session stored by LoadSession
func CurrentSession(c *gin.Context) *session.Session {
	v, ok := c.Get(sessionContextKey)
	if !ok {
		return nil
	}
	s, _ := v.(*session.Session)
	return s
}

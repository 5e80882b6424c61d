package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/spendwise-platform/internal/platform/identity"
)

// SubjectKey is the key used to store the authenticated subject in the context
const SubjectKey = "auth_subject"

// Auth middleware resolves the external authenticated subject and stores it
// in the request context. It never rejects: an absent subject reaches the
// service layer as an empty string and fails there, so authorization
// decisions live in one place.
func Auth(provider identity.Provider) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(SubjectKey, provider.Subject(c.Request))
		c.Next()
	}
}

// GetSubject retrieves the authenticated subject from the gin context.
// Empty means no session.
func GetSubject(c *gin.Context) string {
	if v, exists := c.Get(SubjectKey); exists {
		if subject, ok := v.(string); ok {
			return subject
		}
	}
	return ""
}

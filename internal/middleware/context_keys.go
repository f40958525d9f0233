package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
)

// callerIDKey is the key used to store the authenticated caller's ID in the
// gin context.
const callerIDKey = contextKey("callerID")

// GetCallerIDFromContext retrieves the authenticated caller ID from the gin
// context. It returns the ID and a boolean indicating if it was found.
func GetCallerIDFromContext(c *gin.Context) (string, bool) {
	callerVal, exists := c.Get(string(callerIDKey))
	if !exists {
		if v := c.Request.Context().Value(callerIDKey); v != nil {
			if s, ok := v.(string); ok {
				return s, true
			}
		}
		return "", false
	}

	callerID, ok := callerVal.(string)
	if !ok {
		return "", false
	}
	return callerID, true
}

// GetCallerIDFromCtx retrieves the authenticated caller ID from a standard
// context, for code paths that only carry a context.Context.
func GetCallerIDFromCtx(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	if s, ok := ctx.Value(callerIDKey).(string); ok && s != "" {
		return s, true
	}
	return "", false
}

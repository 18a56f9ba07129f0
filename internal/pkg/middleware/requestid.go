// Package middleware provides gin middleware for the SecondBrain service.
package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/secondbrain-io/secondbrain/internal/pkg/httputils"
)

// RequestID attaches a unique request ID to every request. An incoming
// X-Request-ID header is honored so callers can correlate across services.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(httputils.RequestIDKey)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(httputils.RequestIDKey, id)
		c.Writer.Header().Set(httputils.RequestIDKey, id)
		c.Next()
	}
}

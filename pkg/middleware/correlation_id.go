package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/richxcame/fraud-registry/pkg/logger"
)

const (
	// CorrelationIDHeader carries the request id in and out
	CorrelationIDHeader = "X-Request-ID"
	// CorrelationIDKey is the gin context key of the request id
	CorrelationIDKey = "correlation_id"

	maxCorrelationIDLength = 128
)

// CorrelationID reuses a caller-supplied request id when it is safe to log,
// otherwise it issues a new one. The id is exposed to services through the
// request context.
func CorrelationID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(CorrelationIDHeader)
		if !validCorrelationID(id) {
			id = uuid.New().String()
		}

		c.Set(CorrelationIDKey, id)
		c.Request = c.Request.WithContext(logger.ContextWithCorrelationID(c.Request.Context(), id))
		c.Writer.Header().Set(CorrelationIDHeader, id)

		c.Next()
	}
}

// GetCorrelationID returns the request id set by CorrelationID
func GetCorrelationID(c *gin.Context) string {
	return c.GetString(CorrelationIDKey)
}

// validCorrelationID accepts short printable ASCII ids without spaces
func validCorrelationID(id string) bool {
	if id == "" || len(id) > maxCorrelationIDLength {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] <= ' ' || id[i] > '~' {
			return false
		}
	}
	return true
}

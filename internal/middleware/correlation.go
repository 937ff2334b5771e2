package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// CorrelationIDHeader carries the correlation id in requests and responses.
	CorrelationIDHeader = "X-Correlation-ID"
	// CorrelationIDKey is the gin context key holding the correlation id.
	CorrelationIDKey = "correlation_id"
)

// CorrelationID reuses the caller's X-Correlation-ID or generates a new one,
// stores it in the context and echoes it on the response.
func CorrelationID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(CorrelationIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(CorrelationIDKey, id)
		c.Header(CorrelationIDHeader, id)
		c.Next()
	}
}

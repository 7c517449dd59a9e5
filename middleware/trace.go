package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// TraceIDKey is the gin context key the trace id is stored under.
	TraceIDKey = "trace_id"
	// TraceIDHeader carries the trace id in and out of the service.
	TraceIDHeader = "X-Trace-ID"
)

// TraceID tags every request with a trace id, reusing the caller's
// when one is presented, and echoes it on the response.
func TraceID() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := c.GetHeader(TraceIDHeader)
		if traceID == "" {
			traceID = uuid.NewString()
		}
		c.Set(TraceIDKey, traceID)
		c.Header(TraceIDHeader, traceID)
		c.Next()
	}
}

// GetTraceID returns the request's trace id, or "" when the
// middleware did not run.
func GetTraceID(c *gin.Context) string {
	return c.GetString(TraceIDKey)
}

// Package middleware holds the gin middleware shared by the HTTP binaries.
package middleware

import (
	"context"
	"strings"

	"coderun/pkg/utils/contextkey"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	TraceIDHeader   = "X-Trace-Id"
	RequestIDHeader = "X-Request-Id"

	traceIDContextKey   = "trace_id"
	requestIDContextKey = "request_id"
)

// TraceContext makes sure every request carries a trace id and a request id,
// both in the gin context and in the request context used for logging.
// Incoming headers are honoured; missing ones are generated.
func TraceContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := headerOrUUID(c, TraceIDHeader)
		requestID := headerOrUUID(c, RequestIDHeader)

		c.Set(traceIDContextKey, traceID)
		c.Set(requestIDContextKey, requestID)

		ctx := context.WithValue(c.Request.Context(), contextkey.TraceID, traceID)
		ctx = context.WithValue(ctx, contextkey.RequestID, requestID)
		c.Request = c.Request.WithContext(ctx)

		c.Writer.Header().Set(TraceIDHeader, traceID)
		c.Writer.Header().Set(RequestIDHeader, requestID)
		c.Next()
	}
}

func headerOrUUID(c *gin.Context, header string) string {
	if v := strings.TrimSpace(c.GetHeader(header)); v != "" {
		return v
	}
	return uuid.NewString()
}

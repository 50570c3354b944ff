// Package middleware provides the cross-cutting Gin middleware of the bridge.
package middleware

import (
	"context"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/hearthware/ovenlink/internal/infrastructure/monitoring"
	"github.com/hearthware/ovenlink/pkg/constants"
)

// RequestID assigns every request a correlation id, honoring one supplied by
// the caller, and exposes it on the response and the request context.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}

		ctx := context.WithValue(c.Request.Context(), constants.ContextKeyRequestID, requestID)
		c.Request = c.Request.WithContext(ctx)
		c.Set(string(constants.ContextKeyRequestID), requestID)
		c.Header("X-Request-ID", requestID)

		c.Next()
	}
}

// RequestDeadline bounds each request with a context deadline. Routes matching
// an exempt suffix stay unbounded; the server's write timeout must then be
// zero, or long-lived responses on those routes get severed mid-stream.
func RequestDeadline(timeout time.Duration, exemptSuffixes ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, suffix := range exemptSuffixes {
			if strings.HasSuffix(c.FullPath(), suffix) {
				c.Next()
				return
			}
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// Observability wraps each request in a trace span and records the request
// counter and latency histogram. Metric labels use the route template, not
// the raw path, to keep cardinality bounded.
func Observability(tracer trace.Tracer, metrics *monitoring.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		ctx, span := tracer.Start(c.Request.Context(), c.Request.Method+" "+c.FullPath())
		defer span.End()
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "not_found"
		}
		metrics.RecordHTTPRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))

		span.SetAttributes(
			attribute.String("http.method", c.Request.Method),
			attribute.String("http.path", path),
			attribute.Int("http.status_code", c.Writer.Status()),
		)
	}
}

// Package middleware provides HTTP middleware for the console API.
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracingConfig holds configuration for the tracing middleware.
type TracingConfig struct {
	// ServiceName is the name of the service for trace identification.
	ServiceName string
	// Enabled controls whether tracing is active.
	Enabled bool
	// TracerProvider overrides the global provider when set.
	TracerProvider trace.TracerProvider
}

// DefaultTracingConfig returns default tracing configuration.
func DefaultTracingConfig() TracingConfig {
	return TracingConfig{
		ServiceName: "storefront-console",
		Enabled:     true,
	}
}

// TracingWithConfig returns the otelgin middleware followed by span enrichment.
//
// The span name follows the format "METHOD route_pattern" (e.g. "GET /api/v1/orders/:id").
// Responses with status 400 and above are marked with codes.Error.
func TracingWithConfig(cfg TracingConfig) []gin.HandlerFunc {
	if !cfg.Enabled {
		return []gin.HandlerFunc{func(c *gin.Context) { c.Next() }}
	}

	var opts []otelgin.Option
	if cfg.TracerProvider != nil {
		opts = append(opts, otelgin.WithTracerProvider(cfg.TracerProvider))
	}

	return []gin.HandlerFunc{
		otelgin.Middleware(cfg.ServiceName, opts...),
		spanEnricher(),
	}
}

// spanEnricher runs inside the otelgin span so the attributes land before it ends.
func spanEnricher() gin.HandlerFunc {
	return func(c *gin.Context) {
		span := trace.SpanFromContext(c.Request.Context())
		if !span.IsRecording() {
			c.Next()
			return
		}

		if requestID := GetRequestID(c); requestID != "" {
			span.SetAttributes(attribute.String("request_id", requestID))
		}

		c.Next()

		status := c.Writer.Status()
		if status < http.StatusBadRequest {
			return
		}
		span.SetAttributes(attribute.Int("http.status_code", status))
		switch {
		case status >= http.StatusInternalServerError:
			span.SetStatus(codes.Error, "Internal Server Error")
		case status == http.StatusNotFound:
			span.SetStatus(codes.Error, "Not Found")
		case status == http.StatusUnprocessableEntity:
			span.SetStatus(codes.Error, "Rejected")
		default:
			span.SetStatus(codes.Error, "Client Error")
		}
	}
}

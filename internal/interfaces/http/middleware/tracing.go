// Package middleware provides the gin middleware chain for the job board API.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Span attributes set by the HTTP layer
const (
	AttrRequestID       = "request_id"
	AttrAccountID       = "account_id"
	AttrCallbackGateway = "payment.gateway"
	AttrCallbackChannel = "payment.channel"
	// AttrStatusText survives otelgin resetting the status description on 5xx
	AttrStatusText = "http.response.status_text"
)

// TracingConfig holds configuration for the tracing middleware.
type TracingConfig struct {
	ServiceName string
	Enabled     bool
	// SkipPaths are served without a span, for probes hit every few seconds
	SkipPaths []string
}

func DefaultTracingConfig() TracingConfig {
	return TracingConfig{
		ServiceName: "jobboard-backend",
		Enabled:     true,
		SkipPaths:   []string{"/health"},
	}
}

// Tracing returns the tracing chain: an otelgin span per request named
// "METHOD route", followed by SpanStatus. It returns nothing when disabled.
func Tracing(cfg TracingConfig) []gin.HandlerFunc {
	if !cfg.Enabled {
		return nil
	}
	skip := make(map[string]bool, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = true
	}
	return []gin.HandlerFunc{
		otelgin.Middleware(cfg.ServiceName, otelgin.WithFilter(func(r *http.Request) bool {
			return !skip[r.URL.Path]
		})),
		SpanStatus(),
	}
}

// SpanStatus tags gateway callback spans with their gateway and channel,
// and marks the span failed for 4xx and 5xx responses.
func SpanStatus() gin.HandlerFunc {
	return func(c *gin.Context) {
		span := trace.SpanFromContext(c.Request.Context())
		if gateway, channel, ok := callbackRoute(c.Request.URL.Path); ok && span.IsRecording() {
			span.SetAttributes(
				attribute.String(AttrCallbackGateway, gateway),
				attribute.String(AttrCallbackChannel, channel),
			)
		}

		c.Next()

		status := c.Writer.Status()
		if status < http.StatusBadRequest || !span.IsRecording() {
			return
		}
		text := statusDescription(status)
		span.SetStatus(codes.Error, text)
		span.SetAttributes(
			attribute.Int("http.status_code", status),
			attribute.String(AttrStatusText, text),
		)
	}
}

// callbackRoute splits /payment/<gateway>/<channel>
func callbackRoute(path string) (gateway, channel string, ok bool) {
	rest, found := strings.CutPrefix(path, "/payment/")
	if !found {
		return "", "", false
	}
	gateway, channel, ok = strings.Cut(rest, "/")
	return gateway, channel, ok && gateway != "" && channel != ""
}

func statusDescription(status int) string {
	switch {
	case status >= http.StatusInternalServerError:
		return "Internal Server Error"
	case status == http.StatusUnauthorized, status == http.StatusNotFound:
		return http.StatusText(status)
	default:
		return "Client Error"
	}
}

// TracingAttributeInjector copies the request and account IDs onto the
// current span. Place it after both the tracing and JWT middleware.
func TracingAttributeInjector() gin.HandlerFunc {
	return func(c *gin.Context) {
		if span := trace.SpanFromContext(c.Request.Context()); span.IsRecording() {
			if id := RequestIDOf(c); id != "" {
				span.SetAttributes(attribute.String(AttrRequestID, id))
			}
			if id := GetJWTAccountID(c); id != "" {
				span.SetAttributes(attribute.String(AttrAccountID, id))
			}
		}
		c.Next()
	}
}

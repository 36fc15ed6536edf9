package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jobboard/backend/internal/infrastructure/telemetry"
)

var profilingSkipPrefixes = []string{"/health", "/swagger"}

// Profiling tags CPU samples taken while a request is handled with its
// method and route pattern, so a slow IPN route can be told apart from the
// API in Pyroscope. Unmatched routes, health checks and docs are left unlabeled.
func Profiling() gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" || hasAnyPrefix(route, profilingSkipPrefixes) {
			c.Next()
			return
		}
		telemetry.WithProfilingLabels(c.Request.Context(), map[string]string{
			telemetry.ProfilingLabelMethod: c.Request.Method,
			telemetry.ProfilingLabelRoute:  route,
		}, func(ctx context.Context) {
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		})
	}
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

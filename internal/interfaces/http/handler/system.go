package handler

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jobboard/backend/internal/interfaces/http/dto"
)

// Pinger reports whether a backing service is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// SystemHandler serves the health probe
type SystemHandler struct {
	BaseHandler
	checks    map[string]Pinger
	startTime time.Time
	timeout   time.Duration
}

// NewSystemHandler creates a SystemHandler probing the named dependencies
func NewSystemHandler(checks map[string]Pinger) *SystemHandler {
	return &SystemHandler{
		checks:    checks,
		startTime: time.Now(),
		timeout:   2 * time.Second,
	}
}

// HealthResponse is the body of GET /health
type HealthResponse struct {
	Status    string            `json:"status"`
	Checks    map[string]string `json:"checks"`
	GoVersion string            `json:"go_version"`
	Uptime    string            `json:"uptime"`
}

// Health pings every dependency and answers 503 if any is down
func (h *SystemHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	resp := HealthResponse{
		Status:    "healthy",
		Checks:    make(map[string]string, len(h.checks)),
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	}
	status := http.StatusOK
	for name, check := range h.checks {
		if err := check.Ping(ctx); err != nil {
			resp.Checks[name] = "unhealthy: " + err.Error()
			resp.Status = "unhealthy"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[name] = "healthy"
	}

	c.JSON(status, dto.Response{Success: status == http.StatusOK, Data: resp})
}

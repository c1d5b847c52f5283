package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

const readinessTimeout = 3 * time.Second

// Pinger is any dependency that can report its connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Dependency names a pinger in the readiness report.
type Dependency struct {
	Name   string
	Pinger Pinger
}

// HealthHandler serves GET /health (liveness) and GET /health/ready
// (readiness). Readiness pings every registered dependency.
type HealthHandler struct {
	deps []Dependency
}

func NewHealthHandler(deps ...Dependency) *HealthHandler {
	return &HealthHandler{deps: deps}
}

// Liveness returns 200 as long as the process can serve requests.
func (h *HealthHandler) Liveness(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}

type dependencyStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type readinessResponse struct {
	Status       string                      `json:"status"`
	Dependencies map[string]dependencyStatus `json:"dependencies"`
}

func (h *HealthHandler) Readiness(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), readinessTimeout)
	defer cancel()

	deps := make(map[string]dependencyStatus, len(h.deps))
	healthy := true

	for _, d := range h.deps {
		if err := d.Pinger.Ping(ctx); err != nil {
			deps[d.Name] = dependencyStatus{Status: "unhealthy", Error: err.Error()}
			healthy = false
			continue
		}
		deps[d.Name] = dependencyStatus{Status: "ok"}
	}

	status := "ok"
	httpStatus := http.StatusOK
	if !healthy {
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable
	}

	return c.JSON(httpStatus, readinessResponse{
		Status:       status,
		Dependencies: deps,
	})
}

package handlers

import (
	"context"
	"net/http"
	"slices"

	"github.com/labstack/echo/v4"
)

// Pinger is a dependency whose reachability gates readiness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// StatusResponse is the body of the probe endpoints.
type StatusResponse struct {
	Status  string `json:"status"            example:"ok"`
	Failing string `json:"failing,omitempty" example:"database"`
}

// HealthHandler provides health and readiness endpoints.
type HealthHandler struct {
	names  []string
	checks map[string]Pinger
}

// NewHealthHandler creates a HealthHandler. Nil checks are ignored, so a
// server without a database or cache is always ready.
func NewHealthHandler(checks map[string]Pinger) *HealthHandler {
	h := &HealthHandler{checks: make(map[string]Pinger, len(checks))}
	for name, p := range checks {
		if p != nil {
			h.checks[name] = p
			h.names = append(h.names, name)
		}
	}
	slices.Sort(h.names)
	return h
}

// Healthz returns 200 while the process is running.
func (*HealthHandler) Healthz(c echo.Context) error {
	return c.JSON(http.StatusOK, StatusResponse{Status: "ok"})
}

// Readyz pings every dependency in name order and returns 503 naming the
// first that fails.
func (h *HealthHandler) Readyz(c echo.Context) error {
	for _, name := range h.names {
		if err := h.checks[name].Ping(c.Request().Context()); err != nil {
			return c.JSON(http.StatusServiceUnavailable, StatusResponse{Status: "unavailable", Failing: name})
		}
	}
	return c.JSON(http.StatusOK, StatusResponse{Status: "ready"})
}

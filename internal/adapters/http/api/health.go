// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
)

// HealthDependencies defines the interface for availability checks.
type HealthDependencies interface {
	Available(ctx context.Context) bool
}

// HealthHandler handles health check requests.
type HealthHandler struct {
	deps HealthDependencies
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(deps HealthDependencies) *HealthHandler {
	return &HealthHandler{deps: deps}
}

type healthResponse struct {
	Available bool `json:"available"`
}

// HandleHealth handles GET /healthz requests. Reports 200 when the
// service can accept submissions, 503 when the durable store is down.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	available := h.deps.Available(r.Context())
	status := http.StatusOK
	if !available {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, healthResponse{Available: available})
}

package api

import (
	"net/http"
	"time"

	"github.com/yourdailydose/dailydose/internal/scheduler"
)

type healthResponse struct {
	Status     string                               `json:"status"`
	Components map[string]scheduler.ComponentReport `json:"components,omitempty"`
	Timestamp  time.Time                            `json:"timestamp"`
}

// Health reports overall service health from the scheduler's tracker.
func (h *handlers) Health(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
	}

	status := http.StatusOK
	if h.health != nil {
		overall, components := h.health.Report()
		resp.Components = components
		if !overall {
			resp.Status = "degraded"
			status = http.StatusServiceUnavailable
		}
	}

	respondJSON(w, status, resp)
}

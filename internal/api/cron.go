package api

import (
	"net/http"
	"time"
)

type cronStats struct {
	Total       int     `json:"total_subscribers"`
	Success     int     `json:"success_count"`
	Failed      int     `json:"failure_count"`
	SuccessRate float64 `json:"success_rate"`
}

type cronResponse struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	Stats     cronStats `json:"stats"`
	Timestamp time.Time `json:"timestamp"`
}

// RunDailyQuotes runs a full delivery sweep on demand. External cron
// services hit this instead of waiting for the in-process ticker.
func (h *handlers) RunDailyQuotes(w http.ResponseWriter, r *http.Request) {
	summary := h.dispatcher.Sweep(r.Context())

	respondJSON(w, http.StatusOK, cronResponse{
		Success: true,
		Message: "daily quotes sent",
		Stats: cronStats{
			Total:       summary.Total,
			Success:     summary.Success,
			Failed:      summary.Failed,
			SuccessRate: summary.SuccessRate(),
		},
		Timestamp: time.Now().UTC(),
	})
}

package scheduler

import (
	"sync"
	"time"
)

// ComponentStatus is the recorded health of one component.
type ComponentStatus struct {
	Healthy     bool
	LastCheck   time.Time
	LastSuccess time.Time
	LastError   error
	Message     string
}

// Health tracks the health of the service's components: the delivery
// senders, the database and the sweep loop itself.
type Health struct {
	mu         sync.RWMutex
	components map[string]*ComponentStatus
}

// NewHealth creates a new health tracker.
func NewHealth() *Health {
	return &Health{
		components: make(map[string]*ComponentStatus),
	}
}

// SetHealthy marks a component as healthy.
func (h *Health) SetHealthy(component, message string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	now := time.Now()
	status, exists := h.components[component]
	if !exists {
		status = &ComponentStatus{}
		h.components[component] = status
	}

	status.Healthy = true
	status.LastCheck = now
	status.LastSuccess = now
	status.LastError = nil
	status.Message = message
}

// SetUnhealthy marks a component as unhealthy.
func (h *Health) SetUnhealthy(component string, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	now := time.Now()
	status, exists := h.components[component]
	if !exists {
		status = &ComponentStatus{}
		h.components[component] = status
	}

	status.Healthy = false
	status.LastCheck = now
	status.LastError = err
	status.Message = err.Error()
}

// GetStatus returns a copy of the component's status, or nil if the
// component has never reported.
func (h *Health) GetStatus(component string) *ComponentStatus {
	h.mu.RLock()
	defer h.mu.RUnlock()

	status, exists := h.components[component]
	if !exists {
		return nil
	}
	copied := *status
	return &copied
}

// GetAllStatuses returns copies of every component status.
func (h *Health) GetAllStatuses() map[string]*ComponentStatus {
	h.mu.RLock()
	defer h.mu.RUnlock()

	result := make(map[string]*ComponentStatus, len(h.components))
	for name, status := range h.components {
		copied := *status
		result[name] = &copied
	}
	return result
}

// IsOverallHealthy returns true if every reporting component is
// healthy.
func (h *Health) IsOverallHealthy() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, status := range h.components {
		if !status.Healthy {
			return false
		}
	}
	return true
}

// ComponentReport is the JSON-friendly view of a component status
// served by the health endpoint.
type ComponentReport struct {
	Healthy     bool      `json:"healthy"`
	Message     string    `json:"message,omitempty"`
	LastCheck   time.Time `json:"last_check"`
	LastSuccess time.Time `json:"last_success,omitempty"`
}

// Report returns the overall flag plus per-component reports for the
// health endpoint.
func (h *Health) Report() (bool, map[string]ComponentReport) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	overall := true
	components := make(map[string]ComponentReport, len(h.components))
	for name, status := range h.components {
		if !status.Healthy {
			overall = false
		}
		components[name] = ComponentReport{
			Healthy:     status.Healthy,
			Message:     status.Message,
			LastCheck:   status.LastCheck,
			LastSuccess: status.LastSuccess,
		}
	}
	return overall, components
}

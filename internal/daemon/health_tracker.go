package daemon

import (
	"sync"
	"time"

	"github.com/mozilla-ai/gqltz/internal/contracts"
	"github.com/mozilla-ai/gqltz/internal/domain"
)

var _ contracts.UpstreamHealthMonitor = (*HealthTracker)(nil)

// HealthTracker holds the latest health record of the upstream GraphQL server.
// NewHealthTracker should be used to create instances of HealthTracker.
type HealthTracker struct {
	mu     sync.RWMutex
	health domain.UpstreamHealth
}

// NewHealthTracker creates a HealthTracker for the upstream at url, starting in an unknown state.
func NewHealthTracker(url string) *HealthTracker {
	return &HealthTracker{
		health: domain.UpstreamHealth{URL: url, Status: domain.HealthStatusUnknown},
	}
}

// Status returns a copy of the current health record.
func (h *HealthTracker) Status() domain.UpstreamHealth {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.health
}

// Update records a health check for the upstream.
// The current time is recorded as LastChecked, and LastSuccessful is updated only if status is HealthStatusOK.
// Latency can be nil if the check failed or was not measured.
func (h *HealthTracker) Update(status domain.HealthStatus, latency *time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()

	now := time.Now().UTC()

	lastSuccessful := h.health.LastSuccessful
	if status == domain.HealthStatusOK {
		lastSuccessful = &now
	}

	var l *time.Duration
	if latency != nil {
		d := *latency
		l = &d
	}

	h.health = domain.UpstreamHealth{
		URL:            h.health.URL,
		Status:         status,
		Latency:        l,
		LastChecked:    &now,
		LastSuccessful: lastSuccessful,
	}
}

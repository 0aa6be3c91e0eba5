// Package contracts declares the interfaces shared between the daemon and the API handlers.
package contracts

import (
	"time"

	"github.com/mozilla-ai/gqltz/internal/datetime"
	"github.com/mozilla-ai/gqltz/internal/domain"
	"github.com/mozilla-ai/gqltz/internal/fields"
)

// UpstreamHealthMonitor provides a way to interact with the health status of the upstream GraphQL server.
type UpstreamHealthMonitor interface {
	// Status returns the most recent health record.
	Status() domain.UpstreamHealth

	// Update records a health check.
	Update(status domain.HealthStatus, latency *time.Duration)
}

// Normalizer converts the datetime fields of decoded payloads.
type Normalizer interface {
	// Registry returns the field classification used by the normalizer.
	Registry() *fields.Registry

	// Transform returns a normalized copy of node without modifying it.
	Transform(node any, direction datetime.Direction, loc *time.Location) (any, error)
}

package domain

import "time"

const (
	HealthStatusOK          HealthStatus = "ok"
	HealthStatusTimeout     HealthStatus = "timeout"
	HealthStatusUnreachable HealthStatus = "unreachable"
	HealthStatusUnknown     HealthStatus = "unknown"
)

// HealthStatus represents the internal state of the upstream GraphQL server's availability.
type HealthStatus string

// UpstreamHealth tracks the internal health state of the upstream GraphQL server.
type UpstreamHealth struct {
	URL            string
	Status         HealthStatus
	Latency        *time.Duration
	LastChecked    *time.Time
	LastSuccessful *time.Time
}

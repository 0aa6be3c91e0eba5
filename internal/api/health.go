package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/mozilla-ai/gqltz/internal/contracts"
	"github.com/mozilla-ai/gqltz/internal/domain"
)

const (
	HealthStatusOK          HealthStatus = "ok"
	HealthStatusTimeout     HealthStatus = "timeout"
	HealthStatusUnreachable HealthStatus = "unreachable"
	HealthStatusUnknown     HealthStatus = "unknown"
)

// DomainUpstreamHealth is a wrapper that allows receivers to be declared in the API package that deal with domain types.
type DomainUpstreamHealth domain.UpstreamHealth

// HealthStatus represents the current status of the upstream GraphQL server when establishing its health.
type HealthStatus string

// UpstreamHealth is used to provide information about the health checks performed against the upstream GraphQL server.
type UpstreamHealth struct {
	URL            string       `json:"url"`
	Status         HealthStatus `json:"status"`
	Latency        *string      `json:"latency,omitempty"`
	LastChecked    *time.Time   `json:"lastChecked,omitempty"`
	LastSuccessful *time.Time   `json:"lastSuccessful,omitempty"`
}

// UpstreamHealthResponse is the response for GET /health
type UpstreamHealthResponse struct {
	Body UpstreamHealth
}

// ToAPIType can be used to convert a wrapped domain type to an API-safe type.
func (d DomainUpstreamHealth) ToAPIType() (UpstreamHealth, error) {
	status, err := parseHealthStatus(d.Status)
	if err != nil {
		return UpstreamHealth{}, err
	}

	var latency *string
	if d.Latency != nil {
		s := d.Latency.String()
		latency = &s
	}
	return UpstreamHealth{
		URL:            d.URL,
		Status:         status,
		Latency:        latency,
		LastChecked:    d.LastChecked,
		LastSuccessful: d.LastSuccessful,
	}, nil
}

// RegisterHealthRoutes sets up health-related API endpoint routes.
func RegisterHealthRoutes(routerAPI huma.API, monitor contracts.UpstreamHealthMonitor, apiPathPrefix string) {
	healthAPI := huma.NewGroup(routerAPI, apiPathPrefix)
	tags := []string{"Health"}

	huma.Register(
		healthAPI,
		huma.Operation{
			OperationID: "getUpstreamHealth",
			Method:      http.MethodGet,
			Path:        "/upstream",
			Summary:     "Get the health status of the upstream GraphQL server",
			Tags:        tags,
		},
		func(ctx context.Context, _ *struct{}) (*UpstreamHealthResponse, error) {
			return handleHealthUpstream(monitor)
		},
	)
}

// handleHealthUpstream is the handler for retrieving the current health of the upstream GraphQL server.
func handleHealthUpstream(monitor contracts.UpstreamHealthMonitor) (*UpstreamHealthResponse, error) {
	data, err := DomainUpstreamHealth(monitor.Status()).ToAPIType()
	if err != nil {
		return nil, err
	}

	response := UpstreamHealthResponse{}
	response.Body = data

	return &response, nil
}

func parseHealthStatus(status domain.HealthStatus) (HealthStatus, error) {
	switch status {
	case domain.HealthStatusOK:
		return HealthStatusOK, nil
	case domain.HealthStatusTimeout:
		return HealthStatusTimeout, nil
	case domain.HealthStatusUnreachable:
		return HealthStatusUnreachable, nil
	case domain.HealthStatusUnknown:
		return HealthStatusUnknown, nil
	default:
		return "", fmt.Errorf("unknown health status: %s", status)
	}
}

package daemon

import (
	"fmt"
	"net/url"
	"reflect"

	"github.com/hashicorp/go-hclog"

	"github.com/mozilla-ai/gqltz/internal/contracts"
	"github.com/mozilla-ai/gqltz/internal/interceptor"
	"github.com/mozilla-ai/gqltz/internal/metrics"
)

// APIDependencies contains the required external dependencies for the API server.
// NewAPIDependencies should be used to create instances of APIDependencies.
type APIDependencies struct {
	// Addr specifies the network address to bind (e.g., "0.0.0.0:8090").
	Addr string

	// Upstream is the GraphQL endpoint that operations are proxied to.
	Upstream *url.URL

	// Interceptor normalizes the GraphQL traffic passing through the gateway.
	Interceptor *interceptor.Interceptor

	// Metrics are exposed on the metrics endpoint.
	Metrics *metrics.Metrics

	// HealthTracker monitors upstream health status.
	HealthTracker contracts.UpstreamHealthMonitor

	// Logger for API server operations.
	Logger hclog.Logger
}

// NewAPIDependencies creates and validates APIDependencies.
func NewAPIDependencies(
	logger hclog.Logger,
	i *interceptor.Interceptor,
	m *metrics.Metrics,
	healthTracker contracts.UpstreamHealthMonitor,
	upstream *url.URL,
	addr string,
) (APIDependencies, error) {
	deps := APIDependencies{
		Addr:          addr,
		Upstream:      upstream,
		Interceptor:   i,
		Metrics:       m,
		HealthTracker: healthTracker,
		Logger:        logger,
	}

	if err := deps.Validate(); err != nil {
		return APIDependencies{}, err
	}

	return deps, nil
}

// Validate ensures all required dependencies are provided and valid.
func (d APIDependencies) Validate() error {
	if err := validateAddr(d.Addr); err != nil {
		return fmt.Errorf("invalid API address '%s': %w", d.Addr, err)
	}
	if err := validateUpstream(d.Upstream); err != nil {
		return err
	}
	if d.Interceptor == nil {
		return fmt.Errorf("interceptor cannot be nil")
	}
	if d.Metrics == nil {
		return fmt.Errorf("metrics cannot be nil")
	}
	if d.HealthTracker == nil || reflect.ValueOf(d.HealthTracker).IsNil() {
		return fmt.Errorf("health tracker cannot be nil")
	}
	if d.Logger == nil || reflect.ValueOf(d.Logger).IsNil() {
		return fmt.Errorf("logger cannot be nil")
	}
	return nil
}

// validateUpstream checks that u is an absolute http or https URL.
func validateUpstream(u *url.URL) error {
	if u == nil {
		return fmt.Errorf("upstream URL cannot be nil")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("upstream URL '%s' must use http or https", u.Redacted())
	}
	if u.Host == "" {
		return fmt.Errorf("upstream URL '%s' is missing a host", u.Redacted())
	}
	return nil
}

package daemon

import (
	"fmt"
	"net/url"
	"reflect"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/mozilla-ai/gqltz/internal/fields"
)

// Dependencies contains required dependencies for the Daemon.
// NewDependencies should be used to create instances of Dependencies.
type Dependencies struct {
	// APIAddr specifies the network address for the APIServer to bind (e.g., "0.0.0.0:8090").
	APIAddr string

	// Upstream is the GraphQL endpoint operations are proxied to.
	Upstream *url.URL

	// Registry classifies the datetime fields that are normalized.
	Registry *fields.Registry

	// Logger for daemon and subcomponent (API server) operations.
	Logger hclog.Logger
}

// NewDependencies creates Dependencies, parsing the upstream endpoint.
func NewDependencies(
	logger hclog.Logger,
	apiAddr string,
	upstream string,
	registry *fields.Registry,
) (Dependencies, error) {
	upstream = strings.TrimSpace(upstream)
	if upstream == "" {
		return Dependencies{}, fmt.Errorf("upstream URL cannot be empty")
	}

	u, err := url.Parse(upstream)
	if err != nil {
		return Dependencies{}, fmt.Errorf("invalid upstream URL '%s': %w", upstream, err)
	}

	deps := Dependencies{
		APIAddr:  apiAddr,
		Upstream: u,
		Registry: registry,
		Logger:   logger,
	}

	if err := deps.Validate(); err != nil {
		return Dependencies{}, err
	}

	return deps, nil
}

// Validate ensures all required dependencies are provided and valid.
func (d Dependencies) Validate() error {
	if d.Logger == nil || reflect.ValueOf(d.Logger).IsNil() {
		return fmt.Errorf("logger cannot be nil")
	}

	if err := validateAddr(d.APIAddr); err != nil {
		return fmt.Errorf("invalid API address '%s': %w", d.APIAddr, err)
	}

	if err := validateUpstream(d.Upstream); err != nil {
		return err
	}

	if d.Registry == nil {
		return fmt.Errorf("field registry cannot be nil")
	}

	return nil
}

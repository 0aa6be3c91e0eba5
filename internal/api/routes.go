package api

import (
	"fmt"
	"net/url"
	"reflect"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/mozilla-ai/gqltz/internal/contracts"
)

// APIVersion is the version used in the OpenAPI spec and URL paths.
const APIVersion = "v1"

// RegisterRoutes registers all API routes on the provided Huma router.
// This is the single source of truth for the API route structure.
// Normalization requests that do not name a timezone are converted relative to fallback.
// Returns the API path prefix (e.g., "/api/v1") under which the routes are created.
func RegisterRoutes(
	router huma.API,
	monitor contracts.UpstreamHealthMonitor,
	normalizer contracts.Normalizer,
	fallback *time.Location,
) (string, error) {
	if router == nil || reflect.ValueOf(router).IsNil() {
		return "", fmt.Errorf("router cannot be nil")
	}
	if monitor == nil || reflect.ValueOf(monitor).IsNil() {
		return "", fmt.Errorf("health monitor cannot be nil")
	}
	if normalizer == nil || reflect.ValueOf(normalizer).IsNil() {
		return "", fmt.Errorf("normalizer cannot be nil")
	}

	// Extract API version from the router's OpenAPI spec.
	apiVersionID := router.OpenAPI().Info.Version

	// Safe way to ensure /api/{version}.
	apiPathPrefix, err := url.JoinPath("/api", apiVersionID)
	if err != nil {
		return "", fmt.Errorf("failed to construct API path prefix: %w", err)
	}

	// Group all routes under the /api/{version} prefix.
	versionedGroup := huma.NewGroup(router, apiPathPrefix)
	RegisterHealthRoutes(versionedGroup, monitor, "/health")
	RegisterFieldRoutes(versionedGroup, normalizer, "/fields")
	RegisterNormalizeRoutes(versionedGroup, normalizer, fallback, "/normalize")

	return apiPathPrefix, nil
}

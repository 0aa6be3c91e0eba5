//go:build docsgen_api
// +build docsgen_api

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hashicorp/go-hclog"

	"github.com/mozilla-ai/gqltz/internal/api"
	"github.com/mozilla-ai/gqltz/internal/domain"
	"github.com/mozilla-ai/gqltz/internal/fields"
	"github.com/mozilla-ai/gqltz/internal/normalize"
	"github.com/mozilla-ai/gqltz/internal/perms"
)

// stubHealthTracker provides a stub implementation for documentation generation.
type stubHealthTracker struct{}

func (s *stubHealthTracker) Status() domain.UpstreamHealth              { return domain.UpstreamHealth{} }
func (s *stubHealthTracker) Update(domain.HealthStatus, *time.Duration) {}

// main generates the OpenAPI specification for the gqltz management API.
// It assumes it is run from the repository root.
func main() {
	logger := hclog.New(&hclog.LoggerOptions{
		Name:   "gqltz.docsgen.api",
		Level:  hclog.Info,
		Output: os.Stderr,
	})

	// Output path for the OpenAPI spec, relative to the repository root.
	outputPath := "./docs/api/openapi.yaml"

	// Create a chi router (same as the daemon).
	mux := chi.NewMux()
	mux.Use(middleware.StripSlashes)

	// Create Huma config and router (same as the daemon).
	config := huma.DefaultConfig("gqltz docs", api.APIVersion)
	router := humachi.New(mux, config)

	engine, err := normalize.NewEngine(fields.Default())
	if err != nil {
		logger.Error("failed to create normalization engine", "error", err)
		os.Exit(1)
	}

	// The OpenAPI spec generation only needs the route definitions, not a running upstream.
	apiPathPrefix, err := api.RegisterRoutes(router, &stubHealthTracker{}, engine, time.UTC)
	if err != nil {
		logger.Error("failed to register API routes", "error", err)
		os.Exit(1)
	}

	logger.Info("Routes registered", "prefix", apiPathPrefix)

	// Get the OpenAPI spec as YAML.
	yamlBytes, err := router.OpenAPI().YAML()
	if err != nil {
		logger.Error("failed to generate OpenAPI YAML", "error", err)
		os.Exit(1)
	}

	// Ensure the docs directory exists.
	docsDir := filepath.Dir(outputPath)
	if err := os.MkdirAll(docsDir, perms.RegularDir); err != nil {
		logger.Error("failed to create docs directory", "path", docsDir, "error", err)
		os.Exit(1)
	}

	if err := os.WriteFile(outputPath, yamlBytes, perms.RegularFile); err != nil {
		logger.Error("failed to write OpenAPI spec", "path", outputPath, "error", err)
		os.Exit(1)
	}

	logger.Info("OpenAPI spec generated", "path", outputPath, "size", fmt.Sprintf("%d bytes", len(yamlBytes)))
}

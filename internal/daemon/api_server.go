package daemon

import (
	"context"
	stdErrors "errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httputil"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/hashicorp/go-hclog"

	"github.com/mozilla-ai/gqltz/internal/api"
	"github.com/mozilla-ai/gqltz/internal/cache"
	"github.com/mozilla-ai/gqltz/internal/contracts"
	"github.com/mozilla-ai/gqltz/internal/domain"
	"github.com/mozilla-ai/gqltz/internal/errors"
	"github.com/mozilla-ai/gqltz/internal/graphql"
	"github.com/mozilla-ai/gqltz/internal/interceptor"
	"github.com/mozilla-ai/gqltz/internal/metrics"
)

// metricsPath is where Prometheus metrics are served.
const metricsPath = "/metrics"

// APIServer manages the HTTP surface of the daemon: the normalizing GraphQL proxy,
// the metrics endpoint and the management API.
// NewAPIServer should be used to create instances of APIServer.
type APIServer struct {
	// Logger for API server operations.
	logger hclog.Logger

	// Interceptor normalizes GraphQL traffic passing through the proxy.
	interceptor *interceptor.Interceptor

	// Metrics are served on the metrics endpoint.
	metrics *metrics.Metrics

	// HealthTracker monitors upstream health status.
	healthTracker contracts.UpstreamHealthMonitor

	// Upstream is the GraphQL endpoint operations are proxied to.
	upstream *url.URL

	// Addr specifies the network address to bind.
	addr string

	// CORS configuration for cross-origin requests.
	cors CORSConfig

	// ShutdownTimeout specifies how long to wait for graceful shutdown.
	shutdownTimeout time.Duration

	// GraphQLPath is the path on which operations are accepted.
	graphQLPath string

	// Location is the timezone used when a request does not name one.
	location *time.Location

	// TimezoneHeader is the request header that can carry a per-request timezone.
	timezoneHeader string

	// Locations caches the timezones named by the timezone header.
	locations *cache.Cache

	// UpstreamTimeout bounds how long to wait for upstream response headers.
	upstreamTimeout time.Duration
}

// NewAPIServer creates a new API server with the provided dependencies and options.
// Applies default options first, then user-provided options to ensure all fields have valid values.
func NewAPIServer(deps APIDependencies, opt ...APIOption) (*APIServer, error) {
	if err := deps.Validate(); err != nil {
		return nil, fmt.Errorf("invalid dependencies for API server: %w", err)
	}

	// Ensure we always start with defaults and apply user options on top.
	apiOpts, err := NewAPIOptions(opt...)
	if err != nil {
		return nil, fmt.Errorf("invalid API options: %w", err)
	}

	// Browsers must be allowed to send the timezone header cross-origin.
	corsCfg := apiOpts.CORS
	if !slices.ContainsFunc(corsCfg.AllowedHeaders, func(h string) bool {
		return strings.EqualFold(h, apiOpts.TimezoneHeader)
	}) {
		corsCfg.AllowedHeaders = append(slices.Clone(corsCfg.AllowedHeaders), apiOpts.TimezoneHeader)
	}

	locations, err := cache.NewCache(deps.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create timezone cache: %w", err)
	}

	return &APIServer{
		logger:          deps.Logger.Named("api"),
		interceptor:     deps.Interceptor,
		metrics:         deps.Metrics,
		healthTracker:   deps.HealthTracker,
		upstream:        deps.Upstream,
		addr:            deps.Addr,
		cors:            corsCfg,
		shutdownTimeout: apiOpts.ShutdownTimeout,
		graphQLPath:     apiOpts.GraphQLPath,
		location:        apiOpts.Location,
		timezoneHeader:  apiOpts.TimezoneHeader,
		locations:       locations,
		upstreamTimeout: apiOpts.UpstreamTimeout,
	}, nil
}

// Handler builds the HTTP handler serving the GraphQL proxy, metrics and the management API.
// It returns the management API path prefix alongside the handler.
func (a *APIServer) Handler() (http.Handler, string, error) {
	// Create router.
	mux := chi.NewMux()
	mux.Use(middleware.StripSlashes)

	// Add CORS middleware if enabled.
	if a.cors.Enabled {
		a.applyCORS(mux)
	}

	// GraphQL traffic is normalized on its way to and from the upstream.
	resolve := interceptor.HeaderLocation(a.timezoneHeader, a.location, a.locations.Location)
	normalizing := a.interceptor.Middleware(resolve)
	mux.Handle(a.graphQLPath, normalizing(a.newUpstreamProxy()))
	mux.Handle(metricsPath, a.metrics.Handler())

	config := huma.DefaultConfig("gqltz docs", api.APIVersion)
	router := humachi.New(mux, config)

	apiPathPrefix, err := api.RegisterRoutes(router, a.healthTracker, a.interceptor.Engine(), a.location)
	if err != nil {
		return nil, "", err
	}

	return mux, apiPathPrefix, nil
}

// Start starts the API server and blocks until the context is canceled or an error occurs.
func (a *APIServer) Start(ctx context.Context) error {
	// Configure the error handling wrapping.
	huma.NewErrorWithContext = errorHandler(a.logger)

	handler, apiPathPrefix, err := a.Handler()
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              a.addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)

	// Start the API.
	go func() {
		a.logger.Info(
			"Starting API server",
			"address", a.addr,
			"prefix", apiPathPrefix,
			"graphql", a.graphQLPath,
			"upstream", a.upstream.Redacted(),
		)
		if a.cors.Enabled {
			a.logger.Info("CORS enabled", "origins", a.cors.AllowOrigins)
		}
		if err := srv.ListenAndServe(); err != nil && !stdErrors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Handle graceful shutdown.
	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
		defer cancel()
		a.logger.Info("Shutting down API server...")
		_ = srv.Shutdown(shutdownCtx)
		a.logger.Info("Shutdown complete")
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

// newUpstreamProxy creates the reverse proxy that forwards GraphQL operations to the upstream endpoint.
// Every operation is sent to the upstream path regardless of the path it arrived on.
func (a *APIServer) newUpstreamProxy() *httputil.ReverseProxy {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.ResponseHeaderTimeout = a.upstreamTimeout

	return &httputil.ReverseProxy{
		Rewrite: func(r *httputil.ProxyRequest) {
			r.SetURL(a.upstream)
			r.Out.URL.Path = a.upstream.Path
			r.Out.URL.RawPath = a.upstream.RawPath
			r.SetXForwarded()

			// Responses must arrive uncompressed so their data can be normalized,
			// the transport negotiates and decodes compression on its own.
			r.Out.Header.Del("Accept-Encoding")
		},
		Transport:    transport,
		ErrorHandler: a.handleUpstreamError,
	}
}

// handleUpstreamError answers with a GraphQL error response when the upstream cannot be reached.
func (a *APIServer) handleUpstreamError(w http.ResponseWriter, r *http.Request, err error) {
	// The caller went away, there is nobody to answer and nothing to learn about the upstream.
	if r.Context().Err() != nil {
		a.logger.Debug("Client canceled GraphQL request", "error", err)
		return
	}

	a.logger.Error("Upstream request failed", "upstream", a.upstream.Redacted(), "error", err)
	a.healthTracker.Update(upstreamErrorStatus(err), nil)

	body, encErr := graphql.Marshal(graphql.Response{
		Errors: []graphql.Error{{
			Message:    errors.ErrUpstreamUnavailable.Error(),
			Extensions: map[string]any{"code": string(api.UpstreamUnavailable)},
		}},
	})
	if encErr != nil {
		http.Error(w, errors.ErrUpstreamUnavailable.Error(), http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set(api.HeaderErrorType, string(api.UpstreamUnavailable))
	w.WriteHeader(http.StatusBadGateway)
	_, _ = w.Write(body)
}

// applyCORS applies CORS middleware to the router based on the configured options.
func (a *APIServer) applyCORS(mux *chi.Mux) {
	a.logger.Info("Enabling CORS", "origins", a.cors.AllowOrigins)

	corsOptions := cors.Options{
		AllowedOrigins:   slices.Clone(a.cors.AllowOrigins),
		AllowedMethods:   a.cors.AllowMethods,
		AllowedHeaders:   a.cors.AllowedHeaders,
		ExposedHeaders:   a.cors.ExposedHeaders,
		AllowCredentials: a.cors.AllowCredentials,
		MaxAge:           int(a.cors.MaxAge.Seconds()),
	}

	// Handle wildcard origins properly.
	for i, origin := range corsOptions.AllowedOrigins {
		if origin == "*" {
			corsOptions.AllowedOrigins = []string{"*"}
			corsOptions.AllowCredentials = false
			break
		}
		corsOptions.AllowedOrigins[i] = strings.TrimSpace(origin)
	}

	mux.Use(cors.Handler(corsOptions))
}

// upstreamErrorStatus classifies a failed upstream exchange.
func upstreamErrorStatus(err error) domain.HealthStatus {
	if stdErrors.Is(err, context.DeadlineExceeded) {
		return domain.HealthStatusTimeout
	}

	var netErr net.Error
	if stdErrors.As(err, &netErr) && netErr.Timeout() {
		return domain.HealthStatusTimeout
	}

	return domain.HealthStatusUnreachable
}

// mapError maps application domain errors to appropriate HTTP status codes.
//
// This function is the central place where domain errors from internal/errors are converted to HTTP responses.
// When adding new errors to internal/errors/errors.go, you MUST add them here to prevent them from falling
// through to the default case which returns HTTP 500.
//
// NOTE: Keep this function in sync with internal/errors/errors.go.
// Every error defined there should have an explicit case here otherwise it will default to 500.
//
// Mapping guidelines:
//   - 400: Client errors (bad input, invalid requests)
//   - 502: External service/dependency failures
//   - 500: Unexpected internal errors (default case)
//
// Don't forget to:
// 1. Add test cases to TestMapError (internal/daemon/api_server_test.go)
// 2. Update the documentation in internal/errors/errors.go
func mapError(logger hclog.Logger, err error) huma.StatusError {
	switch {
	case stdErrors.Is(err, errors.ErrBadRequest):
		return huma.Error400BadRequest(err.Error())
	case stdErrors.Is(err, errors.ErrUnknownDirection):
		return huma.Error400BadRequest(err.Error())
	case stdErrors.Is(err, errors.ErrUnknownTimezone):
		return huma.Error400BadRequest(err.Error())
	case stdErrors.Is(err, errors.ErrUpstreamUnavailable):
		logger.Error("Upstream unavailable", "error", err)
		return huma.Error502BadGateway("GraphQL upstream unavailable", err)
	default:
		logger.Error("Unexpected error handling API request", "error", err)
		return huma.Error500InternalServerError("Internal server error", err)
	}
}

// errorHandler wraps error handling for the application when converting to API friendly errors.
// It allows the logger to be supplied to functions that resolve huma.StatusError,
// and it supports different behaviors based on the variadic errors parameter.
// Errors Huma raised itself with a client status (e.g. request validation) keep that status.
func errorHandler(logger hclog.Logger) func(_ huma.Context, status int, msg string, errs ...error) huma.StatusError {
	return func(_ huma.Context, status int, msg string, errs ...error) huma.StatusError {
		if status < http.StatusInternalServerError && len(errs) > 0 {
			return huma.NewError(status, msg, errs...)
		}

		switch len(errs) {
		case 0:
			// No errors provided; return a generic error.
			return huma.NewError(status, msg)
		case 1:
			// Single error; map it directly.
			return mapError(logger, errs[0])
		default:
			// Multiple errors; join them and map.
			combinedErr := stdErrors.Join(errs...)
			return mapError(logger, combinedErr)
		}
	}
}

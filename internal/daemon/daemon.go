package daemon

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/sync/errgroup"

	"github.com/mozilla-ai/gqltz/internal/client"
	"github.com/mozilla-ai/gqltz/internal/domain"
	"github.com/mozilla-ai/gqltz/internal/interceptor"
	"github.com/mozilla-ai/gqltz/internal/metrics"
	"github.com/mozilla-ai/gqltz/internal/normalize"
)

// healthCheckQuery is the cheapest operation every GraphQL server answers.
const healthCheckQuery = "{ __typename }"

// Daemon runs the normalizing GraphQL gateway and keeps track of the upstream server's health.
// NewDaemon should be used to create instances of Daemon.
type Daemon struct {
	apiServer     *APIServer
	healthTracker *HealthTracker
	prober        *client.Client
	logger        hclog.Logger
	upstream      *url.URL

	// healthCheckInterval specifies how often to probe the upstream.
	healthCheckInterval time.Duration

	// healthCheckTimeout specifies how long to wait for a probe response.
	healthCheckTimeout time.Duration
}

// NewDaemon creates a new Daemon instance with the provided dependencies and options.
func NewDaemon(deps Dependencies, opt ...Option) (*Daemon, error) {
	if err := deps.Validate(); err != nil {
		return nil, fmt.Errorf("invalid daemon dependencies: %w", err)
	}

	opts, err := NewOptions(opt...)
	if err != nil {
		return nil, fmt.Errorf("invalid daemon options: %w", err)
	}

	logger := deps.Logger.Named("daemon")

	m := metrics.NewMetrics()

	engine, err := normalize.NewEngine(deps.Registry, normalize.WithObserver(m))
	if err != nil {
		return nil, fmt.Errorf("failed to create normalization engine: %w", err)
	}

	i, err := interceptor.NewInterceptor(
		engine,
		interceptor.WithLogger(deps.Logger),
		interceptor.WithRecorder(m),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create interceptor: %w", err)
	}

	healthTracker := NewHealthTracker(deps.Upstream.Redacted())

	apiDeps, err := NewAPIDependencies(deps.Logger, i, m, healthTracker, deps.Upstream, deps.APIAddr)
	if err != nil {
		return nil, fmt.Errorf("failed to create API dependencies: %w", err)
	}

	apiServer, err := NewAPIServer(apiDeps, opts.APIOptions...)
	if err != nil {
		return nil, fmt.Errorf("failed to create daemon API server: %w", err)
	}

	// Probe traffic is not client traffic, so the prober normalizes without feeding the metrics.
	probeEngine, err := normalize.NewEngine(deps.Registry)
	if err != nil {
		return nil, fmt.Errorf("failed to create health check engine: %w", err)
	}
	probeInterceptor, err := interceptor.NewInterceptor(probeEngine, interceptor.WithLogger(deps.Logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create health check interceptor: %w", err)
	}

	// Probes go straight to the upstream, so the timeout is enforced per check via the context.
	prober, err := client.NewClient(
		deps.Upstream.String(),
		probeInterceptor,
		client.WithHTTPClient(&http.Client{}),
		client.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create upstream health client: %w", err)
	}

	return &Daemon{
		apiServer:           apiServer,
		healthTracker:       healthTracker,
		prober:              prober,
		logger:              logger,
		upstream:            deps.Upstream,
		healthCheckInterval: opts.HealthCheckInterval,
		healthCheckTimeout:  opts.HealthCheckTimeout,
	}, nil
}

// StartAndManage starts the API server and the upstream health checks, and blocks until ctx is canceled
// or either of them fails.
func (d *Daemon) StartAndManage(ctx context.Context) error {
	d.logger.Info("Starting gateway", "upstream", d.upstream.Redacted())

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := d.apiServer.Start(gCtx); err != nil {
			return fmt.Errorf("API server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		d.healthCheckLoop(gCtx, d.healthCheckInterval, d.healthCheckTimeout)
		return nil
	})

	return g.Wait()
}

// healthCheckLoop probes the upstream immediately and then on every interval until ctx is canceled.
func (d *Daemon) healthCheckLoop(ctx context.Context, interval time.Duration, timeout time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	d.checkUpstream(ctx, timeout)

	for {
		select {
		case <-ctx.Done():
			d.logger.Info("Stopping upstream health checks")
			return
		case <-ticker.C:
			d.checkUpstream(ctx, timeout)
		}
	}
}

// checkUpstream sends a single probe to the upstream and records the outcome.
func (d *Daemon) checkUpstream(ctx context.Context, timeout time.Duration) {
	checkCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	err := d.prober.Ping(checkCtx, healthCheckQuery)
	latency := time.Since(start)

	// Shutting down, the failed probe says nothing about the upstream.
	if ctx.Err() != nil {
		return
	}

	if err != nil {
		status := upstreamErrorStatus(err)
		d.logger.Warn("Upstream health check failed", "status", status, "error", err)
		d.healthTracker.Update(status, nil)
		return
	}

	d.logger.Debug("Upstream health check successful", "latency", latency)
	d.healthTracker.Update(domain.HealthStatusOK, &latency)
}

package daemon

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/mozilla-ai/gqltz/internal/domain"
	"github.com/mozilla-ai/gqltz/internal/fields"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(
		m,
		// Keep-alive connections of the shared transport wind down after the servers close.
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
	)
}

func newTestDaemon(t *testing.T, upstream string, addr string, opt ...Option) *Daemon {
	t.Helper()

	deps, err := NewDependencies(hclog.NewNullLogger(), addr, upstream, fields.Default())
	require.NoError(t, err)

	d, err := NewDaemon(deps, opt...)
	require.NoError(t, err)

	return d
}

func freeAddr(t *testing.T) string {
	t.Helper()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())

	return addr
}

func TestNewDaemon_InvalidDependencies(t *testing.T) {
	t.Parallel()

	_, err := NewDaemon(Dependencies{})
	require.Error(t, err)
	require.ErrorContains(t, err, "invalid daemon dependencies")
}

func TestNewDaemon_InvalidOptions(t *testing.T) {
	t.Parallel()

	deps, err := NewDependencies(hclog.NewNullLogger(), "localhost:8090", "http://localhost:4000/graphql", fields.Default())
	require.NoError(t, err)

	_, err = NewDaemon(deps, WithHealthCheckInterval(0))
	require.EqualError(t, err, "invalid daemon options: health check interval must be positive, got 0s")

	_, err = NewDaemon(deps, WithAPIOptions(WithGraphQLPath("graphql")))
	require.ErrorContains(t, err, "failed to create daemon API server")
}

func TestDaemon_CheckUpstream(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		handler     http.HandlerFunc
		closed      bool
		wantStatus  domain.HealthStatus
		wantLatency bool
	}{
		{
			name: "healthy upstream",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = io.WriteString(w, `{"data":{"__typename":"Query"}}`)
			},
			wantStatus:  domain.HealthStatusOK,
			wantLatency: true,
		},
		{
			name: "slow upstream",
			handler: func(w http.ResponseWriter, r *http.Request) {
				select {
				case <-r.Context().Done():
				case <-time.After(5 * time.Second):
				}
			},
			wantStatus: domain.HealthStatusTimeout,
		},
		{
			name:       "stopped upstream",
			handler:    func(w http.ResponseWriter, r *http.Request) {},
			closed:     true,
			wantStatus: domain.HealthStatusUnreachable,
		},
		{
			name: "non GraphQL upstream",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.NotFound(w, r)
			},
			wantStatus: domain.HealthStatusUnreachable,
		},
		{
			name: "upstream answering 503 with GraphQL errors",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = io.WriteString(w, `{"errors":[{"message":"upstream down"}]}`)
			},
			wantStatus: domain.HealthStatusUnreachable,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(tc.handler)
			if tc.closed {
				srv.Close()
			} else {
				t.Cleanup(srv.Close)
			}

			d := newTestDaemon(t, srv.URL+"/graphql", "localhost:8090")
			d.checkUpstream(context.Background(), 100*time.Millisecond)

			status := d.healthTracker.Status()
			require.Equal(t, tc.wantStatus, status.Status)
			require.NotNil(t, status.LastChecked)
			if tc.wantLatency {
				require.NotNil(t, status.Latency)
				require.NotNil(t, status.LastSuccessful)
			} else {
				require.Nil(t, status.Latency)
				require.Nil(t, status.LastSuccessful)
			}
		})
	}
}

func TestDaemon_CheckUpstream_NotRecordedInMetrics(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"data":{"__typename":"Query"}}`)
	}))
	t.Cleanup(srv.Close)

	d := newTestDaemon(t, srv.URL, "localhost:8090")
	for range 3 {
		d.checkUpstream(context.Background(), time.Second)
	}
	require.Equal(t, domain.HealthStatusOK, d.healthTracker.Status().Status)

	n, err := testutil.GatherAndCount(
		d.apiServer.metrics.Registry(),
		"gqltz_payload_normalize_seconds",
		"gqltz_payloads_skipped_total",
	)
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestDaemon_CheckUpstream_CanceledContext(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"data":{"__typename":"Query"}}`)
	}))
	t.Cleanup(srv.Close)

	d := newTestDaemon(t, srv.URL, "localhost:8090")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d.checkUpstream(ctx, time.Second)

	status := d.healthTracker.Status()
	require.Equal(t, domain.HealthStatusUnknown, status.Status)
	require.Nil(t, status.LastChecked)
}

func TestDaemon_HealthCheckLoop(t *testing.T) {
	t.Parallel()

	probes := make(chan struct{}, 16)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case probes <- struct{}{}:
		default:
		}
		_, _ = io.WriteString(w, `{"data":{"__typename":"Query"}}`)
	}))
	t.Cleanup(srv.Close)

	d := newTestDaemon(t, srv.URL, "localhost:8090")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		d.healthCheckLoop(ctx, 10*time.Millisecond, time.Second)
		close(done)
	}()

	// The first probe is immediate, the next ones follow the interval.
	for range 3 {
		select {
		case <-probes:
		case <-time.After(5 * time.Second):
			t.Fatal("upstream was not probed")
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("health check loop did not stop")
	}

	require.Equal(t, domain.HealthStatusOK, d.healthTracker.Status().Status)
}

// TestDaemon_StartAndManage is not parallel as starting the API server swaps huma's global error constructor.
func TestDaemon_StartAndManage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"data":{"__typename":"Query"}}`)
	}))
	t.Cleanup(srv.Close)

	addr := freeAddr(t)
	d := newTestDaemon(
		t,
		srv.URL+"/graphql",
		addr,
		WithHealthCheckInterval(20*time.Millisecond),
		WithAPIOptions(WithShutdownTimeout(time.Second)),
	)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.StartAndManage(ctx) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/api/v1/health/upstream")
		if err != nil {
			return false
		}
		defer func() { _ = resp.Body.Close() }()
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return false
		}
		return resp.StatusCode == http.StatusOK && jsonHasStatus(body, "ok")
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("daemon did not shut down")
	}

	http.DefaultClient.CloseIdleConnections()
}

func jsonHasStatus(body []byte, status string) bool {
	var out struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return false
	}
	return out.Status == status
}

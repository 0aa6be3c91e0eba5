package daemon

import (
	"net/url"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/require"

	"github.com/mozilla-ai/gqltz/internal/fields"
	"github.com/mozilla-ai/gqltz/internal/interceptor"
	"github.com/mozilla-ai/gqltz/internal/metrics"
	"github.com/mozilla-ai/gqltz/internal/normalize"
)

func newTestInterceptor(t *testing.T) (*interceptor.Interceptor, *metrics.Metrics) {
	t.Helper()

	m := metrics.NewMetrics()
	engine, err := normalize.NewEngine(fields.Default(), normalize.WithObserver(m))
	require.NoError(t, err)

	i, err := interceptor.NewInterceptor(
		engine,
		interceptor.WithLogger(hclog.NewNullLogger()),
		interceptor.WithRecorder(m),
	)
	require.NoError(t, err)

	return i, m
}

func mustParseURL(t *testing.T, raw string) *url.URL {
	t.Helper()

	u, err := url.Parse(raw)
	require.NoError(t, err)

	return u
}

func newTestAPIDependencies(t *testing.T, upstream string) APIDependencies {
	t.Helper()

	i, m := newTestInterceptor(t)
	deps, err := NewAPIDependencies(
		hclog.NewNullLogger(),
		i,
		m,
		NewHealthTracker(upstream),
		mustParseURL(t, upstream),
		"localhost:8090",
	)
	require.NoError(t, err)

	return deps
}

package daemon

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultOptions(t *testing.T) {
	t.Parallel()

	opts := defaultOptions()

	assert.Nil(t, opts.APIOptions) // No API options by default - NewAPIServer will apply its own defaults
	assert.Equal(t, DefaultHealthCheckInterval(), opts.HealthCheckInterval)
	assert.Equal(t, DefaultHealthCheckTimeout(), opts.HealthCheckTimeout)
}

func TestNewOptions(t *testing.T) {
	t.Parallel()

	t.Run("default options", func(t *testing.T) {
		t.Parallel()

		opts, err := NewOptions()

		require.NoError(t, err)
		assert.Nil(t, opts.APIOptions)
		assert.Equal(t, 10*time.Second, opts.HealthCheckInterval)
		assert.Equal(t, 3*time.Second, opts.HealthCheckTimeout)
	})

	t.Run("with API options", func(t *testing.T) {
		t.Parallel()

		apiOptions := []APIOption{
			WithCORSEnabled(true),
			WithCORSAllowOrigins([]string{"http://localhost:3000"}),
			WithGraphQLPath("/query"),
			WithShutdownTimeout(10 * time.Second),
		}
		opts, err := NewOptions(WithAPIOptions(apiOptions...))

		require.NoError(t, err)
		require.Len(t, opts.APIOptions, 4)

		// Verify the options work by creating an APIOptions struct
		resultAPIOptions, err := NewAPIOptions(opts.APIOptions...)
		require.NoError(t, err)
		assert.True(t, resultAPIOptions.CORS.Enabled)
		assert.ElementsMatch(t, []string{"http://localhost:3000"}, resultAPIOptions.CORS.AllowOrigins)
		assert.Equal(t, "/query", resultAPIOptions.GraphQLPath)
		assert.Equal(t, 10*time.Second, resultAPIOptions.ShutdownTimeout)
	})

	t.Run("with health check settings", func(t *testing.T) {
		t.Parallel()

		opts, err := NewOptions(
			nil,
			WithHealthCheckInterval(5*time.Second),
			WithHealthCheckTimeout(2*time.Second),
		)

		require.NoError(t, err)
		assert.Equal(t, 5*time.Second, opts.HealthCheckInterval)
		assert.Equal(t, 2*time.Second, opts.HealthCheckTimeout)
	})

	t.Run("options override in order", func(t *testing.T) {
		t.Parallel()

		opts, err := NewOptions(
			WithHealthCheckInterval(5*time.Second),
			WithHealthCheckInterval(20*time.Second), // This should win
		)

		require.NoError(t, err)
		assert.Equal(t, 20*time.Second, opts.HealthCheckInterval)
	})
}

func TestWithTimeouts(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		timeout time.Duration
		wantErr string
	}{
		{
			name:    "valid timeout",
			timeout: 10 * time.Second,
		},
		{
			name:    "zero timeout fails",
			timeout: 0,
			wantErr: "must be positive, got 0s",
		},
		{
			name:    "negative timeout fails",
			timeout: -1 * time.Second,
			wantErr: "must be positive, got -1s",
		},
	}

	timeoutOptions := []struct {
		name string
		opt  func(time.Duration) Option
	}{
		{"WithHealthCheckInterval", WithHealthCheckInterval},
		{"WithHealthCheckTimeout", WithHealthCheckTimeout},
	}

	for _, timeoutOpt := range timeoutOptions {
		for _, tc := range tests {
			t.Run(timeoutOpt.name+"_"+tc.name, func(t *testing.T) {
				t.Parallel()

				_, err := NewOptions(timeoutOpt.opt(tc.timeout))
				if tc.wantErr != "" {
					require.ErrorContains(t, err, tc.wantErr)
					return
				}
				require.NoError(t, err)
			})
		}
	}
}

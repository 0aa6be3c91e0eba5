package daemon

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mozilla-ai/gqltz/internal/domain"
)

func TestNewHealthTracker(t *testing.T) {
	t.Parallel()

	tracker := NewHealthTracker("http://localhost:4000/graphql")
	require.NotNil(t, tracker)

	health := tracker.Status()
	require.Equal(t, "http://localhost:4000/graphql", health.URL)
	require.Equal(t, domain.HealthStatusUnknown, health.Status)
	require.Nil(t, health.Latency)
	require.Nil(t, health.LastChecked)
	require.Nil(t, health.LastSuccessful)
}

func TestHealthTracker_Update(t *testing.T) {
	t.Parallel()

	t.Run("successful check", func(t *testing.T) {
		t.Parallel()

		tracker := NewHealthTracker("http://upstream")
		latency := 15 * time.Millisecond

		before := time.Now().UTC()
		tracker.Update(domain.HealthStatusOK, &latency)

		health := tracker.Status()
		require.Equal(t, "http://upstream", health.URL)
		require.Equal(t, domain.HealthStatusOK, health.Status)
		require.NotNil(t, health.Latency)
		require.Equal(t, latency, *health.Latency)
		require.NotNil(t, health.LastChecked)
		require.False(t, health.LastChecked.Before(before))
		require.Equal(t, health.LastChecked, health.LastSuccessful)
	})

	t.Run("failed check keeps last success", func(t *testing.T) {
		t.Parallel()

		tracker := NewHealthTracker("http://upstream")
		latency := 10 * time.Millisecond
		tracker.Update(domain.HealthStatusOK, &latency)
		lastSuccessful := tracker.Status().LastSuccessful

		tracker.Update(domain.HealthStatusTimeout, nil)

		health := tracker.Status()
		require.Equal(t, domain.HealthStatusTimeout, health.Status)
		require.Nil(t, health.Latency)
		require.Equal(t, lastSuccessful, health.LastSuccessful, "LastSuccessful should be preserved")
	})

	t.Run("never successful", func(t *testing.T) {
		t.Parallel()

		tracker := NewHealthTracker("http://upstream")
		tracker.Update(domain.HealthStatusUnreachable, nil)

		health := tracker.Status()
		require.Equal(t, domain.HealthStatusUnreachable, health.Status)
		require.NotNil(t, health.LastChecked)
		require.Nil(t, health.LastSuccessful)
	})

	t.Run("latency is copied", func(t *testing.T) {
		t.Parallel()

		tracker := NewHealthTracker("http://upstream")
		latency := 5 * time.Millisecond
		tracker.Update(domain.HealthStatusOK, &latency)

		latency = time.Hour
		require.Equal(t, 5*time.Millisecond, *tracker.Status().Latency)
	})
}

func TestHealthTracker_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	tracker := NewHealthTracker("http://upstream")
	const numGoroutines = 100
	const numOperations = 10

	var wg sync.WaitGroup
	wg.Add(numGoroutines)

	for i := 0; i < numGoroutines; i++ {
		go func(id int) {
			defer wg.Done()

			for j := 0; j < numOperations; j++ {
				latency := time.Duration(id*j) * time.Millisecond
				if j%2 == 0 {
					tracker.Update(domain.HealthStatusOK, &latency)
					continue
				}
				require.Equal(t, "http://upstream", tracker.Status().URL)
			}
		}(i)
	}

	wg.Wait()
	require.Equal(t, domain.HealthStatusOK, tracker.Status().Status)
}

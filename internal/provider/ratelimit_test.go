package provider_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/vehicle-deal-checker/internal/provider"
)

func TestRateLimiter_Wait(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		rate    float64
		burst   int
		daily   int64
		calls   int
		wantErr bool
	}{
		{name: "allows calls within rate", rate: 100, burst: 10, daily: 1000, calls: 3},
		{name: "allows burst", rate: 100, burst: 5, daily: 1000, calls: 5},
		{name: "unlimited daily quota", rate: 1000, burst: 50, daily: 0, calls: 50},
		{name: "rejects when daily limit reached", rate: 100, burst: 10, daily: 2, calls: 3, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rl := provider.NewRateLimiter(tt.rate, tt.burst, tt.daily)

			var lastErr error
			for range tt.calls {
				lastErr = rl.Wait(context.Background())
				if lastErr != nil {
					break
				}
			}

			if tt.wantErr {
				require.ErrorIs(t, lastErr, provider.ErrDailyLimitReached)
				assert.Contains(t, lastErr.Error(), "(2/2, resets ")
			} else {
				require.NoError(t, lastErr)
			}
		})
	}
}

func TestRateLimiter_Status(t *testing.T) {
	t.Parallel()

	rl := provider.NewRateLimiter(100, 10, 3)

	s := rl.Status()
	assert.Equal(t, int64(0), s.Used)
	assert.Equal(t, int64(3), s.Limit)
	assert.Equal(t, int64(3), s.Remaining)

	require.NoError(t, rl.Wait(context.Background()))
	require.NoError(t, rl.Wait(context.Background()))

	s = rl.Status()
	assert.Equal(t, int64(2), s.Used)
	assert.Equal(t, int64(1), s.Remaining)

	unlimited := provider.NewRateLimiter(100, 10, 0).Status()
	assert.Equal(t, int64(0), unlimited.Limit)
	assert.Equal(t, int64(-1), unlimited.Remaining)
}

func TestRateLimiter_WindowRolls(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	current := time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC)
	now := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return current
	}

	rl := provider.NewRateLimiter(100, 10, 2, provider.WithRateLimiterNowFunc(now))

	require.NoError(t, rl.Wait(context.Background()))
	require.NoError(t, rl.Wait(context.Background()))
	require.ErrorIs(t, rl.Wait(context.Background()), provider.ErrDailyLimitReached)
	assert.Equal(t, time.Date(2025, 1, 16, 9, 0, 0, 0, time.UTC), rl.Status().ResetAt)

	// Still inside the window.
	mu.Lock()
	current = current.Add(23 * time.Hour)
	mu.Unlock()
	require.ErrorIs(t, rl.Wait(context.Background()), provider.ErrDailyLimitReached)

	mu.Lock()
	current = current.Add(2 * time.Hour)
	mu.Unlock()
	require.NoError(t, rl.Wait(context.Background()))
	assert.Equal(t, int64(1), rl.Status().Used)
	assert.Equal(t, time.Date(2025, 1, 17, 10, 0, 0, 0, time.UTC), rl.Status().ResetAt)
}

func TestRateLimiter_ContextCanceled(t *testing.T) {
	t.Parallel()

	// One call per 10 seconds, burst 1.
	rl := provider.NewRateLimiter(0.1, 1, 10)

	require.NoError(t, rl.Wait(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := rl.Wait(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limiter wait")
	assert.Equal(t, int64(1), rl.Status().Used, "a canceled wait must not spend quota")
}

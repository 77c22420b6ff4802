package provider

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter_ReleaseAfterWindowRoll(t *testing.T) {
	t.Parallel()

	current := time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(100, 10, 5, WithRateLimiterNowFunc(func() time.Time { return current }))

	stale, err := rl.reserve()
	require.NoError(t, err)
	assert.Equal(t, int64(1), rl.Status().Used)

	current = current.Add(25 * time.Hour)
	fresh, err := rl.reserve()
	require.NoError(t, err)
	require.NotEqual(t, stale, fresh)
	assert.Equal(t, int64(1), rl.Status().Used)

	rl.release(stale)
	assert.Equal(t, int64(1), rl.Status().Used, "a unit from the previous window must not be returned to this one")

	rl.release(fresh)
	assert.Equal(t, int64(0), rl.Status().Used)
}

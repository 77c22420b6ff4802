package provider

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// ErrDailyLimitReached is returned when the daily salePrice quota is spent.
var ErrDailyLimitReached = errors.New("daily salePrice limit reached")

// RateLimiter paces salePrice calls with a token bucket and enforces a daily
// quota over a rolling 24-hour window. The window opens at construction and
// restarts on the first call after it expires. A daily limit <= 0 disables
// the quota.
type RateLimiter struct {
	limiter  *rate.Limiter
	maxDaily int64
	nowFunc  func() time.Time

	mu      sync.Mutex
	used    int64
	resetAt time.Time
}

// RateLimiterOption configures the RateLimiter.
type RateLimiterOption func(*RateLimiter)

// WithRateLimiterNowFunc overrides the time function for testing.
func WithRateLimiterNowFunc(f func() time.Time) RateLimiterOption {
	return func(r *RateLimiter) {
		r.nowFunc = f
	}
}

// NewRateLimiter creates a rate limiter allowing perSecond calls with the
// given burst, and at most maxDaily calls per window.
func NewRateLimiter(
	perSecond float64,
	burst int,
	maxDaily int64,
	opts ...RateLimiterOption,
) *RateLimiter {
	r := &RateLimiter{
		limiter:  rate.NewLimiter(rate.Limit(perSecond), burst),
		maxDaily: maxDaily,
		nowFunc:  time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.resetAt = r.nowFunc().Add(24 * time.Hour)
	return r
}

// Wait reserves one unit of daily quota, then blocks until the token bucket
// admits the call or ctx is done. A canceled wait gives the quota back.
func (r *RateLimiter) Wait(ctx context.Context) error {
	window, err := r.reserve()
	if err != nil {
		return err
	}

	if err := r.limiter.Wait(ctx); err != nil {
		r.release(window)
		return fmt.Errorf("rate limiter wait: %w", err)
	}
	return nil
}

// reserve spends one unit of quota and returns the reset time of the window
// it was taken from.
func (r *RateLimiter) reserve() (time.Time, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rollWindowLocked()
	if r.maxDaily > 0 && r.used >= r.maxDaily {
		return time.Time{}, fmt.Errorf("%w (%d/%d, resets %s)",
			ErrDailyLimitReached, r.used, r.maxDaily, r.resetAt.Format(time.RFC3339))
	}
	r.used++
	return r.resetAt, nil
}

// release returns a unit reserved in window. Units from an earlier window
// are dropped.
func (r *RateLimiter) release(window time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.resetAt.Equal(window) && r.used > 0 {
		r.used--
	}
}

func (r *RateLimiter) rollWindowLocked() {
	now := r.nowFunc()
	if now.After(r.resetAt) {
		r.used = 0
		r.resetAt = now.Add(24 * time.Hour)
	}
}

// QuotaStatus is a snapshot of the daily quota.
type QuotaStatus struct {
	Used      int64
	Limit     int64 // 0 means unlimited
	Remaining int64 // -1 when unlimited
	ResetAt   time.Time
}

// Status returns the current quota snapshot.
func (r *RateLimiter) Status() QuotaStatus {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rollWindowLocked()
	s := QuotaStatus{Used: r.used, ResetAt: r.resetAt, Remaining: -1}
	if r.maxDaily > 0 {
		s.Limit = r.maxDaily
		s.Remaining = max(r.maxDaily-r.used, 0)
	}
	return s
}

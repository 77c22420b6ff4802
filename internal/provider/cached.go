package provider

import (
	"context"
	"log/slog"
	"time"

	"github.com/donaldgifford/vehicle-deal-checker/internal/cache"
	"github.com/donaldgifford/vehicle-deal-checker/internal/metrics"
	domain "github.com/donaldgifford/vehicle-deal-checker/pkg/types"
)

// CachedProvider serves candidate lists from a cache and falls through to
// the wrapped provider on a miss. Cache failures are logged and never fail a
// lookup. Errors and empty lists are not cached.
type CachedProvider struct {
	next  BaselineProvider
	cache cache.Cache
	ttl   time.Duration
	log   *slog.Logger
}

// NewCachedProvider wraps next with c. A nil cache returns next unchanged.
func NewCachedProvider(
	next BaselineProvider,
	c cache.Cache,
	ttl time.Duration,
	log *slog.Logger,
) BaselineProvider {
	if c == nil {
		return next
	}
	if log == nil {
		log = slog.Default()
	}
	return &CachedProvider{next: next, cache: c, ttl: ttl, log: log}
}

// FetchCandidates implements BaselineProvider.
func (p *CachedProvider) FetchCandidates(
	ctx context.Context,
	brand, region string,
) ([]domain.BaselineCandidate, error) {
	key := cache.BaselineKey(brand, region)

	cached, ok, err := cache.GetJSON[[]domain.BaselineCandidate](ctx, p.cache, key)
	switch {
	case err != nil:
		p.log.Warn("baseline cache read failed", "key", key, "error", err)
	case ok:
		metrics.CacheHitsTotal.WithLabelValues("baseline").Inc()
		return cached, nil
	}
	metrics.CacheMissesTotal.WithLabelValues("baseline").Inc()

	candidates, err := p.next.FetchCandidates(ctx, brand, region)
	if err != nil {
		return nil, err
	}

	if len(candidates) > 0 {
		if err := cache.SetJSON(ctx, p.cache, key, candidates, p.ttl); err != nil {
			p.log.Warn("baseline cache write failed", "key", key, "error", err)
		}
	}
	return candidates, nil
}

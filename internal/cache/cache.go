// Package cache provides the TTL caches used for baseline prices and
// extracted listings. Backends are injected; nothing caches implicitly.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Cache is a byte-oriented key/value store with per-entry TTL. Get reports
// false for missing or expired keys.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Sweeper is implemented by caches that must drop expired entries
// explicitly.
type Sweeper interface {
	Sweep() int
}

// GetJSON reads key and decodes it into a T.
func GetJSON[T any](ctx context.Context, c Cache, key string) (T, bool, error) {
	var v T

	data, ok, err := c.Get(ctx, key)
	if err != nil || !ok {
		return v, false, err
	}

	if err := json.Unmarshal(data, &v); err != nil {
		return v, false, fmt.Errorf("decoding cached %s: %w", key, err)
	}
	return v, true, nil
}

// SetJSON encodes v and stores it under key.
func SetJSON(ctx context.Context, c Cache, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s for cache: %w", key, err)
	}
	return c.Set(ctx, key, data, ttl)
}

// BaselineKey is the cache key for a brand/region candidate list.
func BaselineKey(brand, region string) string {
	return "baseline:" + normalizeKeyPart(brand) + ":" + normalizeKeyPart(region)
}

// ExtractKey is the cache key for a listing extracted from url.
func ExtractKey(url string) string {
	return "extract:" + strings.TrimSpace(url)
}

// Kind returns the key prefix before the first colon, used as a metric label.
func Kind(key string) string {
	kind, _, _ := strings.Cut(key, ":")
	return kind
}

func normalizeKeyPart(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

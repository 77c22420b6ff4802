//go:build integration

package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/donaldgifford/vehicle-deal-checker/internal/cache"
	domain "github.com/donaldgifford/vehicle-deal-checker/pkg/types"
)

func setupRedis(t *testing.T) (*cache.RedisCache, string) {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor: wait.ForLog("Ready to accept connections").
				WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, container.Terminate(ctx))
	})

	addr, err := container.Endpoint(ctx, "")
	require.NoError(t, err)

	c, err := cache.NewRedisCache(ctx, cache.RedisConfig{Addr: addr, Prefix: "vdc-test:"})
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = c.Close()
	})

	return c, addr
}

func TestRedisCache_GetSetDelete(t *testing.T) {
	c, _ := setupRedis(t)
	ctx := context.Background()

	_, ok, err := c.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	got, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), got)

	require.NoError(t, c.Delete(ctx, "k"))
	_, ok, err = c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisCache_Prefix(t *testing.T) {
	c, addr := setupRedis(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "baseline:kia:", []byte("[]"), time.Minute))

	raw := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = raw.Close() })

	n, err := raw.Exists(ctx, "vdc-test:baseline:kia:").Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	ttl, err := raw.TTL(ctx, "vdc-test:baseline:kia:").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
}

func TestRedisCache_TTL(t *testing.T) {
	c, _ := setupRedis(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "short", []byte("x"), 1500*time.Millisecond))
	require.Eventually(t, func() bool {
		_, ok, err := c.Get(ctx, "short")
		return err == nil && !ok
	}, 5*time.Second, 100*time.Millisecond)
}

func TestRedisCache_JSON(t *testing.T) {
	c, _ := setupRedis(t)
	ctx := context.Background()

	want := domain.VehicleRecord{Maker: "Subaru", Model: "Outback", BodyType: domain.BodySUV}
	require.NoError(t, cache.SetJSON(ctx, c, cache.ExtractKey("https://example.com/1"), want, time.Minute))

	got, ok, err := cache.GetJSON[domain.VehicleRecord](ctx, c, cache.ExtractKey("https://example.com/1"))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, want, got)
}

package ratelimit

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/storefront-api/internal/clock"
)

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func newMiniRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisLimiterCooldown(t *testing.T) {
	ctx := context.Background()
	mr, client := newMiniRedis(t)
	l := NewRedisLimiter(client, clock.Fake(epoch), time.Minute)

	ok, err := l.TryAcquire(ctx, "9876543210")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = l.TryAcquire(ctx, "9876543210")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.Equal(t, time.Minute, mr.TTL(defaultKeyPrefix+"9876543210"))

	mr.FastForward(time.Minute)
	ok, err = l.TryAcquire(ctx, "9876543210")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisLimiterSharedAcrossInstances(t *testing.T) {
	ctx := context.Background()
	_, client := newMiniRedis(t)
	first := NewRedisLimiter(client, clock.Fake(epoch), time.Minute)
	second := NewRedisLimiter(client, clock.Fake(epoch), time.Minute)

	ok, err := first.TryAcquire(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = second.TryAcquire(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, first.Release(ctx, "k"))
	ok, err = second.TryAcquire(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisLimiterStampsInjectedClock(t *testing.T) {
	ctx := context.Background()
	mr, client := newMiniRedis(t)
	clk := clock.Fake(epoch)
	l := NewRedisLimiter(client, clk, time.Minute)

	clk.Advance(90 * time.Second)
	ok, err := l.TryAcquire(ctx, "9876543210")
	require.NoError(t, err)
	require.True(t, ok)

	stamp, err := mr.Get(defaultKeyPrefix + "9876543210")
	require.NoError(t, err)
	assert.Equal(t, strconv.FormatInt(epoch.Add(90*time.Second).Unix(), 10), stamp)
}

package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/storefront-api/internal/clock"
)

const defaultKeyPrefix = "otp:cooldown:"

// RedisLimiter stores cooldown windows as expiring keys so every instance sharing
// the Redis database observes the same window. Redis expiry replaces sweeping.
// Each key holds the Unix time of the acquisition that opened the window.
type RedisLimiter struct {
	client   redis.UniversalClient
	clock    clock.Clock
	cooldown time.Duration
	prefix   string
}

// NewRedisLimiter builds a limiter over client.
func NewRedisLimiter(client redis.UniversalClient, clk clock.Clock, cooldown time.Duration) *RedisLimiter {
	return &RedisLimiter{client: client, clock: clk, cooldown: cooldown, prefix: defaultKeyPrefix}
}

func (l *RedisLimiter) TryAcquire(ctx context.Context, key string) (bool, error) {
	return l.client.SetNX(ctx, l.prefix+key, l.clock.Now().Unix(), l.cooldown).Result()
}

func (l *RedisLimiter) Release(ctx context.Context, key string) error {
	return l.client.Del(ctx, l.prefix+key).Err()
}

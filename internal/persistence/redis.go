package persistence

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/storefront-api/internal/config"
)

const redisDialTimeout = 3 * time.Second

// Redis wraps the go-redis client backing the shared OTP cooldown.
type Redis struct {
	Client redis.UniversalClient
}

// NewRedis builds a client for cfg. A comma separated REDIS_ADDR selects a
// cluster client. An unreachable server is logged, not fatal; readiness checks
// report it and the cooldown limiter fails requests until it comes back.
func NewRedis(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) *Redis {
	addrs := splitAddrs(cfg.Addr)
	client := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:       addrs,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: redisDialTimeout,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("unable to reach redis", zap.Strings("addrs", addrs), zap.Error(err))
	} else {
		logger.Info("connected to redis", zap.Strings("addrs", addrs), zap.Int("db", cfg.DB))
	}

	return &Redis{Client: client}
}

func splitAddrs(raw string) []string {
	var addrs []string
	for _, part := range strings.Split(raw, ",") {
		if addr := strings.TrimSpace(part); addr != "" {
			addrs = append(addrs, addr)
		}
	}
	return addrs
}

// Close closes the client.
func (r *Redis) Close() {
	if r != nil && r.Client != nil {
		_ = r.Client.Close()
	}
}

// Ping verifies Redis connectivity.
func (r *Redis) Ping(ctx context.Context) error {
	if r == nil || r.Client == nil {
		return ErrNotConfigured
	}
	return r.Client.Ping(ctx).Err()
}

package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/storefront-api/internal/ratelimit"
)

// StartCooldownSweeper evicts idle OTP cooldown entries every interval until ctx
// is cancelled. The returned channel is closed once the sweeper has stopped.
func StartCooldownSweeper(ctx context.Context, limiter *ratelimit.MemoryLimiter, interval time.Duration, logger *zap.Logger) <-chan struct{} {
	done := make(chan struct{})
	if limiter == nil || interval <= 0 {
		close(done)
		return done
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	go func() {
		defer close(done)
		logger.Info("otp cooldown sweeper started", zap.Duration("interval", interval))
		limiter.Run(ctx, interval, func(removed int) {
			if removed > 0 {
				logger.Debug("otp cooldown entries evicted",
					zap.Int("removed", removed),
					zap.Int("remaining", limiter.Len()),
				)
			}
		})
		logger.Info("otp cooldown sweeper stopped")
	}()
	return done
}

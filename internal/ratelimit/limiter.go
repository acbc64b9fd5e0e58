// Package ratelimit provides the per-key cooldown used to throttle OTP issuance.
package ratelimit

import "context"

// Limiter grants at most one acquisition per key per cooldown window.
type Limiter interface {
	// TryAcquire reports whether key is outside its cooldown and, if so, starts a
	// new window for it.
	TryAcquire(ctx context.Context, key string) (bool, error)
	// Release ends the current window for key early.
	Release(ctx context.Context, key string) error
}

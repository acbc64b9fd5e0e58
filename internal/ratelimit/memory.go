package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/spec-kit/storefront-api/internal/clock"
)

// MemoryLimiter keeps cooldown windows in process memory. Windows are not shared
// between instances and are lost on restart.
type MemoryLimiter struct {
	mu        sync.Mutex
	clock     clock.Clock
	cooldown  time.Duration
	retention time.Duration
	lastSeen  map[string]time.Time
}

// NewMemoryLimiter builds a limiter whose idle entries are dropped by Sweep once
// they are older than retention.
func NewMemoryLimiter(clk clock.Clock, cooldown, retention time.Duration) *MemoryLimiter {
	if clk == nil {
		clk = clock.Real()
	}
	if retention < cooldown {
		retention = cooldown
	}
	return &MemoryLimiter{
		clock:     clk,
		cooldown:  cooldown,
		retention: retention,
		lastSeen:  make(map[string]time.Time),
	}
}

func (l *MemoryLimiter) TryAcquire(_ context.Context, key string) (bool, error) {
	now := l.clock.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if last, ok := l.lastSeen[key]; ok && now.Sub(last) < l.cooldown {
		return false, nil
	}
	l.lastSeen[key] = now
	return true, nil
}

func (l *MemoryLimiter) Release(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.lastSeen, key)
	return nil
}

// Sweep removes entries idle for longer than the retention period and returns how
// many were removed.
func (l *MemoryLimiter) Sweep() int {
	now := l.clock.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for key, last := range l.lastSeen {
		if now.Sub(last) > l.retention {
			delete(l.lastSeen, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked keys.
func (l *MemoryLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.lastSeen)
}

// Run sweeps every interval until ctx is done.
func (l *MemoryLimiter) Run(ctx context.Context, interval time.Duration, onSweep func(removed int)) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed := l.Sweep()
			if onSweep != nil {
				onSweep(removed)
			}
		}
	}
}

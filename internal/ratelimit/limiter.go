// Package ratelimit counts attempts per key in a fixed window. Redis holds the
// counters when configured so limits survive restarts and are shared between
// instances; otherwise an in-process store is used.
package ratelimit

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// Store increments the counter for key and reports the count and the time
// until the window resets.
type Store interface {
	Incr(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
	Reset(ctx context.Context, key string) error
}

type Limiter struct {
	store    Store
	fallback *MemoryStore
	limit    int64
	window   time.Duration
}

// New returns a limiter allowing limit hits per window. A nil store means
// in-process only.
func New(store Store, limit int, window time.Duration) *Limiter {
	fallback := NewMemoryStore()
	if store == nil {
		store = fallback
	}
	return &Limiter{
		store:    store,
		fallback: fallback,
		limit:    int64(limit),
		window:   window,
	}
}

// Allow records a hit for key. When the limit is exceeded it returns false and
// how long until the caller may retry.
func (l *Limiter) Allow(ctx context.Context, key string) (bool, time.Duration) {
	count, ttl, err := l.store.Incr(ctx, key, l.window)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("rate limit store unavailable, using local counters")
		count, ttl, _ = l.fallback.Incr(ctx, key, l.window)
	}
	if count > l.limit {
		if ttl <= 0 {
			ttl = l.window
		}
		return false, ttl
	}
	return true, 0
}

// Reset clears the counter, e.g. after a successful login.
func (l *Limiter) Reset(ctx context.Context, key string) {
	if err := l.store.Reset(ctx, key); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("failed to reset rate limit")
	}
	_ = l.fallback.Reset(ctx, key)
}

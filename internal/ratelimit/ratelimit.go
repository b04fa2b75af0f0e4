// Package ratelimit provides a keyed attempt counter with a TTL window,
// injected wherever attempts must be bounded (login throttling). The counter
// store is an interface so tests can run against an in-memory clock.
package ratelimit

import (
	"context"
	"time"
)

// CounterStore increments a key and returns the new count; the key expires
// after window once created.
type CounterStore interface {
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
	Reset(ctx context.Context, key string) error
}

type Limiter struct {
	store  CounterStore
	limit  int
	window time.Duration
	prefix string
}

func New(store CounterStore, prefix string, limit int, window time.Duration) *Limiter {
	return &Limiter{store: store, limit: limit, window: window, prefix: prefix + ":"}
}

// Allow records one attempt against key and reports whether it stays within
// the limit.
func (l *Limiter) Allow(ctx context.Context, key string) (bool, error) {
	count, err := l.store.Incr(ctx, l.prefix+key, l.window)
	if err != nil {
		return false, err
	}
	return count <= int64(l.limit), nil
}

// Clear resets the counter for key, e.g. after a successful login.
func (l *Limiter) Clear(ctx context.Context, key string) error {
	return l.store.Reset(ctx, l.prefix+key)
}

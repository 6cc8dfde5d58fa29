// Package ratelimit bounds request volume per actor key.
package ratelimit

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Limiter admits or denies a request attributed to an actor key.
type Limiter interface {
	// Admit reports whether the actor identified by key may proceed.
	// A denied request does not consume quota.
	Admit(ctx context.Context, key string) bool

	// Size returns the number of actor keys currently tracked.
	Size() int64
}

// record holds one actor's counter for the current window.
type record struct {
	count int
	reset time.Time
}

// memoryLimiter implements Limiter with a process-local fixed window per key.
// State does not survive a restart and is not shared across instances; under
// horizontal scale-out the effective limit is perInstanceLimit * instanceCount.
type memoryLimiter struct {
	mu     sync.Mutex
	seen   map[string]*record
	max    int
	window time.Duration
	now    func() time.Time
	size   atomic.Int64
}

// NewMemoryLimiter creates a process-local limiter with configuration options.
func NewMemoryLimiter(opts ...Option) Limiter {
	l := &memoryLimiter{
		seen:   make(map[string]*record),
		max:    defaultMaxPerWindow,
		window: defaultWindow,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Admit applies the fixed-window rule: first sight of a key opens a window
// with count=1; an expired window resets; otherwise the counter increments
// until it reaches the maximum, after which requests are denied without
// consuming quota. Stale records are overwritten on next use, never reaped.
func (l *memoryLimiter) Admit(_ context.Context, key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	rec, ok := l.seen[key]
	if !ok {
		l.seen[key] = &record{count: 1, reset: now.Add(l.window)}
		l.size.Add(1)
		return true
	}
	if now.After(rec.reset) {
		rec.count = 1
		rec.reset = now.Add(l.window)
		return true
	}
	if rec.count >= l.max {
		return false
	}
	rec.count++
	return true
}

// Size returns the number of tracked actor keys.
func (l *memoryLimiter) Size() int64 {
	return l.size.Load()
}

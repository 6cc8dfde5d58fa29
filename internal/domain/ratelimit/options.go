// Package ratelimit bounds request volume per actor key.
package ratelimit

import "time"

// Default window parameters. Entry points override these from config.
const (
	defaultMaxPerWindow = 10
	defaultWindow       = time.Hour
)

// Option applies a configuration option to the memoryLimiter.
type Option func(*memoryLimiter)

// WithLimit sets the maximum number of admitted requests per window.
func WithLimit(max int) Option {
	return func(l *memoryLimiter) {
		if max > 0 {
			l.max = max
		}
	}
}

// WithWindow sets the window length.
func WithWindow(window time.Duration) Option {
	return func(l *memoryLimiter) {
		if window > 0 {
			l.window = window
		}
	}
}

// WithNow overrides the clock. Used by tests to step across window expiry.
func WithNow(now func() time.Time) Option {
	return func(l *memoryLimiter) {
		if now != nil {
			l.now = now
		}
	}
}

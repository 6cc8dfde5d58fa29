package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vallarta-sunsets/intake/pkg/logger"
)

// redisLimiter implements Limiter on a shared Redis counter so the window
// holds across concurrently running instances. Counters use INCR with an
// expiry set when the window opens.
type redisLimiter struct {
	client *redis.Client
	prefix string
	max    int
	window time.Duration
	log    logger.Logger
}

// NewRedisLimiter creates a limiter backed by the Redis instance at addr.
// max and window define the per-key quota.
func NewRedisLimiter(addr string, max int, window time.Duration, log logger.Logger) Limiter {
	if max <= 0 {
		max = defaultMaxPerWindow
	}
	if window <= 0 {
		window = defaultWindow
	}
	return &redisLimiter{
		client: redis.NewClient(&redis.Options{Addr: addr}),
		prefix: "ratelimit:",
		max:    max,
		window: window,
		log:    log,
	}
}

// Admit increments the key's counter, opening a fresh window on first use.
// Rate limiting is best-effort: a Redis failure admits the request rather
// than turning an availability problem into a hard intake outage.
func (l *redisLimiter) Admit(ctx context.Context, key string) bool {
	k := l.prefix + key
	count, err := l.client.Incr(ctx, k).Result()
	if err != nil {
		if l.log != nil {
			l.log.Warn(ctx, "rate limit backend unavailable; admitting", logger.String("key", key), logger.Error(err))
		}
		return true
	}
	if count == 1 {
		if err := l.client.Expire(ctx, k, l.window).Err(); err != nil && l.log != nil {
			l.log.Warn(ctx, "rate limit expiry not set", logger.String("key", key), logger.Error(err))
		}
	}
	return count <= int64(l.max)
}

// Size is not tracked for the shared backend.
func (l *redisLimiter) Size() int64 {
	return 0
}

package ratelimit

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLimiter performs rate limiting checks against Redis using INCR + EXPIRE
// fixed windows.
type RedisLimiter struct {
	client *redis.Client
	rule   Rule
}

// NewRedisLimiter creates a limiter backed by the given Redis client.
func NewRedisLimiter(client *redis.Client, rule Rule) *RedisLimiter {
	return &RedisLimiter{client: client, rule: rule}
}

// Allow increments the identifier's counter and sets the expiry on first access.
//
// On Redis errors the method fails open (returns true) so that a Redis outage
// does not block legitimate traffic.
func (l *RedisLimiter) Allow(ctx context.Context, identifier string) (bool, error) {
	if l.rule.Limit <= 0 {
		return true, nil
	}
	key := l.rule.Key + identifier

	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		log.Printf("[ratelimit] redis INCR error key=%s: %v (failing open)", key, err)
		return true, err
	}

	if count == 1 {
		if err := l.client.Expire(ctx, key, l.rule.Window).Err(); err != nil {
			log.Printf("[ratelimit] redis EXPIRE error key=%s: %v (failing open)", key, err)
			// a key without TTL would block the identifier forever
			l.client.Del(ctx, key)
			return true, err
		}
	}

	return int(count) <= l.rule.Limit, nil
}

// Remaining returns the number of requests the identifier has left in the
// current window. On Redis errors it returns the full limit (fail open).
// A non-positive limit means unlimited and reports -1.
func (l *RedisLimiter) Remaining(ctx context.Context, identifier string) (int, error) {
	if l.rule.Limit <= 0 {
		return -1, nil
	}
	key := l.rule.Key + identifier

	count, err := l.client.Get(ctx, key).Int()
	if err == redis.Nil {
		return l.rule.Limit, nil
	}
	if err != nil {
		log.Printf("[ratelimit] redis GET error key=%s: %v (failing open)", key, err)
		return l.rule.Limit, err
	}

	remaining := l.rule.Limit - count
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}

// GetStats describes the limiter configuration
func (l *RedisLimiter) GetStats() Stats {
	return Stats{
		Enabled:       true,
		Backend:       "redis",
		Limit:         l.rule.Limit,
		WindowSeconds: int(l.rule.Window / time.Second),
	}
}

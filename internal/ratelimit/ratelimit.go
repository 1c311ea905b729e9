// Package ratelimit provides fixed-window request limiting for the auth endpoints.
package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"tutorsite/internal/config"

	"github.com/redis/go-redis/v9"
)

// Limiter decides whether another request for key fits in the current window.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

type window struct {
	count   int
	resetAt time.Time
}

// MemoryLimiter is an in-process fixed-window limiter.
type MemoryLimiter struct {
	mu      sync.Mutex
	entries map[string]*window
	rate    int
	window  time.Duration
	now     func() time.Time
}

// NewMemoryLimiter creates a limiter allowing rate requests per window of length size.
func NewMemoryLimiter(rate int, size time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		entries: make(map[string]*window),
		rate:    rate,
		window:  size,
		now:     time.Now,
	}
}

// Allow records a request for key and reports whether it is within the limit.
func (m *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	m.prune(now)
	entry, ok := m.entries[key]
	if !ok {
		entry = &window{resetAt: now.Add(m.window)}
		m.entries[key] = entry
	}
	if entry.count >= m.rate {
		return false, nil
	}
	entry.count++
	return true, nil
}

// prune drops windows that have ended. Callers hold mu.
func (m *MemoryLimiter) prune(now time.Time) {
	for key, entry := range m.entries {
		if !now.Before(entry.resetAt) {
			delete(m.entries, key)
		}
	}
}

// incrWithExpiry increments the counter and starts its window on the first hit.
var incrWithExpiry = redis.NewScript(`
local current = redis.call('INCR', KEYS[1])
if current == 1 then
	redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
return current
`)

// RedisLimiter is a fixed-window limiter shared across instances through Redis.
type RedisLimiter struct {
	client    redis.Scripter
	keyPrefix string
	rate      int
	window    time.Duration
}

// NewRedisLimiter creates a Redis-backed limiter.
func NewRedisLimiter(client redis.Scripter, keyPrefix string, rate int, size time.Duration) *RedisLimiter {
	if keyPrefix == "" {
		keyPrefix = "tutorsite:ratelimit:"
	}
	return &RedisLimiter{client: client, keyPrefix: keyPrefix, rate: rate, window: size}
}

// Allow records a request for key and reports whether it is within the limit.
func (r *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	count, err := incrWithExpiry.Run(ctx, r.client, []string{r.keyPrefix + key}, r.window.Milliseconds()).Int64()
	if err != nil {
		return false, fmt.Errorf("redis rate limit: %w", err)
	}
	return count <= int64(r.rate), nil
}

// New builds the limiter selected by cfg. It returns nil when limiting is
// disabled (RATE_LIMIT_REQUESTS <= 0).
func New(cfg config.Config) (Limiter, error) {
	if cfg.RateLimitRequests <= 0 {
		return nil, nil
	}
	size := cfg.RateLimitWindow()
	if size <= 0 {
		size = time.Minute
	}
	redisURL := strings.TrimSpace(cfg.RedisURL)
	if redisURL == "" {
		return NewMemoryLimiter(cfg.RateLimitRequests, size), nil
	}
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	return NewRedisLimiter(redis.NewClient(opts), "", cfg.RateLimitRequests, size), nil
}

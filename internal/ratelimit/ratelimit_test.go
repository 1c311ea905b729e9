package ratelimit

import (
	"context"
	"testing"
	"time"

	"tutorsite/internal/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestMemoryLimiterFixedWindow(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	limiter := NewMemoryLimiter(2, time.Minute)
	limiter.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if ok, _ := limiter.Allow(ctx, "login:1.2.3.4"); !ok {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if ok, _ := limiter.Allow(ctx, "login:1.2.3.4"); ok {
		t.Fatal("third request should be limited")
	}
	if ok, _ := limiter.Allow(ctx, "login:5.6.7.8"); !ok {
		t.Fatal("other keys have their own window")
	}

	now = now.Add(time.Minute)
	if ok, _ := limiter.Allow(ctx, "login:1.2.3.4"); !ok {
		t.Fatal("expected a fresh window after the reset time")
	}
}

func TestRedisLimiterFixedWindow(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	limiter := NewRedisLimiter(client, "test:", 3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, err := limiter.Allow(ctx, "register:ip")
		if err != nil {
			t.Fatalf("allow: %v", err)
		}
		if !ok {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if ok, err := limiter.Allow(ctx, "register:ip"); err != nil || ok {
		t.Fatalf("fourth request should be limited, ok=%v err=%v", ok, err)
	}
	if ttl := mr.TTL("test:register:ip"); ttl <= 0 || ttl > time.Minute {
		t.Fatalf("expected window ttl to be set, got %v", ttl)
	}

	mr.FastForward(time.Minute + time.Second)
	if ok, err := limiter.Allow(ctx, "register:ip"); err != nil || !ok {
		t.Fatalf("expected a fresh window, ok=%v err=%v", ok, err)
	}
}

func TestRedisLimiterReportsErrors(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	limiter := NewRedisLimiter(client, "", 1, time.Minute)
	mr.Close()

	if _, err := limiter.Allow(context.Background(), "k"); err == nil {
		t.Fatal("expected error when redis is unavailable")
	}
}

func TestNewSelectsBackend(t *testing.T) {
	disabled, err := New(config.Config{RateLimitRequests: 0})
	if err != nil || disabled != nil {
		t.Fatalf("expected disabled limiter, got %v (%v)", disabled, err)
	}

	memory, err := New(config.Config{RateLimitRequests: 5, RateLimitWindowSeconds: 30})
	if err != nil {
		t.Fatalf("memory: %v", err)
	}
	if _, ok := memory.(*MemoryLimiter); !ok {
		t.Fatalf("expected *MemoryLimiter, got %T", memory)
	}

	mr := miniredis.RunT(t)
	shared, err := New(config.Config{RateLimitRequests: 5, RateLimitWindowSeconds: 30, RedisURL: "redis://" + mr.Addr() + "/0"})
	if err != nil {
		t.Fatalf("redis: %v", err)
	}
	if _, ok := shared.(*RedisLimiter); !ok {
		t.Fatalf("expected *RedisLimiter, got %T", shared)
	}

	if _, err := New(config.Config{RateLimitRequests: 5, RedisURL: "::not a url"}); err == nil {
		t.Fatal("expected error for invalid REDIS_URL")
	}
}

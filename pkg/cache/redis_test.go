package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedis(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	c := NewRedisCache(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "")
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestRedisCache(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestRedis(t)

	if _, hit, err := c.Get(ctx, "k"); err != nil || hit {
		t.Fatalf("empty Get = %v, %v", hit, err)
	}
	if err := c.Set(ctx, "k", []byte("value"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if !mr.Exists(DefaultRedisPrefix + "k") {
		t.Error("key should be stored under the default prefix")
	}
	data, hit, err := c.Get(ctx, "k")
	if err != nil || !hit || string(data) != "value" {
		t.Fatalf("Get = %q, %v, %v", data, hit, err)
	}

	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("deleted key should miss")
	}
}

func TestRedisCacheTTL(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestRedis(t)

	if err := c.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if ttl := mr.TTL(DefaultRedisPrefix + "k"); ttl != time.Minute {
		t.Errorf("TTL = %v, want 1m", ttl)
	}
	mr.FastForward(2 * time.Minute)
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("expired key should miss")
	}
}

func TestRedisCacheUnavailable(t *testing.T) {
	c, mr := newTestRedis(t)
	c.WithBackoff(Backoff{Attempts: 2, Delay: time.Millisecond})
	mr.Close()

	_, _, err := c.Get(context.Background(), "k")
	if !errors.Is(err, ErrNetwork) {
		t.Errorf("Get on closed server = %v, want ErrNetwork", err)
	}
	if !IsRetryable(err) {
		t.Error("network failures should be retryable")
	}
}

func TestDialRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	defer mr.Close()

	c, err := DialRedis(context.Background(), mr.Addr())
	if err != nil {
		t.Fatalf("DialRedis: %v", err)
	}
	_ = c.Close()

	mr.Close()
	if _, err := DialRedis(context.Background(), mr.Addr()); !errors.Is(err, ErrNetwork) {
		t.Errorf("DialRedis on closed server = %v, want ErrNetwork", err)
	}
}

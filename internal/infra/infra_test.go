package infra

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestCacheTTL(t *testing.T) {
	now := time.Date(2026, 1, 5, 9, 30, 0, 0, time.UTC)
	c := NewCache[string](time.Minute).WithClock(func() time.Time { return now })

	c.Set("ATYR", "report")
	if v, ok := c.Get("ATYR"); !ok || v != "report" {
		t.Fatalf("Get = %q, %v", v, ok)
	}

	now = now.Add(time.Minute)
	if _, ok := c.Get("ATYR"); ok {
		t.Error("expected entry to expire at TTL")
	}
	if n := c.Cleanup(); n != 1 {
		t.Errorf("Cleanup = %d, want 1", n)
	}
	if c.Len() != 0 {
		t.Errorf("Len = %d", c.Len())
	}
}

func TestCacheDisabledAndInvalidate(t *testing.T) {
	off := NewCache[int](0)
	off.Set("k", 1)
	if _, ok := off.Get("k"); ok {
		t.Error("zero TTL cache should not store")
	}

	c := NewCache[int](time.Hour)
	c.Set("a", 1)
	c.SetWithTTL("b", 2, time.Minute)
	c.Invalidate("a")
	if _, ok := c.Get("a"); ok {
		t.Error("a should be invalidated")
	}
	c.Flush()
	if c.Len() != 0 {
		t.Errorf("Len after Flush = %d", c.Len())
	}
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(20)
	for i := 0; i < 20; i++ {
		if !rl.Allow() {
			t.Fatalf("burst token %d refused", i)
		}
	}
	if rl.Allow() {
		t.Fatal("bucket should be empty")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	start := time.Now()
	if err := rl.Wait(ctx); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if time.Since(start) < 20*time.Millisecond {
		t.Error("Wait returned before refill")
	}
}

func TestRateLimiterMinimumRate(t *testing.T) {
	rl := NewRateLimiter(0)
	if rl.Burst() != 1 || rl.Limit() != 1 {
		t.Errorf("limit = %v burst = %d, want 1/1", rl.Limit(), rl.Burst())
	}
}

func TestRateLimiterCanceled(t *testing.T) {
	rl := NewRateLimiter(1)
	rl.Allow()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := rl.Wait(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

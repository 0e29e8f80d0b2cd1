package cache

import (
	"context"
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func TestMemoryBackend_GetSet(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBackend()

	// Test miss
	_, ok, err := b.Get(ctx, "key1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if ok {
		t.Error("Expected cache miss")
	}

	// Test set and hit
	if err := b.Set(ctx, "key1", "value1", 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	val, ok, _ := b.Get(ctx, "key1")
	if !ok {
		t.Error("Expected cache hit")
	}
	if val != "value1" {
		t.Errorf("Expected 'value1', got %q", val)
	}

	// Test overwrite
	b.Set(ctx, "key1", "value2", 0)
	val, _, _ = b.Get(ctx, "key1")
	if val != "value2" {
		t.Errorf("Expected 'value2', got %q", val)
	}
}

func TestMemoryBackend_TTL(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	b := NewMemoryBackend(WithClock(clock.Now))

	b.Set(ctx, "key1", "value1", time.Hour)

	ttl, ok := b.TTL("key1")
	if !ok || ttl != time.Hour {
		t.Errorf("TTL = %v (ok=%v), want 1h", ttl, ok)
	}

	clock.Advance(59 * time.Minute)
	if _, ok, _ := b.Get(ctx, "key1"); !ok {
		t.Error("Expected hit before expiry")
	}

	clock.Advance(time.Minute)
	if _, ok, _ := b.Get(ctx, "key1"); ok {
		t.Error("Expected miss after expiry")
	}
	if b.Len() != 0 {
		t.Errorf("Expected expired entry to be removed, Len = %d", b.Len())
	}
}

func TestMemoryBackend_NoTTL(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	b := NewMemoryBackend(WithClock(clock.Now))

	b.Set(ctx, "key1", "value1", 0)
	clock.Advance(365 * 24 * time.Hour)

	ttl, ok := b.TTL("key1")
	if !ok || ttl != 0 {
		t.Errorf("TTL = %v (ok=%v), want 0 with no expiry", ttl, ok)
	}
}

func TestMemoryBackend_Incr(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	b := NewMemoryBackend(WithClock(clock.Now))

	for want := int64(1); want <= 3; want++ {
		n, err := b.Incr(ctx, "hits")
		if err != nil {
			t.Fatalf("Incr failed: %v", err)
		}
		if n != want {
			t.Errorf("Incr = %d, want %d", n, want)
		}
	}

	// Incr keeps an existing expiry
	b.IncrWithTTL(ctx, "count", time.Hour)
	clock.Advance(30 * time.Minute)
	b.Incr(ctx, "count")
	if ttl, _ := b.TTL("count"); ttl != 30*time.Minute {
		t.Errorf("TTL after Incr = %v, want 30m", ttl)
	}

	// IncrWithTTL refreshes it
	n, _ := b.IncrWithTTL(ctx, "count", time.Hour)
	if n != 3 {
		t.Errorf("IncrWithTTL = %d, want 3", n)
	}
	if ttl, _ := b.TTL("count"); ttl != time.Hour {
		t.Errorf("TTL after IncrWithTTL = %v, want 1h", ttl)
	}

	// expired counters restart at 1
	clock.Advance(2 * time.Hour)
	n, _ = b.IncrWithTTL(ctx, "count", time.Hour)
	if n != 1 {
		t.Errorf("IncrWithTTL after expiry = %d, want 1", n)
	}
}

func TestMemoryBackend_Incr_NotInteger(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBackend()
	b.Set(ctx, "text", "hello", 0)

	if _, err := b.Incr(ctx, "text"); err == nil {
		t.Error("expected error incrementing a non-integer value")
	}
	if _, err := b.Counters(ctx, "text"); err == nil {
		t.Error("expected error reading a non-integer counter")
	}
}

func TestMemoryBackend_Counters(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBackend()
	b.Incr(ctx, "a")
	b.Incr(ctx, "a")
	b.Incr(ctx, "c")

	got, err := b.Counters(ctx, "a", "b", "c")
	if err != nil {
		t.Fatalf("Counters failed: %v", err)
	}
	want := []int64{2, 0, 1}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Counters[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestMemoryBackend_Info(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	b := NewMemoryBackend(WithClock(clock.Now))

	b.Set(ctx, "k1", "v1", 0)
	b.Set(ctx, "k2", "v2", time.Minute)
	clock.Advance(time.Hour)

	info, err := b.Info(ctx)
	if err != nil {
		t.Fatalf("Info failed: %v", err)
	}
	if info.Keys != 1 {
		t.Errorf("Keys = %d, want 1", info.Keys)
	}
	if info.MemoryUsed != "4 B" {
		t.Errorf("MemoryUsed = %q, want %q", info.MemoryUsed, "4 B")
	}
}

func TestMemoryBackend_Purge(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	b := NewMemoryBackend(WithClock(clock.Now))

	b.Set(ctx, "short", "v", time.Second)
	b.Set(ctx, "long", "v", time.Hour)
	clock.Advance(time.Minute)

	b.Purge()
	if b.Len() != 1 {
		t.Errorf("Len after Purge = %d, want 1", b.Len())
	}
}

func TestMemoryBackend_ConcurrentIncr(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBackend()

	const workers = 50
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b.IncrWithTTL(ctx, "count", time.Hour)
		}()
	}
	wg.Wait()

	got, _ := b.Counters(ctx, "count")
	if got[0] != workers {
		t.Errorf("count = %d, want %d", got[0], workers)
	}
}

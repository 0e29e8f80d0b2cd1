package cache

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
)

// memEntry holds a stored value with its expiry.
type memEntry struct {
	value     string
	expiresAt time.Time // zero => no TTL
}

func (e memEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// MemoryBackend is a thread-safe in-process Backend. Useful for a single
// instance, the CLI, and tests; it does not share state across processes.
type MemoryBackend struct {
	mu      sync.RWMutex
	entries map[string]memEntry
	now     func() time.Time
}

// MemoryOption configures a MemoryBackend.
type MemoryOption func(*MemoryBackend)

// WithClock replaces time.Now, letting tests control expiry.
func WithClock(now func() time.Time) MemoryOption {
	return func(m *MemoryBackend) {
		m.now = now
	}
}

// NewMemoryBackend creates an empty in-memory backend.
func NewMemoryBackend(opts ...MemoryOption) *MemoryBackend {
	m := &MemoryBackend{
		entries: make(map[string]memEntry),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

var _ Backend = (*MemoryBackend)(nil)

// Get retrieves a value. Expired entries are removed and reported as a miss.
func (m *MemoryBackend) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()

	if !ok {
		return "", false, nil
	}

	if e.expired(m.now()) {
		m.mu.Lock()
		// re-check: a concurrent Set may have replaced it
		if cur, ok := m.entries[key]; ok && cur.expired(m.now()) {
			delete(m.entries, key)
		}
		m.mu.Unlock()
		return "", false, nil
	}

	return e.value, true, nil
}

// Set stores a value with the given TTL.
func (m *MemoryBackend) Set(_ context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = memEntry{value: value, expiresAt: m.expiry(ttl)}
	return nil
}

// Incr increments a counter, keeping any existing expiry.
func (m *MemoryBackend) Incr(_ context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, n, err := m.incrLocked(key)
	if err != nil {
		return 0, err
	}
	m.entries[key] = e
	return n, nil
}

// IncrWithTTL increments a counter and refreshes its expiry in one critical section.
func (m *MemoryBackend) IncrWithTTL(_ context.Context, key string, ttl time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, n, err := m.incrLocked(key)
	if err != nil {
		return 0, err
	}
	e.expiresAt = m.expiry(ttl)
	m.entries[key] = e
	return n, nil
}

// incrLocked must be called with the write lock held.
func (m *MemoryBackend) incrLocked(key string) (memEntry, int64, error) {
	e, ok := m.entries[key]
	if !ok || e.expired(m.now()) {
		e = memEntry{value: "0"}
	}
	n, err := strconv.ParseInt(e.value, 10, 64)
	if err != nil {
		return memEntry{}, 0, fmt.Errorf("value at %s is not an integer", key)
	}
	n++
	e.value = strconv.FormatInt(n, 10)
	return e, n, nil
}

// Counters reads integer values; missing or expired keys read as 0.
func (m *MemoryBackend) Counters(_ context.Context, keys ...string) ([]int64, error) {
	now := m.now()
	out := make([]int64, len(keys))

	m.mu.RLock()
	defer m.mu.RUnlock()

	for i, k := range keys {
		e, ok := m.entries[k]
		if !ok || e.expired(now) {
			continue
		}
		n, err := strconv.ParseInt(e.value, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("value at %s is not an integer", k)
		}
		out[i] = n
	}
	return out, nil
}

// TTL returns the remaining lifetime of key, 0 if it has no expiry,
// and false if it is missing or expired.
func (m *MemoryBackend) TTL(key string) (time.Duration, bool) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()

	now := m.now()
	if !ok || e.expired(now) {
		return 0, false
	}
	if e.expiresAt.IsZero() {
		return 0, true
	}
	return e.expiresAt.Sub(now), true
}

// Info reports an approximate payload size and the live key count.
func (m *MemoryBackend) Info(_ context.Context) (Info, error) {
	now := m.now()
	var size uint64
	var keys int64

	m.mu.RLock()
	for k, e := range m.entries {
		if e.expired(now) {
			continue
		}
		size += uint64(len(k) + len(e.value))
		keys++
	}
	m.mu.RUnlock()

	return Info{MemoryUsed: humanize.Bytes(size), Keys: keys}, nil
}

// Len returns the number of entries (including expired ones not yet removed).
func (m *MemoryBackend) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Purge removes expired entries.
func (m *MemoryBackend) Purge() {
	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, e := range m.entries {
		if e.expired(now) {
			delete(m.entries, k)
		}
	}
}

func (m *MemoryBackend) Ping(context.Context) error { return nil }
func (m *MemoryBackend) Close() error               { return nil }

func (m *MemoryBackend) expiry(ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return m.now().Add(ttl)
}

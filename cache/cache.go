// Package cache provides the popularity-tiered translation cache and the
// backing stores it runs on.
package cache

import (
	"context"
	"time"
)

// Sentinels reported in Info when the backend cannot introspect itself.
const (
	UnknownMemory = "unknown"
	UnknownKeys   = int64(-1)
)

// CounterStore is the atomic-counter capability the cache depends on.
// Increments must be atomic at the store level; the cache never locks.
type CounterStore interface {
	// Incr atomically increments key and returns the new value.
	Incr(ctx context.Context, key string) (int64, error)

	// IncrWithTTL atomically increments key and (re)sets its expiry to ttl.
	IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error)

	// Counters reads integer values; missing keys read as 0.
	Counters(ctx context.Context, keys ...string) ([]int64, error)
}

// Backend is a shared key-value store with TTLs and atomic counters.
// Must be safe for concurrent use.
type Backend interface {
	CounterStore

	// Get returns (value, true, nil) on hit; ("", false, nil) on miss.
	// If an IO/remote error happens, return ("", false, err).
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores value with the given TTL. ttl <= 0 means no expiry.
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// Info reports the store's own memory descriptor and key count.
	// Fields that could not be read keep their Unknown* sentinel; the
	// returned error describes what failed.
	Info(ctx context.Context) (Info, error)

	Ping(ctx context.Context) error
	Close() error
}

// Info is the backend introspection result, passed through verbatim.
type Info struct {
	MemoryUsed string
	Keys       int64
}

func unknownInfo() Info {
	return Info{MemoryUsed: UnknownMemory, Keys: UnknownKeys}
}

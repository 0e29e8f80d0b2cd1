package cache

import (
	"context"
	"time"

	"github.com/ZaguanLabs/transcache"
	"github.com/ZaguanLabs/transcache/metrics"
)

// Store is the translation cache. All state lives in the Backend; Store
// itself is stateless and safe for concurrent use.
//
// Backend failures never surface: a failed Get is a miss and a failed Put
// reports a request count of 0. Every swallowed failure is logged and
// counted in transcache_cache_errors_total.
type Store struct {
	backend       Backend
	log           transcache.Logger
	policy        TTLPolicy
	counterWindow time.Duration
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithLogger sets the logger for degraded-cache reports.
func WithLogger(l transcache.Logger) StoreOption {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// WithTTLPolicy replaces the default popularity tiering.
func WithTTLPolicy(p TTLPolicy) StoreOption {
	return func(s *Store) {
		s.policy = p
	}
}

// WithCounterWindow sets the popularity counter lifetime (default: 7 days).
func WithCounterWindow(d time.Duration) StoreOption {
	return func(s *Store) {
		if d > 0 {
			s.counterWindow = d
		}
	}
}

// NewStore creates a cache store on top of a backend.
func NewStore(backend Backend, opts ...StoreOption) *Store {
	s := &Store{
		backend:       backend,
		log:           transcache.NopLogger{},
		policy:        DefaultTTLPolicy(),
		counterWindow: CounterWindow,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ transcache.TranslationCache = (*Store)(nil)

// Get looks up the cached translation for a fingerprint and records a hit or miss.
func (s *Store) Get(ctx context.Context, fingerprint string) (string, bool) {
	key := transcache.CacheKey(fingerprint)

	val, ok, err := s.backend.Get(ctx, key)
	if err != nil {
		s.degraded("get", key, err)
		ok = false
	}

	if ok {
		metrics.CacheHits.Inc()
		s.record(ctx, transcache.HitsKey)
		return val, true
	}

	metrics.CacheMisses.Inc()
	s.record(ctx, transcache.MissesKey)
	return "", false
}

// Put stores a fresh translation. It bumps the popularity counter first and
// uses the new count to choose the entry TTL. Returns the popularity count,
// or 0 if the backend failed.
func (s *Store) Put(ctx context.Context, fingerprint, text string) int64 {
	countKey := transcache.CountKey(fingerprint)
	count, err := s.backend.IncrWithTTL(ctx, countKey, s.counterWindow)
	if err != nil {
		s.degraded("put", countKey, err)
		return 0
	}

	tier := s.policy.TierFor(count)
	key := transcache.CacheKey(fingerprint)
	if err := s.backend.Set(ctx, key, text, tier.TTL); err != nil {
		s.degraded("put", key, err)
		return 0
	}

	metrics.CacheTierAssigned.WithLabelValues(tier.Name).Inc()
	s.log.Debug("cache entry stored", transcache.Fields{
		"key":   key,
		"count": count,
		"tier":  tier.Name,
		"ttl":   tier.TTL.String(),
	})
	return count
}

// Stats returns the aggregate hit/miss counters and backend introspection.
// It never fails; unreadable parts fall back to zero or Unknown* values.
func (s *Store) Stats(ctx context.Context) Snapshot {
	var hits, misses int64
	counters, err := s.backend.Counters(ctx, transcache.HitsKey, transcache.MissesKey)
	if err != nil {
		s.degraded("stats", transcache.HitsKey, err)
	} else {
		hits, misses = counters[0], counters[1]
	}

	info, err := s.backend.Info(ctx)
	if err != nil {
		s.degraded("info", "", err)
		// a backend that read nothing may return the zero Info
		if info == (Info{}) {
			info = unknownInfo()
		}
	}
	if info.MemoryUsed == "" {
		info.MemoryUsed = UnknownMemory
	}

	return newSnapshot(hits, misses, info)
}

// Ping checks the backend connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.backend.Ping(ctx)
}

// Backend returns the underlying backend.
func (s *Store) Backend() Backend {
	return s.backend
}

func (s *Store) record(ctx context.Context, key string) {
	if _, err := s.backend.Incr(ctx, key); err != nil {
		s.degraded("stats", key, err)
	}
}

func (s *Store) degraded(op, key string, err error) {
	metrics.CacheErrors.WithLabelValues(op).Inc()
	cerr := &transcache.CacheError{Op: op, Key: key, Cause: err}
	s.log.Warn("cache degraded", transcache.Fields{
		"op":    op,
		"key":   key,
		"error": cerr.Error(),
	})
}

package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisBackend is a Redis-backed Backend shared by every service instance.
type RedisBackend struct {
	client    redis.UniversalClient
	keyPrefix string
}

// RedisConfig holds configuration for the Redis backend.
type RedisConfig struct {
	URL       string // Redis connection URL (e.g., "redis://localhost:6379/0")
	KeyPrefix string // Optional prefix for all keys (default: none)
}

var _ Backend = (*RedisBackend)(nil)

// NewRedisBackend connects to Redis and verifies the connection.
func NewRedisBackend(cfg RedisConfig) (*RedisBackend, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return &RedisBackend{
		client:    client,
		keyPrefix: cfg.KeyPrefix,
	}, nil
}

// NewRedisBackendFromClient creates a RedisBackend from an existing Redis client.
func NewRedisBackendFromClient(client redis.UniversalClient, keyPrefix string) *RedisBackend {
	return &RedisBackend{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// Get retrieves a value from Redis.
func (b *RedisBackend) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := b.client.Get(ctx, b.keyPrefix+key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

// Set stores a value in Redis.
func (b *RedisBackend) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	return b.client.Set(ctx, b.keyPrefix+key, value, ttl).Err()
}

// Incr atomically increments a counter.
func (b *RedisBackend) Incr(ctx context.Context, key string) (int64, error) {
	return b.client.Incr(ctx, b.keyPrefix+key).Result()
}

// IncrWithTTL pipelines INCR + EXPIRE in a single round-trip and returns
// the INCR result. INCR is atomic on the server, so concurrent callers
// never lose an increment.
func (b *RedisBackend) IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	k := b.keyPrefix + key

	var incr *redis.IntCmd
	_, err := b.client.Pipelined(ctx, func(p redis.Pipeliner) error {
		incr = p.Incr(ctx, k)
		p.Expire(ctx, k, ttl)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

// Counters reads integer values with a single MGET. Missing keys map to 0.
func (b *RedisBackend) Counters(ctx context.Context, keys ...string) ([]int64, error) {
	if len(keys) == 0 {
		return []int64{}, nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = b.keyPrefix + k
	}
	vals, err := b.client.MGet(ctx, full...).Result()
	if err != nil {
		return nil, err
	}

	out := make([]int64, len(keys))
	for i, v := range vals {
		switch vv := v.(type) {
		case nil:
			out[i] = 0
		case string:
			n, err := strconv.ParseInt(vv, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("redis counter parse at %s: %w", keys[i], err)
			}
			out[i] = n
		default:
			n, err := strconv.ParseInt(fmt.Sprint(vv), 10, 64)
			if err != nil {
				return nil, fmt.Errorf("redis counter parse at %s: %w", keys[i], err)
			}
			out[i] = n
		}
	}
	return out, nil
}

// Info reads used_memory_human from INFO memory and the key count from DBSIZE.
func (b *RedisBackend) Info(ctx context.Context) (Info, error) {
	info := unknownInfo()
	var errs []error

	raw, err := b.client.Info(ctx, "memory").Result()
	if err != nil {
		errs = append(errs, fmt.Errorf("info memory: %w", err))
	} else if v, ok := infoField(raw, "used_memory_human"); ok {
		info.MemoryUsed = v
	}

	n, err := b.client.DBSize(ctx).Result()
	if err != nil {
		errs = append(errs, fmt.Errorf("dbsize: %w", err))
	} else {
		info.Keys = n
	}

	return info, errors.Join(errs...)
}

// infoField extracts "name:value" from an INFO reply.
func infoField(raw, name string) (string, bool) {
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if v, ok := strings.CutPrefix(line, name+":"); ok {
			return v, true
		}
	}
	return "", false
}

// Ping tests the Redis connection.
func (b *RedisBackend) Ping(ctx context.Context) error {
	return b.client.Ping(ctx).Err()
}

// Close closes the Redis connection.
func (b *RedisBackend) Close() error {
	return b.client.Close()
}

package main

import (
	"fmt"
	"io"

	"github.com/ZaguanLabs/transcache"
	"github.com/ZaguanLabs/transcache/cache"
	"github.com/ZaguanLabs/transcache/config"
	tclogrus "github.com/ZaguanLabs/transcache/log/logrus"
	tczap "github.com/ZaguanLabs/transcache/log/zap"
	"github.com/ZaguanLabs/transcache/provider"
)

// newLogger picks zap for JSON output and logrus for text output.
// The returned func flushes buffered entries.
func newLogger(cfg config.LogConfig, stderr io.Writer) (transcache.Logger, func(), error) {
	switch cfg.Format {
	case config.FormatText:
		l, err := tclogrus.New(stderr, cfg.Level)
		if err != nil {
			return nil, nil, fmt.Errorf("log level: %w", err)
		}
		return l, func() {}, nil
	default:
		l, err := tczap.New(cfg.Level)
		if err != nil {
			return nil, nil, fmt.Errorf("log level: %w", err)
		}
		return l, func() { _ = l.L.Sync() }, nil
	}
}

// newBackend connects to Redis when a URL is configured, else returns a
// process-local memory backend.
func newBackend(cfg config.RedisConfig) (cache.Backend, error) {
	if cfg.URL == "" {
		return cache.NewMemoryBackend(), nil
	}
	b, err := cache.NewRedisBackend(cache.RedisConfig{URL: cfg.URL, KeyPrefix: cfg.KeyPrefix})
	if err != nil {
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}
	return b, nil
}

// newRouter registers every provider adapter. Adapters without a service
// key still serve users who stored their own. Transient failures are retried
// per adapter, beneath the cache.
func newRouter(cfg config.ProvidersConfig, log transcache.Logger) *transcache.Router {
	retry := transcache.DefaultRetryConfig()
	retry.MaxRetries = cfg.Retries

	mymemory := transcache.NewRateLimitedProvider(
		provider.NewMyMemory(provider.MyMemoryConfig{
			BaseURL: cfg.MyMemory.BaseURL,
			Email:   cfg.MyMemory.Email,
		}),
		transcache.RateLimitConfig{RequestsPerMinute: cfg.MyMemory.RequestsPerMinute},
	)

	adapters := []transcache.Provider{
		mymemory,
		provider.NewDeepL(provider.DeepLConfig{
			BaseURL: cfg.DeepL.BaseURL,
			APIKey:  cfg.DeepL.APIKey,
		}),
		provider.NewHelsinki(provider.HelsinkiConfig{
			URL:   cfg.Helsinki.BaseURL,
			Token: cfg.Helsinki.Token,
		}),
		provider.NewOpenAIProvider(provider.OpenAIConfig{
			APIKey:  cfg.OpenAI.APIKey,
			Model:   cfg.OpenAI.Model,
			BaseURL: cfg.OpenAI.BaseURL,
		}),
	}
	for i, p := range adapters {
		adapters[i] = transcache.NewRetryingProvider(p, retry, log)
	}
	return transcache.NewRouter(adapters...)
}

// loadConfig loads and validates the configuration for a command.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

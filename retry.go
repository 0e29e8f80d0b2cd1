package transcache

import (
	"context"
	"errors"
	"time"
)

// RetryConfig controls backoff for transient upstream failures.
type RetryConfig struct {
	MaxRetries int           // attempts after the first; 0 disables retrying
	BaseDelay  time.Duration // wait before the first retry, doubled each time
	MaxDelay   time.Duration // cap on a single wait
}

// DefaultRetryConfig returns the backoff used by the CLI and the server.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries: 3,
		BaseDelay:  time.Second,
		MaxDelay:   30 * time.Second,
	}
}

// delay returns the wait before retry number n (starting at 0).
func (c RetryConfig) delay(n int) time.Duration {
	d := c.BaseDelay
	for i := 0; i < n && d < c.MaxDelay; i++ {
		d *= 2
	}
	if c.MaxDelay > 0 && d > c.MaxDelay {
		d = c.MaxDelay
	}
	return d
}

// WithRetry calls fn until it succeeds, fails with a non-retryable error,
// or runs out of retries. A cancelled context ends the wait early and its
// error is returned.
func WithRetry[T any](ctx context.Context, cfg RetryConfig, fn func() (T, error)) (T, error) {
	var zero T
	for n := 0; ; n++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		v, err := fn()
		if err == nil {
			return v, nil
		}
		if n >= cfg.MaxRetries || !IsRetryable(err) {
			return zero, err
		}

		t := time.NewTimer(cfg.delay(n))
		select {
		case <-ctx.Done():
			t.Stop()
			return zero, ctx.Err()
		case <-t.C:
		}
	}
}

// IsRetryable reports whether err is an upstream failure worth another
// attempt: UpstreamUnavailable or UpstreamTimeout.
func IsRetryable(err error) bool {
	var perr *ProviderError
	if !errors.As(err, &perr) {
		return false
	}
	return perr.Retryable()
}

// RetryingProvider retries transient failures of the wrapped provider.
// Registered beneath the Router, it keeps retries out of the cache path:
// one Service.Translate still records a single hit or miss.
type RetryingProvider struct {
	provider Provider
	config   RetryConfig
	log      Logger
}

// retryingTester keeps the CredentialTester capability of the wrapped provider.
// Probes are not retried; a failed probe already reads as a rejected key.
type retryingTester struct {
	*RetryingProvider
	tester CredentialTester
}

func (p *retryingTester) TestCredential(ctx context.Context, key string) bool {
	return p.tester.TestCredential(ctx, key)
}

// NewRetryingProvider wraps provider with cfg. With MaxRetries <= 0 the
// provider is returned unchanged.
func NewRetryingProvider(provider Provider, cfg RetryConfig, log Logger) Provider {
	if cfg.MaxRetries <= 0 {
		return provider
	}
	if log == nil {
		log = NopLogger{}
	}
	p := &RetryingProvider{provider: provider, config: cfg, log: log}
	if tester, ok := provider.(CredentialTester); ok {
		return &retryingTester{RetryingProvider: p, tester: tester}
	}
	return p
}

// Name implements Provider.
func (p *RetryingProvider) Name() string {
	return p.provider.Name()
}

// Translate implements Provider.
func (p *RetryingProvider) Translate(ctx context.Context, req TranslateRequest) (string, error) {
	attempt := 0
	return WithRetry(ctx, p.config, func() (string, error) {
		attempt++
		text, err := p.provider.Translate(ctx, req)
		if err != nil && attempt <= p.config.MaxRetries && IsRetryable(err) {
			p.log.Debug("retrying provider call", Fields{
				"provider": p.provider.Name(),
				"attempt":  attempt,
				"error":    err.Error(),
			})
		}
		return text, err
	})
}

package transcache

import (
	"context"

	"golang.org/x/time/rate"
)

// RateLimitConfig configures the per-provider rate limiter.
type RateLimitConfig struct {
	RequestsPerMinute int // Maximum requests per minute
	BurstSize         int // Maximum burst size (default: same as RPM)
}

// NewRateLimiter creates a token bucket limiter from cfg.
func NewRateLimiter(cfg RateLimitConfig) *rate.Limiter {
	rpm := cfg.RequestsPerMinute
	if rpm <= 0 {
		rpm = 60 // Default: 60 RPM
	}

	burst := cfg.BurstSize
	if burst <= 0 {
		burst = rpm // Default burst = RPM
	}

	return rate.NewLimiter(rate.Limit(float64(rpm)/60.0), burst)
}

// RateLimitedProvider wraps a Provider with rate limiting. Keyless public
// providers are typically wrapped to stay inside their anonymous quota.
type RateLimitedProvider struct {
	provider Provider
	limiter  *rate.Limiter
}

// rateLimitedTester keeps the CredentialTester capability of the wrapped provider.
type rateLimitedTester struct {
	*RateLimitedProvider
	tester CredentialTester
}

func (p *rateLimitedTester) TestCredential(ctx context.Context, key string) bool {
	return p.tester.TestCredential(ctx, key)
}

// NewRateLimitedProvider creates a new rate-limited provider. If provider
// accepts user credentials, so does the wrapper.
func NewRateLimitedProvider(provider Provider, cfg RateLimitConfig) Provider {
	p := &RateLimitedProvider{
		provider: provider,
		limiter:  NewRateLimiter(cfg),
	}
	if tester, ok := provider.(CredentialTester); ok {
		return &rateLimitedTester{RateLimitedProvider: p, tester: tester}
	}
	return p
}

// Name implements Provider.
func (p *RateLimitedProvider) Name() string {
	return p.provider.Name()
}

// Translate implements Provider with rate limiting.
func (p *RateLimitedProvider) Translate(ctx context.Context, req TranslateRequest) (string, error) {
	// Wait for rate limit
	if err := p.limiter.Wait(ctx); err != nil {
		return "", &ProviderError{
			Provider: p.provider.Name(),
			Kind:     ErrUpstreamUnavailable,
			Message:  "rate limit wait cancelled",
			Cause:    err,
		}
	}

	return p.provider.Translate(ctx, req)
}

// Limiter returns the underlying rate limiter for inspection.
func (p *RateLimitedProvider) Limiter() *rate.Limiter {
	return p.limiter
}

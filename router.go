package transcache

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ZaguanLabs/transcache/metrics"
)

// Router dispatches translation calls to registered provider adapters.
// Names are matched case-insensitively. An unregistered name is always
// ErrUnsupportedProvider; there is no default provider.
type Router struct {
	mu        sync.RWMutex
	providers map[string]Provider
}

// NewRouter creates a router with the given adapters registered.
func NewRouter(providers ...Provider) *Router {
	r := &Router{providers: make(map[string]Provider)}
	for _, p := range providers {
		r.Register(p)
	}
	return r
}

// Register adds or replaces an adapter under its Name.
func (r *Router) Register(p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[normalizeProvider(p.Name())] = p
}

// Lookup returns the adapter registered under name.
func (r *Router) Lookup(name string) (Provider, error) {
	key := normalizeProvider(name)

	r.mu.RLock()
	p, ok := r.providers[key]
	r.mu.RUnlock()

	if !ok {
		return nil, &ProviderError{
			Provider: name,
			Kind:     ErrUnsupportedProvider,
		}
	}
	return p, nil
}

// Has reports whether name is registered.
func (r *Router) Has(name string) bool {
	_, err := r.Lookup(name)
	return err == nil
}

// Providers returns the registered names, sorted.
func (r *Router) Providers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AcceptsUserCredentials reports whether the named provider takes
// user-supplied API keys.
func (r *Router) AcceptsUserCredentials(name string) bool {
	p, err := r.Lookup(name)
	if err != nil {
		return false
	}
	_, ok := p.(CredentialTester)
	return ok
}

// Translate invokes exactly one adapter. A credential is forwarded only to
// providers that accept user credentials; others get the request without it.
func (r *Router) Translate(ctx context.Context, name string, req TranslateRequest) (string, error) {
	p, err := r.Lookup(name)
	if err != nil {
		metrics.ProviderRequests.WithLabelValues("unknown", outcome(err)).Inc()
		return "", err
	}
	key := normalizeProvider(name)

	if _, ok := p.(CredentialTester); !ok {
		req.Credential = ""
	}

	start := time.Now()
	text, err := p.Translate(ctx, req)
	metrics.ProviderLatency.WithLabelValues(key).Observe(time.Since(start).Seconds())

	if err != nil {
		err = normalizeError(key, err)
	}
	metrics.ProviderRequests.WithLabelValues(key, outcome(err)).Inc()

	return text, err
}

// TestCredential probes a candidate key against the named provider.
// Unknown providers and providers without user credentials report false.
func (r *Router) TestCredential(ctx context.Context, name, key string) bool {
	p, err := r.Lookup(name)
	if err != nil {
		return false
	}
	tester, ok := p.(CredentialTester)
	if !ok {
		return false
	}
	return tester.TestCredential(ctx, key)
}

func normalizeProvider(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// normalizeError guarantees a *ProviderError with a known Kind reaches the
// caller even if an adapter leaks a raw error. Adapter errors may be shared
// values, so missing fields are filled on a copy.
func normalizeError(name string, err error) error {
	var perr *ProviderError
	if errors.As(err, &perr) {
		if perr.Provider != "" && perr.Kind != nil {
			return perr
		}
		out := *perr
		if out.Provider == "" {
			out.Provider = name
		}
		if out.Kind == nil {
			out.Kind = ErrUpstreamBadResponse
		}
		return &out
	}

	kind := ErrUpstreamUnavailable
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		kind = ErrUpstreamTimeout
	case errors.Is(err, ErrInvalidCredential):
		kind = ErrInvalidCredential
	case errors.Is(err, ErrUnsupportedLanguagePair):
		kind = ErrUnsupportedLanguagePair
	case errors.Is(err, ErrUpstreamBadResponse):
		kind = ErrUpstreamBadResponse
	}
	return &ProviderError{Provider: name, Kind: kind, Cause: err}
}

// outcome is the metrics label for a provider call result.
func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrUnsupportedProvider):
		return "unsupported_provider"
	case errors.Is(err, ErrInvalidCredential):
		return "invalid_credential"
	case errors.Is(err, ErrUpstreamTimeout):
		return "timeout"
	case errors.Is(err, ErrUpstreamUnavailable):
		return "unavailable"
	case errors.Is(err, ErrUnsupportedLanguagePair):
		return "unsupported_language_pair"
	default:
		return "bad_response"
	}
}

package transcache

import (
	"errors"
	"fmt"
)

// Error kinds. Typed errors below match these with errors.Is.
var (
	// ErrCacheUnavailable marks a backing-store failure. Never fatal to a request.
	ErrCacheUnavailable = errors.New("cache unavailable")

	// ErrUnsupportedProvider is returned for provider names with no registered adapter.
	ErrUnsupportedProvider = errors.New("unsupported provider")

	// ErrInvalidCredential means the upstream rejected the key, or a stored key could not be decrypted.
	ErrInvalidCredential = errors.New("invalid credential")

	// ErrUpstreamUnavailable covers connection failures, rate limits and 5xx responses.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrUpstreamTimeout means the provider did not answer within its deadline.
	ErrUpstreamTimeout = errors.New("upstream timeout")

	// ErrUpstreamBadResponse covers unexpected status codes and malformed bodies.
	ErrUpstreamBadResponse = errors.New("upstream bad response")

	// ErrUnsupportedLanguagePair is returned by providers limited to specific pairs.
	ErrUnsupportedLanguagePair = errors.New("unsupported language pair")

	// ErrInvalidRequest is returned when a request fails validation.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrCredentialNotFound is returned by a CredentialStore when no active key exists.
	ErrCredentialNotFound = errors.New("credential not found")
)

// TranslationError is the base error type for translation failures.
type TranslationError struct {
	Message string
	Cause   error
}

func (e *TranslationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *TranslationError) Unwrap() error {
	return e.Cause
}

// ProviderError indicates an upstream provider failure.
// Kind is one of the Err* sentinels and is matched by errors.Is.
type ProviderError struct {
	Provider   string
	Kind       error
	Message    string
	StatusCode int // HTTP status from the upstream, 0 if none
	Cause      error
}

func (e *ProviderError) Error() string {
	msg := fmt.Sprintf("provider %s: %v", e.Provider, e.Kind)
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.Cause != nil {
		msg += fmt.Sprintf(": %v", e.Cause)
	}
	return msg
}

func (e *ProviderError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	return errs
}

// Retryable reports whether a caller may reasonably retry the request.
// The service itself never retries.
func (e *ProviderError) Retryable() bool {
	return e.Kind == ErrUpstreamUnavailable || e.Kind == ErrUpstreamTimeout
}

// CacheError indicates a cache operation failure.
type CacheError struct {
	Op    string // "get", "put", "stats"
	Key   string
	Cause error
}

func (e *CacheError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("cache error: %s %s: %v", e.Op, e.Key, e.Cause)
	}
	return fmt.Sprintf("cache error: %s %s", e.Op, e.Key)
}

func (e *CacheError) Unwrap() []error {
	if e.Cause != nil {
		return []error{ErrCacheUnavailable, e.Cause}
	}
	return []error{ErrCacheUnavailable}
}

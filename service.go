package transcache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Request defaults and limits.
const (
	DefaultSourceLang = "en"
	DefaultTargetLang = "zh"
	DefaultProvider   = "mymemory"
	MaxTextLength     = 5000 // characters
)

// Service is the translation engine: cache lookup, credential resolution,
// provider routing and cache fill.
type Service struct {
	router      *Router
	cache       TranslationCache
	credentials CredentialStore
	decrypter   CredentialDecrypter
	log         Logger
	maxText     int
}

// Request is a caller's translation request. Empty language and provider
// fields take the package defaults.
type Request struct {
	Text       string
	SourceLang string
	TargetLang string
	Provider   string
	UserID     string // authenticated caller; empty for anonymous use
}

// Result is the outcome of a translation.
type Result struct {
	OriginalText   string
	TranslatedText string
	SourceLang     string
	TargetLang     string
	Provider       string
	Cached         bool

	// RequestCount is the popularity count after this fill; 0 on a cache
	// hit or when the cache could not record it.
	RequestCount int64

	// UsedUserCredential is set when the caller's own stored key was used.
	UsedUserCredential bool
}

// ServiceOption is a functional option for configuring the Service.
type ServiceOption func(*Service)

// WithCache sets the translation cache. Without one every request goes upstream.
func WithCache(cache TranslationCache) ServiceOption {
	return func(s *Service) {
		s.cache = cache
	}
}

// WithCredentials enables per-user API keys read from store and decrypted by dec.
func WithCredentials(store CredentialStore, dec CredentialDecrypter) ServiceOption {
	return func(s *Service) {
		s.credentials = store
		s.decrypter = dec
	}
}

// WithServiceLogger sets the logger.
func WithServiceLogger(l Logger) ServiceOption {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// WithMaxTextLength overrides the request text limit (in characters).
func WithMaxTextLength(n int) ServiceOption {
	return func(s *Service) {
		if n > 0 {
			s.maxText = n
		}
	}
}

// NewService creates a Service routing through router.
func NewService(router *Router, opts ...ServiceOption) *Service {
	s := &Service{
		router:  router,
		log:     NopLogger{},
		maxText: MaxTextLength,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Translate answers from cache when possible; otherwise it calls the named
// provider and fills the cache. Cache failures never fail the request.
// Provider failures are returned as *ProviderError and are never retried.
func (s *Service) Translate(ctx context.Context, req Request) (*Result, error) {
	req, err := s.normalize(req)
	if err != nil {
		return nil, err
	}

	// Unknown providers fail even when the text is cached.
	if !s.router.Has(req.Provider) {
		return nil, &ProviderError{Provider: req.Provider, Kind: ErrUnsupportedProvider}
	}

	result := &Result{
		OriginalText: req.Text,
		SourceLang:   req.SourceLang,
		TargetLang:   req.TargetLang,
		Provider:     req.Provider,
	}

	fp := Fingerprint(req.Text, req.SourceLang, req.TargetLang)

	if s.cache != nil {
		if cached, ok := s.cache.Get(ctx, fp); ok {
			result.TranslatedText = cached
			result.Cached = true
			return result, nil
		}
	}

	credential, err := s.userCredential(ctx, req.UserID, req.Provider)
	if err != nil {
		return nil, err
	}

	translated, err := s.router.Translate(ctx, req.Provider, TranslateRequest{
		Text:       req.Text,
		SourceLang: req.SourceLang,
		TargetLang: req.TargetLang,
		Credential: credential,
	})
	if err != nil {
		s.log.Debug("translation failed", Fields{
			"provider": req.Provider,
			"error":    err.Error(),
		})
		return nil, err
	}

	result.TranslatedText = translated
	result.UsedUserCredential = credential != ""

	if s.cache != nil {
		result.RequestCount = s.cache.Put(ctx, fp, translated)
	}

	return result, nil
}

// TestCredential probes a candidate user key against a provider.
func (s *Service) TestCredential(ctx context.Context, provider, key string) bool {
	return s.router.TestCredential(ctx, provider, key)
}

// Router returns the provider router.
func (s *Service) Router() *Router {
	return s.router
}

// normalize applies defaults and validates the request.
func (s *Service) normalize(req Request) (Request, error) {
	if strings.TrimSpace(req.Text) == "" {
		return req, &TranslationError{Message: "text is required", Cause: ErrInvalidRequest}
	}
	if n := utf8.RuneCountInString(req.Text); n > s.maxText {
		return req, &TranslationError{
			Message: fmt.Sprintf("text is %d characters, limit is %d", n, s.maxText),
			Cause:   ErrInvalidRequest,
		}
	}

	req.SourceLang = NormalizeLang(req.SourceLang)
	if req.SourceLang == "" {
		req.SourceLang = DefaultSourceLang
	}
	req.TargetLang = NormalizeLang(req.TargetLang)
	if req.TargetLang == "" {
		req.TargetLang = DefaultTargetLang
	}
	if req.SourceLang != AutoDetect && !ValidLang(req.SourceLang) {
		return req, &TranslationError{
			Message: fmt.Sprintf("invalid source language %q", req.SourceLang),
			Cause:   ErrInvalidRequest,
		}
	}
	if !ValidLang(req.TargetLang) {
		return req, &TranslationError{
			Message: fmt.Sprintf("invalid target language %q", req.TargetLang),
			Cause:   ErrInvalidRequest,
		}
	}

	if req.Provider == "" {
		req.Provider = DefaultProvider
	} else {
		req.Provider = normalizeProvider(req.Provider)
	}

	return req, nil
}

// userCredential resolves the caller's own key for provider. A missing or
// unreadable record falls back to the service default; a record that cannot
// be decrypted is an InvalidCredential failure.
func (s *Service) userCredential(ctx context.Context, userID, provider string) (string, error) {
	if userID == "" || s.credentials == nil || s.decrypter == nil {
		return "", nil
	}
	if !s.router.AcceptsUserCredentials(provider) {
		return "", nil
	}

	ciphertext, err := s.credentials.ActiveCredential(ctx, userID, provider)
	if errors.Is(err, ErrCredentialNotFound) {
		return "", nil
	}
	if err != nil {
		s.log.Warn("credential lookup failed", Fields{
			"provider": provider,
			"user_id":  userID,
			"error":    err.Error(),
		})
		return "", nil
	}

	key, err := s.decrypter.Decrypt(ciphertext)
	if err != nil {
		return "", &ProviderError{
			Provider: provider,
			Kind:     ErrInvalidCredential,
			Message:  "credential unavailable",
			Cause:    err,
		}
	}
	return key, nil
}

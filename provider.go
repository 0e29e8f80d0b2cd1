package transcache

import "context"

// Provider is the uniform capability every upstream translation adapter implements.
type Provider interface {
	// Name is the registry identifier, e.g. "mymemory".
	Name() string

	// Translate translates a single text. Errors must be *ProviderError
	// values whose Kind is one of the upstream sentinels.
	Translate(ctx context.Context, req TranslateRequest) (string, error)
}

// CredentialTester is implemented by providers that accept user-supplied
// API keys. TestCredential issues a cheap probe and never fails: any error
// is reported as false.
type CredentialTester interface {
	TestCredential(ctx context.Context, key string) bool
}

// TranslateRequest contains the parameters for a single provider call.
type TranslateRequest struct {
	Text       string
	SourceLang string
	TargetLang string
	Credential string // user-supplied key; empty means service default or none
}

// TranslationCache is the interface for translation caching.
// Implementations swallow their own backend failures.
type TranslationCache interface {
	Get(ctx context.Context, fingerprint string) (string, bool)
	Put(ctx context.Context, fingerprint, text string) int64
}

// CredentialStore reads encrypted user credentials from the durable record store.
type CredentialStore interface {
	// ActiveCredential returns the ciphertext of the active, unexpired key
	// for (userID, provider), or ErrCredentialNotFound.
	ActiveCredential(ctx context.Context, userID, provider string) (string, error)
}

// CredentialDecrypter turns a stored ciphertext back into an API key.
type CredentialDecrypter interface {
	Decrypt(ciphertext string) (string, error)
}

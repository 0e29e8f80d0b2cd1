package provider

import (
	"context"
	"fmt"
	"sync"
)

// MockProvider is a mock translation provider for testing.
type MockProvider struct {
	ProviderName string            // registry name (default: "mock")
	Translations map[string]string // Map of source text to translation
	Err          error             // returned by every call when set

	mu          sync.Mutex
	callCount   int
	lastRequest *TranslateRequest
}

// NewMockProvider creates a new mock provider with default translations.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		ProviderName: NameMock,
		Translations: map[string]string{
			"hello":       "你好",
			"Hello":       "Hola",
			"World":       "Mundo",
			"Hello World": "Hola Mundo",
		},
	}
}

// NewNamedMockProvider creates a mock registered under name, e.g. to stand
// in for "mymemory" in tests.
func NewNamedMockProvider(name string) *MockProvider {
	m := NewMockProvider()
	m.ProviderName = name
	return m
}

// Name implements Provider.
func (m *MockProvider) Name() string {
	if m.ProviderName == "" {
		return NameMock
	}
	return m.ProviderName
}

// Translate returns mock translations.
func (m *MockProvider) Translate(ctx context.Context, req TranslateRequest) (string, error) {
	m.mu.Lock()
	m.callCount++
	m.lastRequest = &req
	m.mu.Unlock()

	if m.Err != nil {
		return "", m.Err
	}

	if translation, ok := m.Translations[req.Text]; ok {
		return translation, nil
	}
	// Return bracketed text for unknown translations
	return fmt.Sprintf("[%s]", req.Text), nil
}

// CallCount returns the number of Translate calls.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// LastRequest returns the last request received, or nil.
func (m *MockProvider) LastRequest() *TranslateRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastRequest
}

// Reset resets the call count and last request.
func (m *MockProvider) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount = 0
	m.lastRequest = nil
}

// MockKeyedProvider is a MockProvider that accepts user credentials.
type MockKeyedProvider struct {
	*MockProvider
	ValidKeys map[string]bool
}

// NewMockKeyedProvider creates a keyed mock accepting the given keys.
func NewMockKeyedProvider(name string, validKeys ...string) *MockKeyedProvider {
	keys := make(map[string]bool, len(validKeys))
	for _, k := range validKeys {
		keys[k] = true
	}
	return &MockKeyedProvider{MockProvider: NewNamedMockProvider(name), ValidKeys: keys}
}

// TestCredential implements CredentialTester.
func (m *MockKeyedProvider) TestCredential(_ context.Context, key string) bool {
	return m.ValidKeys[key]
}

// Verify the mocks implement the provider interfaces
var (
	_ Provider         = (*MockProvider)(nil)
	_ CredentialTester = (*MockKeyedProvider)(nil)
)

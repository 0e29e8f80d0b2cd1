// Package provider implements the upstream translation adapters.
package provider

import "github.com/ZaguanLabs/transcache"

// Provider is the interface for translation backends.
// This is an alias to the main package interface for convenience.
type Provider = transcache.Provider

// CredentialTester is an alias to the main package interface.
type CredentialTester = transcache.CredentialTester

// TranslateRequest is an alias to the main package type.
type TranslateRequest = transcache.TranslateRequest

// Provider identifiers.
const (
	NameMyMemory = "mymemory"
	NameDeepL    = "deepl"
	NameHelsinki = "helsinki"
	NameOpenAI   = "openai"
	NameMock     = "mock"
)

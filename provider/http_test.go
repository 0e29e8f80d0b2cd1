package provider

import (
	"errors"
	"net/http"
	"testing"

	"github.com/ZaguanLabs/transcache"
)

func TestKindForStatus(t *testing.T) {
	tests := []struct {
		code int
		kind error
	}{
		{http.StatusBadRequest, transcache.ErrUpstreamBadResponse},
		{http.StatusUnauthorized, transcache.ErrInvalidCredential},
		{http.StatusForbidden, transcache.ErrInvalidCredential},
		{http.StatusNotFound, transcache.ErrUpstreamBadResponse},
		{http.StatusRequestTimeout, transcache.ErrUpstreamTimeout},
		{http.StatusTooManyRequests, transcache.ErrUpstreamUnavailable},
		{456, transcache.ErrUpstreamUnavailable},
		{http.StatusInternalServerError, transcache.ErrUpstreamUnavailable},
		{http.StatusServiceUnavailable, transcache.ErrUpstreamUnavailable},
		{http.StatusGatewayTimeout, transcache.ErrUpstreamTimeout},
	}

	for _, tt := range tests {
		if got := kindForStatus(tt.code); !errors.Is(got, tt.kind) {
			t.Errorf("kindForStatus(%d) = %v, want %v", tt.code, got, tt.kind)
		}
	}
}

func TestSnippet(t *testing.T) {
	long := make([]byte, 500)
	for i := range long {
		long[i] = 'x'
	}

	if got := snippet(long); len(got) != 203 {
		t.Errorf("snippet length = %d, want 203", len(got))
	}
	if got := snippet([]byte("  quota exceeded \n")); got != "quota exceeded" {
		t.Errorf("snippet = %q", got)
	}
}

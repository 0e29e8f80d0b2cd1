package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ZaguanLabs/transcache"
)

// statusFor maps a service error to an HTTP status and a client-safe message.
func statusFor(err error) (int, string, string) {
	switch {
	case errors.Is(err, transcache.ErrInvalidRequest):
		return http.StatusBadRequest, "INVALID_REQUEST", messageOf(err)
	case errors.Is(err, transcache.ErrUnsupportedProvider):
		return http.StatusBadRequest, "UNSUPPORTED_PROVIDER", messageOf(err)
	case errors.Is(err, transcache.ErrUnsupportedLanguagePair):
		return http.StatusBadRequest, "UNSUPPORTED_LANGUAGE_PAIR", messageOf(err)
	case errors.Is(err, transcache.ErrInvalidCredential):
		return http.StatusUnauthorized, "INVALID_CREDENTIAL", "credential unavailable"
	case errors.Is(err, transcache.ErrUpstreamTimeout):
		return http.StatusGatewayTimeout, "UPSTREAM_TIMEOUT", "translation provider timed out"
	case errors.Is(err, transcache.ErrUpstreamUnavailable):
		return http.StatusBadGateway, "UPSTREAM_UNAVAILABLE", "translation provider unavailable"
	case errors.Is(err, transcache.ErrUpstreamBadResponse):
		return http.StatusBadGateway, "UPSTREAM_BAD_RESPONSE", "translation provider returned an invalid response"
	default:
		return http.StatusInternalServerError, "INTERNAL", "internal error"
	}
}

// messageOf strips provider-internal detail from client errors.
func messageOf(err error) string {
	var pe *transcache.ProviderError
	if errors.As(err, &pe) && pe.Kind != nil {
		if pe.Message != "" {
			return pe.Kind.Error() + ": " + pe.Message
		}
		return pe.Kind.Error() + ": " + pe.Provider
	}
	var te *transcache.TranslationError
	if errors.As(err, &te) {
		return te.Message
	}
	return err.Error()
}

// respondError writes the mapped error and records it on the context for the access log.
func respondError(c *gin.Context, err error) {
	status, code, msg := statusFor(err)
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, gin.H{"error": msg, "code": code})
}

// errorBody is the per-item error in batch replies.
func errorBody(err error) gin.H {
	status, code, msg := statusFor(err)
	return gin.H{"error": msg, "code": code, "status": status}
}

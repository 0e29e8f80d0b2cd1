package provider

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/ZaguanLabs/transcache"
)

// Upstream deadlines.
const (
	InteractiveTimeout = 10 * time.Second
	ModelTimeout       = 60 * time.Second
	ProbeTimeout       = 5 * time.Second
)

const maxBodySize = 1 << 20

func timeoutOr(d, def time.Duration) time.Duration {
	if d > 0 {
		return d
	}
	return def
}

// upstream performs HTTP calls for one adapter and maps every failure to
// a *transcache.ProviderError.
type upstream struct {
	name    string
	client  *http.Client
	timeout time.Duration
}

func newUpstream(name string, client *http.Client, timeout time.Duration) upstream {
	if client == nil {
		client = &http.Client{}
	}
	if timeout <= 0 {
		timeout = InteractiveTimeout
	}
	return upstream{name: name, client: client, timeout: timeout}
}

// send executes req under the adapter's deadline and returns the body of a 2xx response.
func (u upstream) send(ctx context.Context, req *http.Request) ([]byte, error) {
	return u.sendWithin(ctx, u.timeout, req)
}

func (u upstream) sendWithin(ctx context.Context, timeout time.Duration, req *http.Request) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req = req.WithContext(ctx)
	req.Header.Set("User-Agent", transcache.UserAgent())

	resp, err := u.client.Do(req)
	if err != nil {
		return nil, u.transportError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, u.transportError(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, u.statusError(resp.StatusCode, body)
	}

	return body, nil
}

func (u upstream) transportError(err error) error {
	kind := transcache.ErrUpstreamUnavailable

	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		kind = transcache.ErrUpstreamTimeout
	}

	return &transcache.ProviderError{
		Provider: u.name,
		Kind:     kind,
		Cause:    err,
	}
}

func (u upstream) statusError(code int, body []byte) error {
	return &transcache.ProviderError{
		Provider:   u.name,
		Kind:       kindForStatus(code),
		Message:    snippet(body),
		StatusCode: code,
	}
}

func (u upstream) badResponse(msg string, cause error) error {
	return &transcache.ProviderError{
		Provider: u.name,
		Kind:     transcache.ErrUpstreamBadResponse,
		Message:  msg,
		Cause:    cause,
	}
}

// kindForStatus maps an upstream HTTP status to an error kind.
// 456 is DeepL's quota-exceeded status.
func kindForStatus(code int) error {
	switch {
	case code == http.StatusUnauthorized, code == http.StatusForbidden:
		return transcache.ErrInvalidCredential
	case code == http.StatusRequestTimeout, code == http.StatusGatewayTimeout:
		return transcache.ErrUpstreamTimeout
	case code == http.StatusTooManyRequests, code == 456, code >= 500:
		return transcache.ErrUpstreamUnavailable
	default:
		return transcache.ErrUpstreamBadResponse
	}
}

// snippet trims an error body for messages.
func snippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	return s
}

func unsupportedPair(name, source, target string) error {
	return &transcache.ProviderError{
		Provider: name,
		Kind:     transcache.ErrUnsupportedLanguagePair,
		Message:  fmt.Sprintf("%s → %s", source, target),
	}
}

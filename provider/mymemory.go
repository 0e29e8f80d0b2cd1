package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ZaguanLabs/transcache"
)

// DefaultMyMemoryURL is the public MyMemory endpoint.
const DefaultMyMemoryURL = "https://api.mymemory.translated.net"

// MyMemory implements Provider using the keyless MyMemory API.
type MyMemory struct {
	baseURL string
	email   string
	http    upstream
}

// MyMemoryConfig holds configuration for the MyMemory provider.
type MyMemoryConfig struct {
	BaseURL    string        // default: DefaultMyMemoryURL
	Email      string        // optional contact address; raises the anonymous daily quota
	HTTPClient *http.Client  // optional
	Timeout    time.Duration // per-call deadline, default: InteractiveTimeout
}

// myMemoryResponse is the subset of the /get reply we read.
type myMemoryResponse struct {
	ResponseData struct {
		TranslatedText string `json:"translatedText"`
	} `json:"responseData"`
	ResponseStatus  json.Number `json:"responseStatus"` // int or quoted int
	ResponseDetails string      `json:"responseDetails"`
}

// NewMyMemory creates a new MyMemory provider.
func NewMyMemory(cfg MyMemoryConfig) *MyMemory {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultMyMemoryURL
	}

	return &MyMemory{
		baseURL: strings.TrimRight(baseURL, "/"),
		email:   cfg.Email,
		http:    newUpstream(NameMyMemory, cfg.HTTPClient, timeoutOr(cfg.Timeout, InteractiveTimeout)),
	}
}

var _ Provider = (*MyMemory)(nil)

// Name implements Provider.
func (p *MyMemory) Name() string { return NameMyMemory }

// Translate translates one text. MyMemory has no auto-detection, so an
// "auto" source is sent as English.
func (p *MyMemory) Translate(ctx context.Context, req TranslateRequest) (string, error) {
	source := req.SourceLang
	if source == "" || source == transcache.AutoDetect {
		source = "en"
	}

	params := url.Values{}
	params.Set("q", req.Text)
	params.Set("langpair", source+"|"+req.TargetLang)
	if p.email != "" {
		params.Set("de", p.email)
	}

	httpReq, err := http.NewRequest(http.MethodGet, p.baseURL+"/get?"+params.Encode(), nil)
	if err != nil {
		return "", p.http.badResponse("building request", err)
	}

	body, err := p.http.send(ctx, httpReq)
	if err != nil {
		return "", err
	}

	var result myMemoryResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", p.http.badResponse("decoding response", err)
	}

	// MyMemory reports failures in the body with HTTP 200. There is no
	// key to reject, so only quota and server statuses are transient.
	status, _ := result.ResponseStatus.Int64()
	if status != http.StatusOK {
		kind := transcache.ErrUpstreamBadResponse
		if status == http.StatusTooManyRequests || status >= 500 {
			kind = transcache.ErrUpstreamUnavailable
		}
		return "", &transcache.ProviderError{
			Provider:   NameMyMemory,
			Kind:       kind,
			Message:    result.ResponseDetails,
			StatusCode: int(status),
		}
	}

	if result.ResponseData.TranslatedText == "" {
		return "", p.http.badResponse("empty translation", nil)
	}

	return result.ResponseData.TranslatedText, nil
}

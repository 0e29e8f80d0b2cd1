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

// DefaultDeepLURL is the DeepL API Free endpoint.
const DefaultDeepLURL = "https://api-free.deepl.com"

// DeepL implements Provider and CredentialTester using the DeepL API.
type DeepL struct {
	baseURL string
	apiKey  string // service default, used when the caller has no key
	http    upstream
}

// DeepLConfig holds configuration for the DeepL provider.
type DeepLConfig struct {
	BaseURL    string // default: DefaultDeepLURL
	APIKey     string // optional service-level key
	HTTPClient *http.Client
	Timeout    time.Duration // per-call deadline, default: InteractiveTimeout
}

type deepLResponse struct {
	Translations []struct {
		DetectedSourceLanguage string `json:"detected_source_language"`
		Text                   string `json:"text"`
	} `json:"translations"`
}

// NewDeepL creates a new DeepL provider.
func NewDeepL(cfg DeepLConfig) *DeepL {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultDeepLURL
	}

	return &DeepL{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  cfg.APIKey,
		http:    newUpstream(NameDeepL, cfg.HTTPClient, timeoutOr(cfg.Timeout, InteractiveTimeout)),
	}
}

var (
	_ Provider         = (*DeepL)(nil)
	_ CredentialTester = (*DeepL)(nil)
)

// Name implements Provider.
func (p *DeepL) Name() string { return NameDeepL }

// Translate translates one text with the caller's key, or the service key.
func (p *DeepL) Translate(ctx context.Context, req TranslateRequest) (string, error) {
	key := req.Credential
	if key == "" {
		key = p.apiKey
	}
	if key == "" {
		return "", &transcache.ProviderError{
			Provider: NameDeepL,
			Kind:     transcache.ErrInvalidCredential,
			Message:  "no API key configured",
		}
	}

	form := url.Values{}
	form.Set("text", req.Text)
	form.Set("target_lang", deepLCode(req.TargetLang))
	if req.SourceLang != "" && req.SourceLang != transcache.AutoDetect {
		// DeepL source codes carry no region
		form.Set("source_lang", deepLCode(transcache.BaseLang(req.SourceLang)))
	}

	httpReq, err := http.NewRequest(http.MethodPost, p.baseURL+"/v2/translate", strings.NewReader(form.Encode()))
	if err != nil {
		return "", p.http.badResponse("building request", err)
	}
	httpReq.Header.Set("Authorization", "DeepL-Auth-Key "+key)
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	body, err := p.http.send(ctx, httpReq)
	if err != nil {
		return "", err
	}

	var result deepLResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", p.http.badResponse("decoding response", err)
	}
	if len(result.Translations) == 0 {
		return "", p.http.badResponse("no translations returned", nil)
	}

	return result.Translations[0].Text, nil
}

// TestCredential checks a key against the cheap /v2/usage endpoint.
func (p *DeepL) TestCredential(ctx context.Context, key string) bool {
	if key == "" {
		return false
	}

	httpReq, err := http.NewRequest(http.MethodGet, p.baseURL+"/v2/usage", nil)
	if err != nil {
		return false
	}
	httpReq.Header.Set("Authorization", "DeepL-Auth-Key "+key)

	_, err = p.http.sendWithin(ctx, ProbeTimeout, httpReq)
	return err == nil
}

// deepLCode converts "zh-CN" style codes to DeepL's upper-case form.
func deepLCode(code string) string {
	return strings.ToUpper(code)
}

package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/ZaguanLabs/transcache"
)

// DefaultHelsinkiURL is the Hugging Face inference endpoint for the
// English→Chinese Opus-MT model.
const DefaultHelsinkiURL = "https://api-inference.huggingface.co/models/Helsinki-NLP/opus-mt-en-zh"

// Helsinki implements Provider using a single-pair Opus-MT model hosted on
// Hugging Face. It uses the service token only; users cannot supply keys.
type Helsinki struct {
	url    string
	token  string
	source string
	target string
	http   upstream
}

// HelsinkiConfig holds configuration for the Helsinki provider.
type HelsinkiConfig struct {
	URL        string // model endpoint, default: DefaultHelsinkiURL
	Token      string // Hugging Face API token
	SourceLang string // default: "en"
	TargetLang string // default: "zh"
	HTTPClient *http.Client
	Timeout    time.Duration // per-call deadline, default: ModelTimeout
}

type helsinkiOutput struct {
	TranslationText string `json:"translation_text"`
}

// NewHelsinki creates a new Helsinki provider.
func NewHelsinki(cfg HelsinkiConfig) *Helsinki {
	u := cfg.URL
	if u == "" {
		u = DefaultHelsinkiURL
	}
	source := cfg.SourceLang
	if source == "" {
		source = "en"
	}
	target := cfg.TargetLang
	if target == "" {
		target = "zh"
	}

	return &Helsinki{
		url:    strings.TrimRight(u, "/"),
		token:  cfg.Token,
		source: transcache.BaseLang(source),
		target: transcache.BaseLang(target),
		http:   newUpstream(NameHelsinki, cfg.HTTPClient, timeoutOr(cfg.Timeout, ModelTimeout)),
	}
}

var _ Provider = (*Helsinki)(nil)

// Name implements Provider.
func (p *Helsinki) Name() string { return NameHelsinki }

// Translate runs the model. Any other language pair is rejected before the call.
func (p *Helsinki) Translate(ctx context.Context, req TranslateRequest) (string, error) {
	source := transcache.BaseLang(req.SourceLang)
	if source == transcache.AutoDetect {
		source = p.source
	}
	if source != p.source || transcache.BaseLang(req.TargetLang) != p.target {
		return "", unsupportedPair(NameHelsinki, req.SourceLang, req.TargetLang)
	}

	payload, err := json.Marshal(map[string]string{"inputs": req.Text})
	if err != nil {
		return "", p.http.badResponse("encoding request", err)
	}

	httpReq, err := http.NewRequest(http.MethodPost, p.url, bytes.NewReader(payload))
	if err != nil {
		return "", p.http.badResponse("building request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if p.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+p.token)
	}

	body, err := p.http.send(ctx, httpReq)
	if err != nil {
		return "", err
	}

	var result []helsinkiOutput
	if err := json.Unmarshal(body, &result); err != nil {
		return "", p.http.badResponse("decoding response", err)
	}
	if len(result) == 0 || result[0].TranslationText == "" {
		return "", p.http.badResponse("no translation returned", nil)
	}

	return result[0].TranslationText, nil
}

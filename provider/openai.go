package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/ZaguanLabs/transcache"
)

// OpenAIProvider implements Provider and CredentialTester using OpenAI's
// chat completions. Users may bring their own key.
type OpenAIProvider struct {
	config      OpenAIConfig
	client      *openai.Client // service-key client, nil without a service key
	model       string
	temperature float32
}

// OpenAIConfig holds configuration for the OpenAI provider.
type OpenAIConfig struct {
	APIKey      string  // optional service-level key
	Model       string  // Model to use (default: "gpt-4o-mini")
	Temperature float32 // Temperature for generation (default: 0.3)
	BaseURL     string  // Custom base URL (optional)
	HTTPClient  *http.Client
	Timeout     time.Duration // per-call deadline, default: ModelTimeout
}

// NewOpenAIProvider creates a new OpenAI provider.
func NewOpenAIProvider(cfg OpenAIConfig) *OpenAIProvider {
	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}

	temperature := cfg.Temperature
	if temperature == 0 {
		temperature = 0.3
	}

	p := &OpenAIProvider{
		config:      cfg,
		model:       model,
		temperature: temperature,
	}
	if cfg.APIKey != "" {
		p.client = p.newClient(cfg.APIKey)
	}
	return p
}

var (
	_ Provider         = (*OpenAIProvider)(nil)
	_ CredentialTester = (*OpenAIProvider)(nil)
)

// Name implements Provider.
func (p *OpenAIProvider) Name() string { return NameOpenAI }

func (p *OpenAIProvider) newClient(key string) *openai.Client {
	config := openai.DefaultConfig(key)
	if p.config.BaseURL != "" {
		config.BaseURL = p.config.BaseURL
	}
	if p.config.HTTPClient != nil {
		config.HTTPClient = p.config.HTTPClient
	}
	return openai.NewClientWithConfig(config)
}

// clientFor returns a client for the caller's key or the service key.
func (p *OpenAIProvider) clientFor(credential string) (*openai.Client, error) {
	if credential != "" {
		return p.newClient(credential), nil
	}
	if p.client == nil {
		return nil, &transcache.ProviderError{
			Provider: NameOpenAI,
			Kind:     transcache.ErrInvalidCredential,
			Message:  "no API key configured",
		}
	}
	return p.client, nil
}

// Translate translates one text using OpenAI.
func (p *OpenAIProvider) Translate(ctx context.Context, req TranslateRequest) (string, error) {
	client, err := p.clientFor(req.Credential)
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, timeoutOr(p.config.Timeout, ModelTimeout))
	defer cancel()

	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: p.buildSystemPrompt(req)},
			{Role: openai.ChatMessageRoleUser, Content: req.Text},
		},
		Temperature: p.temperature,
	})
	if err != nil {
		return "", mapOpenAIError(err)
	}

	if len(resp.Choices) == 0 {
		return "", &transcache.ProviderError{
			Provider: NameOpenAI,
			Kind:     transcache.ErrUpstreamBadResponse,
			Message:  "no response from OpenAI",
		}
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", &transcache.ProviderError{
			Provider: NameOpenAI,
			Kind:     transcache.ErrUpstreamBadResponse,
			Message:  "empty completion",
		}
	}

	return text, nil
}

// TestCredential lists models with the candidate key.
func (p *OpenAIProvider) TestCredential(ctx context.Context, key string) bool {
	if key == "" {
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, ProbeTimeout)
	defer cancel()

	_, err := p.newClient(key).ListModels(ctx)
	return err == nil
}

func (p *OpenAIProvider) buildSystemPrompt(req TranslateRequest) string {
	targetName := transcache.GetLanguageName(req.TargetLang)

	source := "the source language (detect it)"
	if req.SourceLang != "" && req.SourceLang != transcache.AutoDetect {
		source = transcache.GetLanguageName(req.SourceLang)
	}

	return fmt.Sprintf(`# Role
You are an expert native translator. You translate from %s to %s with the fluency and nuance of a highly educated native speaker.

# Style Guide
- **Natural Flow**: Avoid literal translations. Rephrase sentences to sound completely natural to a native speaker.
- **Idioms**: Never translate idioms literally. Replace them with natural %s equivalents.
- **Interpolation**: Do NOT translate variables or placeholders (e.g., {{name}}, {count}, %%s, $1).
- **Formatting**: Preserve meaningful whitespace and newlines.

# Format
Reply with the translation only. No quotes, notes or explanations.`, source, targetName, targetName)
}

// mapOpenAIError classifies go-openai errors by HTTP status.
func mapOpenAIError(err error) error {
	perr := &transcache.ProviderError{
		Provider: NameOpenAI,
		Kind:     transcache.ErrUpstreamUnavailable,
		Cause:    err,
	}

	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		perr.Kind = transcache.ErrUpstreamTimeout
	case errors.As(err, &apiErr):
		perr.StatusCode = apiErr.HTTPStatusCode
		perr.Kind = kindForStatus(apiErr.HTTPStatusCode)
		perr.Message = apiErr.Message
	case errors.As(err, &reqErr):
		perr.StatusCode = reqErr.HTTPStatusCode
		perr.Kind = kindForStatus(reqErr.HTTPStatusCode)
	}

	return perr
}

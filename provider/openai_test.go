package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ZaguanLabs/transcache"
)

func newOpenAIServer(t *testing.T, validKey, reply string) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.Header.Get("Authorization") != "Bearer "+validKey {
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"error":{"message":"Incorrect API key provided","type":"invalid_request_error","code":"invalid_api_key"}}`)
			return
		}

		switch r.URL.Path {
		case "/models":
			fmt.Fprint(w, `{"object":"list","data":[{"id":"gpt-4o-mini","object":"model"}]}`)
		case "/chat/completions":
			var req struct {
				Model    string `json:"model"`
				Messages []struct {
					Role    string `json:"role"`
					Content string `json:"content"`
				} `json:"messages"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Errorf("decode: %v", err)
			}
			if len(req.Messages) != 2 || req.Messages[1].Content != "hello" {
				t.Errorf("unexpected messages: %+v", req.Messages)
			}
			fmt.Fprintf(w, `{"id":"c1","object":"chat.completion","created":1,"model":%q,"choices":[{"index":0,"message":{"role":"assistant","content":%q},"finish_reason":"stop"}]}`, req.Model, reply)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func TestOpenAI_Translate(t *testing.T) {
	srv := newOpenAIServer(t, "sk-service", " 你好\n")
	defer srv.Close()

	p := NewOpenAIProvider(OpenAIConfig{APIKey: "sk-service", BaseURL: srv.URL})

	got, err := p.Translate(context.Background(), TranslateRequest{Text: "hello", SourceLang: "en", TargetLang: "zh"})
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	if got != "你好" {
		t.Errorf("Translate = %q, want 你好", got)
	}
}

func TestOpenAI_Translate_UserKey(t *testing.T) {
	srv := newOpenAIServer(t, "sk-user", "你好")
	defer srv.Close()

	p := NewOpenAIProvider(OpenAIConfig{APIKey: "sk-service", BaseURL: srv.URL})

	if _, err := p.Translate(context.Background(), TranslateRequest{Text: "hello", TargetLang: "zh", Credential: "sk-user"}); err != nil {
		t.Fatalf("Translate with user key failed: %v", err)
	}

	// service key is rejected by this server
	_, err := p.Translate(context.Background(), TranslateRequest{Text: "hello", TargetLang: "zh"})
	if !errors.Is(err, transcache.ErrInvalidCredential) {
		t.Errorf("error = %v, want ErrInvalidCredential", err)
	}
}

func TestOpenAI_Translate_NoKey(t *testing.T) {
	p := NewOpenAIProvider(OpenAIConfig{BaseURL: "http://127.0.0.1:1"})

	_, err := p.Translate(context.Background(), TranslateRequest{Text: "hello", TargetLang: "zh"})
	if !errors.Is(err, transcache.ErrInvalidCredential) {
		t.Errorf("error = %v, want ErrInvalidCredential", err)
	}
}

func TestOpenAI_Translate_EmptyCompletion(t *testing.T) {
	srv := newOpenAIServer(t, "sk", "   ")
	defer srv.Close()

	p := NewOpenAIProvider(OpenAIConfig{APIKey: "sk", BaseURL: srv.URL})

	_, err := p.Translate(context.Background(), TranslateRequest{Text: "hello", TargetLang: "zh"})
	if !errors.Is(err, transcache.ErrUpstreamBadResponse) {
		t.Errorf("error = %v, want ErrUpstreamBadResponse", err)
	}
}

func TestOpenAI_Translate_RateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"error":{"message":"Rate limit reached","type":"requests","code":"rate_limit_exceeded"}}`)
	}))
	defer srv.Close()

	p := NewOpenAIProvider(OpenAIConfig{APIKey: "sk", BaseURL: srv.URL})

	_, err := p.Translate(context.Background(), TranslateRequest{Text: "hello", TargetLang: "zh"})
	if !errors.Is(err, transcache.ErrUpstreamUnavailable) {
		t.Errorf("error = %v, want ErrUpstreamUnavailable", err)
	}

	var perr *transcache.ProviderError
	if errors.As(err, &perr) && perr.StatusCode != http.StatusTooManyRequests {
		t.Errorf("StatusCode = %d, want 429", perr.StatusCode)
	}
}

func TestOpenAI_TestCredential(t *testing.T) {
	srv := newOpenAIServer(t, "sk-good-key", "")
	defer srv.Close()

	p := NewOpenAIProvider(OpenAIConfig{BaseURL: srv.URL})
	ctx := context.Background()

	if !p.TestCredential(ctx, "sk-good-key") {
		t.Error("expected valid key to pass")
	}
	if p.TestCredential(ctx, "sk-bad-key") {
		t.Error("expected invalid key to fail")
	}
	if p.TestCredential(ctx, "") {
		t.Error("expected empty key to fail")
	}
}

func TestBuildSystemPrompt(t *testing.T) {
	p := NewOpenAIProvider(OpenAIConfig{})

	prompt := p.buildSystemPrompt(TranslateRequest{SourceLang: "en", TargetLang: "zh-TW"})

	// Check key elements are present
	if !strings.Contains(prompt, "Chinese (Traditional)") {
		t.Error("Prompt should contain target language name")
	}
	if !strings.Contains(prompt, "from English") {
		t.Error("Prompt should contain source language name")
	}
	if !strings.Contains(prompt, "{count}") || !strings.Contains(prompt, "%s") {
		t.Error("Prompt should keep placeholder examples intact")
	}

	auto := p.buildSystemPrompt(TranslateRequest{SourceLang: "auto", TargetLang: "de"})
	if !strings.Contains(auto, "detect it") {
		t.Error("Prompt should ask to detect an auto source")
	}
}

package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ZaguanLabs/transcache"
)

func TestHelsinki_Translate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer hf_token" {
			t.Errorf("Authorization = %q", r.Header.Get("Authorization"))
		}
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode: %v", err)
		}
		if body["inputs"] != "hello" {
			t.Errorf("inputs = %q", body["inputs"])
		}
		fmt.Fprint(w, `[{"translation_text":"你好"}]`)
	}))
	defer srv.Close()

	p := NewHelsinki(HelsinkiConfig{URL: srv.URL, Token: "hf_token"})

	got, err := p.Translate(context.Background(), TranslateRequest{Text: "hello", SourceLang: "en", TargetLang: "zh-CN"})
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	if got != "你好" {
		t.Errorf("Translate = %q, want 你好", got)
	}
}

func TestHelsinki_UnsupportedPair(t *testing.T) {
	p := NewHelsinki(HelsinkiConfig{URL: "http://127.0.0.1:1"})

	pairs := [][2]string{{"en", "de"}, {"fr", "zh"}, {"zh", "en"}}
	for _, pair := range pairs {
		_, err := p.Translate(context.Background(), TranslateRequest{Text: "x", SourceLang: pair[0], TargetLang: pair[1]})
		if !errors.Is(err, transcache.ErrUnsupportedLanguagePair) {
			t.Errorf("%s→%s error = %v, want ErrUnsupportedLanguagePair", pair[0], pair[1], err)
		}
	}
}

func TestHelsinki_ModelLoading(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		fmt.Fprint(w, `{"error":"Model Helsinki-NLP/opus-mt-en-zh is currently loading"}`)
	}))
	defer srv.Close()

	p := NewHelsinki(HelsinkiConfig{URL: srv.URL})

	_, err := p.Translate(context.Background(), TranslateRequest{Text: "x", SourceLang: "en", TargetLang: "zh"})
	if !errors.Is(err, transcache.ErrUpstreamUnavailable) {
		t.Errorf("error = %v, want ErrUpstreamUnavailable", err)
	}
}

func TestHelsinki_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"unexpected":"shape"}`)
	}))
	defer srv.Close()

	p := NewHelsinki(HelsinkiConfig{URL: srv.URL})

	_, err := p.Translate(context.Background(), TranslateRequest{Text: "x", SourceLang: "en", TargetLang: "zh"})
	if !errors.Is(err, transcache.ErrUpstreamBadResponse) {
		t.Errorf("error = %v, want ErrUpstreamBadResponse", err)
	}
}

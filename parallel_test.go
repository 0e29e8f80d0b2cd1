package transcache

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

// slowProvider sleeps before answering and tracks peak concurrency.
type slowProvider struct {
	delay   time.Duration
	active  atomic.Int32
	maxSeen atomic.Int32
}

func (p *slowProvider) Name() string { return "slow" }

func (p *slowProvider) Translate(ctx context.Context, req TranslateRequest) (string, error) {
	n := p.active.Add(1)
	defer p.active.Add(-1)
	for {
		m := p.maxSeen.Load()
		if n <= m || p.maxSeen.CompareAndSwap(m, n) {
			break
		}
	}

	select {
	case <-time.After(p.delay):
	case <-ctx.Done():
		return "", ctx.Err()
	}
	if req.Text == "fail" {
		return "", &ProviderError{Kind: ErrUpstreamBadResponse}
	}
	return "ok:" + req.Text, nil
}

func TestTranslateBatch_Order(t *testing.T) {
	svc := NewService(NewRouter(&slowProvider{delay: time.Millisecond}))

	reqs := []Request{
		{Text: "a", Provider: "slow"},
		{Text: "fail", Provider: "slow"},
		{Text: "c", Provider: "unknown"},
		{Text: "d", Provider: "slow"},
	}

	results := svc.TranslateBatch(context.Background(), reqs, 2)
	if len(results) != len(reqs) {
		t.Fatalf("expected %d results, got %d", len(reqs), len(results))
	}

	if results[0].Err != nil || results[0].Result.TranslatedText != "ok:a" {
		t.Errorf("result[0] = %+v", results[0])
	}
	if !errors.Is(results[1].Err, ErrUpstreamBadResponse) {
		t.Errorf("result[1] error = %v", results[1].Err)
	}
	if !errors.Is(results[2].Err, ErrUnsupportedProvider) {
		t.Errorf("result[2] error = %v", results[2].Err)
	}
	if results[3].Err != nil || results[3].Result.TranslatedText != "ok:d" {
		t.Errorf("result[3] = %+v", results[3])
	}
}

func TestTranslateBatch_Empty(t *testing.T) {
	svc := NewService(NewRouter(&slowProvider{}))

	if results := svc.TranslateBatch(context.Background(), nil, 4); len(results) != 0 {
		t.Errorf("expected no results, got %d", len(results))
	}
}

func TestTranslateBatch_Concurrency(t *testing.T) {
	p := &slowProvider{delay: 20 * time.Millisecond}
	svc := NewService(NewRouter(p))

	reqs := make([]Request, 12)
	for i := range reqs {
		reqs[i] = Request{Text: string(rune('a' + i)), Provider: "slow"}
	}

	start := time.Now()
	svc.TranslateBatch(context.Background(), reqs, 4)
	elapsed := time.Since(start)

	if got := p.maxSeen.Load(); got > 4 {
		t.Errorf("peak concurrency %d exceeds limit 4", got)
	}

	// Sequential would take 12 * 20ms = 240ms
	if elapsed > 200*time.Millisecond {
		t.Errorf("batch took %v, expected parallel execution", elapsed)
	}
}

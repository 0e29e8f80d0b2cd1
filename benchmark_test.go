package transcache_test

import (
	"context"
	"strconv"
	"testing"

	"github.com/ZaguanLabs/transcache"
	"github.com/ZaguanLabs/transcache/cache"
	"github.com/ZaguanLabs/transcache/provider"
)

// Benchmarks for performance validation

func BenchmarkFingerprint(b *testing.B) {
	text := "Hello World, this is a sample text for hashing"
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		transcache.Fingerprint(text, "en", "zh")
	}
}

func BenchmarkNormalizeLang(b *testing.B) {
	for i := 0; i < b.N; i++ {
		transcache.NormalizeLang(" zh_cn ")
	}
}

func BenchmarkMemoryBackend_IncrWithTTL(b *testing.B) {
	ctx := context.Background()
	m := cache.NewMemoryBackend()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = m.IncrWithTTL(ctx, "count:trans:abc", cache.CounterWindow)
	}
}

func BenchmarkStore_Put(b *testing.B) {
	ctx := context.Background()
	s := cache.NewStore(cache.NewMemoryBackend())
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.Put(ctx, "abc", "value")
	}
}

func BenchmarkStore_PutParallel(b *testing.B) {
	ctx := context.Background()
	s := cache.NewStore(cache.NewMemoryBackend())
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			s.Put(ctx, "shared", "value")
		}
	})
}

func BenchmarkService_Translate_Cached(b *testing.B) {
	ctx := context.Background()
	svc := transcache.NewService(
		transcache.NewRouter(provider.NewNamedMockProvider(provider.NameMyMemory)),
		transcache.WithCache(cache.NewStore(cache.NewMemoryBackend())),
	)
	req := transcache.Request{Text: "hello"}
	if _, err := svc.Translate(ctx, req); err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = svc.Translate(ctx, req)
	}
}

func BenchmarkService_Translate_Uncached(b *testing.B) {
	ctx := context.Background()
	svc := transcache.NewService(
		transcache.NewRouter(provider.NewNamedMockProvider(provider.NameMyMemory)),
		transcache.WithCache(cache.NewStore(cache.NewMemoryBackend())),
	)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = svc.Translate(ctx, transcache.Request{Text: "text " + strconv.Itoa(i)})
	}
}

func BenchmarkGetLanguageName(b *testing.B) {
	for i := 0; i < b.N; i++ {
		transcache.GetLanguageName("zh-CN")
	}
}

// Package metrics holds the Prometheus collectors shared by the cache,
// the provider router and the HTTP server.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "transcache_cache_hits_total",
		Help: "Translation cache hits observed by this process.",
	})
	CacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "transcache_cache_misses_total",
		Help: "Translation cache misses observed by this process.",
	})
	// CacheErrors counts backing-store failures that were degraded to pass-through.
	CacheErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "transcache_cache_errors_total",
		Help: "Backing-store failures swallowed by the cache, by operation.",
	}, []string{"op"})
	CacheTierAssigned = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "transcache_cache_tier_assigned_total",
		Help: "Cache entries written, by popularity tier.",
	}, []string{"tier"})

	ProviderRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "transcache_provider_requests_total",
		Help: "Upstream provider calls, by provider and outcome.",
	}, []string{"provider", "outcome"})
	ProviderLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "transcache_provider_latency_seconds",
		Help:    "Upstream provider call latency.",
		Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
	}, []string{"provider"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "transcache_http_requests_total",
		Help: "HTTP requests, by method, route and status.",
	}, []string{"method", "path", "status"})
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "transcache_http_request_duration_seconds",
		Help:    "HTTP request latency, by method and route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})
)

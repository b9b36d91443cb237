// Package metrics holds the Prometheus collectors shared by the server.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	global *Metrics
	once   sync.Once
)

// Metrics holds every collector exported on /metrics.
type Metrics struct {
	// HTTP surface
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	RateLimited     prometheus.Counter
	Fallbacks       *prometheus.CounterVec

	// Detection
	Findings *prometheus.CounterVec

	// Generation
	Generations     *prometheus.CounterVec
	CacheHits       *prometheus.CounterVec
	CacheMisses     *prometheus.CounterVec
	UpstreamLatency prometheus.Histogram
	UpstreamRetries prometheus.Counter
}

// Get returns the process-wide collectors, registering them on first use.
//
// Metrics:
//   - termsplain_http_requests_total{route,status}
//   - termsplain_http_request_duration_seconds{route}
//   - termsplain_rate_limited_total
//   - termsplain_fallbacks_total{op}
//   - termsplain_findings_total{rule,severity}
//   - termsplain_generations_total{op,outcome}
//   - termsplain_cache_hits_total{op}
//   - termsplain_cache_misses_total{op}
//   - termsplain_gemini_request_duration_seconds
//   - termsplain_gemini_retries_total
func Get() *Metrics {
	once.Do(func() {
		global = &Metrics{
			RequestsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "termsplain_http_requests_total",
					Help: "HTTP requests by route and status code",
				},
				[]string{"route", "status"},
			),
			RequestDuration: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "termsplain_http_request_duration_seconds",
					Help:    "HTTP request latency",
					Buckets: prometheus.DefBuckets,
				},
				[]string{"route"},
			),
			RateLimited: promauto.NewCounter(prometheus.CounterOpts{
				Name: "termsplain_rate_limited_total",
				Help: "Requests rejected by the per-client rate limiter",
			}),
			Fallbacks: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "termsplain_fallbacks_total",
					Help: "Responses served from static fallback content",
				},
				[]string{"op"}, // "analyze", "explain", "qa"
			),
			Findings: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "termsplain_findings_total",
					Help: "Findings emitted by the detector",
				},
				[]string{"rule", "severity"},
			),
			Generations: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "termsplain_generations_total",
					Help: "Model generations by operation and outcome",
				},
				[]string{"op", "outcome"}, // outcome: "ok", "error"
			),
			CacheHits: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "termsplain_cache_hits_total",
					Help: "Generation cache hits",
				},
				[]string{"op"},
			),
			CacheMisses: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "termsplain_cache_misses_total",
					Help: "Generation cache misses",
				},
				[]string{"op"},
			),
			UpstreamLatency: promauto.NewHistogram(prometheus.HistogramOpts{
				Name:    "termsplain_gemini_request_duration_seconds",
				Help:    "Latency of individual Gemini API calls",
				Buckets: []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32},
			}),
			UpstreamRetries: promauto.NewCounter(prometheus.CounterOpts{
				Name: "termsplain_gemini_retries_total",
				Help: "Gemini calls retried after a transient failure",
			}),
		}
	})
	return global
}

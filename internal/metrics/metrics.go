package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Registration is guarded by once: the default registry panics on duplicate
// collector registration.
var once sync.Once

var (
	// RedirectsTotal counts resolved redirects by terminal outcome
	// (found, not_found, expired).
	RedirectsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shortlinks_redirects_total",
			Help: "Total redirect resolutions by outcome.",
		},
		[]string{"outcome"},
	)

	// CacheOperations counts cache lookups and mutations by backend and result.
	CacheOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shortlinks_cache_operations_total",
			Help: "Cache operations by backend and result.",
		},
		[]string{"backend", "result"},
	)

	// RateLimitRejections counts create requests rejected by the rate limiter.
	RateLimitRejections = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "shortlinks_ratelimit_rejections_total",
			Help: "Create requests rejected by the fixed-window rate limiter.",
		},
	)

	// HTTPRequestDuration observes request latency by method and route pattern.
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "shortlinks_http_request_duration_seconds",
			Help:    "HTTP request latency distributions.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

// Init registers the collectors with the default registry.
func Init() {
	once.Do(func() {
		prometheus.MustRegister(
			RedirectsTotal,
			CacheOperations,
			RateLimitRejections,
			HTTPRequestDuration,
		)
	})
}

// Package metrics exposes Prometheus instrumentation for contribution lookups.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Fetch outcomes.
const (
	OutcomeSuccess   = "success"
	OutcomeFailure   = "failure"
	OutcomeSkipped   = "skipped"
	OutcomeRecovered = "recovered"
)

// Cache lookup and write results.
const (
	CacheHit     = "hit"
	CacheMiss    = "miss"
	CacheError   = "error"
	CacheCorrupt = "corrupt"
	CacheStored  = "stored"
)

// Manager owns a private registry so the exposition only carries service metrics.
type Manager struct {
	registry *prometheus.Registry

	fetches         *prometheus.CounterVec
	cacheLookups    *prometheus.CounterVec
	cacheWrites     *prometheus.CounterVec
	computeDuration prometheus.Histogram
	fallbacks       prometheus.Counter
}

// NewManager creates and registers the contribution metrics.
func NewManager() *Manager {
	m := &Manager{
		registry: prometheus.NewRegistry(),
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "contrib",
			Name:      "fetch_total",
			Help:      "Contribution source fetches by source and outcome.",
		}, []string{"source", "outcome"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "contrib",
			Name:      "cache_lookups_total",
			Help:      "Contribution cache lookups by result.",
		}, []string{"result"}),
		cacheWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "contrib",
			Name:      "cache_writes_total",
			Help:      "Contribution cache writes by result.",
		}, []string{"result"}),
		computeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "contrib",
			Name:      "compute_duration_seconds",
			Help:      "Time spent building a series on a cache miss.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20},
		}),
		fallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "contrib",
			Name:      "zero_fallback_total",
			Help:      "Lookups answered with an all-zero series after an unexpected failure.",
		}),
	}

	m.registry.MustRegister(m.fetches, m.cacheLookups, m.cacheWrites, m.computeDuration, m.fallbacks)
	return m
}

// RecordFetch counts one fetch of source with the given outcome.
func (m *Manager) RecordFetch(source, outcome string) {
	if m == nil {
		return
	}
	m.fetches.WithLabelValues(source, outcome).Inc()
}

// RecordCacheLookup counts a cache read.
func (m *Manager) RecordCacheLookup(result string) {
	if m == nil {
		return
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

// RecordCacheWrite counts a cache write.
func (m *Manager) RecordCacheWrite(result string) {
	if m == nil {
		return
	}
	m.cacheWrites.WithLabelValues(result).Inc()
}

// ObserveCompute records how long a live computation took.
func (m *Manager) ObserveCompute(d time.Duration) {
	if m == nil {
		return
	}
	m.computeDuration.Observe(d.Seconds())
}

// RecordFallback counts a zero-series fallback.
func (m *Manager) RecordFallback() {
	if m == nil {
		return
	}
	m.fallbacks.Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

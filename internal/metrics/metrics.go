// Package metrics exposes Prometheus instrumentation for the verification
// service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a dedicated registry so tests can build isolated instances
// and the handler does not export default Go collectors.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	claimsProcessed     prometheus.Counter
	verdicts            *prometheus.CounterVec
	checkLatency        prometheus.Histogram
	searchErrors        prometheus.Counter
	cacheHits           prometheus.Counter
	cacheMisses         prometheus.Counter
}

// New builds a Metrics with all collectors registered.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gofactcheck",
			Name:      "http_requests_total",
			Help:      "HTTP requests by path and status code.",
		}, []string{"path", "code"}),
		httpRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "gofactcheck",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by path.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"path"}),
		claimsProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "gofactcheck",
			Name:      "claims_processed_total",
			Help:      "Claims run through the verification pipeline.",
		}),
		verdicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gofactcheck",
			Name:      "verdicts_total",
			Help:      "Final verdicts by status.",
		}, []string{"status"}),
		checkLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "gofactcheck",
			Name:      "check_duration_seconds",
			Help:      "Per-claim fact check latency including search.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		searchErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "gofactcheck",
			Name:      "search_errors_total",
			Help:      "Evidence search calls that failed.",
		}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "gofactcheck",
			Name:      "verdict_cache_hits_total",
			Help:      "Verdict cache hits.",
		}),
		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "gofactcheck",
			Name:      "verdict_cache_misses_total",
			Help:      "Verdict cache misses.",
		}),
	}
	reg.MustRegister(
		m.httpRequests,
		m.httpRequestDuration,
		m.claimsProcessed,
		m.verdicts,
		m.checkLatency,
		m.searchErrors,
		m.cacheHits,
		m.cacheMisses,
	)
	return m
}

// Handler serves the Prometheus exposition format for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveRequest(path string, code int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(path, strconv.Itoa(code)).Inc()
	m.httpRequestDuration.WithLabelValues(path).Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveClaim(status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.claimsProcessed.Inc()
	m.verdicts.WithLabelValues(status).Inc()
	m.checkLatency.Observe(elapsed.Seconds())
}

func (m *Metrics) IncSearchError() {
	if m == nil {
		return
	}
	m.searchErrors.Inc()
}

func (m *Metrics) IncCacheHit() {
	if m == nil {
		return
	}
	m.cacheHits.Inc()
}

func (m *Metrics) IncCacheMiss() {
	if m == nil {
		return
	}
	m.cacheMisses.Inc()
}

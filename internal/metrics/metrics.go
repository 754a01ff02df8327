package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics exposes application metrics that are safe to scrape via Prometheus.
type Metrics struct {
	registry            *prometheus.Registry
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	idsAllocated        *prometheus.CounterVec
	idConflicts         *prometheus.CounterVec
	mapFeaturesSkipped  *prometheus.CounterVec
	sessionsActive      prometheus.Gauge
}

// New creates a fresh Metrics registry with HTTP and inventory metrics registered.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	httpRequests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "inspectpozo",
		Name:      "http_requests_total",
		Help:      "Count of HTTP requests processed by core-go",
	}, []string{"method", "path", "status"})

	httpRequestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "inspectpozo",
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests served by core-go",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	idsAllocated := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "inspectpozo",
		Name:      "identifiers_allocated_total",
		Help:      "Sequential identifiers handed out, by prefix",
	}, []string{"prefix"})

	idConflicts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "inspectpozo",
		Name:      "identifier_conflicts_total",
		Help:      "Identifier inserts rejected by the uniqueness constraint and retried, by prefix",
	}, []string{"prefix"})

	mapFeaturesSkipped := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "inspectpozo",
		Name:      "map_features_skipped_total",
		Help:      "Structures or pipes left out of a map payload because their geometry did not parse",
	}, []string{"kind"})

	sessionsActive := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "inspectpozo",
		Name:      "sessions_active",
		Help:      "Sessions currently held by the session store",
	})

	registry.MustRegister(
		httpRequests,
		httpRequestDuration,
		idsAllocated,
		idConflicts,
		mapFeaturesSkipped,
		sessionsActive,
	)

	return &Metrics{
		registry:            registry,
		httpRequests:        httpRequests,
		httpRequestDuration: httpRequestDuration,
		idsAllocated:        idsAllocated,
		idConflicts:         idConflicts,
		mapFeaturesSkipped:  mapFeaturesSkipped,
		sessionsActive:      sessionsActive,
	}
}

// ObserveHTTPRequest records a single HTTP request/response cycle.
func (m *Metrics) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labels := prometheus.Labels{
		"method": method,
		"path":   path,
		"status": strconv.Itoa(status),
	}
	m.httpRequests.With(labels).Inc()
	m.httpRequestDuration.With(labels).Observe(duration.Seconds())
}

func (m *Metrics) IncIDAllocated(prefix string) {
	if m == nil {
		return
	}
	m.idsAllocated.WithLabelValues(prefix).Inc()
}

func (m *Metrics) IncIDConflict(prefix string) {
	if m == nil {
		return
	}
	m.idConflicts.WithLabelValues(prefix).Inc()
}

// AddMapFeaturesSkipped counts features dropped from a map payload. kind is
// "structure" or "pipe".
func (m *Metrics) AddMapFeaturesSkipped(kind string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.mapFeaturesSkipped.WithLabelValues(kind).Add(float64(n))
}

func (m *Metrics) SetSessionsActive(n int) {
	if m == nil {
		return
	}
	m.sessionsActive.Set(float64(n))
}

// Handler exposes the Prometheus registry over HTTP.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("metrics unavailable"))
		})
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

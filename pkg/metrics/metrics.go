// Package metrics holds the Prometheus instruments of the API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const unmatchedRoute = "unmatched"

// Metrics records request, annotator and cache metrics on its own registry.
type Metrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestFailures *prometheus.CounterVec

	operationsTotal   *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	badAnnotators     prometheus.Counter

	cacheLookups *prometheus.CounterVec
	cacheStores  *prometheus.CounterVec

	registry *prometheus.Registry
}

// New creates the instruments under namespace and registers them together with the Go
// runtime and process collectors.
func New(namespace string) *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests by route, method and status code",
			},
			[]string{"route", "method", "status_code"},
		),

		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"route", "method"},
		),

		requestFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_request_failures_total",
				Help:      "Total number of HTTP requests answered with a server error",
			},
			[]string{"route", "method"},
		),

		operationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "annotator_operations_total",
				Help:      "Total number of annotator operations by operation and annotator",
			},
			[]string{"operation", "annotator"},
		),

		operationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "annotator_operation_duration_seconds",
				Help:      "Annotator operation duration in seconds",
				Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120},
			},
			[]string{"operation", "annotator"},
		),

		badAnnotators: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "bad_annotator_total",
				Help:      "Total number of requests for an unknown annotator",
			},
		),

		cacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_lookups_total",
				Help:      "Total number of idempotency cache lookups by outcome",
			},
			[]string{"outcome"},
		),

		cacheStores: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_stores_total",
				Help:      "Total number of idempotency cache stores by outcome",
			},
			[]string{"outcome"},
		),

		registry: registry,
	}

	registry.MustRegister(
		m.requestsTotal,
		m.requestDuration,
		m.requestFailures,
		m.operationsTotal,
		m.operationDuration,
		m.badAnnotators,
		m.cacheLookups,
		m.cacheStores,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// RecordOperation records one annotator operation and its duration.
func (m *Metrics) RecordOperation(operation, annotator string, duration time.Duration) {
	m.operationsTotal.WithLabelValues(operation, annotator).Inc()
	m.operationDuration.WithLabelValues(operation, annotator).Observe(duration.Seconds())
}

func (m *Metrics) RecordBadAnnotator() {
	m.badAnnotators.Inc()
}

func (m *Metrics) CacheLookup(outcome string) {
	m.cacheLookups.WithLabelValues(outcome).Inc()
}

func (m *Metrics) CacheStore(outcome string) {
	m.cacheStores.WithLabelValues(outcome).Inc()
}

// Handler returns the Prometheus exposition handler for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Middleware records every request by its chi route pattern, so path parameters do not
// create new series.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := routePattern(r)
		m.requestsTotal.WithLabelValues(route, r.Method, strconv.Itoa(status)).Inc()
		m.requestDuration.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
		if status >= http.StatusInternalServerError {
			m.requestFailures.WithLabelValues(route, r.Method).Inc()
		}
	})
}

func routePattern(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return unmatchedRoute
	}
	if pattern := rctx.RoutePattern(); pattern != "" {
		return pattern
	}
	return unmatchedRoute
}

// Package metrics provides the Prometheus instruments of the server.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gosuda/rentdesk/internal/collection"
)

// Metrics holds all Prometheus metrics.
type Metrics struct {
	gatherer        prometheus.Gatherer
	cachePatches    *prometheus.CounterVec
	mutations       *prometheus.CounterVec
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// New creates the metrics and registers them with reg. Pass
// prometheus.NewRegistry() in tests to keep them isolated.
func New(reg *prometheus.Registry) *Metrics {
	f := promauto.With(reg)

	return &Metrics{
		gatherer: reg,
		cachePatches: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rentdesk_cache_patches_total",
				Help: "Collection cache patches by operation and outcome",
			},
			[]string{"op", "outcome"},
		),
		mutations: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rentdesk_mutations_total",
				Help: "Committed collection mutations served by the API",
			},
			[]string{"collection", "op"},
		),
		requestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rentdesk_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		requestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "rentdesk_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"method", "route"},
		),
	}
}

// Observe implements collection.Observer.
func (m *Metrics) Observe(op collection.Op, _ collection.Key, outcome collection.Outcome) {
	m.cachePatches.WithLabelValues(string(op), string(outcome)).Inc()
}

// RecordMutation counts one committed mutation.
func (m *Metrics) RecordMutation(name, op string) {
	m.mutations.WithLabelValues(name, op).Inc()
}

// Middleware records request counts and latencies by chi route pattern, so
// path parameters do not explode label cardinality.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		m.requestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.requestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

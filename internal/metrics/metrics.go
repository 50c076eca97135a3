// Package metrics exposes Prometheus metrics for HTTP traffic, fee
// allocations and plan saves.
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

const namespace = "warikan"

// Metrics owns a registry and every collector the app reports to
type Metrics struct {
	registry *prometheus.Registry

	requestCount    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	allocations     *prometheus.CounterVec
	allocationGap   *prometheus.HistogramVec
	rosterSize      prometheus.Histogram
	planSaves       *prometheus.CounterVec
}

// New creates the collectors and registers them with a fresh registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestCount: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "requests_total",
				Help:      "How many HTTP requests processed, partitioned by status code, method and route.",
			},
			[]string{"code", "method", "route"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "request_duration_seconds",
				Help:      "The HTTP request latencies in seconds.",
			},
			[]string{"code", "method", "route"},
		),
		allocations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "allocations_total",
				Help:      "How many fee allocations were computed, partitioned by policy.",
			},
			[]string{"policy"},
		),
		allocationGap: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "allocation_gap_yen",
				Help:      "Absolute difference between the effective total and the allocated sum.",
				Buckets:   []float64{0, 1, 2, 5, 10, 100, 1000, 10000},
			},
			[]string{"policy"},
		),
		rosterSize: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "allocation_roster_size",
				Help:      "Participants per allocation.",
				Buckets:   prometheus.LinearBuckets(0, 5, 10),
			},
		),
		planSaves: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "plan_saves_total",
				Help:      "How many plan snapshots were written, partitioned by operation.",
			},
			[]string{"operation"},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requestCount,
		m.requestDuration,
		m.allocations,
		m.allocationGap,
		m.rosterSize,
		m.planSaves,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Middleware records count and latency of every request. Routes are
// labelled with their chi pattern to keep cardinality low.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}

		code := strconv.Itoa(status)
		m.requestDuration.WithLabelValues(code, r.Method, route).Observe(time.Since(start).Seconds())
		m.requestCount.WithLabelValues(code, r.Method, route).Inc()
	})
}

// AllocationComputed records one allocation run
func (m *Metrics) AllocationComputed(policy string, participants int, gap int64) {
	if gap < 0 {
		gap = -gap
	}
	m.allocations.WithLabelValues(policy).Inc()
	m.allocationGap.WithLabelValues(policy).Observe(float64(gap))
	m.rosterSize.Observe(float64(participants))
}

// PlanSaved records one plan write
func (m *Metrics) PlanSaved(operation string) {
	m.planSaves.WithLabelValues(operation).Inc()
}

package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bryanwahyu/interpretlab/internal/domain/core"
)

// Metrics holds the HTTP and catalog collectors on their own registry.
type Metrics struct {
	registry *prometheus.Registry

	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	inFlight prometheus.Gauge

	created     *prometheus.CounterVec
	transitions *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "interpretlab_http_requests_total",
			Help: "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "interpretlab_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "interpretlab_http_requests_in_flight",
			Help: "Requests currently being served.",
		}),
		created: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "interpretlab_entities_created_total",
			Help: "Entities created, by kind.",
		}, []string{"entity"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "interpretlab_status_transitions_total",
			Help: "Committed status changes, by kind and edge.",
		}, []string{"entity", "from", "to"}),
	}
	m.registry.MustRegister(
		m.requests, m.duration, m.inFlight, m.created, m.transitions,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// EntityCreated and StatusChanged let Metrics serve as the catalog recorder.
func (m *Metrics) EntityCreated(entity core.Entity) {
	m.created.WithLabelValues(string(entity)).Inc()
}

func (m *Metrics) StatusChanged(entity core.Entity, from, to string) {
	m.transitions.WithLabelValues(string(entity), from, to).Inc()
}

// Middleware tracks request metrics. The route label is the chi pattern so
// ids do not explode the series count.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.inFlight.Inc()
		defer m.inFlight.Dec()
		start := time.Now()
		wrapped := wrap(w)

		next.ServeHTTP(wrapped, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		m.requests.WithLabelValues(r.Method, route, strconv.Itoa(wrapped.statusCode)).Inc()
		m.duration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

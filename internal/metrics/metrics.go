// Package metrics exposes Prometheus collectors for the exchange and
// callback pipelines and for the HTTP server.
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/juancollazo-ch/monoparts-service/internal/apperr"
	"github.com/juancollazo-ch/monoparts-service/internal/events"
	"github.com/juancollazo-ch/monoparts-service/internal/models"
	"github.com/juancollazo-ch/monoparts-service/internal/request"
	"github.com/juancollazo-ch/monoparts-service/internal/response"
)

// unmatchedRoute is the path label for requests chi could not route.
const unmatchedRoute = "unmatched"

// Metrics owns a dedicated registry so tests and multiple servers never
// collide on the global one.
type Metrics struct {
	Registry *prometheus.Registry

	// Requests counts completed exchanges by operation and business status.
	Requests *prometheus.CounterVec
	// RequestErrors counts failed exchanges by operation and error kind.
	RequestErrors *prometheus.CounterVec
	// Callbacks counts callback outcomes.
	Callbacks *prometheus.CounterVec

	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
}

// New registers every collector, plus Go and process collectors when
// withRuntime is set.
func New(withRuntime bool) *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		Requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "monoparts_requests_total", Help: "Completed API exchanges by operation and business status."},
			[]string{"operation", "status"},
		),
		RequestErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "monoparts_request_errors_total", Help: "Failed API exchanges by operation and error kind."},
			[]string{"operation", "kind"},
		),
		Callbacks: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "monoparts_callbacks_total", Help: "Inbound callbacks by outcome."},
			[]string{"outcome"},
		),
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests."},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{Name: "http_request_duration_seconds", Help: "HTTP request duration in seconds.", Buckets: prometheus.DefBuckets},
			[]string{"method", "path", "status"},
		),
	}

	m.Registry.MustRegister(m.Requests, m.RequestErrors, m.Callbacks, m.HTTPRequests, m.HTTPDuration)
	if withRuntime {
		m.Registry.MustRegister(collectors.NewGoCollector())
		m.Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}

// Middleware records count and latency per chi route pattern.
// Unrouted requests share the "unmatched" path label.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		path := unmatchedRoute
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			path = rc.RoutePattern()
		}
		code := ww.Status()
		if code == 0 {
			code = http.StatusOK
		}
		labels := prometheus.Labels{"method": r.Method, "path": path, "status": strconv.Itoa(code)}
		m.HTTPRequests.With(labels).Inc()
		m.HTTPDuration.With(labels).Observe(time.Since(start).Seconds())
	})
}

// Sink adapts the counters to events.Sink.
func (m *Metrics) Sink() events.Sink { return &sink{m: m} }

type sink struct {
	events.Nop
	m *Metrics
}

func (s *sink) ResponseReceived(_ context.Context, op request.Operation, resp *response.Response) {
	s.m.Requests.WithLabelValues(op.String(), resp.Status().String()).Inc()
}

func (s *sink) RequestFailed(_ context.Context, op request.Operation, err error) {
	s.m.RequestErrors.WithLabelValues(op.String(), apperr.Kind(err)).Inc()
}

func (s *sink) CallbackValidated(context.Context, models.OrderStateInfo) {
	s.m.Callbacks.WithLabelValues("accepted").Inc()
}

func (s *sink) CallbackFailed(_ context.Context, reason string, _ error) {
	s.m.Callbacks.WithLabelValues(reason).Inc()
}

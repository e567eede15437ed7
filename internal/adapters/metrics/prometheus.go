package metrics_adapter

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusMetrics - HTTP-метрики и счётчики синхронизации состояния.
// Реализует port.MetricsPort. Свой реестр, чтобы в тестах не пересекаться с глобальным.
type PrometheusMetrics struct {
	registry *prometheus.Registry

	httpRequestsTotal     *prometheus.CounterVec
	httpRequestDuration   *prometheus.HistogramVec
	httpActiveConnections prometheus.Gauge

	upstreamFailures *prometheus.CounterVec
	localFallbacks   *prometheus.CounterVec
	refreshPublished *prometheus.CounterVec
}

func NewPrometheusMetrics(namespace string) *PrometheusMetrics {
	namespace = strings.ReplaceAll(namespace, "-", "_")
	m := &PrometheusMetrics{
		registry: prometheus.NewRegistry(),
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		httpRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"method", "path"}),
		httpActiveConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_active_connections",
			Help:      "Number of in-flight HTTP requests",
		}),
		upstreamFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_failures_total",
			Help:      "Failed calls to the Kama backend by operation",
		}, []string{"operation"}),
		localFallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "local_fallbacks_total",
			Help:      "Responses served from the local snapshot instead of the backend",
		}, []string{"resource"}),
		refreshPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refresh_events_published_total",
			Help:      "refreshMatchingProperties events published by reason",
		}, []string{"reason"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.httpActiveConnections,
		m.upstreamFailures,
		m.localFallbacks,
		m.refreshPublished,
	)
	return m
}

func (m *PrometheusMetrics) UpstreamFailure(operation string) {
	m.upstreamFailures.WithLabelValues(operation).Inc()
}

func (m *PrometheusMetrics) LocalFallback(resource string) {
	m.localFallbacks.WithLabelValues(resource).Inc()
}

func (m *PrometheusMetrics) RefreshPublished(reason string) {
	m.refreshPublished.WithLabelValues(reason).Inc()
}

// Middleware считает запросы. Путь берётся из шаблона маршрута chi,
// чтобы id в URL не раздували число серий. /metrics не учитывается.
func (m *PrometheusMetrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/metrics") {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		m.httpActiveConnections.Inc()
		defer m.httpActiveConnections.Dec()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		routePath := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				routePath = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		m.httpRequestsTotal.WithLabelValues(r.Method, routePath, strconv.Itoa(status)).Inc()
		m.httpRequestDuration.WithLabelValues(r.Method, routePath).Observe(time.Since(start).Seconds())
	})
}

// Handler отдаёт метрики в формате Prometheus.
func (m *PrometheusMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

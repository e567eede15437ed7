package metrics_adapter

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusMetrics_UsesRoutePattern(t *testing.T) {
	m := NewPrometheusMetrics("kama-bff")

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/alerts/{alertID}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	r.Method(http.MethodGet, "/metrics", m.Handler())

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/alerts/a1", nil))
	require.Equal(t, http.StatusNoContent, rec.Code)

	m.UpstreamFailure("list_alerts")
	m.LocalFallback("alerts")
	m.RefreshPublished("alert_toggled")

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	out := string(body)

	assert.Contains(t, out, `kama_bff_http_requests_total{method="GET",path="/alerts/{alertID}",status="204"} 1`)
	assert.Contains(t, out, `kama_bff_upstream_failures_total{operation="list_alerts"} 1`)
	assert.Contains(t, out, `kama_bff_local_fallbacks_total{resource="alerts"} 1`)
	assert.Contains(t, out, `kama_bff_refresh_events_published_total{reason="alert_toggled"} 1`)
}

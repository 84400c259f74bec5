package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/NomadCrew/feedback-client/internal/metrics"
	"github.com/NomadCrew/feedback-client/types"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubHealth struct {
	status types.HealthStatus
}

func (s stubHealth) CheckHealth(context.Context) types.HealthCheck {
	return types.HealthCheck{
		Status:     s.status,
		Components: map[string]types.HealthComponent{"feedback_api": {Status: s.status}},
		Version:    "test",
	}
}

func setup(t *testing.T, health HealthChecker) (*gin.Engine, *metrics.Metrics) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	r := SetupRouter(Dependencies{Gatherer: reg, Health: health, Logger: zap.NewNop().Sugar()})
	return r, m
}

func get(r http.Handler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestSetupRouter_Health(t *testing.T) {
	tests := []struct {
		status   types.HealthStatus
		wantCode int
	}{
		{types.HealthStatusUp, http.StatusOK},
		{types.HealthStatusDegraded, http.StatusOK},
		{types.HealthStatusDown, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			r, _ := setup(t, stubHealth{status: tt.status})

			w := get(r, "/health")
			require.Equal(t, tt.wantCode, w.Code)

			var body types.HealthCheck
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.status, body.Status)
			assert.Equal(t, "test", body.Version)
		})
	}
}

func TestSetupRouter_Liveness(t *testing.T) {
	r, _ := setup(t, nil)

	w := get(r, "/health/liveness")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"UP"}`, w.Body.String())

	assert.Equal(t, http.StatusNotFound, get(r, "/health").Code)
}

func TestSetupRouter_Metrics(t *testing.T) {
	r, m := setup(t, nil)
	m.StaleResultDiscarded()
	m.PageApplied("refresh")

	w := get(r, "/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "feedback_list_stale_results_total 1")
	assert.Contains(t, w.Body.String(), `feedback_list_pages_applied_total{kind="refresh"} 1`)
}

func TestSetupRouter_UnknownRoute(t *testing.T) {
	r, _ := setup(t, nil)
	assert.Equal(t, http.StatusNotFound, get(r, "/v1/trips").Code)
}

package observability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wayfinder-backend/internal/config"
)

func TestCollector_IndependentRegistries(t *testing.T) {
	a := NewCollector("wayfinder")
	b := NewCollector("wayfinder")

	a.Routes.WithLabelValues("found").Inc()

	assert.Equal(t, float64(1), testutil.ToFloat64(a.Routes.WithLabelValues("found")))
	assert.Equal(t, float64(0), testutil.ToFloat64(b.Routes.WithLabelValues("found")))
}

func TestCollector_AICallAndBreaker(t *testing.T) {
	c := NewCollector("wayfinder")
	c.ObserveAICall("resolve", "ok", 200*time.Millisecond)
	c.ObserveAICall("resolve", "ok", 300*time.Millisecond)
	c.SetBreakerState("openai", 2)

	assert.Equal(t, float64(2), testutil.ToFloat64(c.AICalls.WithLabelValues("resolve", "ok")))
	assert.Equal(t, float64(2), testutil.ToFloat64(c.BreakerState.WithLabelValues("openai")))

	var nilCollector *Collector
	assert.NotPanics(t, func() { nilCollector.ObserveAICall("resolve", "error", time.Second) })
}

func TestCollector_SetFeatures(t *testing.T) {
	c := NewCollector("wayfinder")
	c.SetFeatures(config.Features{SemanticSearch: true, DFSComparison: true})

	assert.Equal(t, float64(1), testutil.ToFloat64(c.Features.WithLabelValues("semantic_search")))
	assert.Equal(t, float64(0), testutil.ToFloat64(c.Features.WithLabelValues("photo_recovery")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.Features.WithLabelValues("dfs_comparison")))

	var nilCollector *Collector
	assert.NotPanics(t, func() { nilCollector.SetFeatures(config.Features{}) })
}

func TestCollector_Handler(t *testing.T) {
	c := NewCollector("wayfinder")
	c.GraphNodes.Set(9)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "wayfinder_graph_nodes 9")
}

func TestMetricsMiddleware_UsesRoutePattern(t *testing.T) {
	c := NewCollector("wayfinder")

	r := chi.NewRouter()
	r.Use(MetricsMiddleware(c))
	r.Get("/api/sessions/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for _, id := range []string{"a", "b"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sessions/"+id, nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	}

	assert.Equal(t, float64(2),
		testutil.ToFloat64(c.HTTPRequests.WithLabelValues(http.MethodGet, "/api/sessions/{id}", "404")))
}

func TestInitTracing_Disabled(t *testing.T) {
	tp, err := InitTracing(context.Background(), config.Tracing{}, config.Test, "test")
	require.NoError(t, err)
	require.NotNil(t, tp.Tracer())
	assert.NoError(t, tp.Shutdown(context.Background()))

	r := chi.NewRouter()
	r.Use(TracingMiddleware(tp.Tracer()))
	r.Get("/api/health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Body.String(), "ok"))
	assert.Empty(t, rec.Header().Get("X-Trace-ID"), "no-op spans carry no trace id")
}

func TestCreateSampler(t *testing.T) {
	assert.Contains(t, createSampler(config.Development, 0.1).Description(), "AlwaysOn")
	assert.Contains(t, createSampler(config.Production, 0.1).Description(), "TraceIDRatioBased")
}

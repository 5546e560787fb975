package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"wayfinder-backend/internal/config"
)

// Collector holds all Prometheus metrics for the application. Each collector
// owns its registry so tests can create as many as they like.
type Collector struct {
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Navigation metrics
	Resolutions  *prometheus.CounterVec
	Routes       *prometheus.CounterVec
	RouteLength  prometheus.Histogram
	Recoveries   *prometheus.CounterVec
	GraphNodes   prometheus.Gauge
	GraphEdges   prometheus.Gauge
	SessionsLive prometheus.Gauge

	// External collaborator metrics
	AICalls        *prometheus.CounterVec
	AIDuration     *prometheus.HistogramVec
	BreakerState   *prometheus.GaugeVec
	SourceDuration *prometheus.HistogramVec

	Features *prometheus.GaugeVec
}

// NewCollector creates a collector whose metrics are prefixed with namespace.
func NewCollector(namespace string) *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		Resolutions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "location_resolutions_total",
				Help:      "Location queries by matching strategy; strategy is \"none\" when nothing matched",
			},
			[]string{"strategy"},
		),
		Routes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "routes_total",
				Help:      "Route requests by outcome",
			},
			[]string{"outcome"},
		),
		RouteLength: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "route_length_steps",
				Help:      "Number of steps in computed routes",
				Buckets:   []float64{1, 2, 3, 5, 8, 13, 21, 34},
			},
		),
		Recoveries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "recoveries_total",
				Help:      "Landmark recoveries by input kind and outcome",
			},
			[]string{"kind", "outcome"},
		),
		GraphNodes: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "graph_nodes",
				Help:      "Nodes in the loaded building graph",
			},
		),
		GraphEdges: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "graph_edges",
				Help:      "Edges in the loaded building graph",
			},
		),
		SessionsLive: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "sessions_live",
				Help:      "Navigation sessions currently held in memory",
			},
		),
		AICalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ai_calls_total",
				Help:      "Calls to the AI collaborators by operation and outcome",
			},
			[]string{"operation", "outcome"},
		),
		AIDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "ai_call_duration_seconds",
				Help:      "AI collaborator call duration in seconds",
				Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32},
			},
			[]string{"operation"},
		),
		BreakerState: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "circuit_breaker_state",
				Help:      "Circuit breaker state (0 closed, 1 half-open, 2 open)",
			},
			[]string{"name"},
		),
		SourceDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "graph_source_load_seconds",
				Help:      "Time spent reading the building definition",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"source"},
		),
		Features: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "feature_enabled",
				Help:      "Current feature toggles (1 enabled, 0 disabled)",
			},
			[]string{"feature"},
		),
	}

	registry.MustRegister(
		c.HTTPRequests,
		c.HTTPDuration,
		c.Resolutions,
		c.Routes,
		c.RouteLength,
		c.Recoveries,
		c.GraphNodes,
		c.GraphEdges,
		c.SessionsLive,
		c.AICalls,
		c.AIDuration,
		c.BreakerState,
		c.SourceDuration,
		c.Features,
	)

	return c
}

// ObserveAICall records one collaborator call.
func (c *Collector) ObserveAICall(operation, outcome string, d time.Duration) {
	if c == nil {
		return
	}
	c.AICalls.WithLabelValues(operation, outcome).Inc()
	c.AIDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// SetBreakerState records a breaker transition.
func (c *Collector) SetBreakerState(name string, state float64) {
	if c == nil {
		return
	}
	c.BreakerState.WithLabelValues(name).Set(state)
}

// SetFeatures publishes the current feature toggles.
func (c *Collector) SetFeatures(f config.Features) {
	if c == nil {
		return
	}
	for name, on := range map[string]bool{
		"semantic_search":    f.SemanticSearch,
		"photo_recovery":     f.PhotoRecovery,
		"ai_instructions":    f.AIInstructions,
		"dfs_comparison":     f.DFSComparison,
		"no_cache_responses": f.NoCacheResponses,
	} {
		v := 0.0
		if on {
			v = 1
		}
		c.Features.WithLabelValues(name).Set(v)
	}
}

// GetRegistry returns the Prometheus registry for this collector
func (c *Collector) GetRegistry() *prometheus.Registry {
	return c.registry
}

// Handler serves the collector's metrics in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds all metrics for the application.
//
// Registry implements observability.PipelineHooks, observability.SimulationHooks
// and observability.CacheHooks, so one instance can be registered for all
// three event categories.
type Registry struct {
	// Pipeline Metrics
	ParsesTotal    *prometheus.CounterVec
	ParseDuration  *prometheus.HistogramVec
	LayoutsTotal   *prometheus.CounterVec
	LayoutDuration prometheus.Histogram
	LayoutNodes    prometheus.Histogram
	LayoutLinks    prometheus.Histogram
	RendersTotal   *prometheus.CounterVec
	RenderDuration *prometheus.HistogramVec

	// Simulation Metrics
	SimulationsTotal   *prometheus.CounterVec
	SimulationsActive  prometheus.Gauge
	SimulationTicks    prometheus.Histogram
	SimulationPoints   prometheus.Histogram
	SimulationDuration prometheus.Histogram
	TicksTotal         prometheus.Counter
	SimulationAlpha    prometheus.Gauge

	// Cache Metrics
	CacheRequestsTotal *prometheus.CounterVec
	CacheWrittenBytes  *prometheus.CounterVec

	registry *prometheus.Registry
	mu       sync.Mutex
	active   map[string]struct{}
}

var (
	// Global registry instance
	defaultRegistry *Registry
	once            sync.Once
)

// DefaultRegistry returns the global metrics registry.
func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a new metrics registry with all metrics initialized.
func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),
		active:   make(map[string]struct{}),
	}

	r.initPipelineMetrics()
	r.initSimulationMetrics()
	r.initCacheMetrics()

	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry.
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initSimulationMetrics() {
	r.SimulationsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "flowmap_simulations_total",
			Help: "Total number of finished bundling simulations",
		},
		[]string{"reason"}, // converged, max_ticks, cancelled
	)

	r.SimulationsActive = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "flowmap_simulations_active",
			Help: "Number of bundling simulations currently relaxing",
		},
	)

	r.SimulationTicks = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "flowmap_simulation_ticks",
			Help:    "Ticks performed per bundling simulation",
			Buckets: []float64{10, 50, 100, 200, 300, 500, 1000},
		},
	)

	r.SimulationPoints = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "flowmap_simulation_points",
			Help:    "Simulated points per bundling simulation",
			Buckets: prometheus.ExponentialBuckets(8, 4, 6),
		},
	)

	r.SimulationDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "flowmap_simulation_duration_seconds",
			Help:    "Wall time from first tick to end of a bundling simulation",
			Buckets: prometheus.DefBuckets,
		},
	)

	r.TicksTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "flowmap_simulation_ticks_total",
			Help: "Total number of bundling ticks across all simulations",
		},
	)

	r.SimulationAlpha = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "flowmap_simulation_alpha",
			Help: "Alpha of the most recent bundling tick",
		},
	)
}

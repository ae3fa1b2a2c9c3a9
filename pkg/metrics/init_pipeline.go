package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initPipelineMetrics() {
	r.ParsesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "flowmap_parses_total",
			Help: "Total number of input documents parsed",
		},
		[]string{"format", "status"},
	)

	r.ParseDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "flowmap_parse_duration_seconds",
			Help:    "Input parsing duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"format"},
	)

	r.LayoutsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "flowmap_layouts_total",
			Help: "Total number of layout passes",
		},
		[]string{"status"}, // ok, or an error code
	)

	r.LayoutDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "flowmap_layout_duration_seconds",
			Help:    "Layout pass duration in seconds",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
	)

	r.LayoutNodes = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "flowmap_layout_nodes",
			Help:    "Number of input nodes per layout pass",
			Buckets: prometheus.ExponentialBuckets(4, 4, 6),
		},
	)

	r.LayoutLinks = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "flowmap_layout_links",
			Help:    "Number of input links per layout pass",
			Buckets: prometheus.ExponentialBuckets(4, 4, 6),
		},
	)

	r.RendersTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "flowmap_renders_total",
			Help: "Total number of debug renders",
		},
		[]string{"format", "status"},
	)

	r.RenderDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "flowmap_render_duration_seconds",
			Help:    "Debug render duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"format"},
	)
}

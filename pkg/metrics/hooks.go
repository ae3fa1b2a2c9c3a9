package metrics

import (
	"context"
	"time"

	flowerr "github.com/matzehuels/flowmap/pkg/errors"
	"github.com/matzehuels/flowmap/pkg/observability"
)

var (
	_ observability.PipelineHooks   = (*Registry)(nil)
	_ observability.SimulationHooks = (*Registry)(nil)
	_ observability.CacheHooks      = (*Registry)(nil)
)

// Register installs r as the pipeline, simulation and cache hooks.
func (r *Registry) Register() {
	observability.SetPipelineHooks(r)
	observability.SetSimulationHooks(r)
	observability.SetCacheHooks(r)
}

func status(err error) string {
	if err == nil {
		return "ok"
	}
	if code := flowerr.GetCode(err); code != "" {
		return string(code)
	}
	return "error"
}

// OnParseStart implements observability.PipelineHooks.
func (r *Registry) OnParseStart(context.Context, string) {}

// OnParseComplete implements observability.PipelineHooks.
func (r *Registry) OnParseComplete(_ context.Context, format string, _, _ int, duration time.Duration, err error) {
	r.ParsesTotal.WithLabelValues(format, status(err)).Inc()
	r.ParseDuration.WithLabelValues(format).Observe(duration.Seconds())
}

// OnLayoutStart implements observability.PipelineHooks.
func (r *Registry) OnLayoutStart(_ context.Context, nodeCount, linkCount int) {
	r.LayoutNodes.Observe(float64(nodeCount))
	r.LayoutLinks.Observe(float64(linkCount))
}

// OnLayoutComplete implements observability.PipelineHooks.
func (r *Registry) OnLayoutComplete(_ context.Context, duration time.Duration, err error) {
	r.LayoutsTotal.WithLabelValues(status(err)).Inc()
	r.LayoutDuration.Observe(duration.Seconds())
}

// OnRenderStart implements observability.PipelineHooks.
func (r *Registry) OnRenderStart(context.Context, string) {}

// OnRenderComplete implements observability.PipelineHooks.
func (r *Registry) OnRenderComplete(_ context.Context, format string, duration time.Duration, err error) {
	r.RendersTotal.WithLabelValues(format, status(err)).Inc()
	r.RenderDuration.WithLabelValues(format).Observe(duration.Seconds())
}

// OnSimulationStart implements observability.SimulationHooks.
func (r *Registry) OnSimulationStart(_ context.Context, id string, _, points int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.active[id]; !ok {
		r.active[id] = struct{}{}
		r.SimulationsActive.Inc()
	}
	r.SimulationPoints.Observe(float64(points))
}

// OnTick implements observability.SimulationHooks.
func (r *Registry) OnTick(_ context.Context, _ string, _ int, alpha float64) {
	r.TicksTotal.Inc()
	r.SimulationAlpha.Set(alpha)
}

// OnSimulationEnd implements observability.SimulationHooks.
// Simulations cancelled before their first tick never became active and only
// count towards SimulationsTotal.
func (r *Registry) OnSimulationEnd(_ context.Context, id string, ticks int, reason string, duration time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.active[id]; ok {
		delete(r.active, id)
		r.SimulationsActive.Dec()
		r.SimulationTicks.Observe(float64(ticks))
		r.SimulationDuration.Observe(duration.Seconds())
	}
	r.SimulationsTotal.WithLabelValues(reason).Inc()
}

// OnCacheHit implements observability.CacheHooks.
func (r *Registry) OnCacheHit(_ context.Context, keyType string) {
	r.CacheRequestsTotal.WithLabelValues(keyType, "hit").Inc()
}

// OnCacheMiss implements observability.CacheHooks.
func (r *Registry) OnCacheMiss(_ context.Context, keyType string) {
	r.CacheRequestsTotal.WithLabelValues(keyType, "miss").Inc()
}

// OnCacheSet implements observability.CacheHooks.
func (r *Registry) OnCacheSet(_ context.Context, keyType string, size int) {
	r.CacheWrittenBytes.WithLabelValues(keyType).Add(float64(size))
}

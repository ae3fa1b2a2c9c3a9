package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/flowmap/pkg/bundle"
	"github.com/matzehuels/flowmap/pkg/cache"
	flowerr "github.com/matzehuels/flowmap/pkg/errors"
	"github.com/matzehuels/flowmap/pkg/graph"
	"github.com/matzehuels/flowmap/pkg/layout"
	"github.com/matzehuels/flowmap/pkg/observability"
	"github.com/matzehuels/flowmap/pkg/render/nodelink"
)

// Runner encapsulates pipeline execution with caching.
//
// The Runner does not store pipeline results. It does own the layout engine,
// so that a new layout supersedes the simulation of the previous one.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	engineOnce sync.Once
	engine     *layout.Engine
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
// Cache traffic is reported to the observability cache hooks.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  cache.Observe(c),
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete parse → layout → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	r.applyLogger(&opts)

	result := &Result{}

	// Stage 1: Parse
	parseStart := time.Now()
	doc, err := r.Parse(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	result.Document = doc
	result.Stats.ParseTime = time.Since(parseStart)
	if result.InputHash, err = graph.HashInput(doc); err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}

	// Stage 2: Layout
	layoutStart := time.Now()
	l, layoutHit, err := r.LayoutWithCacheInfo(ctx, doc, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Layout = l
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.Stats.NodeCount = l.Stats.Nodes
	result.Stats.LinkCount = l.Stats.Links
	result.Stats.Ticks = l.Stats.Ticks
	result.CacheInfo.LayoutHit = layoutHit

	r.Logger.Info("computed layout",
		"nodes", l.Stats.Nodes,
		"links", l.Stats.Links,
		"midpoints", l.Stats.Midpoints,
		"cached", layoutHit,
		"duration", result.Stats.LayoutTime)

	// Stage 3: Render
	if len(opts.Formats) == 0 {
		return result, nil
	}
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, l, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Parse returns opts.Document if set and otherwise reads opts.Input.
func (r *Runner) Parse(ctx context.Context, opts Options) (*graph.Document, error) {
	if err := opts.ValidateForParse(); err != nil {
		return nil, err
	}
	if opts.Document != nil {
		return opts.Document, nil
	}

	hooks := observability.Pipeline()
	format := "unknown"
	if f, err := graph.FormatFromPath(opts.Input); err == nil {
		format = string(f)
	}
	hooks.OnParseStart(ctx, format)
	start := time.Now()

	doc, err := graph.ReadDocumentFile(opts.Input)

	var nodes, links int
	if doc != nil {
		nodes, links = len(doc.Nodes), len(doc.Links)
	}
	hooks.OnParseComplete(ctx, format, nodes, links, time.Since(start), err)
	if err != nil {
		return nil, err
	}

	r.Logger.Debug("parsed document", "input", opts.Input, "nodes", nodes, "links", links)
	return doc, nil
}

// LayoutWithCacheInfo computes the layout of doc with its own options and
// reports whether it came from cache. With edge bundling enabled the
// simulation runs to convergence before the layout is returned; opts.OnTick
// observes its progress. Cancelling ctx cancels the simulation.
//
// Documents with a custom link order are never cached, since the order
// function cannot be part of the key.
func (r *Runner) LayoutWithCacheInfo(ctx context.Context, doc *graph.Document, opts Options) (graph.Layout, bool, error) {
	r.applyLogger(&opts)

	layoutOpts := doc.Options
	cacheable := layoutOpts.Order == nil
	if err := layoutOpts.ValidateAndSetDefaults(); err != nil {
		return graph.Layout{}, false, err
	}

	var key string
	if cacheable {
		hash, err := graph.HashInput(doc)
		if err != nil {
			return graph.Layout{}, false, err
		}
		key = r.Keyer.LayoutKey(hash, LayoutKeyOpts(layoutOpts))
	}

	if cacheable && !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			if cached, err := graph.UnmarshalLayout(data); err == nil {
				return cached, true, nil
			}
			r.Logger.Debug("discarding unreadable cached layout", "key", key)
		}
	}

	l, err := r.computeLayout(ctx, doc, layoutOpts, opts)
	if err != nil {
		return graph.Layout{}, false, err
	}

	if cacheable {
		if data, err := graph.MarshalLayout(l); err == nil {
			if err := r.Cache.Set(ctx, key, data, cache.TTLLayout); err != nil {
				r.Logger.Warn("cache write failed", "err", err)
			}
		}
	}
	return l, false, nil
}

// Layout is a convenience wrapper that calls LayoutWithCacheInfo and discards the cache hit info.
func (r *Runner) Layout(ctx context.Context, doc *graph.Document, opts Options) (graph.Layout, error) {
	l, _, err := r.LayoutWithCacheInfo(ctx, doc, opts)
	return l, err
}

func (r *Runner) computeLayout(ctx context.Context, doc *graph.Document, layoutOpts layout.Options, opts Options) (l graph.Layout, err error) {
	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, len(doc.Nodes), len(doc.Links))
	start := time.Now()
	defer func() { hooks.OnLayoutComplete(ctx, time.Since(start), err) }()

	res, err := r.getEngine().Layout(ctx, doc.Nodes, doc.Links, layoutOpts)
	if err != nil {
		return graph.Layout{}, err
	}

	if sim := res.Simulation; sim != nil {
		if opts.OnTick != nil {
			sim.OnTick(opts.OnTick)
		}
		sim.OnEnd(func(e bundle.End) {
			r.Logger.Debug("bundling finished",
				"simulation", e.ID,
				"ticks", e.Ticks,
				"reason", e.Reason,
				"duration", e.Duration)
		})
		if err := sim.Run(ctx); err != nil {
			return graph.Layout{}, err
		}
		res.ApplyPaths(sim.Paths())
	}
	return graph.FromResult(res), nil
}

// RenderWithCacheInfo renders every requested format and reports whether all
// of them came from cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, l graph.Layout, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	data, err := graph.MarshalLayout(l)
	if err != nil {
		return nil, false, fmt.Errorf("serialize layout for cache key: %w", err)
	}
	layoutHash := cache.Hash(data)

	artifacts := make(map[string][]byte, len(opts.Formats))
	allCached := true
	for _, format := range opts.Formats {
		key := r.Keyer.ArtifactKey(layoutHash, ArtifactKeyOpts(opts, format))
		if !opts.Refresh {
			if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
				artifacts[format] = data
				continue
			}
		}
		allCached = false

		out, err := r.renderFormat(ctx, l, format, opts)
		if err != nil {
			return nil, false, err
		}
		artifacts[format] = out
		if err := r.Cache.Set(ctx, key, out, cache.TTLArtifact); err != nil {
			r.Logger.Warn("cache write failed", "err", err)
		}
	}
	return artifacts, allCached, nil
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards the cache hit info.
func (r *Runner) Render(ctx context.Context, l graph.Layout, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, l, opts)
	return artifacts, err
}

func (r *Runner) renderFormat(ctx context.Context, l graph.Layout, format string, opts Options) (data []byte, err error) {
	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, format)
	start := time.Now()
	defer func() { hooks.OnRenderComplete(ctx, format, time.Since(start), err) }()

	data, err = nodelink.Render(ctx, l, format, opts.RenderOptions())
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", format, err)
	}
	return data, nil
}

// Cancel stops the bundling simulation of the most recent layout, if any.
func (r *Runner) Cancel() {
	r.getEngine().Close()
}

// Close cancels any running simulation and releases the cache.
func (r *Runner) Close() error {
	r.Cancel()
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) getEngine() *layout.Engine {
	r.engineOnce.Do(func() { r.engine = layout.NewEngine() })
	return r.engine
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

// =============================================================================
// Cache Keys
// =============================================================================

// LayoutKeyOpts returns the cache key options for defaulted layout options.
// Simulation parameters only enter the key when bundling is enabled.
func LayoutKeyOpts(o layout.Options) cache.LayoutKeyOpts {
	k := cache.LayoutKeyOpts{
		Bidirectional: o.Bidirectional,
		EdgeBundling:  o.EdgeBundling,
		WidthMin:      o.WidthRange[0],
		WidthMax:      o.WidthRange[1],
		Taper:         o.Taper.Enabled,
		TaperFraction: o.Taper.Fraction,
		TaperFloor:    o.Taper.Floor,
		Arrows:        o.Arrows.Enabled,
		ArrowScale:    o.Arrows.Scale,
	}
	if o.EdgeBundling {
		k.Bundling = o.Bundling
	}
	return k
}

// ArtifactKeyOpts returns the cache key options for one render format.
func ArtifactKeyOpts(o Options, format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{Format: format, Detailed: o.Detailed, Midpoints: o.Midpoints}
}

// IsCancelled reports whether err stems from a cancelled layout.
func IsCancelled(err error) bool {
	return flowerr.Is(err, flowerr.ErrCodeCancelled)
}

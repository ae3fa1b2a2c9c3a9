// Package pkg provides the core libraries for flowmap spatial flow layouts.
//
// # Overview
//
// Flowmap lays out flows between places whose positions are fixed, such as
// trade between countries or commuters between districts. Nodes never move;
// the layout decides how wide each link is, where along a node's breadth it
// attaches, and, optionally, how links bend towards each other when edge
// bundling is on.
//
// # Architecture
//
// The data flow through flowmap:
//
//	Flow document (JSON, YAML, TOML)
//	         ↓
//	    [graph] package (decode, validate, hash)
//	         ↓
//	    [flow/transform] package (route resolution, layering)
//	         ↓
//	    [layout] package (scale, breadth, stacking, segments)
//	         ↓
//	    [bundle] package (optional force simulation)
//	         ↓
//	    Layout JSON, Graphviz preview
//
// # Quick Start
//
//	res, err := layout.NewEngine().Layout(ctx, nodes, links, layout.Options{
//	    Bidirectional: true,
//	    EdgeBundling:  true,
//	})
//	if err != nil {
//	    return err
//	}
//	if sim := res.Simulation; sim != nil {
//	    if err := sim.Run(ctx); err != nil {
//	        return err
//	    }
//	    res.ApplyPaths(sim.Paths())
//	}
//
// # Main Packages
//
// [flow] - Graph model: nodes with fixed coordinates, weighted links, and
// adjacency lookups.
//
// [flow/transform] - Bidirectional route resolution with midpoint splitting,
// and depth/height layering that rejects cycles.
//
// [layout] - Value scale, node breadth, per-side link stacking, straight and
// tapered segments. The [layout.Engine] supersedes stale simulations.
//
// [bundle] - Edge-bundling force simulation with tick observers and
// cancellation.
//
// [graph] - Serialization of input documents and computed layouts.
//
// [pipeline] - Parse → layout → render orchestration with content-hash
// caching, shared by every CLI command.
//
// [cache] - Cache interface with file, memory and null backends, plus key
// derivation.
//
// [render/nodelink] - Graphviz DOT and SVG preview of a layout.
//
// [observability] and [metrics] - Hook registry and its Prometheus
// implementation.
//
// [errors] - Coded errors shared by all packages.
//
// # Testing
//
//	go test ./pkg/...          # All tests
//	go test ./pkg/bundle/...   # Specific package
//	go test -run Example ./... # Examples only
//
// [flow]: https://pkg.go.dev/github.com/matzehuels/flowmap/pkg/flow
// [flow/transform]: https://pkg.go.dev/github.com/matzehuels/flowmap/pkg/flow/transform
// [layout]: https://pkg.go.dev/github.com/matzehuels/flowmap/pkg/layout
// [layout.Engine]: https://pkg.go.dev/github.com/matzehuels/flowmap/pkg/layout#Engine
// [bundle]: https://pkg.go.dev/github.com/matzehuels/flowmap/pkg/bundle
// [graph]: https://pkg.go.dev/github.com/matzehuels/flowmap/pkg/graph
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/flowmap/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/flowmap/pkg/cache
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/flowmap/pkg/render/nodelink
// [observability]: https://pkg.go.dev/github.com/matzehuels/flowmap/pkg/observability
// [metrics]: https://pkg.go.dev/github.com/matzehuels/flowmap/pkg/metrics
// [errors]: https://pkg.go.dev/github.com/matzehuels/flowmap/pkg/errors
package pkg

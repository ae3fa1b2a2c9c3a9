// Package flow provides the graph model for spatial flow diagrams.
//
// # Overview
//
// A flow diagram connects fixed geographic anchors (region centroids,
// cities, user-supplied points) with directed links whose width encodes a
// volume. Unlike a free Sankey layout, node positions are never chosen by
// the engine: they arrive already projected into planar coordinates and
// are treated as immutable.
//
// This package turns raw input into a linked structure. Each [Node] holds
// its outgoing ([Node.SourceLinks]) and incoming ([Node.TargetLinks])
// links; each [Link] holds resolved node references.
//
// # Stages
//
// Graph objects are versioned per stage rather than mutated ad hoc:
//
//   - [RawNode], [RawLink]: caller input, links refer to nodes by ID
//   - [Node], [Link]: resolved graph, filled in by layering and stacking
//   - layout.Node, layout.Link: positioned output records
//
// # Basic Usage
//
//	g, err := flow.Build(
//	    []flow.RawNode{{ID: "A", X: 0, Y: 0}, {ID: "B", X: 100, Y: 0}},
//	    []flow.RawLink{{Source: "A", Target: "B", Value: 10}},
//	)
//
// Links with a non-positive value are not part of the flow and are dropped
// before entering the model. A link that names an unknown node aborts the
// build with a MISSING_NODE error naming the ID.
//
// # Concurrency
//
// Graph instances are not safe for concurrent use. A layout pass owns its
// graph for the duration of the pass.
//
// # Related Packages
//
// The [transform] subpackage resolves bidirectional routes and assigns
// depth and height layers.
//
// [transform]: github.com/matzehuels/flowmap/pkg/flow/transform
package flow

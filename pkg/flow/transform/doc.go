// Package transform provides graph transformations that prepare flow input
// for layout.
//
// # Overview
//
// Geographic flow data rarely arrives in a shape a layered layout can use
// directly. Two places exchange flow in both directions, which a layering
// pass would read as a cycle, and several links often share one pair of
// endpoints. This package normalizes both problems and then assigns layers.
//
// # Route Resolution
//
// [ResolveRoutes] aggregates every link between an unordered pair of
// anchors into a single [Route] with two directional totals. When both
// totals are positive, a synthetic midpoint node is created so that the two
// opposing flows render as two adjoining halves:
//
//	Before: A→B (10), B→A (5), A→B (2)
//	After:  A|B#mid→B (12), A|B#mid→A (5)
//
// Volume is never lost: each directional total equals the exact sum of the
// original same-direction links.
//
// # Layering
//
// [AssignDepths] and [AssignHeights] compute each node's distance from the
// nearest source and sink by wave expansion. Both fail with
// [ErrCircularLink] when the graph still contains a cycle.
//
// # Ordering Constraint
//
// Route resolution must run before layering whenever bidirectional flows
// are possible:
//
//	res, err := transform.ResolveRoutes(nodes, links)
//	g, err := flow.Build(res.Nodes, res.Links)
//	err = transform.AssignLayers(g)
package transform

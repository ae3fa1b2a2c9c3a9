// Package layout computes spatial Sankey layouts: flows between fixed
// anchors, drawn as bands whose widths encode volume.
//
// # Overview
//
// Node positions come from the caller (typically projected region
// centroids) and are never moved. What the layout decides is how wide each
// flow is and where along its anchors' vertical extent each flow attaches,
// so that flows meeting at a node stack without gaps or overlaps.
//
// # Pipeline
//
// [Compute] runs one synchronous pass:
//
//  1. Route resolution splits routes carrying flow in both directions at a
//     midpoint node (Options.Bidirectional)
//  2. The flow graph is built; zero-value links are dropped
//  3. Depths and heights are assigned; cycles abort the pass
//  4. One [LinearScale] over the global value range sets every link width
//  5. Each node's breadth is the larger of its outgoing and incoming width
//     totals, centered on its anchor
//  6. Links are stacked at each node in [Order]; the default order reduces
//     crossings by sorting on the other endpoint's position
//  7. Straight or tapered geometry is derived per link, trimmed for
//     arrowheads when enabled
//
// Nodes whose total flow is zero are left out of [Result.Nodes].
//
// # Edge Bundling
//
// With Options.EdgeBundling, step 7 is replaced by a [bundle.Simulation].
// [Engine] owns the simulation of its most recent pass and cancels it before
// starting the next one:
//
//	engine := layout.NewEngine()
//	defer engine.Close()
//
//	res, err := engine.Layout(ctx, nodes, links, layout.Options{EdgeBundling: true})
//	if err != nil {
//	    return err
//	}
//	res.Simulation.OnTick(func(bundle.Tick) { res.ApplyPaths(res.Simulation.Paths()) })
//	res.Simulation.Start(ctx)
//
// # Determinism
//
// Identical input and options produce identical results. Stacking depends
// only on the order, and [DefaultOrder] falls back to link index and node ID
// when positions, direction and value tie.
package layout

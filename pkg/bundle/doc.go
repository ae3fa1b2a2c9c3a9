// Package bundle implements force-relaxation edge bundling for flow maps.
//
// # Overview
//
// Long straight flows that run side by side are hard to read. Bundling
// subdivides each link's segment into interior control points and relaxes
// them so that co-routed flows are drawn together, while every flow still
// starts and ends exactly at its anchor.
//
// # Lifecycle
//
// A [Simulation] is a small state machine:
//
//	idle → subdividing → relaxing → converged
//	                         ↘ cancelled
//
// The first tick subdivides every [Segment] into a [Path] with
// [Params.InteriorPoints] interior points. Segment lengths relative to the
// diagonal of the segments' bounding box map linearly onto
// [MinPoints, MaxPoints] (1 to 10 by default). Zero-length segments are
// skipped and produce no path.
//
// Each tick then applies:
//   - springs between consecutive points of a path, pulling them towards
//     even spacing (LinkStrength)
//   - a many-body force between points closer than DistanceMax, which
//     defaults to a fraction of the diagonal (ChargeStrength; positive
//     attracts, negative repels). Points are bucketed into a grid of that
//     cell size, so only neighboring cells are compared.
//   - velocity decay, then integration of the new positions
//
// All forces are scaled by alpha, which starts at 1 and decays by AlphaDecay
// per tick. The simulation converges once alpha drops below AlphaMin, after
// about 300 ticks with the defaults. Endpoints are pinned and never move.
//
// # Driving a Simulation
//
// [Simulation.Step] performs one synchronous tick, for callers that schedule
// ticks themselves. [Simulation.Start] runs ticks on one background
// goroutine, optionally paced by Params.TickInterval:
//
//	sim := bundle.New(segments, bundle.DefaultParams())
//	sim.OnTick(func(t bundle.Tick) { redraw(sim.Paths()) })
//	sim.OnEnd(func(e bundle.End) { log.Info("bundled", "ticks", e.Ticks) })
//	sim.Start(ctx)
//	defer sim.Cancel()
//
// # Cancellation
//
// A simulation whose layout has been superseded must be cancelled before the
// next pass starts. [Simulation.Cancel] stops future ticks, waits for the
// running tick and its observers, and stops the ticker. After Cancel returns
// no observer runs and [Simulation.Paths] never changes again.
package bundle

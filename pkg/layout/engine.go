package layout

import (
	"context"
	"sync"

	"github.com/matzehuels/flowmap/pkg/bundle"
	flowerr "github.com/matzehuels/flowmap/pkg/errors"
	"github.com/matzehuels/flowmap/pkg/flow"
)

// Engine runs layout passes and owns the bundling simulation of the most
// recent one. Starting a pass cancels the previous simulation first, so a
// superseded simulation never writes into a newer layout.
//
// Engine is safe for concurrent use; passes are serialized.
type Engine struct {
	mu      sync.Mutex
	current *bundle.Simulation
}

// NewEngine creates an engine with no active simulation.
func NewEngine() *Engine { return &Engine{} }

// Layout cancels any simulation left by the previous pass and computes a new
// layout. When opts.EdgeBundling is set, the result carries an idle
// Simulation over its segments: register observers, then Start it.
//
// A cancelled ctx returns a CANCELLED error before any work is done.
func (e *Engine) Layout(ctx context.Context, nodes []flow.RawNode, links []flow.RawLink, opts Options) (*Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.stopLocked()

	if err := ctx.Err(); err != nil {
		return nil, flowerr.Wrap(flowerr.ErrCodeCancelled, err, "layout cancelled")
	}

	result, err := Compute(nodes, links, opts)
	if err != nil {
		return nil, err
	}

	if opts.EdgeBundling {
		result.Simulation = bundle.New(result.Segments, opts.Bundling)
		e.current = result.Simulation
	}
	return result, nil
}

// Current returns the simulation of the most recent pass, or nil.
func (e *Engine) Current() *bundle.Simulation {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current
}

// Close cancels the current simulation.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopLocked()
}

func (e *Engine) stopLocked() {
	if e.current != nil {
		e.current.Cancel()
		e.current = nil
	}
}

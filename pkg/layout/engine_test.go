package layout

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/flowmap/pkg/bundle"
	flowerr "github.com/matzehuels/flowmap/pkg/errors"
	"github.com/matzehuels/flowmap/pkg/flow"
)

func engineInput() ([]flow.RawNode, []flow.RawLink) {
	nodes := []flow.RawNode{
		{ID: "A", X: 0, Y: 0},
		{ID: "B", X: 300, Y: 10},
		{ID: "C", X: 0, Y: 40},
		{ID: "D", X: 300, Y: 60},
	}
	links := []flow.RawLink{
		{Source: "A", Target: "B", Value: 5},
		{Source: "C", Target: "D", Value: 3},
		{Source: "A", Target: "D", Value: 2},
	}
	return nodes, links
}

func TestEngine_NoBundling(t *testing.T) {
	e := NewEngine()
	defer e.Close()

	nodes, links := engineInput()
	res, err := e.Layout(context.Background(), nodes, links, Options{})
	if err != nil {
		t.Fatalf("Layout() error = %v", err)
	}
	if res.Simulation != nil || e.Current() != nil {
		t.Error("simulation created without edge bundling")
	}
}

func TestEngine_CancelsPreviousSimulation(t *testing.T) {
	e := NewEngine()
	defer e.Close()

	nodes, links := engineInput()
	opts := Options{EdgeBundling: true}
	opts.Bundling.TickInterval = time.Millisecond

	first, err := e.Layout(context.Background(), nodes, links, opts)
	if err != nil {
		t.Fatalf("Layout() error = %v", err)
	}
	if first.Simulation == nil || e.Current() != first.Simulation {
		t.Fatal("first pass did not register its simulation")
	}

	var staleTicks atomic.Int32
	started := make(chan struct{}, 1)
	first.Simulation.OnTick(func(bundle.Tick) {
		staleTicks.Add(1)
		select {
		case started <- struct{}{}:
		default:
		}
	})
	first.Simulation.Start(context.Background())
	<-started

	second, err := e.Layout(context.Background(), nodes, links, opts)
	if err != nil {
		t.Fatalf("Layout() error = %v", err)
	}

	if first.Simulation.State() != bundle.StateCancelled {
		t.Errorf("first simulation state = %v, want cancelled", first.Simulation.State())
	}
	stopped := staleTicks.Load()
	time.Sleep(10 * time.Millisecond)
	if staleTicks.Load() != stopped {
		t.Error("superseded simulation kept ticking")
	}
	if e.Current() != second.Simulation || second.Simulation.ID() == first.Simulation.ID() {
		t.Error("engine does not track the newest simulation")
	}
	if second.Simulation.State() != bundle.StateIdle {
		t.Errorf("new simulation state = %v, want idle until started", second.Simulation.State())
	}
}

func TestEngine_BundledPathsApply(t *testing.T) {
	e := NewEngine()
	defer e.Close()

	nodes, links := engineInput()
	res, err := e.Layout(context.Background(), nodes, links, Options{EdgeBundling: true})
	if err != nil {
		t.Fatalf("Layout() error = %v", err)
	}
	if err := res.Simulation.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	res.ApplyPaths(res.Simulation.Paths())

	for i, l := range res.Links {
		seg := res.Segments[i]
		if len(l.Path) < 3 {
			t.Errorf("link %d path has %d points, want interior points", i, len(l.Path))
			continue
		}
		if l.Path[0] != seg.Source || l.Path[len(l.Path)-1] != seg.Target {
			t.Errorf("link %d endpoints moved", i)
		}
	}
	for _, n := range res.Nodes {
		for _, raw := range nodes {
			if raw.ID == n.ID && (raw.X != n.X || raw.Y != n.Y) {
				t.Errorf("node %s moved to (%v, %v)", n.ID, n.X, n.Y)
			}
		}
	}
}

func TestEngine_CancelledContext(t *testing.T) {
	e := NewEngine()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	nodes, links := engineInput()
	if _, err := e.Layout(ctx, nodes, links, Options{}); !flowerr.Is(err, flowerr.ErrCodeCancelled) {
		t.Errorf("Layout() error = %v, want CANCELLED", err)
	}
}

func TestEngine_CloseCancels(t *testing.T) {
	e := NewEngine()
	nodes, links := engineInput()
	res, err := e.Layout(context.Background(), nodes, links, Options{EdgeBundling: true})
	if err != nil {
		t.Fatalf("Layout() error = %v", err)
	}
	e.Close()
	if res.Simulation.State() != bundle.StateCancelled || e.Current() != nil {
		t.Errorf("Close() left simulation in state %v", res.Simulation.State())
	}
}

package cli

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/flowmap/pkg/bundle"
	flowerr "github.com/matzehuels/flowmap/pkg/errors"
	"github.com/matzehuels/flowmap/pkg/graph"
	"github.com/matzehuels/flowmap/pkg/pipeline"
)

type fakeRunner struct {
	cancelled int
	result    *pipeline.Result
	err       error
}

func (f *fakeRunner) Execute(_ context.Context, opts pipeline.Options) (*pipeline.Result, error) {
	if opts.OnTick != nil {
		opts.OnTick(bundle.Tick{Tick: 1, Alpha: 0.5})
	}
	return f.result, f.err
}

func (f *fakeRunner) Cancel() { f.cancelled++ }

func newTestWatchModel(t *testing.T, r watchRunner) watchModel {
	t.Helper()
	input := writeInput(t, "flows.yaml", flowsYAML)
	load := func() (*graph.Document, error) { return graph.ReadDocumentFile(input) }
	m := newWatchModel(context.Background(), input, "", r, load)
	if m.modTime.IsZero() {
		t.Fatal("newWatchModel() did not record the input's modification time")
	}
	return m
}

func update(t *testing.T, m watchModel, msg tea.Msg) (watchModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	wm, ok := next.(watchModel)
	if !ok {
		t.Fatalf("Update() returned %T, want watchModel", next)
	}
	return wm, cmd
}

func TestWatchModel_TickStartsBundling(t *testing.T) {
	m := newTestWatchModel(t, &fakeRunner{})
	m, cmd := update(t, m, tickMsg(bundle.Tick{Tick: 7, Alpha: 0.2, Displacement: 1.5}))

	if m.State != watchBundling {
		t.Errorf("State = %v, want bundling", m.State)
	}
	if m.Tick.Tick != 7 {
		t.Errorf("Tick = %d, want 7", m.Tick.Tick)
	}
	if cmd == nil {
		t.Error("tick should re-arm the tick listener")
	}
	if view := m.View(); !strings.Contains(view, "bundling") || !strings.Contains(view, "0.2000") {
		t.Errorf("View() lacks state or alpha:\n%s", view)
	}
}

func TestWatchModel_LayoutDone(t *testing.T) {
	m := newTestWatchModel(t, &fakeRunner{})
	res := &pipeline.Result{Layout: graph.Layout{Stats: graph.Stats{Nodes: 4, Links: 3, Midpoints: 1, Ticks: 20}}}

	m, _ = update(t, m, layoutDoneMsg{run: 1, result: res})
	if m.State != watchDone {
		t.Fatalf("State = %v, want done", m.State)
	}
	if m.Stats.Nodes != 4 || m.Stats.Midpoints != 1 || m.Stats.Ticks != 20 {
		t.Errorf("Stats = %+v", m.Stats)
	}
}

func TestWatchModel_StaleResultIgnored(t *testing.T) {
	m := newTestWatchModel(t, &fakeRunner{})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	if m.Run != 2 || m.State != watchComputing {
		t.Fatalf("after r: run=%d state=%v, want 2 and computing", m.Run, m.State)
	}

	cancelled := flowerr.Wrap(flowerr.ErrCodeCancelled, context.Canceled, "superseded")
	m, _ = update(t, m, layoutDoneMsg{run: 1, err: cancelled})
	if m.State != watchComputing {
		t.Errorf("stale result changed state to %v", m.State)
	}

	m, _ = update(t, m, layoutDoneMsg{run: 2, err: cancelled})
	if m.State != watchCancelled {
		t.Errorf("State = %v, want cancelled", m.State)
	}
}

func TestWatchModel_Failure(t *testing.T) {
	m := newTestWatchModel(t, &fakeRunner{})
	m, _ = update(t, m, layoutDoneMsg{run: 1, err: errors.New("boom")})
	if m.State != watchFailed || m.Err == nil {
		t.Fatalf("State = %v err = %v, want failed", m.State, m.Err)
	}
	if !strings.Contains(m.View(), "boom") {
		t.Error("View() does not show the error")
	}
}

func TestWatchModel_QuitCancels(t *testing.T) {
	r := &fakeRunner{}
	m := newTestWatchModel(t, r)
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})

	if r.cancelled != 1 {
		t.Errorf("Cancel() called %d times, want 1", r.cancelled)
	}
	if m.State != watchCancelled {
		t.Errorf("State = %v, want cancelled", m.State)
	}
	if cmd == nil {
		t.Fatal("quit should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("quit command should produce tea.QuitMsg")
	}
}

func TestWatchModel_FileChangeRestarts(t *testing.T) {
	m := newTestWatchModel(t, &fakeRunner{})

	m, _ = update(t, m, filePollMsg{modTime: m.modTime})
	if m.Run != 1 {
		t.Errorf("unchanged file restarted the layout (run %d)", m.Run)
	}

	later := m.modTime.Add(time.Second)
	m, _ = update(t, m, filePollMsg{modTime: later})
	if m.Run != 2 || !m.modTime.Equal(later) {
		t.Errorf("run=%d modTime=%v, want 2 and %v", m.Run, m.modTime, later)
	}
}

func TestWatchModel_StartLayout(t *testing.T) {
	res := &pipeline.Result{Layout: graph.Layout{Stats: graph.Stats{Nodes: 2}}}
	m := newTestWatchModel(t, &fakeRunner{result: res})

	msg, ok := m.startLayout(1)().(layoutDoneMsg)
	if !ok {
		t.Fatal("startLayout() command did not return layoutDoneMsg")
	}
	if msg.err != nil || msg.result != res || msg.run != 1 {
		t.Errorf("layoutDoneMsg = %+v", msg)
	}

	select {
	case tick := <-m.ticks:
		if tick.Tick != 1 {
			t.Errorf("forwarded tick = %d, want 1", tick.Tick)
		}
	default:
		t.Error("OnTick did not forward the tick")
	}
}

// blockingRunner holds Execute until its context is cancelled or release
// is closed.
type blockingRunner struct {
	started chan struct{}
	release chan struct{}
	result  *pipeline.Result
}

func (b *blockingRunner) Execute(ctx context.Context, _ pipeline.Options) (*pipeline.Result, error) {
	b.started <- struct{}{}
	select {
	case <-ctx.Done():
		return nil, flowerr.Wrap(flowerr.ErrCodeCancelled, ctx.Err(), "simulation cancelled")
	case <-b.release:
		return b.result, nil
	}
}

func (b *blockingRunner) Cancel() {}

func TestWatchModel_SupersededPassDoesNotWrite(t *testing.T) {
	res := &pipeline.Result{Layout: graph.Layout{Stats: graph.Stats{Nodes: 2}}}
	r := &blockingRunner{started: make(chan struct{}, 2), release: make(chan struct{}), result: res}
	m := newTestWatchModel(t, r)
	m.Output = filepath.Join(t.TempDir(), "flows.layout.json")

	first := make(chan tea.Msg, 1)
	go func() { first <- m.startLayout(1)() }()
	<-r.started

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	if m.Run != 2 || cmd == nil {
		t.Fatalf("run = %d, want 2 with a layout command", m.Run)
	}

	msg := (<-first).(layoutDoneMsg)
	if !pipeline.IsCancelled(msg.err) {
		t.Errorf("superseded pass error = %v, want cancelled", msg.err)
	}
	if _, err := os.Stat(m.Output); !os.IsNotExist(err) {
		t.Fatalf("superseded pass wrote %s", m.Output)
	}

	// A pass that lost the race to start never reaches the runner.
	if stale := m.startLayout(1)().(layoutDoneMsg); !pipeline.IsCancelled(stale.err) {
		t.Errorf("stale pass error = %v, want cancelled", stale.err)
	}

	close(r.release)
	msg = m.startLayout(2)().(layoutDoneMsg)
	if msg.err != nil || msg.run != 2 {
		t.Fatalf("latest pass = %+v", msg)
	}
	if _, err := os.Stat(m.Output); err != nil {
		t.Errorf("latest pass did not write output: %v", err)
	}
}

func TestPassGate(t *testing.T) {
	g := newPassGate(1)
	if !g.begin(1, func() {}) {
		t.Fatal("begin(1) = false for the latest pass")
	}

	var stopped bool
	g.end()
	if !g.begin(1, func() { stopped = true }) {
		t.Fatal("begin(1) = false after end")
	}
	g.supersede(2)
	if !stopped {
		t.Error("supersede did not cancel the running pass")
	}
	if g.current(1) || !g.current(2) {
		t.Error("current() does not follow supersede")
	}
	g.end()

	if g.begin(1, func() {}) {
		t.Error("begin(1) = true for a superseded pass")
	}
	if !g.begin(2, func() {}) {
		t.Error("begin(2) = false; a skipped pass must release the gate")
	}
	g.end()
}

func TestCooling(t *testing.T) {
	tests := []struct {
		alpha float64
		want  float64
	}{
		{1, 0},
		{0.1, 1.0 / 3},
		{0.001, 1},
		{0.0001, 1},
		{0, 0},
	}
	for _, tt := range tests {
		if got := cooling(tt.alpha, 0.001); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("cooling(%v) = %v, want %v", tt.alpha, got, tt.want)
		}
	}
}

func TestWatchModel_Help(t *testing.T) {
	m := newTestWatchModel(t, &fakeRunner{})
	view := m.View()
	for _, want := range []string{"recompute", "quit"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() lacks %q help", want)
		}
	}
}

func TestLogTail(t *testing.T) {
	tail := newLogTail(2)
	_, _ = tail.Write([]byte("one\ntwo\nthr"))
	_, _ = tail.Write([]byte("ee\npartial"))

	got := tail.Lines()
	if len(got) != 2 || got[0] != "two" || got[1] != "three" {
		t.Errorf("Lines() = %q, want [two three]", got)
	}
}

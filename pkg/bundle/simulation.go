package bundle

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	flowerr "github.com/matzehuels/flowmap/pkg/errors"
	"github.com/matzehuels/flowmap/pkg/observability"
)

// State is the lifecycle state of a [Simulation].
type State int

const (
	StateIdle State = iota
	StateSubdividing
	StateRelaxing
	StateConverged
	StateCancelled
)

var stateNames = [...]string{"idle", "subdividing", "relaxing", "converged", "cancelled"}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

// Terminal reports whether no further ticks can happen in this state.
func (s State) Terminal() bool { return s == StateConverged || s == StateCancelled }

// EndReason explains why a simulation reached StateConverged.
type EndReason string

const (
	ReasonConverged EndReason = "converged"
	ReasonMaxTicks  EndReason = "max_ticks"
)

// Tick is delivered to OnTick observers after every relaxation step.
type Tick struct {
	ID           string
	Tick         int
	Alpha        float64
	Displacement float64
}

// End is delivered to OnEnd observers once, when the simulation converges
// or hits its tick cap. Cancelled simulations do not deliver End.
type End struct {
	ID       string
	Ticks    int
	Alpha    float64
	Reason   EndReason
	Duration time.Duration
}

// Simulation relaxes subdivided link paths so that co-routed flows bundle.
//
// A simulation moves through idle → subdividing → relaxing and ends either
// converged or cancelled. It can be driven synchronously with [Simulation.Step]
// or in the background with [Simulation.Start]; both must not be mixed on
// one simulation.
//
// All methods are safe for concurrent use. Observers run on the goroutine
// that performs the tick and must not call [Simulation.Cancel]; cancel the
// context passed to Start instead.
type Simulation struct {
	id       string
	params   Params
	segments []Segment

	mu      sync.Mutex
	state   State
	paths   []Path
	sys     *system
	alpha   float64
	ticks   int
	reason  EndReason
	started time.Time
	ctx     context.Context
	onTick  []func(Tick)
	onEnd   []func(End)
	cancel  context.CancelFunc
	running bool

	// emitMu is held while observers run, so Cancel can wait for any
	// in-flight callback before returning.
	emitMu sync.Mutex

	wg       sync.WaitGroup
	done     chan struct{}
	doneOnce sync.Once
}

// New creates an idle simulation over segments. Params are defaulted; call
// [Params.Validate] beforehand to reject out-of-range values.
func New(segments []Segment, params Params) *Simulation {
	params.SetDefaults()
	return &Simulation{
		id:       uuid.NewString(),
		params:   params,
		segments: append([]Segment(nil), segments...),
		alpha:    1,
		ctx:      context.Background(),
		done:     make(chan struct{}),
	}
}

// ID returns the simulation's unique identifier.
func (s *Simulation) ID() string { return s.id }

// Params returns the defaulted parameters.
func (s *Simulation) Params() Params { return s.params }

// State returns the current lifecycle state.
func (s *Simulation) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Alpha returns the current alpha.
func (s *Simulation) Alpha() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.alpha
}

// Ticks returns the number of completed ticks.
func (s *Simulation) Ticks() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ticks
}

// Reason returns why the simulation converged, or "" if it has not.
func (s *Simulation) Reason() EndReason {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reason
}

// Paths returns a copy of the current paths. Before the first tick it is
// nil; between ticks it holds intermediate positions.
func (s *Simulation) Paths() []Path {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.paths == nil {
		return nil
	}
	out := make([]Path, len(s.paths))
	for i, p := range s.paths {
		out[i] = p.clone()
	}
	return out
}

// OnTick registers an observer called after every tick.
func (s *Simulation) OnTick(fn func(Tick)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onTick = append(s.onTick, fn)
}

// OnEnd registers an observer called once when the simulation converges.
func (s *Simulation) OnEnd(fn func(End)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onEnd = append(s.onEnd, fn)
}

// Done returns a channel that is closed when the simulation reaches a
// terminal state, after any OnEnd observers have returned.
func (s *Simulation) Done() <-chan struct{} { return s.done }

// Step performs one tick and reports whether more ticks may follow.
// The first Step subdivides the segments. Step is a no-op returning false
// once the simulation is converged or cancelled.
func (s *Simulation) Step() bool {
	tick, end, ok := s.advance()
	if !ok {
		return false
	}
	s.emit(tick, end)
	if end != nil {
		s.closeDone()
		return false
	}
	return true
}

// Start runs ticks on a new goroutine until the simulation converges, ctx is
// cancelled, or Cancel is called. Ticks are paced by Params.TickInterval.
// Calling Start on a running or finished simulation does nothing.
func (s *Simulation) Start(ctx context.Context) {
	s.mu.Lock()
	if s.running || s.state.Terminal() {
		s.mu.Unlock()
		return
	}
	s.running = true
	ctx, s.cancel = context.WithCancel(ctx)
	s.ctx = ctx
	s.wg.Add(1)
	s.mu.Unlock()

	go s.run(ctx)
}

// Run starts the simulation and blocks until it ends. It returns a CANCELLED
// error if the simulation was cancelled before converging.
func (s *Simulation) Run(ctx context.Context) error {
	s.Start(ctx)
	<-s.Done()
	if s.State() == StateCancelled {
		cause := ctx.Err()
		if cause == nil {
			cause = context.Canceled
		}
		return flowerr.Wrap(flowerr.ErrCodeCancelled, cause, "simulation %s cancelled after %d ticks", s.id, s.Ticks())
	}
	return nil
}

// Cancel stops the simulation. It waits for the background goroutine and any
// running observer to return and releases the tick timer; afterwards no
// observer runs and no path is modified. Cancel is idempotent and has no
// effect on a converged simulation.
func (s *Simulation) Cancel() {
	s.mu.Lock()
	stopped := s.markCancelled()
	cancel := s.cancel
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	s.wg.Wait()

	// Barrier for observers started by a synchronous Step.
	s.emitMu.Lock()
	s.emitMu.Unlock()

	if stopped {
		s.finishCancelled()
	}
}

func (s *Simulation) run(ctx context.Context) {
	defer s.wg.Done()

	var tickC <-chan time.Time
	if s.params.TickInterval > 0 {
		ticker := time.NewTicker(s.params.TickInterval)
		defer ticker.Stop()
		tickC = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			s.stopFromContext()
			return
		default:
		}
		if tickC != nil {
			select {
			case <-ctx.Done():
				s.stopFromContext()
				return
			case <-tickC:
			}
		}
		if !s.Step() {
			return
		}
	}
}

func (s *Simulation) stopFromContext() {
	s.mu.Lock()
	stopped := s.markCancelled()
	s.mu.Unlock()
	if stopped {
		s.finishCancelled()
	}
}

// markCancelled moves a live simulation to StateCancelled. It must be called
// with mu held and reports whether the state changed.
func (s *Simulation) markCancelled() bool {
	if s.state.Terminal() {
		return false
	}
	s.state = StateCancelled
	return true
}

func (s *Simulation) finishCancelled() {
	s.mu.Lock()
	ticks, started, ctx := s.ticks, s.started, s.ctx
	s.mu.Unlock()

	var elapsed time.Duration
	if !started.IsZero() {
		elapsed = time.Since(started)
	}
	observability.Simulation().OnSimulationEnd(ctx, s.id, ticks, StateCancelled.String(), elapsed)
	s.closeDone()
}

func (s *Simulation) advance() (Tick, *End, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Terminal() {
		return Tick{}, nil, false
	}
	if s.state == StateIdle {
		s.prepare()
		if len(s.paths) == 0 {
			return Tick{}, s.finishLocked(ReasonConverged), true
		}
	}

	moved := s.sys.tick(s.params, s.alpha)
	s.sys.writeTo(s.paths)
	s.alpha += (0 - s.alpha) * s.params.AlphaDecay
	s.ticks++

	tick := Tick{ID: s.id, Tick: s.ticks, Alpha: s.alpha, Displacement: moved}
	observability.Simulation().OnTick(s.ctx, s.id, s.ticks, s.alpha)

	var reason EndReason
	switch {
	case s.alpha < s.params.AlphaMin:
		reason = ReasonConverged
	case s.params.MaxTicks > 0 && s.ticks >= s.params.MaxTicks:
		reason = ReasonMaxTicks
	default:
		return tick, nil, true
	}

	return tick, s.finishLocked(reason), true
}

// finishLocked moves the simulation to StateConverged. It must be called
// with mu held.
func (s *Simulation) finishLocked(reason EndReason) *End {
	s.state = StateConverged
	s.reason = reason
	end := &End{ID: s.id, Ticks: s.ticks, Alpha: s.alpha, Reason: reason, Duration: time.Since(s.started)}
	observability.Simulation().OnSimulationEnd(s.ctx, s.id, s.ticks, string(reason), end.Duration)
	return end
}

// prepare subdivides the segments. It must be called with mu held.
func (s *Simulation) prepare() {
	s.state = StateSubdividing
	s.started = time.Now()
	s.paths = Subdivide(s.segments, s.params)
	s.sys = newSystem(s.paths, s.params.Reach(Diagonal(s.segments)))
	s.state = StateRelaxing
	observability.Simulation().OnSimulationStart(s.ctx, s.id, len(s.paths), len(s.sys.particles))
}

func (s *Simulation) emit(tick Tick, end *End) {
	s.emitMu.Lock()
	defer s.emitMu.Unlock()

	s.mu.Lock()
	if s.state == StateCancelled {
		s.mu.Unlock()
		return
	}
	onTick := slices.Clone(s.onTick)
	onEnd := slices.Clone(s.onEnd)
	s.mu.Unlock()

	if tick.Tick > 0 {
		for _, fn := range onTick {
			fn(tick)
		}
	}
	if end != nil {
		for _, fn := range onEnd {
			fn(*end)
		}
	}
}

func (s *Simulation) closeDone() {
	s.doneOnce.Do(func() { close(s.done) })
}

package cli

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/flowmap/pkg/bundle"
	flowerr "github.com/matzehuels/flowmap/pkg/errors"
	"github.com/matzehuels/flowmap/pkg/graph"
	"github.com/matzehuels/flowmap/pkg/pipeline"
)

const (
	defaultPollInterval = 500 * time.Millisecond
	watchLogLines       = 4
	alphaBarWidth       = 30
)

// watchOptions holds the flags of the watch command.
type watchOptions struct {
	layoutFlags
	output string
	poll   time.Duration
}

// watchCommand creates the watch command, which shows the bundling
// simulation live and recomputes the layout whenever the input changes.
func (c *CLI) watchCommand() *cobra.Command {
	var opts watchOptions

	cmd := &cobra.Command{
		Use:   "watch [input]",
		Short: "Lay out a flow document and follow the bundling simulation live",
		Long: `Lay out a flow document and follow the edge-bundling simulation as it runs.

The input file is polled for changes; saving it starts a new layout that
supersedes the running one. Each finished layout is written like the
layout command does. Press r to recompute, q to quit.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runWatch(cmd, args[0], opts)
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: <input>.layout.json)")
	cmd.Flags().DurationVar(&opts.poll, "poll", defaultPollInterval, "how often to check the input for changes")

	return cmd
}

func (c *CLI) runWatch(cmd *cobra.Command, input string, opts watchOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if _, err := os.Stat(input); err != nil {
		return fmt.Errorf("watch %s: %w", input, err)
	}

	runner, err := c.newRunner(opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	// The TUI owns the terminal; log lines are shown inside it instead.
	tail := newLogTail(watchLogLines)
	runner.Logger = newLogger(tail, c.Logger.GetLevel())

	out := opts.output
	if out == "" {
		out = layoutPath(input)
	}
	load := func() (*graph.Document, error) {
		doc, err := graph.ReadDocumentFile(input)
		if err != nil {
			return nil, err
		}
		opts.apply(cmd, &doc.Options)
		doc.Options.Bundling.TickInterval = pipeline.DefaultTickInterval
		return doc, nil
	}

	m := newWatchModel(ctx, input, out, runner, load)
	m.poll = opts.poll
	m.logs = tail

	final, err := tea.NewProgram(m, tea.WithContext(ctx)).Run()
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		return err
	}

	fm := final.(watchModel)
	switch fm.State {
	case watchDone:
		printSuccess("Layout computed (%d runs)", fm.Run)
		printFile(fm.Output)
		printStats(fm.Stats)
	case watchFailed:
		return fm.Err
	default:
		printWarning("Stopped before the layout finished")
	}
	return nil
}

// =============================================================================
// Model
// =============================================================================

// watchRunner is the part of pipeline.Runner the watch model drives.
type watchRunner interface {
	Execute(ctx context.Context, opts pipeline.Options) (*pipeline.Result, error)
	Cancel()
}

type watchKeyMap struct {
	Recompute key.Binding
	Quit      key.Binding
}

var watchKeys = watchKeyMap{
	Recompute: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "recompute"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c", "esc"),
		key.WithHelp("q", "quit"),
	),
}

func (k watchKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Recompute, k.Quit}
}

func (k watchKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

type watchState int

const (
	watchComputing watchState = iota
	watchBundling
	watchDone
	watchFailed
	watchCancelled
)

func (s watchState) String() string {
	switch s {
	case watchComputing:
		return "computing"
	case watchBundling:
		return "bundling"
	case watchDone:
		return "done"
	case watchFailed:
		return "failed"
	case watchCancelled:
		return "cancelled"
	}
	return "unknown"
}

type (
	tickMsg       bundle.Tick
	filePollMsg   struct{ modTime time.Time }
	layoutDoneMsg struct {
		run    int
		result *pipeline.Result
		err    error
	}
)

// watchModel is the bubbletea model of the watch command. Run counts layout
// passes; results of a superseded pass are ignored.
type watchModel struct {
	Input  string
	Output string
	State  watchState
	Run    int
	Tick   bundle.Tick
	Stats  layoutStats
	Err    error

	ctx     context.Context
	runner  watchRunner
	load    func() (*graph.Document, error)
	ticks   chan bundle.Tick
	passes  *passGate
	modTime time.Time
	poll    time.Duration
	logs    *logTail
	bar     progress.Model
	help    help.Model
}

func newWatchModel(ctx context.Context, input, output string, runner watchRunner, load func() (*graph.Document, error)) watchModel {
	m := watchModel{
		Input:  input,
		Output: output,
		State:  watchComputing,
		Run:    1,
		ctx:    ctx,
		runner: runner,
		load:   load,
		ticks:  make(chan bundle.Tick, 1),
		passes: newPassGate(1),
		poll:   defaultPollInterval,
		bar:    progress.New(progress.WithDefaultGradient(), progress.WithWidth(alphaBarWidth)),
		help:   help.New(),
	}
	if fi, err := os.Stat(input); err == nil {
		m.modTime = fi.ModTime()
	}
	return m
}

func (m watchModel) Init() tea.Cmd {
	return tea.Batch(m.startLayout(m.Run), m.waitForTick(), m.pollFile())
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, watchKeys.Quit):
			m.runner.Cancel()
			if m.State == watchComputing || m.State == watchBundling {
				m.State = watchCancelled
			}
			return m, tea.Quit
		case key.Matches(msg, watchKeys.Recompute):
			return m.restart()
		}

	case tickMsg:
		m.Tick = bundle.Tick(msg)
		if m.State == watchComputing {
			m.State = watchBundling
		}
		return m, m.waitForTick()

	case filePollMsg:
		if !msg.modTime.IsZero() && msg.modTime.After(m.modTime) {
			m.modTime = msg.modTime
			next, cmd := m.restart()
			return next, tea.Batch(cmd, m.pollFile())
		}
		return m, m.pollFile()

	case layoutDoneMsg:
		if msg.run != m.Run {
			return m, nil
		}
		switch {
		case msg.err == nil:
			m.State = watchDone
			m.Err = nil
			l := msg.result.Layout
			m.Stats = layoutStats{
				Nodes:     l.Stats.Nodes,
				Links:     l.Stats.Links,
				Midpoints: l.Stats.Midpoints,
				Ticks:     l.Stats.Ticks,
				Cached:    msg.result.CacheInfo.LayoutHit,
			}
		case pipeline.IsCancelled(msg.err):
			m.State = watchCancelled
		default:
			m.State = watchFailed
			m.Err = msg.err
		}
	}
	return m, nil
}

// restart begins a new layout pass that supersedes the current one.
func (m watchModel) restart() (tea.Model, tea.Cmd) {
	m.Run++
	m.passes.supersede(m.Run)
	m.State = watchComputing
	m.Tick = bundle.Tick{}
	m.Err = nil
	return m, m.startLayout(m.Run)
}

// startLayout runs one layout pass and writes its result. Passes run one at
// a time; a pass superseded before it starts is skipped, and one superseded
// while running is cancelled and never writes its output.
func (m watchModel) startLayout(run int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithCancel(m.ctx)
		defer cancel()
		if !m.passes.begin(run, cancel) {
			return layoutDoneMsg{run: run, err: superseded(run)}
		}
		defer m.passes.end()

		doc, err := m.load()
		if err != nil {
			return layoutDoneMsg{run: run, err: err}
		}
		res, err := m.runner.Execute(ctx, pipeline.Options{
			Document: doc,
			Refresh:  true,
			OnTick: func(t bundle.Tick) {
				select {
				case m.ticks <- t:
				default:
				}
			},
		})
		if err == nil && !m.passes.current(run) {
			err = superseded(run)
		}
		if err == nil && m.Output != "" {
			err = graph.WriteLayoutFile(res.Layout, m.Output)
		}
		return layoutDoneMsg{run: run, result: res, err: err}
	}
}

func superseded(run int) error {
	return flowerr.New(flowerr.ErrCodeCancelled, "layout pass %d superseded", run)
}

// passGate orders the layout passes of one watch session. Only the latest
// pass may run to completion.
type passGate struct {
	running sync.Mutex // held for the duration of a pass

	mu     sync.Mutex
	latest int
	stop   context.CancelFunc
}

func newPassGate(first int) *passGate {
	return &passGate{latest: first}
}

// supersede makes run the latest pass and cancels the pass in progress.
func (g *passGate) supersede(run int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.latest = run
	if g.stop != nil {
		g.stop()
	}
}

// begin waits for the previous pass to finish. It reports false, releasing
// the gate, if run was superseded in the meantime.
func (g *passGate) begin(run int, stop context.CancelFunc) bool {
	g.running.Lock()
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.latest != run {
		g.running.Unlock()
		return false
	}
	g.stop = stop
	return true
}

func (g *passGate) end() {
	g.mu.Lock()
	g.stop = nil
	g.mu.Unlock()
	g.running.Unlock()
}

func (g *passGate) current(run int) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.latest == run
}

func (m watchModel) waitForTick() tea.Cmd {
	return func() tea.Msg {
		select {
		case t := <-m.ticks:
			return tickMsg(t)
		case <-m.ctx.Done():
			return nil
		}
	}
}

func (m watchModel) pollFile() tea.Cmd {
	input := m.Input
	return tea.Tick(m.poll, func(time.Time) tea.Msg {
		fi, err := os.Stat(input)
		if err != nil {
			return filePollMsg{}
		}
		return filePollMsg{modTime: fi.ModTime()}
	})
}

// =============================================================================
// View
// =============================================================================

var (
	styleStateRunning = lipgloss.NewStyle().Foreground(colorCyan).Bold(true)
	styleStateDone    = lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
	styleStateFailed  = lipgloss.NewStyle().Foreground(colorRed).Bold(true)
)

func (m watchModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(appName+" watch") + " " + StyleDim.Render(m.Input))
	b.WriteString("\n\n")

	b.WriteString(fmt.Sprintf("%s %s\n", m.stateLabel(), StyleDim.Render(fmt.Sprintf("run %d", m.Run))))

	if m.Tick.Tick > 0 {
		b.WriteString(fmt.Sprintf("%s %s  %s %s  %s %s\n",
			StyleDim.Render("tick"), StyleNumber.Render(fmt.Sprint(m.Tick.Tick)),
			StyleDim.Render("alpha"), StyleNumber.Render(fmt.Sprintf("%.4f", m.Tick.Alpha)),
			StyleDim.Render("moved"), StyleNumber.Render(fmt.Sprintf("%.2f", m.Tick.Displacement))))
		b.WriteString(m.bar.ViewAs(cooling(m.Tick.Alpha, bundle.DefaultAlphaMin)))
		b.WriteString("\n")
	}

	switch m.State {
	case watchDone:
		b.WriteString(formatStats(m.Stats))
		b.WriteString("\n  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(m.Output) + "\n")
	case watchFailed:
		b.WriteString(styleIconError.Render(iconError) + " " + m.Err.Error() + "\n")
	}

	if m.logs != nil {
		if lines := m.logs.Lines(); len(lines) > 0 {
			b.WriteString("\n")
			for _, l := range lines {
				b.WriteString(StyleDim.Render(l) + "\n")
			}
		}
	}

	b.WriteString("\n" + m.help.ShortHelpView(watchKeys.ShortHelp()) + "\n")
	return b.String()
}

func (m watchModel) stateLabel() string {
	switch m.State {
	case watchDone:
		return styleStateDone.Render(m.State.String())
	case watchFailed, watchCancelled:
		return styleStateFailed.Render(m.State.String())
	}
	return styleStateRunning.Render(m.State.String())
}

// cooling reports simulation progress in [0, 1]: 0 at alpha 1, 1 once alpha
// reaches alphaMin. Alpha decays geometrically, so progress is measured on a
// log scale.
func cooling(alpha, alphaMin float64) float64 {
	frac := 0.0
	if alpha > 0 && alphaMin > 0 && alphaMin < 1 {
		frac = math.Log(alpha) / math.Log(alphaMin)
	}
	return min(max(frac, 0), 1)
}

// =============================================================================
// Log Tail
// =============================================================================

// logTail is an io.Writer that keeps the last n complete lines written to it.
type logTail struct {
	mu    sync.Mutex
	n     int
	lines []string
	buf   []byte
}

func newLogTail(n int) *logTail {
	return &logTail{n: n}
}

func (t *logTail) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.buf = append(t.buf, p...)
	for {
		i := bytes.IndexByte(t.buf, '\n')
		if i < 0 {
			break
		}
		t.lines = append(t.lines, string(t.buf[:i]))
		t.buf = t.buf[i+1:]
	}
	if extra := len(t.lines) - t.n; extra > 0 {
		t.lines = append([]string(nil), t.lines[extra:]...)
	}
	return len(p), nil
}

// Lines returns a copy of the retained lines, oldest first.
func (t *logTail) Lines() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.lines...)
}

package tui

import (
	"context"
	"io"
	"runtime"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	apperrors "github.com/agbru/factcalc/internal/errors"
	"github.com/agbru/factcalc/internal/factorial"
	"github.com/agbru/factcalc/internal/orchestration"
	"github.com/agbru/factcalc/internal/sysmon"
)

// Options describes the run shown in the header and metrics panel.
type Options struct {
	Version string
	Backend string
}

// ExecutionState holds the execution-related fields of a TUI session.
type ExecutionState struct {
	ctx         context.Context
	cancel      context.CancelFunc
	calculators []factorial.Calculator
	plan        orchestration.SweepPlan
	generation  uint64
	done        bool
	exitCode    int

	// running is set while a sweep goroutine is live, whichever generation
	// it belongs to. restartPending defers a reset until it has returned.
	running        bool
	restartPending bool
}

// LayoutManager holds terminal dimensions and provides layout calculations.
type LayoutManager struct {
	width  int
	height int
}

// bodyHeight returns the available height for the main body panels.
func (l LayoutManager) bodyHeight() int {
	h := l.height - headerHeight - footerHeight
	if h < minBodyHeight {
		h = minBodyHeight
	}
	return h
}

// tableWidth returns the width allocated to the sweep table.
func (l LayoutManager) tableWidth() int {
	return l.width * TablePanelWidthPercent / 100
}

// rightWidth returns the width allocated to the right column (metrics + chart).
func (l LayoutManager) rightWidth() int {
	return l.width - l.tableWidth()
}

// metricsHeight returns the height allocated to the metrics panel.
func (l LayoutManager) metricsHeight() int {
	body := l.bodyHeight()
	h := MetricsPanelHeight
	if h > body/2 {
		h = body / 2
	}
	return h
}

// chartHeight returns the height allocated to the chart panel.
func (l LayoutManager) chartHeight() int {
	return l.bodyHeight() - l.metricsHeight()
}

// Layout constants for the TUI dashboard.
const (
	headerHeight           = 1
	footerHeight           = 1
	minBodyHeight          = 4
	TablePanelWidthPercent = 55
	MetricsPanelHeight     = 6
)

// Model is the root bubbletea model for the sweep dashboard.
type Model struct {
	header  HeaderModel
	table   TableModel
	metrics MetricsModel
	chart   ChartModel
	footer  FooterModel

	keymap KeyMap

	ExecutionState
	LayoutManager

	parentCtx context.Context
	ref       *programRef
	paused    bool
	pending   []PointMsg
	showHelp  bool
}

// NewModel creates a dashboard that will run plan over calculators.
func NewModel(parentCtx context.Context, calculators []factorial.Calculator, plan orchestration.SweepPlan, opts Options) Model {
	names := make([]string, len(calculators))
	workers := 1
	for i, c := range calculators {
		names[i] = c.Name()
		workers = max(workers, factorial.WorkersOf(c))
	}

	ctx, cancel := context.WithCancel(parentCtx)
	keymap := DefaultKeyMap()

	m := Model{
		header:  NewHeaderModel(opts.Version, plan.Name, runtime.NumCPU()),
		table:   NewTableModel(names),
		metrics: NewMetricsModel(),
		chart:   NewChartModel(),
		footer:  NewFooterModel(keymap),
		keymap:  keymap,
		ExecutionState: ExecutionState{
			ctx:         ctx,
			cancel:      cancel,
			calculators: calculators,
			plan:        plan,
			exitCode:    apperrors.ExitSuccess,
			running:     true,
		},
		parentCtx: parentCtx,
		ref:       &programRef{},
	}
	m.metrics.SetEngine(workers, opts.Backend)
	m.chart.SetWorkers(workers)
	return m
}

// Init returns the initial commands.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		tickCmd(),
		startSweepCmd(m.ref, m.ctx, m.calculators, m.plan, m.generation),
		watchContextCmd(m.ctx, m.generation),
	)
}

// Update handles all incoming messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layoutPanels()
		return m, nil

	case PointMsg:
		if m.paused {
			m.pending = append(m.pending, msg)
			return m, nil
		}
		m.applyPoint(msg)
		return m, nil

	case ReportMsg:
		m.flushPending()
		m.table.SetReport(msg.Report)
		return m, nil

	case ErrorMsg:
		m.footer.SetError(true)
		return m, nil

	case TickMsg:
		if m.done {
			return m, nil
		}
		if !m.paused {
			return m, tea.Batch(sampleMemStatsCmd(), sampleSysStatsCmd(), tickCmd())
		}
		return m, tickCmd()

	case MemStatsMsg:
		m.metrics.UpdateMemStats(msg)
		return m, nil

	case SysStatsMsg:
		m.chart.UpdateSysStats(msg.CPUPercent, msg.MemPercent)
		return m, nil

	case SweepCompleteMsg:
		m.running = false
		if msg.Generation != m.generation {
			// The canceled sweep has returned; the reset one may start now.
			if m.restartPending {
				m.restartPending = false
				m.running = true
				return m, startSweepCmd(m.ref, m.ctx, m.calculators, m.plan, m.generation)
			}
			return m, nil
		}
		m.flushPending()
		m.done = true
		m.exitCode = msg.ExitCode
		m.header.SetDone()
		m.chart.SetDone(time.Since(m.header.startTime))
		m.footer.SetDone(true)
		if msg.ExitCode != apperrors.ExitSuccess {
			m.footer.SetError(true)
		}
		return m, nil

	case ContextCancelledMsg:
		if msg.Generation != m.generation {
			return m, nil // stale message from a restarted sweep
		}
		if !m.done {
			m.exitCode = apperrors.ExitErrorCanceled
			if msg.Err == context.DeadlineExceeded {
				m.exitCode = apperrors.ExitErrorTimeout
			}
		}
		m.done = true
		m.header.SetDone()
		m.footer.SetDone(true)
		return m, tea.Quit
	}

	return m, nil
}

func (m *Model) applyPoint(msg PointMsg) {
	m.table.AddPoint(msg.Point)
	m.chart.AddPoint(msg)
	m.metrics.AddPoint(msg)
}

func (m *Model) flushPending() {
	for _, p := range m.pending {
		m.applyPoint(p)
	}
	m.pending = nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		if key.Matches(msg, m.keymap.Help) || msg.String() == "esc" {
			m.showHelp = false
			return m, nil
		}
		if !key.Matches(msg, m.keymap.Quit) {
			return m, nil
		}
	}

	switch {
	case key.Matches(msg, m.keymap.Quit):
		if m.cancel != nil {
			m.cancel()
		}
		if !m.done {
			m.exitCode = apperrors.ExitErrorCanceled
		}
		return m, tea.Quit

	case key.Matches(msg, m.keymap.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keymap.Pause):
		m.paused = !m.paused
		m.footer.SetPaused(m.paused)
		if !m.paused {
			m.flushPending()
		}
		return m, nil

	case key.Matches(msg, m.keymap.Reset):
		// Cancel the current sweep; it stops before its next timed call.
		if m.cancel != nil {
			m.cancel()
		}

		m.generation++
		ctx, cancel := context.WithCancel(m.parentCtx)
		m.ctx = ctx
		m.cancel = cancel

		m.header.Reset()
		m.table.Reset()
		m.chart.Reset()
		m.metrics.Reset()
		m.footer.SetDone(false)
		m.footer.SetError(false)
		m.footer.SetPaused(false)
		m.done = false
		m.paused = false
		m.pending = nil
		m.exitCode = apperrors.ExitSuccess

		// Two sweeps must never overlap: they would share the GC settings
		// and skew each other's timings.
		if m.running {
			m.restartPending = true
			return m, tea.Batch(tickCmd(), watchContextCmd(m.ctx, m.generation))
		}
		m.running = true
		return m, tea.Batch(
			tickCmd(),
			startSweepCmd(m.ref, m.ctx, m.calculators, m.plan, m.generation),
			watchContextCmd(m.ctx, m.generation),
		)

	case key.Matches(msg, m.keymap.Up):
		m.table.Scroll(-1)
	case key.Matches(msg, m.keymap.Down):
		m.table.Scroll(1)
	case key.Matches(msg, m.keymap.PageUp):
		m.table.Scroll(-m.table.PageSize())
	case key.Matches(msg, m.keymap.PageDown):
		m.table.Scroll(m.table.PageSize())
	}

	return m, nil
}

// View renders the entire dashboard.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}
	if m.showHelp {
		return m.renderHelpOverlay()
	}

	rightCol := lipgloss.JoinVertical(lipgloss.Left, m.metrics.View(), m.chart.View())
	body := lipgloss.JoinHorizontal(lipgloss.Top, m.table.View(), rightCol)

	return lipgloss.JoinVertical(lipgloss.Left, m.header.View(), body, m.footer.View())
}

func (m *Model) layoutPanels() {
	m.header.SetWidth(m.width)
	m.footer.SetWidth(m.width)
	m.table.SetSize(m.tableWidth(), m.bodyHeight())
	m.metrics.SetSize(m.rightWidth(), m.metricsHeight())
	m.chart.SetSize(m.rightWidth(), m.chartHeight())
}

// Run is the public entry point for the TUI mode.
// It creates the bubbletea program, runs the sweep inside it, and returns
// the exit code.
func Run(ctx context.Context, calculators []factorial.Calculator, plan orchestration.SweepPlan, opts Options) int {
	// Rebuild styles from the current ui theme (set by app.Run via InitTheme).
	initTUIStyles()

	model := NewModel(ctx, calculators, plan, opts)
	defer model.cancel()

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	// Inject the program reference before running so bridge goroutines can Send.
	model.ref.SetProgram(p)

	finalModel, err := p.Run()
	if err != nil {
		if ctx.Err() != nil {
			return apperrors.HandleCalculationError(ctx.Err(), 0, io.Discard, nil)
		}
		return apperrors.ExitErrorGeneric
	}

	if m, ok := finalModel.(Model); ok {
		m.cancel()
		return m.exitCode
	}
	return apperrors.ExitSuccess
}

// startSweepCmd returns a tea.Cmd that runs the sweep and its analysis.
func startSweepCmd(ref *programRef, ctx context.Context, calculators []factorial.Calculator, plan orchestration.SweepPlan, gen uint64) tea.Cmd {
	return func() tea.Msg {
		observer := &TUISweepObserver{ref: ref}
		presenter := &TUIResultPresenter{ref: ref}

		report := orchestration.RunSweep(ctx, calculators, plan, observer)
		exitCode := orchestration.AnalyzeSweep(report, presenter, presenter, io.Discard)

		return SweepCompleteMsg{ExitCode: exitCode, Generation: gen}
	}
}

// tickCmd returns a command that sends a TickMsg after 500ms.
func tickCmd() tea.Cmd {
	return tea.Tick(500*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// sampleMemStatsCmd reads runtime memory stats and returns a MemStatsMsg.
func sampleMemStatsCmd() tea.Cmd {
	return func() tea.Msg {
		var ms runtime.MemStats
		runtime.ReadMemStats(&ms)
		return MemStatsMsg{
			Alloc:        ms.Alloc,
			HeapInuse:    ms.HeapInuse,
			NumGC:        ms.NumGC,
			PauseTotalNs: ms.PauseTotalNs,
			NumGoroutine: runtime.NumGoroutine(),
		}
	}
}

// sampleSysStatsCmd reads system-wide CPU and memory stats and returns a SysStatsMsg.
func sampleSysStatsCmd() tea.Cmd {
	return func() tea.Msg {
		s := sysmon.Sample()
		return SysStatsMsg{
			CPUPercent: s.CPUPercent,
			MemPercent: s.MemPercent,
		}
	}
}

// watchContextCmd waits for context cancellation and sends a message.
func watchContextCmd(ctx context.Context, gen uint64) tea.Cmd {
	return func() tea.Msg {
		<-ctx.Done()
		return ContextCancelledMsg{Err: ctx.Err(), Generation: gen}
	}
}

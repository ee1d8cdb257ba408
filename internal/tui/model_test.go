package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	apperrors "github.com/agbru/factcalc/internal/errors"
	"github.com/agbru/factcalc/internal/factorial"
	"github.com/agbru/factcalc/internal/orchestration"
)

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func newTestModel(t *testing.T) Model {
	t.Helper()
	calcs := []factorial.Calculator{
		factorial.NewParallelEngine(factorial.WithWorkers(4)),
		factorial.SerialEngine{},
	}
	plan := orchestration.SweepPlan{Name: "quick", Sizes: []int64{10, 100}}
	m := NewModel(context.Background(), calcs, plan, Options{Version: "v1.2.0", Backend: "big"})
	t.Cleanup(m.cancel)
	return m
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T, want Model", next)
	}
	return nm, cmd
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func TestModel_ViewBeforeResize(t *testing.T) {
	m := newTestModel(t)
	if got := m.View(); got != "Initializing..." {
		t.Errorf("expected placeholder before the first resize, got %q", got)
	}
}

func TestModel_WindowSize(t *testing.T) {
	m := newTestModel(t)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 160, Height: 40})

	if m.table.width != m.tableWidth() || m.chart.width != m.rightWidth() {
		t.Error("expected panels to be laid out on resize")
	}
	if m.tableWidth()+m.rightWidth() != 160 {
		t.Errorf("expected panel widths to fill the screen, got %d+%d", m.tableWidth(), m.rightWidth())
	}
	if m.metricsHeight()+m.chartHeight() != m.bodyHeight() {
		t.Error("expected right column heights to fill the body")
	}

	view := m.View()
	for _, want := range []string{"FactCalc Sweep v1.2.0", "quick", "Sweep", "Metrics", "Speedup Chart", "4 workers (big)"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected view to contain %q", want)
		}
	}
}

func TestModel_PointMsg(t *testing.T) {
	m := newTestModel(t)
	m, _ = update(t, m, PointMsg{Point: pointWith(10, time.Millisecond, 2*time.Millisecond), Completed: 1, Total: 2, Progress: 0.5})

	if len(m.table.points) != 1 {
		t.Fatalf("expected 1 table row, got %d", len(m.table.points))
	}
	if m.chart.completed != 1 {
		t.Errorf("expected chart to record the point, got %d", m.chart.completed)
	}
}

func TestModel_PauseBuffersPoints(t *testing.T) {
	m := newTestModel(t)
	m, _ = update(t, m, runeKey('p'))
	if !m.paused || !m.footer.paused {
		t.Fatal("expected model and footer to be paused")
	}

	m, _ = update(t, m, PointMsg{Point: pointWith(10, time.Millisecond, 2*time.Millisecond), Completed: 1, Total: 2})
	if len(m.table.points) != 0 || len(m.pending) != 1 {
		t.Fatalf("expected the point to be held while paused, rows=%d pending=%d", len(m.table.points), len(m.pending))
	}

	m, _ = update(t, m, runeKey('p'))
	if m.paused || len(m.pending) != 0 || len(m.table.points) != 1 {
		t.Error("expected held points to be applied on resume")
	}
}

func TestModel_SweepComplete(t *testing.T) {
	m := newTestModel(t)

	m, _ = update(t, m, SweepCompleteMsg{ExitCode: apperrors.ExitErrorMismatch, Generation: m.generation + 1})
	if m.done {
		t.Fatal("expected a stale completion to be ignored")
	}

	m, _ = update(t, m, SweepCompleteMsg{ExitCode: apperrors.ExitErrorMismatch, Generation: m.generation})
	if !m.done || m.exitCode != apperrors.ExitErrorMismatch {
		t.Errorf("expected done with exit code %d, got done=%v code=%d", apperrors.ExitErrorMismatch, m.done, m.exitCode)
	}
	if !m.footer.done || !m.footer.failed {
		t.Error("expected footer to show the failed state")
	}

	_, cmd := update(t, m, TickMsg(time.Now()))
	if cmd != nil {
		t.Error("expected ticks to stop once the sweep is done")
	}
}

func TestModel_ContextCancelled(t *testing.T) {
	m := newTestModel(t)

	_, cmd := update(t, m, ContextCancelledMsg{Err: context.Canceled, Generation: m.generation + 1})
	if cmd != nil {
		t.Error("expected a stale cancellation to be ignored")
	}

	m, cmd = update(t, m, ContextCancelledMsg{Err: context.DeadlineExceeded, Generation: m.generation})
	if !isQuit(cmd) {
		t.Error("expected the program to quit when the run context ends")
	}
	if m.exitCode != apperrors.ExitErrorTimeout {
		t.Errorf("expected timeout exit code, got %d", m.exitCode)
	}
}

func TestModel_QuitKey(t *testing.T) {
	m := newTestModel(t)
	m, cmd := update(t, m, runeKey('q'))

	if !isQuit(cmd) {
		t.Error("expected q to quit")
	}
	if m.exitCode != apperrors.ExitErrorCanceled {
		t.Errorf("expected canceled exit code when quitting mid-sweep, got %d", m.exitCode)
	}
	if m.ctx.Err() == nil {
		t.Error("expected the sweep context to be canceled")
	}
}

func TestModel_QuitAfterDone(t *testing.T) {
	m := newTestModel(t)
	m, _ = update(t, m, SweepCompleteMsg{ExitCode: apperrors.ExitSuccess, Generation: m.generation})
	m, _ = update(t, m, runeKey('q'))

	if m.exitCode != apperrors.ExitSuccess {
		t.Errorf("expected success exit code after a finished sweep, got %d", m.exitCode)
	}
}

func TestModel_ResetRestartsSweep(t *testing.T) {
	m := newTestModel(t)
	oldCtx := m.ctx
	m, _ = update(t, m, PointMsg{Point: pointWith(10, time.Millisecond, 2*time.Millisecond), Completed: 1, Total: 2})
	m, _ = update(t, m, SweepCompleteMsg{Generation: m.generation})

	m, cmd := update(t, m, runeKey('r'))
	if cmd == nil {
		t.Fatal("expected reset to start a new sweep")
	}
	if m.generation != 1 {
		t.Errorf("expected generation 1, got %d", m.generation)
	}
	if oldCtx.Err() == nil {
		t.Error("expected the previous sweep context to be canceled")
	}
	if m.ctx.Err() != nil {
		t.Error("expected a live context for the new sweep")
	}
	if m.done || len(m.table.points) != 0 {
		t.Error("expected state to be cleared")
	}
}

func TestModel_ResetWaitsForRunningSweep(t *testing.T) {
	m := newTestModel(t)
	oldCtx := m.ctx

	m, _ = update(t, m, runeKey('r'))
	if oldCtx.Err() == nil {
		t.Error("expected the running sweep to be canceled")
	}
	if !m.restartPending {
		t.Fatal("expected the new sweep to wait for the canceled one")
	}

	// A second reset before the old sweep returns still queues one restart.
	m, _ = update(t, m, runeKey('r'))
	if m.generation != 2 {
		t.Errorf("expected generation 2, got %d", m.generation)
	}

	m, cmd := update(t, m, SweepCompleteMsg{ExitCode: apperrors.ExitErrorCanceled, Generation: 0})
	if cmd == nil {
		t.Fatal("expected the pending sweep to start once the old one returned")
	}
	if m.restartPending || !m.running {
		t.Errorf("expected a single running sweep, got pending=%v running=%v", m.restartPending, m.running)
	}
	if m.done || m.exitCode != apperrors.ExitSuccess {
		t.Error("expected the stale completion not to finish the new sweep")
	}

	m, cmd = update(t, m, SweepCompleteMsg{ExitCode: apperrors.ExitSuccess, Generation: m.generation})
	if cmd != nil || !m.done || m.running {
		t.Error("expected the restarted sweep to complete normally")
	}
}

func TestModel_HelpOverlay(t *testing.T) {
	m := newTestModel(t)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
	m, _ = update(t, m, runeKey('?'))

	if !m.showHelp {
		t.Fatal("expected help to open")
	}
	if !strings.Contains(m.View(), "FACTORIAL SWEEP - HELP") {
		t.Error("expected help overlay in view")
	}

	// Other keys are swallowed while help is open.
	m, _ = update(t, m, runeKey('p'))
	if m.paused {
		t.Error("expected pause to be ignored while help is open")
	}

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.showHelp {
		t.Error("expected esc to close help")
	}
}

func TestStartSweepCmd(t *testing.T) {
	calcs := []factorial.Calculator{
		factorial.NewParallelEngine(factorial.WithWorkers(2)),
		factorial.SerialEngine{},
	}
	plan := orchestration.SweepPlan{Name: "tiny", Sizes: []int64{5, 50}, Cutoff: time.Minute}

	msg := startSweepCmd(&programRef{}, context.Background(), calcs, plan, 7)()

	done, ok := msg.(SweepCompleteMsg)
	if !ok {
		t.Fatalf("expected SweepCompleteMsg, got %T", msg)
	}
	if done.ExitCode != apperrors.ExitSuccess || done.Generation != 7 {
		t.Errorf("expected success for generation 7, got code=%d gen=%d", done.ExitCode, done.Generation)
	}
}

func TestWatchContextCmd(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	msg := watchContextCmd(ctx, 3)()
	cm, ok := msg.(ContextCancelledMsg)
	if !ok || cm.Generation != 3 || cm.Err != context.Canceled {
		t.Errorf("unexpected message %#v", msg)
	}
}

func TestSampleMemStatsCmd(t *testing.T) {
	msg, ok := sampleMemStatsCmd()().(MemStatsMsg)
	if !ok {
		t.Fatal("expected MemStatsMsg")
	}
	if msg.Alloc == 0 || msg.NumGoroutine == 0 {
		t.Error("expected live runtime stats")
	}
}

package tui

import (
	"io"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	apperrors "github.com/agbru/factcalc/internal/errors"
	"github.com/agbru/factcalc/internal/format"
	"github.com/agbru/factcalc/internal/orchestration"
)

// programRef is a shared reference to the tea.Program.
// Because bubbletea copies the model on every Update, we need a pointer
// that survives copies so the bridge goroutines can send messages.
type programRef struct {
	mu      sync.RWMutex
	program *tea.Program
}

// SetProgram sets the tea.Program reference (thread-safe).
func (r *programRef) SetProgram(p *tea.Program) {
	r.mu.Lock()
	r.program = p
	r.mu.Unlock()
}

// Send sends a message to the bubbletea program (thread-safe).
func (r *programRef) Send(msg tea.Msg) {
	r.mu.RLock()
	p := r.program
	r.mu.RUnlock()
	if p != nil {
		p.Send(msg)
	}
}

// TUISweepObserver implements orchestration.SweepObserver. It turns every
// measured size into a PointMsg carrying the sweep completion and its ETA.
type TUISweepObserver struct {
	ref *programRef
	agg *orchestration.ProgressAggregator
}

// Verify interface compliance.
var _ orchestration.SweepObserver = (*TUISweepObserver)(nil)

// OnPoint forwards the point to the dashboard.
func (o *TUISweepObserver) OnPoint(point orchestration.SweepPoint, completed, total int) {
	if o.agg == nil {
		o.agg = orchestration.NewProgressAggregator(1)
	}
	fraction := 1.0
	if total > 0 {
		fraction = float64(completed) / float64(total)
	}
	ap := o.agg.Update(orchestration.ProgressUpdate{CalculatorIndex: 0, Value: fraction})
	o.ref.Send(PointMsg{
		Point:     point,
		Completed: completed,
		Total:     total,
		Progress:  ap.AverageProgress,
		ETA:       ap.ETA,
	})
}

// TUIResultPresenter implements orchestration.ResultPresenter.
// It sends result messages to the TUI instead of writing to stdout.
type TUIResultPresenter struct {
	ref *programRef
}

// Verify interface compliance.
var (
	_ orchestration.ResultPresenter   = (*TUIResultPresenter)(nil)
	_ orchestration.DurationFormatter = (*TUIResultPresenter)(nil)
	_ orchestration.ErrorHandler      = (*TUIResultPresenter)(nil)
)

// PresentComparisonTable shows a single-size comparison as one sweep row.
func (t *TUIResultPresenter) PresentComparisonTable(results []orchestration.CalculationResult, _ io.Writer) {
	if len(results) == 0 {
		return
	}
	t.ref.Send(PointMsg{
		Point:     orchestration.SweepPoint{N: results[0].N, Results: results},
		Completed: 1,
		Total:     1,
		Progress:  1,
	})
}

// PresentResult is a no-op: the dashboard shows timings, not values.
func (t *TUIResultPresenter) PresentResult(orchestration.CalculationResult, orchestration.PresentationOptions, io.Writer) {
}

// PresentSweep sends the finished report to the TUI.
func (t *TUIResultPresenter) PresentSweep(report orchestration.SweepReport, _ io.Writer) {
	t.ref.Send(ReportMsg{Report: report})
}

// FormatDuration delegates to the shared formatter.
func (t *TUIResultPresenter) FormatDuration(d time.Duration) string {
	return format.FormatExecutionDuration(d)
}

// HandleError sends an error message to the TUI and returns the exit code.
func (t *TUIResultPresenter) HandleError(err error, duration time.Duration, _ io.Writer) int {
	if err == nil {
		return apperrors.ExitSuccess
	}
	t.ref.Send(ErrorMsg{Err: err, Duration: duration})
	return apperrors.HandleCalculationError(err, duration, io.Discard, nil)
}

package tui

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	apperrors "github.com/agbru/factcalc/internal/errors"
	"github.com/agbru/factcalc/internal/orchestration"
)

func TestTUISweepObserver_NilProgram(t *testing.T) {
	observer := &TUISweepObserver{ref: &programRef{}} // nil program - Send is a no-op

	for i := 1; i <= 3; i++ {
		observer.OnPoint(orchestration.SweepPoint{N: int64(i * 1000)}, i, 3)
	}
	if observer.agg == nil {
		t.Fatal("expected aggregator to be created on first point")
	}
	if got := observer.agg.CalculateAverage(); got != 1 {
		t.Errorf("expected average progress 1 after the last point, got %f", got)
	}
}

func TestTUISweepObserver_ZeroTotal(t *testing.T) {
	observer := &TUISweepObserver{ref: &programRef{}}
	observer.OnPoint(orchestration.SweepPoint{}, 0, 0)

	if got := observer.agg.CalculateAverage(); got != 1 {
		t.Errorf("expected an empty sweep to count as complete, got %f", got)
	}
}

func TestTUIResultPresenter_FormatDuration(t *testing.T) {
	presenter := &TUIResultPresenter{ref: &programRef{}}

	tests := []struct {
		name  string
		input time.Duration
	}{
		{"zero", 0},
		{"microseconds", 500 * time.Microsecond},
		{"milliseconds", 42 * time.Millisecond},
		{"seconds", 2*time.Second + 500*time.Millisecond},
		{"minutes", 3 * time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if presenter.FormatDuration(tt.input) == "" {
				t.Errorf("expected non-empty duration format for %v", tt.input)
			}
		})
	}
}

func TestProgramRef_Send_NilProgram(t *testing.T) {
	ref := &programRef{}
	// Should not panic
	ref.Send(PointMsg{Progress: 0.5})
}

func TestTUIResultPresenter_PresentComparisonTable(t *testing.T) {
	presenter := &TUIResultPresenter{ref: &programRef{}}

	results := []orchestration.CalculationResult{
		{Name: "Parallel", N: 20, Result: big.NewInt(2432902008176640000), Duration: 100 * time.Millisecond},
		{Name: "Serial", N: 20, Result: big.NewInt(2432902008176640000), Duration: 200 * time.Millisecond},
	}
	// Should not panic
	presenter.PresentComparisonTable(results, nil)
	presenter.PresentComparisonTable(nil, nil)
}

func TestTUIResultPresenter_PresentResult(t *testing.T) {
	presenter := &TUIResultPresenter{ref: &programRef{}}

	result := orchestration.CalculationResult{Name: "Parallel", N: 5, Result: big.NewInt(120)}
	// Should not panic
	presenter.PresentResult(result, orchestration.PresentationOptions{}, nil)
	presenter.PresentSweep(orchestration.SweepReport{}, nil)
}

func TestTUIResultPresenter_HandleError(t *testing.T) {
	presenter := &TUIResultPresenter{ref: &programRef{}}

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, apperrors.ExitSuccess},
		{"timeout", context.DeadlineExceeded, apperrors.ExitErrorTimeout},
		{"canceled", context.Canceled, apperrors.ExitErrorCanceled},
		{"config", apperrors.NewConfigError("bad flag"), apperrors.ExitErrorConfig},
		{"invalid argument", apperrors.NewInvalidArgument("n", "must be non-negative"), apperrors.ExitErrorConfig},
		{"generic", errors.New("something failed"), apperrors.ExitErrorGeneric},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := presenter.HandleError(tt.err, time.Second, nil); got != tt.want {
				t.Errorf("expected exit code %d, got %d", tt.want, got)
			}
		})
	}
}

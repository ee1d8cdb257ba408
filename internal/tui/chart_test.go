package tui

import (
	"strings"
	"testing"
	"time"

	"github.com/agbru/factcalc/internal/factorial"
	"github.com/agbru/factcalc/internal/orchestration"
)

func pointWith(n int64, parallel, serial time.Duration) orchestration.SweepPoint {
	return orchestration.SweepPoint{
		N: n,
		Results: []orchestration.CalculationResult{
			okResult(factorial.ParallelName, n, parallel),
			okResult(factorial.SerialName, n, serial),
		},
	}
}

func TestChartModel_AddPoint(t *testing.T) {
	c := NewChartModel()
	c.SetWorkers(4)

	c.AddPoint(PointMsg{
		Point:     pointWith(1000, 2*time.Millisecond, 6*time.Millisecond),
		Completed: 1,
		Total:     4,
		Progress:  0.25,
		ETA:       3 * time.Second,
	})

	if c.progress != 0.25 {
		t.Errorf("expected progress 0.25, got %f", c.progress)
	}
	if c.completed != 1 || c.total != 4 {
		t.Errorf("expected 1/4 completed, got %d/%d", c.completed, c.total)
	}
	if c.lastSpeedup != 3 {
		t.Errorf("expected last speedup 3, got %f", c.lastSpeedup)
	}
	if got := c.speedups.Latest(); got != 75 {
		t.Errorf("expected speedup sample 75%% of the ceiling, got %f", got)
	}
}

func TestChartModel_AddPoint_NoSpeedup(t *testing.T) {
	c := NewChartModel()
	point := pointWith(1000, 2*time.Millisecond, 6*time.Millisecond)
	point.Results[1] = orchestration.CalculationResult{Name: factorial.SerialName, N: 1000, Skipped: true}

	c.AddPoint(PointMsg{Point: point, Completed: 1, Total: 1, Progress: 1})

	if c.speedups.Len() != 0 {
		t.Errorf("expected no speedup sample when serial was skipped, got %d", c.speedups.Len())
	}
}

func TestChartModel_SetWorkers_Floor(t *testing.T) {
	c := NewChartModel()
	c.SetWorkers(0)
	if c.workers != 1 {
		t.Errorf("expected worker floor of 1, got %d", c.workers)
	}
}

func TestChartModel_Reset(t *testing.T) {
	c := NewChartModel()
	c.AddPoint(PointMsg{Point: pointWith(10, time.Millisecond, 2*time.Millisecond), Progress: 0.5})
	c.UpdateSysStats(40, 60)
	c.SetDone(time.Second)

	c.Reset()

	if c.progress != 0 || c.done || c.lastSpeedup != 0 {
		t.Error("expected progress, done and last speedup to be cleared")
	}
	if c.speedups.Len() != 0 || c.cpuHistory.Len() != 0 || c.memHistory.Len() != 0 {
		t.Error("expected all sample buffers to be cleared")
	}
}

func TestChartModel_SetSize_ResizesBuffers(t *testing.T) {
	c := NewChartModel()
	c.SetSize(57, 20)

	if c.cpuHistory.Limit() != 40 {
		t.Errorf("expected cpu history capacity 40, got %d", c.cpuHistory.Limit())
	}
	if c.speedups.Limit() != 80 {
		t.Errorf("expected speedup capacity 80, got %d", c.speedups.Limit())
	}
}

func TestChartModel_View(t *testing.T) {
	c := NewChartModel()
	c.SetSize(60, 20)
	c.SetWorkers(8)
	c.UpdateSysStats(42.5, 63.1)
	c.AddPoint(PointMsg{Point: pointWith(1000, time.Millisecond, 4*time.Millisecond), Completed: 1, Total: 2, Progress: 0.5, ETA: time.Second})

	view := c.View()
	for _, want := range []string{"Speedup Chart", "50.0%", "ETA:", "ceiling 8x", "CPU", "MEM", "42.5%"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected view to contain %q", want)
		}
	}
}

func TestChartModel_View_Done(t *testing.T) {
	c := NewChartModel()
	c.SetSize(60, 20)
	c.AddPoint(PointMsg{Point: pointWith(10, time.Millisecond, time.Millisecond), Completed: 1, Total: 1, Progress: 1})
	c.SetDone(1500 * time.Millisecond)

	view := c.View()
	if !strings.Contains(view, "100.0%") {
		t.Error("expected a full progress bar when done")
	}
	if strings.Contains(view, "ETA:") {
		t.Error("expected ETA to be replaced by the elapsed time when done")
	}
}

func TestChartModel_View_Narrow(t *testing.T) {
	c := NewChartModel()
	c.SetSize(20, 8)

	if bar := c.renderProgressBar(); bar != "" {
		t.Errorf("expected no progress bar on a narrow panel, got %q", bar)
	}
	view := c.View()
	if strings.Contains(view, "CPU") {
		t.Error("expected sparklines to be hidden on a short panel")
	}
}

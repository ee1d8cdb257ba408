package tui

import (
	"time"

	"github.com/agbru/factcalc/internal/orchestration"
)

// TickMsg drives periodic sampling.
type TickMsg time.Time

// PointMsg carries one measured sweep size.
type PointMsg struct {
	Point     orchestration.SweepPoint
	Completed int
	Total     int
	Progress  float64
	ETA       time.Duration
}

// ReportMsg carries the finished sweep report.
type ReportMsg struct {
	Report orchestration.SweepReport
}

// ErrorMsg reports a sweep failure.
type ErrorMsg struct {
	Err      error
	Duration time.Duration
}

// MemStatsMsg holds a runtime memory sample.
type MemStatsMsg struct {
	Alloc        uint64
	HeapInuse    uint64
	NumGC        uint32
	PauseTotalNs uint64
	NumGoroutine int
}

// SysStatsMsg holds a system-wide CPU and memory sample.
type SysStatsMsg struct {
	CPUPercent float64
	MemPercent float64
}

// SweepCompleteMsg is sent when the sweep goroutine returns.
type SweepCompleteMsg struct {
	ExitCode   int
	Generation uint64
}

// ContextCancelledMsg is sent when the run context ends.
type ContextCancelledMsg struct {
	Err        error
	Generation uint64
}

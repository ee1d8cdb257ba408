package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// MetricsModel displays runtime memory figures, the sweep rate and the
// parallel engine configuration.
type MetricsModel struct {
	alloc        uint64
	heapInuse    uint64
	numGC        uint32
	pauseTotalNs uint64
	numGoroutine int

	// Sweep rate: sizes finished since started.
	started   time.Time
	completed int
	total     int
	largestN  int64

	workers int
	backend string
	width   int
	height  int

	now func() time.Time
}

// NewMetricsModel creates a new metrics panel.
func NewMetricsModel() MetricsModel {
	m := MetricsModel{now: time.Now}
	m.started = m.now()
	return m
}

// SetSize updates dimensions.
func (m *MetricsModel) SetSize(w, h int) {
	m.width = w
	m.height = h
}

// SetEngine records the parallel worker count and product backend.
func (m *MetricsModel) SetEngine(workers int, backend string) {
	m.workers = workers
	m.backend = backend
}

// UpdateMemStats updates memory statistics.
func (m *MetricsModel) UpdateMemStats(msg MemStatsMsg) {
	m.alloc = msg.Alloc
	m.heapInuse = msg.HeapInuse
	m.numGC = msg.NumGC
	m.pauseTotalNs = msg.PauseTotalNs
	m.numGoroutine = msg.NumGoroutine
}

// AddPoint records a finished sweep size.
func (m *MetricsModel) AddPoint(msg PointMsg) {
	m.completed = msg.Completed
	m.total = msg.Total
	m.largestN = max(m.largestN, msg.Point.N)
}

// Reset restarts the sweep rate clock. Memory figures are kept since they
// describe the process, not the sweep.
func (m *MetricsModel) Reset() {
	m.started = m.now()
	m.completed = 0
	m.total = 0
	m.largestN = 0
}

// rate returns finished sizes per second, or 0 before the first size.
func (m MetricsModel) rate() float64 {
	elapsed := m.now().Sub(m.started).Seconds()
	if m.completed == 0 || elapsed <= 0 {
		return 0
	}
	return float64(m.completed) / elapsed
}

func (m MetricsModel) sizesText() string {
	if m.total == 0 {
		return "-"
	}
	text := fmt.Sprintf("%d/%d", m.completed, m.total)
	if r := m.rate(); r > 0 {
		text += fmt.Sprintf(" (%.2f/s)", r)
	}
	return text
}

// View renders the metrics panel.
func (m MetricsModel) View() string {
	var rows strings.Builder
	rows.WriteString(titleStyle.Render("Metrics"))

	colWidth := (m.width - 6) / 2

	engine := "-"
	if m.workers > 0 {
		engine = fmt.Sprintf("%d workers", m.workers)
		if m.backend != "" {
			engine += " (" + m.backend + ")"
		}
	}
	largest := "-"
	if m.largestN > 0 {
		largest = fmt.Sprintf("%d!", m.largestN)
	}

	leftCol := []string{
		formatMetricCol("Memory:", formatBytes(m.alloc)+" / "+formatBytes(m.heapInuse), colWidth),
		formatMetricCol("GC Runs:", fmt.Sprintf("%d (%.1fms)", m.numGC, float64(m.pauseTotalNs)/1e6), colWidth),
		formatMetricCol("Sizes:", m.sizesText(), colWidth),
	}
	rightCol := []string{
		formatMetricCol("Goroutines:", fmt.Sprintf("%d", m.numGoroutine), colWidth),
		formatMetricCol("Largest:", largest, colWidth),
		formatMetricCol("Engine:", engine, colWidth),
	}

	for i := range leftCol {
		rows.WriteString("\n")
		rows.WriteString(leftCol[i])
		rows.WriteString(rightCol[i])
	}

	return panelStyle.
		Width(max(m.width-2, 0)).
		Height(max(m.height-2, 0)).
		Render(rows.String())
}

func formatMetricCol(label, value string, colWidth int) string {
	cell := fmt.Sprintf(" %s %s",
		metricLabelStyle.Render(fmt.Sprintf("%-12s", label)),
		metricValueStyle.Render(value))
	// Pad to fixed column width using lipgloss-aware width
	visible := lipgloss.Width(cell)
	if visible < colWidth {
		cell += strings.Repeat(" ", colWidth-visible)
	}
	return cell
}

// formatBytes renders b with one decimal in the largest fitting unit.
func formatBytes(b uint64) string {
	switch {
	case b >= 1<<30:
		return fmt.Sprintf("%.1f GB", float64(b)/(1<<30))
	case b >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(b)/(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(b)/(1<<10))
	default:
		return fmt.Sprintf("%d B", b)
	}
}

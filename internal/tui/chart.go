package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/agbru/factcalc/internal/format"
)

const (
	// sparklineWidth is the space taken by a sparkline label and value.
	sparklineWidth = 17
	// minBarWidth is the narrowest panel that still renders a progress bar.
	minBarWidth = 30
	// sparklineMinHeight is the panel height below which sparklines are hidden.
	sparklineMinHeight = 10
)

// ChartModel shows sweep completion, the parallel speedup per size and the
// host CPU and memory load.
type ChartModel struct {
	bar       progress.Model
	progress  float64
	completed int
	total     int
	eta       time.Duration
	done      bool
	elapsed   time.Duration

	workers     int
	speedups    *Series
	lastSpeedup float64

	cpuHistory *Series
	memHistory *Series

	width  int
	height int
}

// NewChartModel creates a chart panel.
func NewChartModel() ChartModel {
	return ChartModel{
		bar:        progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		workers:    1,
		speedups:   NewSeries(64),
		cpuHistory: NewSeries(64),
		memHistory: NewSeries(64),
	}
}

// SetSize updates dimensions and resizes the sample series to the
// sparkline width.
func (c *ChartModel) SetSize(w, h int) {
	c.width = w
	c.height = h
	if sw := w - sparklineWidth; sw > 0 {
		c.cpuHistory.SetLimit(sw)
		c.memHistory.SetLimit(sw)
		c.speedups.SetLimit(sw * 2)
	}
}

// SetWorkers sets the parallel worker count, the speedup chart's ceiling.
func (c *ChartModel) SetWorkers(w int) {
	c.workers = max(w, 1)
}

// AddPoint records the completion of one sweep size.
func (c *ChartModel) AddPoint(msg PointMsg) {
	c.progress = msg.Progress
	c.completed = msg.Completed
	c.total = msg.Total
	c.eta = msg.ETA
	if ratio := speedupOf(msg.Point); ratio > 0 {
		c.lastSpeedup = ratio
		c.speedups.Add(ratio / float64(c.workers) * 100)
	}
}

// UpdateSysStats appends a CPU and memory sample.
func (c *ChartModel) UpdateSysStats(cpuPct, memPct float64) {
	c.cpuHistory.Add(cpuPct)
	c.memHistory.Add(memPct)
}

// SetDone freezes the chart.
func (c *ChartModel) SetDone(elapsed time.Duration) {
	c.done = true
	c.elapsed = elapsed
}

// Reset clears all samples.
func (c *ChartModel) Reset() {
	c.progress = 0
	c.completed = 0
	c.total = 0
	c.eta = 0
	c.done = false
	c.elapsed = 0
	c.lastSpeedup = 0
	c.speedups.Clear()
	c.cpuHistory.Clear()
	c.memHistory.Clear()
}

// View renders the chart panel.
func (c ChartModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Speedup Chart"))
	b.WriteString("\n")

	if bar := c.renderProgressBar(); bar != "" {
		b.WriteString(bar)
		b.WriteString("\n")
	}

	inner := max(c.width-4, 0)
	chartRows := c.height - 5
	if c.height >= sparklineMinHeight {
		chartRows -= 2
	}
	if chartRows > 0 && inner > 0 {
		label := fmt.Sprintf("serial/parallel, ceiling %dx", c.workers)
		if c.lastSpeedup > 0 {
			label = fmt.Sprintf("last %s, ceiling %dx", format.FormatSpeedup(c.lastSpeedup), c.workers)
		}
		b.WriteString(metricLabelStyle.Render(label))
		b.WriteString("\n")
		for _, row := range BrailleChart(c.speedups.Values(), inner, chartRows-1) {
			b.WriteString(speedupSparklineStyle.Render(row))
			b.WriteString("\n")
		}
	}

	if c.height >= sparklineMinHeight {
		b.WriteString(c.renderSparkline("CPU", c.cpuHistory, cpuSparklineStyle))
		b.WriteString("\n")
		b.WriteString(c.renderSparkline("MEM", c.memHistory, memSparklineStyle))
	}

	return panelStyle.
		Width(max(c.width-2, 0)).
		Height(max(c.height-2, 0)).
		Render(strings.TrimRight(b.String(), "\n"))
}

// renderProgressBar renders the sweep completion with its ETA, or an empty
// string when the panel is too narrow.
func (c ChartModel) renderProgressBar() string {
	inner := c.width - 4
	if inner < minBarWidth {
		return ""
	}
	bar := c.bar
	bar.Width = inner - 22
	status := "ETA: " + format.FormatETA(c.eta)
	if c.done {
		status = "in " + format.FormatExecutionDuration(c.elapsed)
	}
	return fmt.Sprintf("%s %5.1f%% %s", bar.ViewAs(c.progress), c.progress*100, status)
}

func (c ChartModel) renderSparkline(label string, buf *Series, style lipgloss.Style) string {
	return fmt.Sprintf("%s %s %s",
		metricLabelStyle.Render(label),
		style.Render(Sparkline(buf.Values())),
		metricValueStyle.Render(fmt.Sprintf("%5.1f%%", buf.Latest())))
}

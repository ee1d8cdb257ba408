package tui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/agbru/factcalc/internal/factorial"
	"github.com/agbru/factcalc/internal/format"
	"github.com/agbru/factcalc/internal/orchestration"
)

// Column widths for the sweep table (shared between header and rows).
const (
	colWidthSize    = 14
	colWidthEngine  = 12
	colWidthSpeedup = 9
)

// TableModel lists every measured size with one column per engine and the
// parallel speedup, most recent size last.
type TableModel struct {
	engines []string
	points  []orchestration.SweepPoint
	retired map[string]orchestration.Retirement
	cutoff  string
	offset  int
	follow  bool
	width   int
	height  int
}

// NewTableModel creates an empty table for the named engines.
func NewTableModel(engines []string) TableModel {
	return TableModel{
		engines: engines,
		retired: make(map[string]orchestration.Retirement),
		follow:  true,
	}
}

// SetSize updates dimensions.
func (t *TableModel) SetSize(w, h int) {
	t.width = w
	t.height = h
	t.clampOffset()
}

// AddPoint appends a measured size. The view keeps following the newest row
// unless the user scrolled away from it.
func (t *TableModel) AddPoint(p orchestration.SweepPoint) {
	t.points = append(t.points, p)
	if t.follow {
		t.offset = t.maxOffset()
	}
}

// SetReport records the retirements of a finished sweep.
func (t *TableModel) SetReport(r orchestration.SweepReport) {
	t.retired = r.Retired
	if r.Cutoff > 0 {
		t.cutoff = r.Cutoff.String()
	}
	t.clampOffset()
}

// Reset clears all rows.
func (t *TableModel) Reset() {
	t.points = nil
	t.retired = make(map[string]orchestration.Retirement)
	t.offset = 0
	t.follow = true
}

// Scroll moves the visible window by delta rows.
func (t *TableModel) Scroll(delta int) {
	t.offset += delta
	t.clampOffset()
	t.follow = t.offset == t.maxOffset()
}

// PageSize is the number of rows visible at once.
func (t TableModel) PageSize() int {
	// borders, title, header, separator and retirement notes
	rows := t.height - 5 - len(t.retired)
	if rows < 1 {
		rows = 1
	}
	return rows
}

func (t TableModel) maxOffset() int {
	return max(0, len(t.points)-t.PageSize())
}

func (t *TableModel) clampOffset() {
	t.offset = min(max(t.offset, 0), t.maxOffset())
}

// View renders the table panel.
func (t TableModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Sweep"))
	if len(t.points) > 0 {
		b.WriteString(versionStyle.Render(fmt.Sprintf("  %d size(s)", len(t.points))))
	}
	b.WriteString("\n")
	b.WriteString(t.renderHeader())
	b.WriteString("\n")

	if len(t.points) == 0 {
		b.WriteString(skippedCellStyle.Render("  Waiting for the first size..."))
	} else {
		end := min(t.offset+t.PageSize(), len(t.points))
		rows := make([]string, 0, end-t.offset)
		for _, p := range t.points[t.offset:end] {
			rows = append(rows, t.renderRow(p))
		}
		b.WriteString(strings.Join(rows, "\n"))
	}

	if notes := t.renderRetirements(); notes != "" {
		b.WriteString("\n")
		b.WriteString(notes)
	}

	return panelStyle.
		Width(max(t.width-2, 0)).
		Height(max(t.height-2, 0)).
		Render(b.String())
}

func (t TableModel) renderHeader() string {
	cells := []string{lipgloss.NewStyle().Width(colWidthSize).Align(lipgloss.Right).Render("N")}
	for _, e := range t.engines {
		cells = append(cells, lipgloss.NewStyle().Width(colWidthEngine).Align(lipgloss.Right).Render(truncateString(e, colWidthEngine)))
	}
	if t.showSpeedup() {
		cells = append(cells, lipgloss.NewStyle().Width(colWidthSpeedup).Align(lipgloss.Right).Render("Speedup"))
	}
	return tableHeaderStyle.Render(strings.Join(cells, " "))
}

func (t TableModel) renderRow(p orchestration.SweepPoint) string {
	cells := []string{sizeCellStyle.Width(colWidthSize).Align(lipgloss.Right).Render(format.FormatNumberString(fmt.Sprint(p.N)))}
	for i := range t.engines {
		var r orchestration.CalculationResult
		if i < len(p.Results) {
			r = p.Results[i]
		}
		cells = append(cells, cellStyle(r).Width(colWidthEngine).Align(lipgloss.Right).Render(cellText(r)))
	}
	if t.showSpeedup() {
		ratio := speedupOf(p)
		style := speedupGoodStyle
		if ratio < 1 {
			style = speedupBadStyle
		}
		cells = append(cells, style.Width(colWidthSpeedup).Align(lipgloss.Right).Render(format.FormatSpeedup(ratio)))
	}
	return strings.Join(cells, " ")
}

func (t TableModel) renderRetirements() string {
	if len(t.retired) == 0 {
		return ""
	}
	names := make([]string, 0, len(t.retired))
	for name := range t.retired {
		names = append(names, name)
	}
	sort.Strings(names)

	lines := make([]string, 0, len(names))
	for _, name := range names {
		r := t.retired[name]
		if r.Err != nil {
			lines = append(lines, failedCellStyle.Render(fmt.Sprintf("  %s failed at n=%d", name, r.N)))
			continue
		}
		lines = append(lines, noteStyle.Render(fmt.Sprintf("  %s retired at n=%d (%s > %s)",
			name, r.N, format.FormatExecutionDuration(r.Duration), t.cutoff)))
	}
	return strings.Join(lines, "\n")
}

func (t TableModel) showSpeedup() bool {
	return len(t.engines) > 1
}

// speedupOf returns serial time over parallel time for one point, or 0 when
// either engine has no timing.
func speedupOf(p orchestration.SweepPoint) float64 {
	var serial, parallel float64
	for _, r := range p.Results {
		if !r.OK() || r.Duration <= 0 {
			continue
		}
		switch r.Name {
		case factorial.SerialName:
			serial = float64(r.Duration)
		case factorial.ParallelName:
			parallel = float64(r.Duration)
		}
	}
	if serial == 0 || parallel == 0 {
		return 0
	}
	return serial / parallel
}

func cellText(r orchestration.CalculationResult) string {
	switch {
	case r.Skipped:
		return "skipped"
	case r.Err != nil:
		return "FAILED"
	case r.Name == "":
		return "-"
	default:
		return formatDuration(r.Duration)
	}
}

func cellStyle(r orchestration.CalculationResult) lipgloss.Style {
	switch {
	case r.Skipped:
		return skippedCellStyle
	case r.Err != nil:
		return failedCellStyle
	case r.Name == factorial.SerialName:
		return serialCellStyle
	default:
		return parallelCellStyle
	}
}

// truncateString truncates a string to maxLen characters, adding "..." if truncated.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

// formatDuration formats a duration with one decimal below a second so
// neighbouring sizes stay comparable.
func formatDuration(d time.Duration) string {
	if d < time.Microsecond {
		return fmt.Sprintf("%dns", d.Nanoseconds())
	}
	if d < time.Millisecond {
		return fmt.Sprintf("%.1f\u00b5s", float64(d.Nanoseconds())/1000)
	}
	if d < time.Second {
		return fmt.Sprintf("%.1fms", float64(d.Microseconds())/1000)
	}
	if d < time.Minute {
		return fmt.Sprintf("%.2fs", d.Seconds())
	}
	return d.Round(time.Second).String()
}

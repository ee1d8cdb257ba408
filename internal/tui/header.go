package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/agbru/factcalc/internal/format"
)

// HeaderModel renders the top bar: title, version, sweep name, elapsed time
// and host CPU count.
type HeaderModel struct {
	startTime time.Time
	endTime   time.Time
	version   string
	sweep     string
	cpus      int
	width     int
}

// NewHeaderModel creates a new header.
func NewHeaderModel(version, sweep string, cpus int) HeaderModel {
	return HeaderModel{
		startTime: time.Now(),
		version:   version,
		sweep:     sweep,
		cpus:      cpus,
	}
}

// SetDone freezes the elapsed timer at the current time.
func (h *HeaderModel) SetDone() {
	h.endTime = time.Now()
}

// Reset restarts the elapsed timer.
func (h *HeaderModel) Reset() {
	h.startTime = time.Now()
	h.endTime = time.Time{}
}

// SetWidth updates the available width.
func (h *HeaderModel) SetWidth(w int) {
	h.width = w
}

// View renders the header.
func (h HeaderModel) View() string {
	titleText := "FactCalc Sweep"
	if h.version != "" && h.version != "dev" {
		titleText += " " + h.version
	}
	title := titleStyle.Render(titleText)

	pipe := versionStyle.Render(" | ")

	var duration time.Duration
	if !h.endTime.IsZero() {
		duration = h.endTime.Sub(h.startTime)
	} else {
		duration = time.Since(h.startTime)
	}
	elapsed := elapsedStyle.Render(fmt.Sprintf("Elapsed: %s", format.FormatExecutionDuration(duration)))

	leftPart := title + pipe + elapsed
	if h.sweep != "" {
		leftPart = title + pipe + versionStyle.Render(h.sweep) + pipe + elapsed
	}
	leftLen := lipgloss.Width(leftPart)

	right := ""
	if h.cpus > 0 {
		right = versionStyle.Render(fmt.Sprintf("%d CPUs", h.cpus))
	}

	innerWidth := h.width - 2
	if innerWidth < 0 {
		innerWidth = 0
	}

	gap := innerWidth - leftLen - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}

	row := leftPart + spaces(gap) + right

	return headerStyle.Width(h.width).Render(row)
}

// spaces returns a string of n space characters.
func spaces(n int) string {
	if n <= 0 {
		return ""
	}
	b := make([]byte, n)
	for i := range b {
		b[i] = ' '
	}
	return string(b)
}

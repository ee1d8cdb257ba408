package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/agbru/factcalc/internal/ui"
)

// Style variables for the TUI dashboard.
// Initialized from the ui theme system via initTUIStyles().
var (
	panelStyle            lipgloss.Style
	headerStyle           lipgloss.Style
	titleStyle            lipgloss.Style
	versionStyle          lipgloss.Style
	elapsedStyle          lipgloss.Style
	tableHeaderStyle      lipgloss.Style
	sizeCellStyle         lipgloss.Style
	parallelCellStyle     lipgloss.Style
	serialCellStyle       lipgloss.Style
	skippedCellStyle      lipgloss.Style
	failedCellStyle       lipgloss.Style
	speedupGoodStyle      lipgloss.Style
	speedupBadStyle       lipgloss.Style
	noteStyle             lipgloss.Style
	metricLabelStyle      lipgloss.Style
	metricValueStyle      lipgloss.Style
	footerKeyStyle        lipgloss.Style
	footerDescStyle       lipgloss.Style
	statusRunningStyle    lipgloss.Style
	statusPausedStyle     lipgloss.Style
	statusDoneStyle       lipgloss.Style
	statusErrorStyle      lipgloss.Style
	cpuSparklineStyle     lipgloss.Style
	memSparklineStyle     lipgloss.Style
	speedupSparklineStyle lipgloss.Style
	overlayStyle          lipgloss.Style
)

func init() {
	initTUIStyles()
}

// initTUIStyles rebuilds all TUI styles from the current ui theme.
// Called at package init and again from Run() after InitTheme has been invoked.
func initTUIStyles() {
	t := ui.GetCurrentTUITheme()

	panelStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Border).
		Foreground(t.Text)

	headerStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(t.Accent).
		Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(t.Accent)

	versionStyle = lipgloss.NewStyle().
		Foreground(t.Dim)

	elapsedStyle = lipgloss.NewStyle().
		Foreground(t.Accent)

	tableHeaderStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(t.Text)

	sizeCellStyle = lipgloss.NewStyle().
		Foreground(t.Text)

	parallelCellStyle = lipgloss.NewStyle().
		Foreground(t.Accent)

	serialCellStyle = lipgloss.NewStyle().
		Foreground(t.Serial)

	skippedCellStyle = lipgloss.NewStyle().
		Foreground(t.Dim)

	failedCellStyle = lipgloss.NewStyle().
		Foreground(t.Error).
		Bold(true)

	speedupGoodStyle = lipgloss.NewStyle().
		Foreground(t.Success).
		Bold(true)

	speedupBadStyle = lipgloss.NewStyle().
		Foreground(t.Warning)

	noteStyle = lipgloss.NewStyle().
		Foreground(t.Warning)

	metricLabelStyle = lipgloss.NewStyle().
		Foreground(t.Dim)

	metricValueStyle = lipgloss.NewStyle().
		Foreground(t.Accent).
		Bold(true)

	footerKeyStyle = lipgloss.NewStyle().
		Foreground(t.Accent).
		Bold(true)

	footerDescStyle = lipgloss.NewStyle().
		Foreground(t.Dim)

	statusRunningStyle = lipgloss.NewStyle().
		Foreground(t.Success).
		Bold(true)

	statusPausedStyle = lipgloss.NewStyle().
		Foreground(t.Warning).
		Bold(true)

	statusDoneStyle = lipgloss.NewStyle().
		Foreground(t.Accent).
		Bold(true)

	statusErrorStyle = lipgloss.NewStyle().
		Foreground(t.Error).
		Bold(true)

	cpuSparklineStyle = lipgloss.NewStyle().
		Foreground(t.Accent)

	memSparklineStyle = lipgloss.NewStyle().
		Foreground(t.Warning)

	speedupSparklineStyle = lipgloss.NewStyle().
		Foreground(t.Success)

	overlayStyle = lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(t.Accent).
		Padding(1, 2)
}

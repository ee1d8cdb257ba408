package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// renderHelpOverlay centers the help box on the screen.
func (m Model) renderHelpOverlay() string {
	box := overlayStyle.
		Width(min(64, max(m.width-4, 20))).
		Render(buildHelpContent(m.keymap))
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

// buildHelpContent lists every binding and explains the panels.
func buildHelpContent(k KeyMap) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("FACTORIAL SWEEP - HELP"))
	b.WriteString("\n\n")

	for _, bind := range []struct {
		keys, desc string
	}{
		{k.Quit.Help().Key + " / ctrl+c", "Quit (stops after the current call)"},
		{k.Pause.Help().Key + " / p", "Freeze the display"},
		{k.Reset.Help().Key, "Restart the sweep from the first size"},
		{k.Up.Help().Key + " " + k.Down.Help().Key, "Scroll the sweep table"},
		{k.PageUp.Help().Key + " / " + k.PageDown.Help().Key, "Scroll by a page"},
		{k.Help.Help().Key + " / f1", "Toggle this help"},
	} {
		b.WriteString(formatHelpLine(bind.keys, bind.desc))
	}

	b.WriteString("\n")
	b.WriteString(metricLabelStyle.Render("Each size is timed once per engine, one engine at a time."))
	b.WriteString("\n")
	b.WriteString(metricLabelStyle.Render("An engine slower than the cutoff is retired for larger sizes."))
	b.WriteString("\n")
	b.WriteString(metricLabelStyle.Render("Speedup is serial time divided by parallel time."))
	b.WriteString("\n\n")
	b.WriteString(footerDescStyle.Render("Press ? or esc to close"))
	return b.String()
}

func formatHelpLine(keys, desc string) string {
	return "  " + footerKeyStyle.Width(18).Render(keys) + footerDescStyle.Render(desc) + "\n"
}

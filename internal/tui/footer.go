package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// FooterModel renders the key hints and the run status.
type FooterModel struct {
	keys   KeyMap
	paused bool
	done   bool
	failed bool
	width  int
}

// NewFooterModel creates a footer for keys.
func NewFooterModel(keys KeyMap) FooterModel {
	return FooterModel{keys: keys}
}

// SetWidth updates the available width.
func (f *FooterModel) SetWidth(w int) { f.width = w }

// SetPaused toggles the paused indicator.
func (f *FooterModel) SetPaused(p bool) { f.paused = p }

// SetDone marks the sweep as finished.
func (f *FooterModel) SetDone(d bool) { f.done = d }

// SetError marks the sweep as failed.
func (f *FooterModel) SetError(e bool) { f.failed = e }

// View renders the footer.
func (f FooterModel) View() string {
	hints := make([]string, 0, len(f.keys.ShortHelp()))
	for _, b := range f.keys.ShortHelp() {
		h := b.Help()
		hints = append(hints, footerKeyStyle.Render(h.Key)+" "+footerDescStyle.Render(h.Desc))
	}
	left := " " + strings.Join(hints, footerDescStyle.Render("  "))

	var status string
	switch {
	case f.failed:
		status = statusErrorStyle.Render("ERROR")
	case f.done:
		status = statusDoneStyle.Render("DONE")
	case f.paused:
		status = statusPausedStyle.Render("PAUSED")
	default:
		status = statusRunningStyle.Render("RUNNING")
	}

	gap := max(f.width-lipgloss.Width(left)-lipgloss.Width(status)-1, 1)
	return left + spaces(gap) + status
}

// Package format holds the display helpers shared by the CLI, the TUI and the
// HTTP server: durations, ETAs, progress bars, digit grouping and
// large-number summaries.
package format

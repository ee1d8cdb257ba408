// Package ui provides theme and color support for the CLI and the TUI.
// Color accessors read the active theme so that --no-color and NO_COLOR
// apply everywhere.
package ui

package ui

import (
	"os"
	"testing"

	"github.com/charmbracelet/lipgloss"

	apperrors "github.com/agbru/factcalc/internal/errors"
)

var _ apperrors.ColorProvider = CLIColorProvider{}

// Tests in this file mutate the global theme and must not run in parallel.

func TestInitTheme(t *testing.T) {
	defer SetCurrentTheme(GetCurrentTheme())

	tests := []struct {
		name     string
		noColor  bool
		noColEnv bool
		themeEnv string
		want     string
	}{
		{"default", false, false, "", "dark"},
		{"flag disables colors", true, false, "light", "none"},
		{"NO_COLOR disables colors", false, true, "light", "none"},
		{"FACTCALC_THEME selects", false, false, "light", "light"},
		{"unknown theme falls back", false, false, "neon", "dark"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(ThemeEnv, tt.themeEnv)
			t.Setenv("NO_COLOR", "1")
			if !tt.noColEnv {
				os.Unsetenv("NO_COLOR")
			}
			InitTheme(tt.noColor)
			if got := GetCurrentTheme().Name; got != tt.want {
				t.Errorf("theme = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestColorAccessorsFollowTheme(t *testing.T) {
	defer SetCurrentTheme(GetCurrentTheme())

	SetCurrentTheme(DarkTheme)
	if ColorRed() != DarkTheme.Error || ColorReset() != DarkTheme.Reset {
		t.Error("color accessors should read the dark theme")
	}
	if (CLIColorProvider{}).Yellow() != DarkTheme.Warning {
		t.Error("CLIColorProvider should read the active theme")
	}

	SetCurrentTheme(NoColorTheme)
	for _, c := range []string{ColorRed(), ColorGreen(), ColorYellow(), ColorBlue(), ColorBold(), ColorPrimary(), ColorDim(), ColorReset()} {
		if c != "" {
			t.Errorf("NoColorTheme produced escape sequence %q", c)
		}
	}
}

func TestGetCurrentTUITheme(t *testing.T) {
	defer SetCurrentTheme(GetCurrentTheme())

	SetCurrentTheme(NoColorTheme)
	if _, ok := GetCurrentTUITheme().Accent.(lipgloss.NoColor); !ok {
		t.Error("expected NoColor accent when colors are disabled")
	}
	SetCurrentTheme(LightTheme)
	if GetCurrentTUITheme().Accent != DarkTUITheme.Accent {
		t.Error("expected the default dashboard palette")
	}
}

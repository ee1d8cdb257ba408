package cli

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/agbru/factcalc/internal/config"
	"github.com/agbru/factcalc/internal/factorial"
	"github.com/agbru/factcalc/internal/orchestration"
	"github.com/agbru/factcalc/internal/ui"
)

// TestPrintExecutionConfig tests the PrintExecutionConfig function.
func TestPrintExecutionConfig(t *testing.T) {
	defer ui.SetCurrentTheme(ui.GetCurrentTheme())
	ui.SetCurrentTheme(ui.NoColorTheme)

	t.Run("Single N", func(t *testing.T) {
		var buf bytes.Buffer
		cfg := config.AppConfig{N: 1000, Single: true, Timeout: time.Minute, Backend: "big", Repeats: 1}

		PrintExecutionConfig(cfg, 4, &buf)

		output := buf.String()
		for _, want := range []string{"1000!", "1m0s", "4 workers", "big backend"} {
			if !strings.Contains(output, want) {
				t.Errorf("output should contain %q:\n%s", want, output)
			}
		}
	})

	t.Run("Sweep", func(t *testing.T) {
		var buf bytes.Buffer
		cfg := config.AppConfig{
			Sizes: []int64{1000, 20000}, SweepName: "nightly",
			Cutoff: 5 * time.Second, Timeout: time.Minute, Backend: "big", Repeats: 3,
		}

		PrintExecutionConfig(cfg, 8, &buf)

		output := buf.String()
		for _, want := range []string{"nightly", "2 sizes", "1,000 to 20,000", "cutoff 5s", "best of 3"} {
			if !strings.Contains(output, want) {
				t.Errorf("output should contain %q:\n%s", want, output)
			}
		}
	})
}

// TestPrintExecutionMode tests the PrintExecutionMode function.
func TestPrintExecutionMode(t *testing.T) {
	t.Parallel()
	factory := factorial.NewDefaultFactory()

	t.Run("Single calculator mode", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		calc, _ := factory.Get(factorial.SerialKey)

		PrintExecutionMode([]factorial.Calculator{calc}, &buf)

		if !strings.Contains(buf.String(), "Single calculation") {
			t.Errorf("unexpected output: %s", buf.String())
		}
	})

	t.Run("Multiple calculators mode", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		calculators := orchestration.GetCalculatorsToRun("all", factory)

		PrintExecutionMode(calculators, &buf)

		if !strings.Contains(buf.String(), "Parallel and Serial") {
			t.Errorf("unexpected output: %s", buf.String())
		}
	})
}

func TestCPUFeaturesDoesNotPanic(t *testing.T) {
	t.Parallel()
	_ = CPUFeatures()
}

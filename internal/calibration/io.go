package calibration

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/agbru/factcalc/internal/format"
	"github.com/agbru/factcalc/internal/ui"
)

// printCalibrationResults formats and prints the calibration results table.
// Speedups are relative to the single-worker timing when it is present.
func printCalibrationResults(out io.Writer, results []calibrationResult, bestWorkers int) {
	var baseline float64
	for _, r := range results {
		if r.Workers == 1 && r.Err == nil {
			baseline = float64(r.Duration)
		}
	}

	fmt.Fprintf(out, "\n--- Calibration Summary ---\n")
	tw := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintf(tw, "  %sWorkers%s\t%sExecution Time%s\t%sSpeedup%s\n",
		ui.ColorBold(), ui.ColorReset(), ui.ColorBold(), ui.ColorReset(), ui.ColorBold(), ui.ColorReset())
	fmt.Fprintf(tw, "  %s\t%s\t%s\n", strings.Repeat("─", 7), strings.Repeat("─", 14), strings.Repeat("─", 7))
	for _, res := range results {
		durationStr := fmt.Sprintf("%sN/A%s", ui.ColorRed(), ui.ColorReset())
		speedup := "n/a"
		if res.Err == nil {
			durationStr = format.FormatExecutionDuration(res.Duration)
			if res.Duration > 0 && baseline > 0 {
				speedup = format.FormatSpeedup(baseline / float64(res.Duration))
			}
		}
		highlight := ""
		if res.Workers == bestWorkers && res.Err == nil {
			highlight = fmt.Sprintf(" %s(Optimal)%s", ui.ColorGreen(), ui.ColorReset())
		}
		fmt.Fprintf(tw, "  %s%d%s\t%s%s%s\t%s%s\n",
			ui.ColorPrimary(), res.Workers, ui.ColorReset(),
			ui.ColorYellow(), durationStr, ui.ColorReset(),
			speedup, highlight)
	}
	tw.Flush()
}

// printCalibrationOutput prints the one-line calibration verdict.
func printCalibrationOutput(result Result, out io.Writer) {
	fmt.Fprintf(out, "\n%sCalibration%s: best worker count=%s%d%s (%s at n=%d, total %s)\n",
		ui.ColorGreen(), ui.ColorReset(),
		ui.ColorYellow(), result.BestWorkers, ui.ColorReset(),
		format.FormatExecutionDuration(result.BestTime), result.N,
		format.FormatExecutionDuration(result.Elapsed))
}

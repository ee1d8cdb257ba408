package cli

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/agbru/factcalc/internal/factorial"
	"github.com/agbru/factcalc/internal/format"
	"github.com/agbru/factcalc/internal/orchestration"
	"github.com/agbru/factcalc/internal/ui"
)

// chartWidth is the bar length of the largest speedup in the chart.
const chartWidth = 40

// CLISweepObserver prints one line per completed sweep point.
type CLISweepObserver struct {
	out io.Writer
	mu  sync.Mutex
}

var _ orchestration.SweepObserver = (*CLISweepObserver)(nil)

// NewCLISweepObserver returns an observer writing to out.
func NewCLISweepObserver(out io.Writer) *CLISweepObserver {
	return &CLISweepObserver{out: out}
}

// OnPoint prints the timings of one size.
func (o *CLISweepObserver) OnPoint(point orchestration.SweepPoint, completed, total int) {
	o.mu.Lock()
	defer o.mu.Unlock()

	cells := make([]string, 0, len(point.Results))
	for _, r := range point.Results {
		cells = append(cells, fmt.Sprintf("%s %s", r.Name, resultCell(r)))
	}
	fmt.Fprintf(o.out, "[%*d/%d] n=%-12s %s\n",
		len(fmt.Sprint(total)), completed, total,
		format.FormatNumberString(fmt.Sprint(point.N)), strings.Join(cells, "  "))
}

// DisplaySweepTable prints one row per size and one column per engine,
// followed by the speedup of the parallel engine when both ran.
func DisplaySweepTable(report orchestration.SweepReport, out io.Writer) {
	fmt.Fprintf(out, "\n--- Sweep Summary ---\n")
	if len(report.Points) == 0 {
		fmt.Fprintf(out, "No size was measured.\n")
		return
	}

	speedups := make(map[int64]float64)
	for _, s := range report.ParallelSpeedups() {
		speedups[s.N] = s.Ratio
	}
	showSpeedup := len(report.Calculators) > 1

	header := []string{"N"}
	header = append(header, report.Calculators...)
	if showSpeedup {
		header = append(header, "Speedup")
	}
	rows := [][]string{header}
	for _, p := range report.Points {
		row := []string{format.FormatNumberString(fmt.Sprint(p.N))}
		for _, r := range p.Results {
			row = append(row, resultCell(r))
		}
		if showSpeedup {
			row = append(row, format.FormatSpeedup(speedups[p.N]))
		}
		rows = append(rows, row)
	}

	widths := make([]int, len(header))
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], len(cell))
		}
	}
	for ri, row := range rows {
		var b strings.Builder
		for i, cell := range row {
			if i > 0 {
				b.WriteString("   ")
			}
			pad := widths[i] - len(cell)
			switch {
			case ri == 0:
				b.WriteString(ui.ColorBold() + cell + ui.ColorReset() + padRight("", pad))
			case i == 0:
				b.WriteString(padRight("", pad) + cell)
			default:
				b.WriteString(cellColor(cell) + cell + ui.ColorReset() + padRight("", pad))
			}
		}
		fmt.Fprintln(out, strings.TrimRight(b.String(), " "))
	}
}

// DisplayRetirements lists the engines retired by the cutoff or a failure.
func DisplayRetirements(report orchestration.SweepReport, out io.Writer) {
	if len(report.Retired) == 0 {
		return
	}
	names := make([]string, 0, len(report.Retired))
	for name := range report.Retired {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintln(out)
	for _, name := range names {
		r := report.Retired[name]
		if r.Err != nil {
			fmt.Fprintf(out, "%s%s failed at n=%d and was retired: %v%s\n",
				ui.ColorRed(), name, r.N, r.Err, ui.ColorReset())
			continue
		}
		fmt.Fprintf(out, "%s%s took %s at n=%d, above the %s cutoff; larger sizes were skipped.%s\n",
			ui.ColorYellow(), name, format.FormatExecutionDuration(r.Duration), r.N, report.Cutoff, ui.ColorReset())
	}
}

// DisplaySpeedupChart draws a horizontal bar per size, scaled so the largest
// speedup (or the worker count, whichever is larger) spans chartWidth.
func DisplaySpeedupChart(speedups []orchestration.Speedup, workers int, out io.Writer) {
	if len(speedups) == 0 {
		return
	}
	scale := float64(workers)
	labelWidth := 0
	for _, s := range speedups {
		scale = math.Max(scale, s.Ratio)
		labelWidth = max(labelWidth, len(format.FormatNumberString(fmt.Sprint(s.N))))
	}
	if scale <= 0 {
		scale = 1
	}

	fmt.Fprintf(out, "\n--- Parallel Speedup (serial time / parallel time, %d workers) ---\n", workers)
	for _, s := range speedups {
		bar := int(math.Round(s.Ratio / scale * chartWidth))
		color := ui.ColorGreen()
		if s.Ratio < 1 {
			color = ui.ColorRed()
		}
		fmt.Fprintf(out, "%*s │%s%s%s %s\n",
			labelWidth, format.FormatNumberString(fmt.Sprint(s.N)),
			color, strings.Repeat("█", bar), ui.ColorReset(), format.FormatSpeedup(s.Ratio))
	}
	if workers > 1 {
		fmt.Fprintf(out, "%*s  ideal: %dx\n", labelWidth, "", workers)
	}
}

func resultCell(r orchestration.CalculationResult) string {
	switch {
	case r.Skipped:
		return "skipped"
	case r.Err != nil:
		return "FAILED"
	default:
		return displayDuration(r.Duration)
	}
}

func cellColor(cell string) string {
	switch cell {
	case "skipped":
		return ui.ColorDim()
	case "FAILED":
		return ui.ColorRed()
	}
	return ""
}

func parallelWorkers(report orchestration.SweepReport) int {
	for i, name := range report.Calculators {
		if name == factorial.ParallelName {
			return report.Workers[i]
		}
	}
	return 1
}

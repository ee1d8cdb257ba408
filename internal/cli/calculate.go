package cli

import (
	"fmt"
	"io"
	"runtime"
	"strings"

	"golang.org/x/sys/cpu"

	"github.com/agbru/factcalc/internal/config"
	"github.com/agbru/factcalc/internal/factorial"
	"github.com/agbru/factcalc/internal/format"
	"github.com/agbru/factcalc/internal/ui"
)

// PrintExecutionConfig displays the current execution configuration: the
// input or sweep, the limits, and the host environment.
//
// Parameters:
//   - cfg: The application configuration.
//   - workers: The worker count the parallel engine will use.
//   - out: The writer for standard output.
func PrintExecutionConfig(cfg config.AppConfig, workers int, out io.Writer) {
	fmt.Fprintf(out, "--- Execution Configuration ---\n")
	if cfg.Single {
		fmt.Fprintf(out, "Calculating %s%d!%s with a timeout of %s%s%s.\n",
			ui.ColorPrimary(), cfg.N, ui.ColorReset(), ui.ColorYellow(), cfg.Timeout, ui.ColorReset())
	} else {
		name := cfg.SweepName
		if name == "" {
			name = "sweep"
		}
		fmt.Fprintf(out, "Running %s%s%s over %d sizes (%s to %s), cutoff %s%s%s, timeout %s.\n",
			ui.ColorPrimary(), name, ui.ColorReset(), len(cfg.Sizes),
			format.FormatNumberString(fmt.Sprint(cfg.Sizes[0])),
			format.FormatNumberString(fmt.Sprint(cfg.Sizes[len(cfg.Sizes)-1])),
			ui.ColorYellow(), cfg.Cutoff, ui.ColorReset(), cfg.Timeout)
	}
	fmt.Fprintf(out, "Environment: %s%d%s logical processors, Go %s%s%s, %s/%s.\n",
		ui.ColorBlue(), runtime.NumCPU(), ui.ColorReset(), ui.ColorBlue(), runtime.Version(), ui.ColorReset(),
		runtime.GOOS, runtime.GOARCH)
	fmt.Fprintf(out, "Parallel engine: %s%d%s workers, %s backend, best of %d.\n",
		ui.ColorBlue(), workers, ui.ColorReset(), cfg.Backend, cfg.Repeats)
	if features := CPUFeatures(); features != "" {
		fmt.Fprintf(out, "CPU features: %s.\n", features)
	}
}

// CPUFeatures lists the instruction set extensions relevant to big-integer
// multiplication that the host supports.
func CPUFeatures() string {
	var f []string
	switch runtime.GOARCH {
	case "amd64", "386":
		if cpu.X86.HasADX {
			f = append(f, "ADX")
		}
		if cpu.X86.HasBMI2 {
			f = append(f, "BMI2")
		}
		if cpu.X86.HasAVX2 {
			f = append(f, "AVX2")
		}
		if cpu.X86.HasAVX512F {
			f = append(f, "AVX-512")
		}
	case "arm64":
		if cpu.ARM64.HasASIMD {
			f = append(f, "ASIMD")
		}
		if cpu.ARM64.HasSVE {
			f = append(f, "SVE")
		}
	}
	return strings.Join(f, " ")
}

// PrintExecutionMode displays the execution mode (single engine vs comparison).
//
// Parameters:
//   - calculators: The slice of calculators that will be executed.
//   - out: The writer for standard output.
func PrintExecutionMode(calculators []factorial.Calculator, out io.Writer) {
	var modeDesc string
	if len(calculators) > 1 {
		names := make([]string, len(calculators))
		for i, c := range calculators {
			names[i] = c.Name()
		}
		modeDesc = fmt.Sprintf("Comparison of %s (run one after another)", strings.Join(names, " and "))
	} else {
		modeDesc = fmt.Sprintf("Single calculation with the %s%s%s engine",
			ui.ColorGreen(), calculators[0].Name(), ui.ColorReset())
	}
	fmt.Fprintf(out, "Execution mode: %s.\n", modeDesc)
	fmt.Fprintf(out, "\n--- Starting Execution ---\n")
}

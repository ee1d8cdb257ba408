package cli

import (
	"encoding/csv"
	"fmt"
	"io"
	"math/big"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/agbru/factcalc/internal/format"
	"github.com/agbru/factcalc/internal/orchestration"
	"github.com/agbru/factcalc/internal/ui"
)

// OutputConfig holds configuration for result output.
type OutputConfig struct {
	// OutputFile is the path to save the result (empty for no file output).
	OutputFile string
	// Quiet mode suppresses everything but the value.
	Quiet bool
	// Verbose shows the full result value.
	Verbose bool
	// Details shows bit length and digit analysis.
	Details bool
	// ShowValue enables the calculated value display.
	ShowValue bool
}

// WriteResultToFile writes a calculation result to a file, creating parent
// directories as needed.
//
// Parameters:
//   - result: The computed n!.
//   - n: The input.
//   - duration: The calculation duration.
//   - algo: The engine name used.
//   - config: Output configuration.
//
// Returns:
//   - error: An error if the file cannot be written.
func WriteResultToFile(result *big.Int, n int64, duration time.Duration, algo string, config OutputConfig) error {
	if config.OutputFile == "" {
		return nil
	}
	if err := ensureDir(config.OutputFile); err != nil {
		return err
	}

	file, err := os.Create(config.OutputFile)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	fmt.Fprintf(file, "# Factorial Calculation Result\n")
	fmt.Fprintf(file, "# Generated: %s\n", time.Now().Format(time.RFC3339))
	fmt.Fprintf(file, "# Engine: %s\n", algo)
	fmt.Fprintf(file, "# Duration: %s\n", duration)
	fmt.Fprintf(file, "# N: %d\n", n)
	fmt.Fprintf(file, "# Bits: %d\n", result.BitLen())
	fmt.Fprintf(file, "# Digits: %d\n", format.DigitCount(result))
	fmt.Fprintf(file, "\n")
	fmt.Fprintf(file, "%d! =\n%s\n", n, result.String())

	return file.Close()
}

// sweepCSVHeader is the first record of a sweep report file.
var sweepCSVHeader = []string{"n", "engine", "workers", "status", "duration_ns", "duration", "digits"}

// WriteSweepCSV writes one record per engine and size of report to path.
func WriteSweepCSV(path string, report orchestration.SweepReport) error {
	if err := ensureDir(path); err != nil {
		return err
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer file.Close()

	if err := EncodeSweepCSV(file, report); err != nil {
		return err
	}
	return file.Close()
}

// EncodeSweepCSV writes report as CSV to w.
func EncodeSweepCSV(w io.Writer, report orchestration.SweepReport) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(sweepCSVHeader); err != nil {
		return err
	}
	for _, p := range report.Points {
		for _, r := range p.Results {
			status, durationNs, duration, digits := "ok", "", "", ""
			switch {
			case r.Skipped:
				status = "skipped"
			case r.Err != nil:
				status = "error"
			default:
				durationNs = strconv.FormatInt(r.Duration.Nanoseconds(), 10)
				duration = r.Duration.String()
				digits = strconv.Itoa(format.DigitCount(r.Result))
			}
			record := []string{
				strconv.FormatInt(p.N, 10), r.Name, strconv.Itoa(r.Workers),
				status, durationNs, duration, digits,
			}
			if err := cw.Write(record); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	return nil
}

// FormatQuietResult formats a result for quiet mode output: the bare value,
// suitable for scripting.
func FormatQuietResult(result *big.Int, n int64, duration time.Duration) string {
	return result.String()
}

// DisplayQuietResult outputs a result in quiet mode (minimal output).
func DisplayQuietResult(out io.Writer, result *big.Int, n int64, duration time.Duration) {
	fmt.Fprintln(out, FormatQuietResult(result, n, duration))
}

// DisplayResultWithConfig displays a result with the given output
// configuration and saves it when an output file is set.
//
// Returns:
//   - error: An error if file output fails.
func DisplayResultWithConfig(out io.Writer, result *big.Int, n int64, duration time.Duration, algo string, config OutputConfig) error {
	if config.Quiet {
		DisplayQuietResult(out, result, n, duration)
	} else {
		DisplayResult(result, n, duration, config.Verbose, config.Details, config.ShowValue, out)
	}

	if config.OutputFile != "" {
		if err := WriteResultToFile(result, n, duration, algo, config); err != nil {
			return err
		}
		if !config.Quiet {
			fmt.Fprintf(out, "\n%s✓ Result saved to: %s%s%s\n",
				ui.ColorGreen(), ui.ColorBlue(), config.OutputFile, ui.ColorReset())
		}
	}

	return nil
}

package app

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/agbru/factcalc/internal/cli"
	apperrors "github.com/agbru/factcalc/internal/errors"
	"github.com/agbru/factcalc/internal/metrics"
	"github.com/agbru/factcalc/internal/orchestration"
)

// runCalculate computes a single N! with every selected engine and compares them.
func (a *Application) runCalculate(ctx context.Context, out io.Writer) int {
	// Setup lifecycle (timeout + signals)
	ctx, cancelTimeout := context.WithTimeout(ctx, a.Config.Timeout)
	defer cancelTimeout()
	ctx, stopSignals := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	calculatorsToRun := orchestration.GetCalculatorsToRun(a.Config.Algo, a.Factory)

	if !a.Config.Quiet {
		cli.PrintExecutionConfig(a.Config, a.parallelWorkers(), out)
		cli.PrintExecutionMode(calculatorsToRun, out)
	}

	stopMetrics := a.serveMetrics(ctx)
	defer stopMetrics()

	var progressReporter orchestration.ProgressReporter
	progressOut := out
	if a.Config.Quiet {
		progressOut = io.Discard
		progressReporter = orchestration.NullProgressReporter{}
	} else {
		progressReporter = cli.CLIProgressReporter{}
	}

	collector := metrics.NewMemoryCollector()
	before := collector.Snapshot()
	results := orchestration.ExecuteCalculations(ctx, calculatorsToRun, a.Config.N, a.executionOptions(), progressReporter, progressOut)
	after := collector.Snapshot()

	outputCfg := cli.OutputConfig{
		OutputFile: a.Config.OutputFile,
		Quiet:      a.Config.Quiet,
		Verbose:    a.Config.Verbose,
		Details:    a.Config.Details,
		ShowValue:  a.Config.ShowValue,
	}
	exitCode := a.analyzeResultsWithOutput(results, outputCfg, out)

	if a.Config.Details && !a.Config.Quiet {
		delta := after.Since(before)
		cli.DisplayMemoryStats(after.HeapAlloc, delta.Allocated, delta.GCCycles, delta.PauseNs, out)
	}
	return exitCode
}

func (a *Application) analyzeResultsWithOutput(results []orchestration.CalculationResult, outputCfg cli.OutputConfig, out io.Writer) int {
	bestResult := findBestResult(results)

	// Quiet mode prints the bare value of the fastest engine.
	if outputCfg.Quiet && bestResult != nil {
		if name, ok := mismatch(results); ok {
			fmt.Fprintf(a.ErrWriter, "Result mismatch: %s disagrees with %s.\n", name, bestResult.Name)
			return apperrors.ExitErrorMismatch
		}
		if err := cli.DisplayResultWithConfig(out, bestResult.Result, a.Config.N, bestResult.Duration, bestResult.Name, outputCfg); err != nil {
			fmt.Fprintf(a.ErrWriter, "Error saving result: %v\n", err)
			return apperrors.ExitErrorGeneric
		}
		return apperrors.ExitSuccess
	}

	presOpts := orchestration.PresentationOptions{
		N:         a.Config.N,
		Verbose:   a.Config.Verbose,
		Details:   a.Config.Details,
		ShowValue: a.Config.ShowValue,
	}
	presenter := cli.CLIResultPresenter{}
	exitCode := orchestration.AnalyzeComparisonResults(results, presOpts, presenter, presenter, out)

	if bestResult != nil && exitCode == apperrors.ExitSuccess && outputCfg.OutputFile != "" {
		if err := cli.WriteResultToFile(bestResult.Result, a.Config.N, bestResult.Duration, bestResult.Name, outputCfg); err != nil {
			fmt.Fprintf(a.ErrWriter, "Error saving result: %v\n", err)
			return apperrors.ExitErrorGeneric
		}
		fmt.Fprintf(out, "\nResult saved to: %s\n", outputCfg.OutputFile)
	}

	return exitCode
}

// findBestResult returns the fastest result that holds a value.
func findBestResult(results []orchestration.CalculationResult) *orchestration.CalculationResult {
	var bestResult *orchestration.CalculationResult
	for i := range results {
		if results[i].OK() {
			if bestResult == nil || results[i].Duration < bestResult.Duration {
				bestResult = &results[i]
			}
		}
	}
	return bestResult
}

// mismatch reports the first engine whose value differs from another's.
func mismatch(results []orchestration.CalculationResult) (string, bool) {
	var ref *orchestration.CalculationResult
	for i := range results {
		if !results[i].OK() {
			continue
		}
		if ref == nil {
			ref = &results[i]
			continue
		}
		if results[i].Result.Cmp(ref.Result) != 0 {
			return results[i].Name, true
		}
	}
	return "", false
}

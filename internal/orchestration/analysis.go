package orchestration

import (
	"errors"
	"fmt"
	"io"
	"sort"

	apperrors "github.com/agbru/factcalc/internal/errors"
)

// AnalyzeComparisonResults processes the results of several engines for one N
// and generates a summary report.
//
// It sorts the results by execution time, validates consistency across
// successful calculations, and displays a comparative table. It handles the
// logic for determining global success or failure based on the individual
// outcomes.
//
// Parameters:
//   - results: The slice of calculation results to analyze.
//   - opts: Presentation options for the final result.
//   - presenter: The result presenter for display formatting.
//   - errHandler: Maps a failure to an exit code.
//   - out: The io.Writer for the summary report.
//
// Returns:
//   - int: An exit code indicating success (0) or the type of failure.
func AnalyzeComparisonResults(results []CalculationResult, opts PresentationOptions, presenter ResultPresenter, errHandler ErrorHandler, out io.Writer) int {
	sort.SliceStable(results, func(i, j int) bool {
		if (results[i].Err == nil) != (results[j].Err == nil) {
			return results[i].Err == nil
		}
		return results[i].Duration < results[j].Duration
	})

	var firstValidResult *CalculationResult
	var firstError error
	successCount := 0

	for i := range results {
		if results[i].Err != nil {
			if firstError == nil {
				firstError = results[i].Err
			}
		} else {
			successCount++
			if firstValidResult == nil {
				firstValidResult = &results[i]
			}
		}
	}

	presenter.PresentComparisonTable(results, out)

	if successCount == 0 {
		fmt.Fprintf(out, "\nGlobal Status: Failure. No engine could complete the calculation.\n")
		return errHandler.HandleError(firstError, 0, out)
	}

	if name, ok := findMismatch(results); ok {
		fmt.Fprintf(out, "\nGlobal Status: CRITICAL ERROR! %s disagrees with %s.\n", name, firstValidResult.Name)
		return apperrors.ExitErrorMismatch
	}

	fmt.Fprintf(out, "\nGlobal Status: Success. All valid results are consistent.\n")
	presenter.PresentResult(*firstValidResult, opts, out)
	return apperrors.ExitSuccess
}

// AnalyzeSweep presents a sweep report and derives the exit code.
//
// Every size where two or more engines produced a value must agree; any
// disagreement yields ExitErrorMismatch. A sweep stopped by its context, or
// an engine retired after a failure, is reported through errHandler. Engines
// retired only because they exceeded the cutoff are not failures.
func AnalyzeSweep(report SweepReport, presenter ResultPresenter, errHandler ErrorHandler, out io.Writer) int {
	presenter.PresentSweep(report, out)

	for _, p := range report.Points {
		if name, ok := findMismatch(p.Results); ok {
			fmt.Fprintf(out, "\nGlobal Status: CRITICAL ERROR! %s disagrees at n=%d.\n", name, p.N)
			return apperrors.ExitErrorMismatch
		}
	}

	if report.Err != nil {
		fmt.Fprintf(out, "\nGlobal Status: Sweep interrupted after %d of its sizes.\n", len(report.Points))
		return errHandler.HandleError(report.Err, 0, out)
	}

	var failures []error
	for _, name := range report.Calculators {
		if r, ok := report.Retired[name]; ok && r.Err != nil {
			failures = append(failures, fmt.Errorf("%s at n=%d: %w", name, r.N, r.Err))
		}
	}
	if len(failures) > 0 {
		fmt.Fprintf(out, "\nGlobal Status: Failure. %d engine(s) failed during the sweep.\n", len(failures))
		return errHandler.HandleError(errors.Join(failures...), 0, out)
	}

	fmt.Fprintf(out, "\nGlobal Status: Success. All measured results are consistent.\n")
	return apperrors.ExitSuccess
}

// findMismatch returns the name of the first successful result whose value
// differs from the first successful result.
func findMismatch(results []CalculationResult) (string, bool) {
	var ref *CalculationResult
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

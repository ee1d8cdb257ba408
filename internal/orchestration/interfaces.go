package orchestration

import (
	"io"
	"math/big"
	"sync"
	"time"
)

// CalculationResult encapsulates the outcome of one timed factorial
// computation. It serves as the shared domain type between orchestration and
// presentation layers.
type CalculationResult struct {
	// Name is the engine's display name (e.g., "Parallel").
	Name string
	// N is the input of the computation.
	N int64
	// Workers is the worker count the engine used (1 for the serial engine).
	Workers int
	// Result is the computed N!. It is nil if an error occurred or the
	// computation was skipped.
	Result *big.Int
	// Duration is the fastest measured call.
	Duration time.Duration
	// Err contains any error that occurred during the calculation.
	Err error
	// Skipped is set when the engine had already been retired from a sweep
	// and was not run for this N.
	Skipped bool
}

// OK reports whether the result holds a value.
func (r CalculationResult) OK() bool { return !r.Skipped && r.Err == nil && r.Result != nil }

// PresentationOptions configures how results are presented to the user.
type PresentationOptions struct {
	N         int64
	Verbose   bool
	Details   bool
	ShowValue bool
}

// ProgressReporter defines the interface for displaying calculation progress.
// This interface decouples the orchestration layer from the presentation layer.
//
// Implementations handle the visual representation of progress (spinners,
// progress bars, etc.) while the orchestration layer focuses on coordinating
// the calculations.
type ProgressReporter interface {
	// DisplayProgress starts displaying progress updates from the channel.
	// It should be called in a separate goroutine and will run until the
	// progressChan is closed.
	//
	// Parameters:
	//   - wg: A WaitGroup to signal when display is complete.
	//   - progressChan: Channel receiving progress updates from the driver.
	//   - numCalculators: The number of calculators being tracked.
	//   - out: The writer for progress output.
	DisplayProgress(wg *sync.WaitGroup, progressChan <-chan ProgressUpdate, numCalculators int, out io.Writer)
}

// ProgressReporterFunc is a function adapter that implements ProgressReporter.
type ProgressReporterFunc func(wg *sync.WaitGroup, progressChan <-chan ProgressUpdate, numCalculators int, out io.Writer)

// DisplayProgress calls the underlying function.
func (f ProgressReporterFunc) DisplayProgress(wg *sync.WaitGroup, progressChan <-chan ProgressUpdate, numCalculators int, out io.Writer) {
	f(wg, progressChan, numCalculators, out)
}

// NullProgressReporter is a no-op implementation of ProgressReporter.
// It drains the progress channel without displaying anything.
type NullProgressReporter struct{}

// DisplayProgress drains the channel without output.
func (NullProgressReporter) DisplayProgress(wg *sync.WaitGroup, progressChan <-chan ProgressUpdate, _ int, _ io.Writer) {
	defer wg.Done()
	DrainChannel(progressChan)
}

// SweepObserver is notified after every completed sweep point.
type SweepObserver interface {
	// OnPoint receives the point just measured, how many points are done and
	// how many the sweep has in total.
	OnPoint(point SweepPoint, completed, total int)
}

// SweepObserverFunc adapts a function to SweepObserver.
type SweepObserverFunc func(point SweepPoint, completed, total int)

// OnPoint calls the underlying function.
func (f SweepObserverFunc) OnPoint(point SweepPoint, completed, total int) { f(point, completed, total) }

// NullSweepObserver ignores every point.
type NullSweepObserver struct{}

// OnPoint does nothing.
func (NullSweepObserver) OnPoint(SweepPoint, int, int) {}

// ResultPresenter defines the interface for presenting calculation results.
// It allows different output formats (CLI, JSON, etc.) without modifying
// the orchestration logic.
type ResultPresenter interface {
	// PresentComparisonTable displays the comparison summary table.
	PresentComparisonTable(results []CalculationResult, out io.Writer)

	// PresentResult displays the final calculation result.
	PresentResult(result CalculationResult, opts PresentationOptions, out io.Writer)

	// PresentSweep displays the timing table of a whole sweep.
	PresentSweep(report SweepReport, out io.Writer)
}

// DurationFormatter formats durations for display.
type DurationFormatter interface {
	FormatDuration(d time.Duration) string
}

// ErrorHandler handles calculation errors and returns exit codes.
type ErrorHandler interface {
	HandleError(err error, duration time.Duration, out io.Writer) int
}

// Recorder receives one observation per timed call. metrics.Metrics
// implements it.
type Recorder interface {
	ObserveComputation(algorithm string, workers int, d time.Duration, err error)
}

type nopRecorder struct{}

func (nopRecorder) ObserveComputation(string, int, time.Duration, error) {}

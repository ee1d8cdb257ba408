package orchestration

import (
	"context"
	"io"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/agbru/factcalc/internal/factorial"
	"github.com/agbru/factcalc/internal/logging"
	"github.com/agbru/factcalc/internal/memory"
)

const tracerName = "github.com/agbru/factcalc/internal/orchestration"

// ProgressBufferMultiplier defines the buffer size multiplier for the progress
// channel. A larger buffer reduces the likelihood of blocking the driver when
// the UI is slow to consume updates.
const ProgressBufferMultiplier = 5

// ExecutionOptions tunes how each calculator call is measured.
type ExecutionOptions struct {
	// Repeats is the number of timed calls per measurement; the fastest is
	// kept. Values below 1 mean 1.
	Repeats int
	// GCMode is passed to memory.NewGCController around every timed call.
	GCMode string
	// Recorder receives every timed call. Nil disables recording.
	Recorder Recorder
	// Logger receives debug output. Nil disables logging.
	Logger logging.Logger
	// Tracer creates the measurement spans. Nil uses the global provider.
	Tracer trace.Tracer
}

func (o ExecutionOptions) withDefaults() ExecutionOptions {
	if o.Repeats < 1 {
		o.Repeats = 1
	}
	if o.GCMode == "" {
		o.GCMode = string(memory.GCModeDisabled)
	}
	if o.Recorder == nil {
		o.Recorder = nopRecorder{}
	}
	if o.Logger == nil {
		o.Logger = logging.NewNopLogger()
	}
	if o.Tracer == nil {
		o.Tracer = otel.Tracer(tracerName)
	}
	return o
}

// ExecuteCalculations times every calculator on the same n.
//
// Calculators run one after another, never concurrently, so the parallel
// engine's workers do not compete with another engine for CPUs and each
// duration measures one engine alone. The context is checked between calls
// only: a call in progress always runs to completion.
//
// Parameters:
//   - ctx: The context for cancellation between calls and for tracing.
//   - calculators: The calculators to time.
//   - n: The factorial input.
//   - opts: Measurement options.
//   - progressReporter: The progress reporter (use NullProgressReporter for quiet mode).
//   - out: The io.Writer for displaying progress updates.
//
// Returns:
//   - []CalculationResult: One result per calculator, in input order.
func ExecuteCalculations(ctx context.Context, calculators []factorial.Calculator, n int64, opts ExecutionOptions, progressReporter ProgressReporter, out io.Writer) []CalculationResult {
	opts = opts.withDefaults()
	results := make([]CalculationResult, len(calculators))
	progressChan := make(chan ProgressUpdate, len(calculators)*ProgressBufferMultiplier)

	var displayWg sync.WaitGroup
	displayWg.Add(1)
	go progressReporter.DisplayProgress(&displayWg, progressChan, len(calculators), out)

	for i, calc := range calculators {
		if err := ctx.Err(); err != nil {
			results[i] = CalculationResult{Name: calc.Name(), N: n, Workers: factorial.WorkersOf(calc), Err: err}
			continue
		}
		results[i] = measure(ctx, calc, n, opts, 0)
		progressChan <- ProgressUpdate{CalculatorIndex: i, Value: 1}
	}

	close(progressChan)
	displayWg.Wait()

	return results
}

// measure times opts.Repeats calls of calc on n and keeps the fastest. It
// stops repeating after an error, after a call that exceeds budget (when
// budget is positive), or when ctx is done.
func measure(ctx context.Context, calc factorial.Calculator, n int64, opts ExecutionOptions, budget time.Duration) CalculationResult {
	res := CalculationResult{Name: calc.Name(), N: n, Workers: factorial.WorkersOf(calc)}

	ctx, span := opts.Tracer.Start(ctx, "orchestration.measure",
		trace.WithAttributes(
			attribute.String("algorithm", res.Name),
			attribute.Int64("n", n),
			attribute.Int("workers", res.Workers),
			attribute.Int("repeats", opts.Repeats),
		))
	defer span.End()

	for r := 0; r < opts.Repeats; r++ {
		if r > 0 && ctx.Err() != nil {
			break
		}
		gc := memory.NewGCController(opts.GCMode, n)
		gc.SetLogger(opts.Logger)

		gc.Begin()
		start := time.Now()
		value, err := calc.Calculate(ctx, n)
		elapsed := time.Since(start)
		gc.End()

		opts.Recorder.ObserveComputation(res.Name, res.Workers, elapsed, err)
		if err != nil {
			res.Result, res.Duration, res.Err = nil, elapsed, err
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			opts.Logger.Error("computation failed", err,
				logging.String("algorithm", res.Name), logging.Int64("n", n))
			return res
		}
		if r == 0 || elapsed < res.Duration {
			res.Duration = elapsed
		}
		res.Result = value
		if budget > 0 && elapsed > budget {
			break
		}
	}

	span.SetAttributes(attribute.Int64("duration_us", res.Duration.Microseconds()))
	opts.Logger.Debug("computation measured",
		logging.String("algorithm", res.Name),
		logging.Int64("n", n),
		logging.Int("workers", res.Workers),
		logging.Duration("duration", res.Duration))
	return res
}

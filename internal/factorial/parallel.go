package factorial

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"runtime"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	apperrors "github.com/agbru/factcalc/internal/errors"
	"github.com/agbru/factcalc/internal/logging"
)

const tracerName = "github.com/agbru/factcalc/internal/factorial"

var errNilProduct = errors.New("worker returned no product")

// DefaultWorkers returns the number of logical CPUs available to the process.
func DefaultWorkers() int {
	return runtime.NumCPU()
}

// ParallelEngine computes n! by splitting [1, n] into one block per worker,
// computing every block on a bounded goroutine pool and combining the partial
// products in block order. The worker count is fixed when the engine is built.
//
// A ParallelEngine holds no per-call state and is safe for concurrent use.
type ParallelEngine struct {
	workers int
	product ProductFunc
	logger  logging.Logger
	tracer  trace.Tracer
}

// Option configures a ParallelEngine during construction.
type Option func(*ParallelEngine)

// WithWorkers sets the worker count. Values below 1 select DefaultWorkers.
func WithWorkers(w int) Option {
	return func(e *ParallelEngine) { e.workers = w }
}

// WithProductFunc replaces the per-block worker function.
func WithProductFunc(fn ProductFunc) Option {
	return func(e *ParallelEngine) {
		if fn != nil {
			e.product = fn
		}
	}
}

// WithLogger sets the logger used for per-computation diagnostics.
func WithLogger(l logging.Logger) Option {
	return func(e *ParallelEngine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithTracer sets the OpenTelemetry tracer. The global tracer provider is
// used otherwise.
func WithTracer(t trace.Tracer) Option {
	return func(e *ParallelEngine) {
		if t != nil {
			e.tracer = t
		}
	}
}

// NewParallelEngine builds an engine. The host CPU count is queried here,
// once, unless WithWorkers supplies an explicit count.
func NewParallelEngine(opts ...Option) *ParallelEngine {
	e := &ParallelEngine{
		product: PartialProduct,
		logger:  logging.NewNopLogger(),
		tracer:  otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.workers < 1 {
		e.workers = DefaultWorkers()
	}
	return e
}

// Parallel computes n! with a ParallelEngine sized to the host.
func Parallel(ctx context.Context, n int64) (*big.Int, error) {
	return NewParallelEngine().Compute(ctx, n)
}

// Workers returns the worker count W used by every Compute call.
func (e *ParallelEngine) Workers() int { return e.workers }

// Name returns the display name of the engine.
func (e *ParallelEngine) Name() string { return ParallelName }

// Calculate implements Calculator.
func (e *ParallelEngine) Calculate(ctx context.Context, n int64) (*big.Int, error) {
	return e.Compute(ctx, n)
}

// Compute returns n!.
//
// Negative n fails with apperrors.ErrInvalidArgument before any work is
// dispatched; 0 and 1 return 1 without starting workers. Otherwise Compute
// blocks until every block has finished. If any worker fails, the result is
// discarded and an *apperrors.AggregateComputeError listing every failed block
// is returned.
//
// Workers are never interrupted: ctx only carries the tracing span.
func (e *ParallelEngine) Compute(ctx context.Context, n int64) (*big.Int, error) {
	if n < 0 {
		return nil, negativeInput(n)
	}
	if n <= 1 {
		return big.NewInt(1), nil
	}

	_, span := e.tracer.Start(ctx, "factorial.parallel", trace.WithAttributes(
		attribute.Int64("n", n),
		attribute.Int("workers", e.workers),
	))
	defer span.End()

	ranges := Split(n, e.workers)
	span.SetAttributes(attribute.Int("blocks", len(ranges)))

	partials, err := e.dispatch(ranges)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "worker failure")
		e.logger.Error("parallel factorial failed", err,
			logging.Int64("n", n), logging.Int("workers", e.workers))
		return nil, err
	}

	result := combine(partials)
	e.logger.Debug("parallel factorial computed",
		logging.Int64("n", n),
		logging.Int("workers", e.workers),
		logging.Int("bits", result.BitLen()))
	return result, nil
}

// dispatch runs one task per range on a pool bounded to e.workers and waits
// for all of them. Each task writes only its own slot, so the slices need no
// locking.
func (e *ParallelEngine) dispatch(ranges []Range) ([]*big.Int, error) {
	partials := make([]*big.Int, len(ranges))
	failures := make([]error, len(ranges))

	var g errgroup.Group
	g.SetLimit(e.workers)
	for i, r := range ranges {
		g.Go(func() error {
			partials[i], failures[i] = e.runWorker(r)
			return nil
		})
	}
	_ = g.Wait()

	var blockErrs []apperrors.BlockError
	for i, err := range failures {
		if err != nil {
			blockErrs = append(blockErrs, apperrors.BlockError{
				Index: i, Low: ranges[i].Low, High: ranges[i].High, Cause: err,
			})
		}
	}
	if len(blockErrs) > 0 {
		return nil, &apperrors.AggregateComputeError{Failures: blockErrs}
	}
	return partials, nil
}

// runWorker invokes the product function, turning a panic into an error.
func (e *ParallelEngine) runWorker(r Range) (p *big.Int, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			p, err = nil, fmt.Errorf("worker panic: %v", rec)
		}
	}()
	p = e.product(r)
	if p == nil {
		return nil, errNilProduct
	}
	return p, nil
}

// combine multiplies the partial products in slice order into a fresh
// accumulator starting at 1.
func combine(partials []*big.Int) *big.Int {
	acc := big.NewInt(1)
	for _, p := range partials {
		acc.Mul(acc, p)
	}
	return acc
}

// Package calibration measures the parallel engine at several worker counts
// and records the fastest one for this machine.
package calibration

import (
	"context"
	"fmt"
	"io"
	"math/big"
	"time"

	"github.com/agbru/factcalc/internal/factorial"
	"github.com/agbru/factcalc/internal/logging"
	"github.com/agbru/factcalc/internal/sysmon"
)

// DefaultCalibrationN is the factorial size timed when none is configured.
const DefaultCalibrationN int64 = 100_000

// Options configures a calibration run.
type Options struct {
	// N is the factorial size timed at each worker count.
	N int64
	// Workers lists the worker counts to try. When empty, Quick selects
	// GenerateQuickWorkerCounts and otherwise GenerateWorkerCounts is used.
	Workers []int
	Quick   bool
	// Repeats is the number of timed calls per worker count; the best is kept.
	Repeats int
	// Backend names the block product function (see factorial.Backend).
	Backend string
	// ProfilePath, when set, receives the resulting profile.
	ProfilePath string
	// Logger receives per-step debug output.
	Logger logging.Logger
}

func (o Options) withDefaults() Options {
	if o.N <= 0 {
		o.N = DefaultCalibrationN
	}
	if len(o.Workers) == 0 {
		if o.Quick {
			o.Workers = GenerateQuickWorkerCounts()
		} else {
			o.Workers = GenerateWorkerCounts()
		}
	}
	if o.Repeats < 1 {
		o.Repeats = 1
	}
	if o.Backend == "" {
		o.Backend = factorial.DefaultBackend
	}
	if o.Logger == nil {
		o.Logger = logging.NewNopLogger()
	}
	return o
}

// calibrationResult is the best timing observed for one worker count.
type calibrationResult struct {
	Workers  int
	Duration time.Duration
	Err      error
}

// Result is the outcome of Run.
type Result struct {
	N           int64
	BestWorkers int
	BestTime    time.Duration
	Elapsed     time.Duration
	Profile     *CalibrationProfile
	results     []calibrationResult
}

// Run times the parallel engine at each configured worker count, prints a
// summary table to out and returns the fastest count. ctx is checked between
// timed calls. A result that differs from the first worker count's result is
// reported as an error for that count.
func Run(ctx context.Context, opts Options, out io.Writer) (Result, error) {
	opts = opts.withDefaults()
	product, err := factorial.Backend(opts.Backend)
	if err != nil {
		return Result{}, err
	}

	fmt.Fprintf(out, "--- Calibrating the parallel engine at n=%d (%s backend) ---\n", opts.N, opts.Backend)
	started := time.Now()

	var reference *big.Int
	results := make([]calibrationResult, 0, len(opts.Workers))
	for _, w := range opts.Workers {
		engine := factorial.NewParallelEngine(
			factorial.WithWorkers(w),
			factorial.WithProductFunc(product),
		)
		res := calibrationResult{Workers: w}
		for range opts.Repeats {
			if err := ctx.Err(); err != nil {
				return Result{}, err
			}
			t0 := time.Now()
			v, err := engine.Compute(ctx, opts.N)
			d := time.Since(t0)
			if err != nil {
				res.Err = err
				break
			}
			if reference == nil {
				reference = v
			} else if v.Cmp(reference) != 0 {
				res.Err = fmt.Errorf("result with %d workers differs from the reference", w)
				break
			}
			if res.Duration == 0 || d < res.Duration {
				res.Duration = d
			}
		}
		opts.Logger.Debug("calibration step",
			logging.Int("workers", w),
			logging.Duration("duration", res.Duration),
			logging.Err(res.Err))
		results = append(results, res)
	}

	result := Result{N: opts.N, Elapsed: time.Since(started), results: results}
	best, ok := fastest(results)
	if !ok {
		return result, fmt.Errorf("calibration failed at every worker count")
	}
	result.BestWorkers, result.BestTime = best.Workers, best.Duration

	printCalibrationResults(out, results, best.Workers)

	profile := NewProfile()
	profile.CPUModel = sysmon.Host(ctx).ModelName
	profile.OptimalWorkers = best.Workers
	profile.Backend = opts.Backend
	profile.CalibrationN = opts.N
	profile.CalibrationTime = result.Elapsed.Round(time.Millisecond).String()
	result.Profile = profile

	if opts.ProfilePath != "" {
		if err := profile.SaveProfile(opts.ProfilePath); err != nil {
			opts.Logger.Warn("calibration profile not saved", logging.Err(err))
		} else {
			opts.Logger.Info("calibration profile saved", logging.String("path", opts.ProfilePath))
		}
	}
	printCalibrationOutput(result, out)
	return result, nil
}

// fastest returns the successful result with the lowest duration, preferring
// fewer workers on ties.
func fastest(results []calibrationResult) (calibrationResult, bool) {
	var best calibrationResult
	found := false
	for _, r := range results {
		if r.Err != nil {
			continue
		}
		if !found || r.Duration < best.Duration {
			best, found = r, true
		}
	}
	return best, found
}

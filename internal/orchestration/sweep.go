package orchestration

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/agbru/factcalc/internal/factorial"
	"github.com/agbru/factcalc/internal/logging"
)

// SweepPlan describes a benchmark sweep.
type SweepPlan struct {
	// Name labels the report.
	Name string
	// Sizes are the N values, measured in the given order. Callers pass them
	// ascending so that a retired engine would only have taken longer.
	Sizes []int64
	// Cutoff retires an engine once one of its calls takes longer.
	Cutoff time.Duration
	// Exec tunes each measurement.
	Exec ExecutionOptions
}

// SweepPoint holds every engine's measurement for one N, in calculator order.
type SweepPoint struct {
	N       int64
	Results []CalculationResult
}

// Retirement records why and where an engine stopped being measured.
type Retirement struct {
	// N is the last size the engine ran.
	N int64
	// Duration is how long that call took.
	Duration time.Duration
	// Err is set when the engine was retired because it failed.
	Err error
}

// SweepReport is the outcome of RunSweep.
type SweepReport struct {
	Name string
	// Calculators lists the engine names in column order.
	Calculators []string
	// Workers lists each engine's worker count.
	Workers []int
	Cutoff  time.Duration
	Points  []SweepPoint
	// Retired maps engine names to their retirement, if any.
	Retired map[string]Retirement
	// Err is the context error when the sweep stopped early.
	Err error
}

// Speedup is the serial/parallel time ratio at one N.
type Speedup struct {
	N     int64
	Ratio float64
}

// RunSweep measures every calculator at every size in plan.Sizes.
//
// For each size, each calculator that is still active is timed with one full
// Calculate call (best of plan.Exec.Repeats). A calculator whose call exceeds
// plan.Cutoff, or fails, is retired: it keeps its measurement for that size
// and is reported as skipped for every later size. A call in progress is
// never interrupted; ctx is checked between calls and stops the sweep when
// done.
//
// The observer is notified after each size completes.
func RunSweep(ctx context.Context, calculators []factorial.Calculator, plan SweepPlan, observer SweepObserver) SweepReport {
	exec := plan.Exec.withDefaults()
	if observer == nil {
		observer = NullSweepObserver{}
	}

	report := SweepReport{
		Name:        plan.Name,
		Calculators: make([]string, len(calculators)),
		Workers:     make([]int, len(calculators)),
		Cutoff:      plan.Cutoff,
		Retired:     make(map[string]Retirement),
	}
	for i, c := range calculators {
		report.Calculators[i] = c.Name()
		report.Workers[i] = factorial.WorkersOf(c)
	}

	ctx, span := exec.Tracer.Start(ctx, "orchestration.sweep",
		trace.WithAttributes(
			attribute.String("sweep", plan.Name),
			attribute.Int("sizes", len(plan.Sizes)),
			attribute.Int("calculators", len(calculators)),
			attribute.Int64("cutoff_ms", plan.Cutoff.Milliseconds()),
		))
	defer span.End()

	active := make([]bool, len(calculators))
	for i := range active {
		active[i] = true
	}

	for pi, n := range plan.Sizes {
		if err := ctx.Err(); err != nil {
			report.Err = err
			break
		}

		point := runPoint(ctx, calculators, n, plan.Cutoff, exec, active, &report)
		report.Points = append(report.Points, point)
		observer.OnPoint(point, pi+1, len(plan.Sizes))

		if report.Err != nil {
			break
		}
	}

	span.SetAttributes(attribute.Int("points", len(report.Points)))
	return report
}

// runPoint measures one size inside its own span.
func runPoint(ctx context.Context, calculators []factorial.Calculator, n int64, cutoff time.Duration, exec ExecutionOptions, active []bool, report *SweepReport) SweepPoint {
	ctx, span := exec.Tracer.Start(ctx, "orchestration.point", trace.WithAttributes(attribute.Int64("n", n)))
	defer span.End()

	point := SweepPoint{N: n, Results: make([]CalculationResult, len(calculators))}
	for i, calc := range calculators {
		if !active[i] {
			point.Results[i] = CalculationResult{Name: calc.Name(), N: n, Workers: report.Workers[i], Skipped: true}
			continue
		}
		if err := ctx.Err(); err != nil {
			point.Results[i] = CalculationResult{Name: calc.Name(), N: n, Workers: report.Workers[i], Skipped: true}
			report.Err = err
			continue
		}

		res := measure(ctx, calc, n, exec, cutoff)
		point.Results[i] = res

		switch {
		case res.Err != nil:
			active[i] = false
			report.Retired[res.Name] = Retirement{N: n, Duration: res.Duration, Err: res.Err}
			exec.Logger.Warn("engine retired after failure",
				logging.String("algorithm", res.Name), logging.Int64("n", n), logging.Err(res.Err))
		case cutoff > 0 && res.Duration > cutoff:
			active[i] = false
			report.Retired[res.Name] = Retirement{N: n, Duration: res.Duration}
			exec.Logger.Info("engine exceeded cutoff",
				logging.String("algorithm", res.Name),
				logging.Int64("n", n),
				logging.Duration("duration", res.Duration),
				logging.Duration("cutoff", cutoff))
		}
	}
	return point
}

// Speedups returns the baseline/candidate duration ratio for every point
// where both engines produced a value. Engines are matched by name.
func (r SweepReport) Speedups(baseline, candidate string) []Speedup {
	bi, ci := r.index(baseline), r.index(candidate)
	if bi < 0 || ci < 0 {
		return nil
	}
	var out []Speedup
	for _, p := range r.Points {
		b, c := p.Results[bi], p.Results[ci]
		if !b.OK() || !c.OK() || c.Duration <= 0 {
			continue
		}
		out = append(out, Speedup{N: p.N, Ratio: float64(b.Duration) / float64(c.Duration)})
	}
	return out
}

// ParallelSpeedups is Speedups of the parallel engine against the serial one.
func (r SweepReport) ParallelSpeedups() []Speedup {
	return r.Speedups(factorial.SerialName, factorial.ParallelName)
}

// Completed reports whether the sweep reached its last size without being
// stopped by its context.
func (r SweepReport) Completed() bool { return r.Err == nil }

func (r SweepReport) index(name string) int {
	for i, n := range r.Calculators {
		if n == name {
			return i
		}
	}
	return -1
}

package factorial

import (
	"context"
	"math/big"
	"sort"

	apperrors "github.com/agbru/factcalc/internal/errors"
)

// Display names and registry keys of the built-in engines.
const (
	SerialName   = "Serial"
	ParallelName = "Parallel"

	SerialKey   = "serial"
	ParallelKey = "parallel"
)

// Calculator is the black-box interface the benchmark driver times. It
// performs no timing of its own.
type Calculator interface {
	// Name returns a human-readable engine name.
	Name() string
	// Calculate returns n!.
	Calculate(ctx context.Context, n int64) (*big.Int, error)
}

// WorkerReporter is implemented by calculators that run on a worker pool,
// so callers can report the worker count actually used.
type WorkerReporter interface {
	Workers() int
}

// WorkersOf returns the worker count of c, or 1 for calculators that do not
// report one.
func WorkersOf(c Calculator) int {
	if wr, ok := c.(WorkerReporter); ok {
		return wr.Workers()
	}
	return 1
}

// CalculatorFactory looks up calculators by registry key.
type CalculatorFactory interface {
	Get(name string) (Calculator, error)
	List() []string
	GetAll() map[string]Calculator
}

// DefaultFactory is a map-backed CalculatorFactory.
type DefaultFactory struct {
	calculators map[string]Calculator
}

// NewDefaultFactory registers the serial engine and a parallel engine built
// with opts.
func NewDefaultFactory(opts ...Option) *DefaultFactory {
	f := &DefaultFactory{calculators: make(map[string]Calculator)}
	f.Register(SerialKey, SerialEngine{})
	f.Register(ParallelKey, NewParallelEngine(opts...))
	return f
}

// Register adds or replaces the calculator stored under name.
func (f *DefaultFactory) Register(name string, c Calculator) {
	f.calculators[name] = c
}

// Get returns the calculator registered under name.
func (f *DefaultFactory) Get(name string) (Calculator, error) {
	c, ok := f.calculators[name]
	if !ok {
		return nil, apperrors.NewConfigError("unknown algorithm %q (available: %v)", name, f.List())
	}
	return c, nil
}

// List returns the registered keys in sorted order.
func (f *DefaultFactory) List() []string {
	keys := make([]string, 0, len(f.calculators))
	for k := range f.calculators {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// GetAll returns a copy of the registry.
func (f *DefaultFactory) GetAll() map[string]Calculator {
	all := make(map[string]Calculator, len(f.calculators))
	for k, v := range f.calculators {
		all[k] = v
	}
	return all
}

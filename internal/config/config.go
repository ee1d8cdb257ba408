// Package config parses the command line, environment overrides and sweep plan
// files into an AppConfig.
package config

import (
	"flag"
	"fmt"
	"io"
	"math"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/agbru/factcalc/internal/errors"
)

// EnvPrefix is prepended to every environment variable the tool reads.
const EnvPrefix = "FACTCALC_"

// Default values for the benchmark driver.
const (
	DefaultAlgo      = "all"
	DefaultCutoff    = 10 * time.Second
	DefaultTimeout   = 10 * time.Minute
	DefaultRepeats   = 1
	DefaultGCMode    = "disabled"
	DefaultLogLevel  = "warn"
	DefaultServeMaxN = 1_000_000
	MaxWorkersPerCPU = 64
)

// DefaultSizes is the sweep used when neither -n nor an explicit sweep is
// given.
var DefaultSizes = []int64{1_000, 2_000, 5_000, 10_000, 20_000, 50_000, 100_000, 200_000, 500_000, 1_000_000}

// AppConfig aggregates the application's configuration parameters.
type AppConfig struct {
	// N is the input of a single computation. Only meaningful when Single is set.
	N int64
	// Single is true when -n (or FACTCALC_N) selected one computation instead of a sweep.
	Single bool
	// Sizes is the ascending, de-duplicated list of N values for a sweep.
	Sizes []int64
	// Start, Stop, Step and Growth generate Sizes when no explicit list is given.
	Start, Stop, Step int64
	Growth            float64
	// Algo selects "serial", "parallel" or "all".
	Algo string
	// Workers is the parallel engine's worker count (0 = host CPUs).
	Workers int
	// Backend names the partial product implementation.
	Backend string
	// Cutoff retires an engine from a sweep once one call takes longer.
	Cutoff time.Duration
	// Timeout bounds the whole run.
	Timeout time.Duration
	// Repeats is the number of timed calls per sweep point; the fastest is kept.
	Repeats int
	// SweepFile is an optional YAML or JSON sweep plan.
	SweepFile string
	// SweepName labels reports generated from a sweep plan.
	SweepName string

	Quiet      bool
	Verbose    bool
	Details    bool
	ShowValue  bool
	OutputFile string
	ReportFile string
	TUI        bool
	Serve      string
	ServeMaxN  int64
	Calibrate  bool
	QuickCal   bool
	GCMode     string
	LogLevel   string
	NoColor    bool

	// MetricsAddr exposes /metrics while a CLI run executes.
	MetricsAddr string
	Version     bool
}

// ParseConfig parses command-line arguments, applies FACTCALC_ environment
// overrides and an optional sweep plan file, then validates the result.
//
// Priority: CLI flags > environment variables > sweep file > defaults.
//
// Parameters:
//   - programName: The name used in usage output.
//   - args: The arguments, without the program name.
//   - errWriter: Where usage and parse errors are written.
//   - availableAlgos: The registered calculator keys.
//
// Returns:
//   - AppConfig: The validated configuration.
//   - error: flag.ErrHelp for --help, a ConfigError or ValidationError otherwise.
func ParseConfig(programName string, args []string, errWriter io.Writer, availableAlgos []string) (AppConfig, error) {
	fs := flag.NewFlagSet(programName, flag.ContinueOnError)
	fs.SetOutput(errWriter)

	cfg := AppConfig{}
	var sizes string

	fs.Int64Var(&cfg.N, "n", 0, "Compute a single factorial N! instead of running a sweep.")
	fs.StringVar(&sizes, "sizes", "", "Comma-separated list of N values to sweep (e.g. 1000,10000,100000).")
	fs.Int64Var(&cfg.Start, "start", 0, "First N of a generated sweep.")
	fs.Int64Var(&cfg.Stop, "stop", 0, "Last N of a generated sweep (inclusive).")
	fs.Int64Var(&cfg.Step, "step", 0, "Arithmetic increment of a generated sweep.")
	fs.Float64Var(&cfg.Growth, "growth", 0, "Geometric growth factor of a generated sweep (> 1, overrides --step).")
	fs.StringVar(&cfg.Algo, "algo", DefaultAlgo, fmt.Sprintf("Engine to run: 'all' or one of %v.", availableAlgos))
	fs.IntVar(&cfg.Workers, "workers", 0, "Parallel worker count (0 = number of logical CPUs).")
	fs.StringVar(&cfg.Backend, "backend", "big", "Partial product backend (big, or gmp when built with -tags gmp).")
	fs.DurationVar(&cfg.Cutoff, "cutoff", DefaultCutoff, "Retire an engine from the sweep once a single call exceeds this duration.")
	fs.DurationVar(&cfg.Timeout, "timeout", DefaultTimeout, "Maximum duration of the whole run.")
	fs.IntVar(&cfg.Repeats, "repeats", DefaultRepeats, "Timed calls per sweep point; the fastest is reported.")
	fs.StringVar(&cfg.SweepFile, "sweep-file", "", "YAML or JSON sweep plan.")
	fs.BoolVar(&cfg.Quiet, "quiet", false, "Minimal output: only results.")
	fs.BoolVar(&cfg.Quiet, "q", false, "Shorthand for --quiet.")
	fs.BoolVar(&cfg.Verbose, "verbose", false, "Print full values instead of truncating them.")
	fs.BoolVar(&cfg.Verbose, "v", false, "Shorthand for --verbose.")
	fs.BoolVar(&cfg.Details, "details", false, "Print bit length and digit count of results.")
	fs.BoolVar(&cfg.Details, "d", false, "Shorthand for --details.")
	fs.BoolVar(&cfg.ShowValue, "calculate", false, "Print the computed value.")
	fs.BoolVar(&cfg.ShowValue, "c", false, "Shorthand for --calculate.")
	fs.StringVar(&cfg.OutputFile, "output", "", "Write the computed value to this file.")
	fs.StringVar(&cfg.OutputFile, "o", "", "Shorthand for --output.")
	fs.StringVar(&cfg.ReportFile, "report", "", "Write the sweep measurements as CSV to this file.")
	fs.BoolVar(&cfg.TUI, "tui", false, "Run the sweep in the interactive dashboard.")
	fs.StringVar(&cfg.Serve, "serve", "", "Serve the HTTP API on this address (e.g. :8080).")
	fs.Int64Var(&cfg.ServeMaxN, "serve-max-n", DefaultServeMaxN, "Largest N accepted by the HTTP API.")
	fs.StringVar(&cfg.MetricsAddr, "metrics-addr", "", "Expose Prometheus metrics on this address during a run (e.g. :9090).")
	fs.BoolVar(&cfg.Calibrate, "calibrate", false, "Measure the parallel engine across worker counts and exit.")
	fs.BoolVar(&cfg.QuickCal, "calibrate-quick", false, "Like --calibrate, trying only 1, NumCPU/2 and NumCPU workers.")
	fs.StringVar(&cfg.GCMode, "gc-control", DefaultGCMode, "Garbage collector control around timed calls: auto, aggressive, disabled.")
	fs.StringVar(&cfg.LogLevel, "log-level", DefaultLogLevel, "Log level: debug, info, warn, error.")
	fs.BoolVar(&cfg.NoColor, "no-color", false, "Disable colored output (NO_COLOR is honored too).")
	fs.BoolVar(&cfg.Version, "version", false, "Print version information and exit.")

	fs.Usage = func() {
		fmt.Fprintf(errWriter, "Usage: %s [options]\n\n", programName)
		fmt.Fprintf(errWriter, "Computes N! with a serial and a parallel engine and compares their speed.\n\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return AppConfig{}, err
	}
	if fs.NArg() > 0 {
		return AppConfig{}, apperrors.NewConfigError("unexpected arguments: %v", fs.Args())
	}

	cfg.Single = isFlagSet(fs, "n")
	if sizes != "" {
		parsed, err := ParseSizes(sizes)
		if err != nil {
			return AppConfig{}, err
		}
		cfg.Sizes = parsed
	}

	applyEnvOverrides(&cfg, fs)

	if cfg.SweepFile != "" {
		plan, err := LoadSweepFile(cfg.SweepFile)
		if err != nil {
			return AppConfig{}, apperrors.NewConfigError("%v", err)
		}
		if err := plan.applyTo(&cfg, fs); err != nil {
			return AppConfig{}, err
		}
	}

	if len(cfg.Sizes) == 0 {
		cfg.Sizes = GenerateSizes(cfg.Start, cfg.Stop, cfg.Step, cfg.Growth)
	}
	if len(cfg.Sizes) == 0 {
		cfg.Sizes = append([]int64(nil), DefaultSizes...)
	}
	cfg.Sizes = normalizeSizes(cfg.Sizes)

	if err := cfg.Validate(availableAlgos); err != nil {
		fmt.Fprintln(errWriter, "Error:", err)
		return AppConfig{}, err
	}
	return cfg, nil
}

// MaxWorkers is the largest worker count accepted: MaxWorkersPerCPU per
// logical CPU.
func MaxWorkers() int { return MaxWorkersPerCPU * runtime.NumCPU() }

// Validate checks the semantic consistency of the configuration.
func (c AppConfig) Validate(availableAlgos []string) error {
	if c.Single && c.N < 0 {
		return apperrors.NewInvalidArgument("n", "factorial is undefined for negative n (got %d)", c.N)
	}
	for _, n := range c.Sizes {
		if n < 0 {
			return apperrors.NewInvalidArgument("sizes", "sweep contains negative n (%d)", n)
		}
	}
	if c.Workers < 0 {
		return apperrors.NewConfigError("--workers must be >= 0 (got %d)", c.Workers)
	}
	if limit := MaxWorkers(); c.Workers > limit {
		return apperrors.NewConfigError("--workers must be <= %d on this host (got %d)", limit, c.Workers)
	}
	if c.Cutoff <= 0 {
		return apperrors.NewConfigError("--cutoff must be positive (got %s)", c.Cutoff)
	}
	if c.Timeout <= 0 {
		return apperrors.NewConfigError("--timeout must be positive (got %s)", c.Timeout)
	}
	if c.Repeats < 1 {
		return apperrors.NewConfigError("--repeats must be >= 1 (got %d)", c.Repeats)
	}
	if c.ServeMaxN < 1 {
		return apperrors.NewConfigError("--serve-max-n must be >= 1 (got %d)", c.ServeMaxN)
	}
	switch c.GCMode {
	case "auto", "aggressive", "disabled":
	default:
		return apperrors.NewConfigError("unknown --gc-control mode %q", c.GCMode)
	}
	if c.Algo == "all" {
		return nil
	}
	for _, a := range availableAlgos {
		if a == c.Algo {
			return nil
		}
	}
	return apperrors.NewConfigError("unknown algorithm %q (available: all, %s)", c.Algo, strings.Join(availableAlgos, ", "))
}

// ParseSizes parses a comma-separated list of integers. Underscores are
// accepted as digit separators.
func ParseSizes(s string) ([]int64, error) {
	var sizes []int64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(strings.ReplaceAll(part, "_", ""))
		if part == "" {
			continue
		}
		n, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, apperrors.NewConfigError("invalid size %q in --sizes", part)
		}
		sizes = append(sizes, n)
	}
	return sizes, nil
}

// GenerateSizes builds a sweep from start to stop inclusive. A growth factor
// above 1 yields a geometric progression; otherwise step is added each time.
// It returns nil when the parameters do not describe a sweep.
func GenerateSizes(start, stop, step int64, growth float64) []int64 {
	if stop <= 0 || start > stop {
		return nil
	}
	if start < 1 {
		start = 1
	}
	var sizes []int64
	switch {
	case growth > 1:
		for n := start; ; {
			sizes = append(sizes, n)
			scaled := float64(n) * growth
			if scaled > float64(stop) || scaled >= math.MaxInt64 {
				break
			}
			next := int64(scaled)
			if next <= n {
				next = n + 1
			}
			if next > stop {
				break
			}
			n = next
		}
	case step > 0:
		for n := start; ; n += step {
			sizes = append(sizes, n)
			// Stop before n+step can pass stop or overflow.
			if n > stop-step {
				break
			}
		}
	default:
		return nil
	}
	return sizes
}

// normalizeSizes sorts ascending and removes duplicates.
func normalizeSizes(sizes []int64) []int64 {
	out := append([]int64(nil), sizes...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	j := 0
	for i, n := range out {
		if i == 0 || n != out[j-1] {
			out[j] = n
			j++
		}
	}
	return out[:j]
}

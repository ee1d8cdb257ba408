package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/agbru/factcalc/internal/calibration"
	"github.com/agbru/factcalc/internal/config"
	apperrors "github.com/agbru/factcalc/internal/errors"
	"github.com/agbru/factcalc/internal/factorial"
	"github.com/agbru/factcalc/internal/logging"
	"github.com/agbru/factcalc/internal/metrics"
	"github.com/agbru/factcalc/internal/orchestration"
	"github.com/agbru/factcalc/internal/server"
	"github.com/agbru/factcalc/internal/tui"
	"github.com/agbru/factcalc/internal/ui"
)

// Application represents the factcalc application instance.
type Application struct {
	Config    config.AppConfig
	Factory   factorial.CalculatorFactory
	Logger    logging.Logger
	Metrics   *metrics.Metrics
	ErrWriter io.Writer

	// profilePath is where calibration profiles are read and written.
	profilePath string
}

// AppOption configures an Application during construction.
type AppOption func(*Application)

// WithFactory sets a custom CalculatorFactory for the application. The
// --workers and --backend flags are then left to the caller.
func WithFactory(f factorial.CalculatorFactory) AppOption {
	return func(a *Application) { a.Factory = f }
}

// WithLogger sets the logger instead of the console logger on errWriter.
func WithLogger(l logging.Logger) AppOption {
	return func(a *Application) { a.Logger = l }
}

// WithProfilePath overrides the calibration profile location.
func WithProfilePath(path string) AppOption {
	return func(a *Application) { a.profilePath = path }
}

// New creates a new Application instance by parsing command-line arguments.
//
// Parameters:
//   - args: The full argument vector, program name first.
//   - errWriter: Where usage, parse errors and logs are written.
//   - opts: Optional overrides.
//
// Returns:
//   - *Application: The configured application.
//   - error: flag.ErrHelp for --help, or a configuration error.
func New(args []string, errWriter io.Writer, opts ...AppOption) (*Application, error) {
	app := &Application{ErrWriter: errWriter}
	for _, opt := range opts {
		opt(app)
	}
	if app.profilePath == "" {
		app.profilePath = calibration.GetDefaultProfilePath()
	}

	availableAlgos := factorial.NewDefaultFactory(factorial.WithWorkers(1)).List()
	if app.Factory != nil {
		availableAlgos = app.Factory.List()
	}

	programName := "factcalc"
	var cmdArgs []string
	if len(args) > 0 {
		programName = args[0]
		cmdArgs = args[1:]
	}

	cfg, err := config.ParseConfig(programName, cmdArgs, errWriter, availableAlgos)
	if err != nil {
		return nil, err
	}
	app.Config = cfg

	if app.Logger == nil {
		app.Logger = newConsoleLogger(errWriter, cfg)
	}
	app.Metrics = metrics.NewMetrics()

	if app.Factory == nil {
		factory, err := app.buildFactory()
		if err != nil {
			fmt.Fprintln(errWriter, "Error:", err)
			return nil, err
		}
		app.Factory = factory
	}
	return app, nil
}

// newConsoleLogger returns a human-readable zerolog logger at the configured level.
func newConsoleLogger(w io.Writer, cfg config.AppConfig) logging.Logger {
	out := zerolog.ConsoleWriter{Out: w, NoColor: cfg.NoColor, TimeFormat: time.Kitchen}
	l := zerolog.New(out).
		Level(logging.ParseLevel(cfg.LogLevel)).
		With().Timestamp().Str("component", "factcalc").
		Logger()
	return logging.NewZerologAdapter(l)
}

// buildFactory registers the serial engine and a parallel engine configured
// from --workers and --backend. Without --workers, the worker count of a
// fresh calibration profile is used, then the host CPU count.
func (a *Application) buildFactory() (*factorial.DefaultFactory, error) {
	product, err := factorial.Backend(a.Config.Backend)
	if err != nil {
		return nil, err
	}

	workers := a.Config.Workers
	if workers == 0 {
		if cached, ok := calibration.LoadCachedWorkers(a.profilePath, a.Config.Backend, calibration.DefaultProfileMaxAge); ok {
			a.Logger.Debug("using calibrated worker count",
				logging.Int("workers", cached),
				logging.String("profile", a.profilePath))
			workers = cached
		}
	}

	return factorial.NewDefaultFactory(
		factorial.WithWorkers(workers),
		factorial.WithProductFunc(product),
		factorial.WithLogger(a.Logger),
	), nil
}

// Run executes the application based on the configured mode.
func (a *Application) Run(ctx context.Context, out io.Writer) int {
	if a.Config.Version {
		PrintVersion(out)
		return apperrors.ExitSuccess
	}

	zerolog.SetGlobalLevel(logging.ParseLevel(a.Config.LogLevel))
	ui.InitTheme(a.Config.NoColor)

	switch {
	case a.Config.Calibrate || a.Config.QuickCal:
		return a.runCalibration(ctx, out)
	case a.Config.Serve != "":
		return a.runServer(ctx, out)
	case a.Config.TUI:
		return a.runTUI(ctx, out)
	case a.Config.Single:
		return a.runCalculate(ctx, out)
	default:
		return a.runSweep(ctx, out)
	}
}

// runCalibration runs the full calibration mode and stores the profile.
func (a *Application) runCalibration(ctx context.Context, out io.Writer) int {
	ctx, stopSignals := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	_, err := calibration.Run(ctx, calibration.Options{
		Quick:       a.Config.QuickCal,
		Repeats:     a.Config.Repeats,
		Backend:     a.Config.Backend,
		ProfilePath: a.profilePath,
		Logger:      a.Logger,
	}, out)
	return apperrors.HandleCalculationError(err, 0, out, ui.CLIColorProvider{})
}

// runServer serves the HTTP API until interrupted.
func (a *Application) runServer(ctx context.Context, out io.Writer) int {
	ctx, stopSignals := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	security := server.DefaultSecurityConfig()
	security.MaxNValue = a.Config.ServeMaxN

	srv := server.New(a.Config.Serve, a.Factory,
		server.WithLogger(a.Logger),
		server.WithMetrics(a.Metrics),
		server.WithSecurity(security),
		server.WithRequestTimeout(a.Config.Timeout),
	)

	fmt.Fprintf(out, "Serving on %s%s%s (GET /factorial?n=, /health, /metrics). Press Ctrl+C to stop.\n",
		ui.ColorPrimary(), a.Config.Serve, ui.ColorReset())
	if err := srv.Start(ctx); err != nil {
		a.Logger.Error("HTTP server failed", err, logging.String("addr", a.Config.Serve))
		return apperrors.ExitErrorGeneric
	}
	return apperrors.ExitSuccess
}

// runTUI launches the interactive sweep dashboard.
func (a *Application) runTUI(ctx context.Context, _ io.Writer) int {
	ctx, cancelTimeout := context.WithTimeout(ctx, a.Config.Timeout)
	defer cancelTimeout()
	ctx, stopSignals := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	calculatorsToRun := orchestration.GetCalculatorsToRun(a.Config.Algo, a.Factory)
	return tui.Run(ctx, calculatorsToRun, a.sweepPlan(), tui.Options{
		Version: Version,
		Backend: a.Config.Backend,
	})
}

// executionOptions maps the configuration to per-call measurement options.
func (a *Application) executionOptions() orchestration.ExecutionOptions {
	return orchestration.ExecutionOptions{
		Repeats:  a.Config.Repeats,
		GCMode:   a.Config.GCMode,
		Recorder: a.Metrics,
		Logger:   a.Logger,
	}
}

// sweepPlan builds the sweep described by the configuration.
func (a *Application) sweepPlan() orchestration.SweepPlan {
	name := a.Config.SweepName
	if name == "" {
		name = "sweep"
	}
	sizes := a.Config.Sizes
	if a.Config.Single {
		sizes = []int64{a.Config.N}
	}
	return orchestration.SweepPlan{
		Name:   name,
		Sizes:  sizes,
		Cutoff: a.Config.Cutoff,
		Exec:   a.executionOptions(),
	}
}

// parallelWorkers returns the worker count of the registered parallel
// engine, or 1 when there is none.
func (a *Application) parallelWorkers() int {
	if c, err := a.Factory.Get(factorial.ParallelKey); err == nil {
		return factorial.WorkersOf(c)
	}
	return 1
}

// IsHelpError checks if the error is a help flag error (--help was used).
func IsHelpError(err error) bool {
	return errors.Is(err, flag.ErrHelp)
}

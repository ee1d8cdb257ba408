package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/agbru/factcalc/internal/cli"
	apperrors "github.com/agbru/factcalc/internal/errors"
	"github.com/agbru/factcalc/internal/logging"
	"github.com/agbru/factcalc/internal/orchestration"
	"github.com/agbru/factcalc/internal/sysmon"
	"github.com/agbru/factcalc/internal/ui"
)

// sysmonInterval is the host sampling period during a CLI sweep.
const sysmonInterval = time.Second

// runSweep times every selected engine over the configured sizes and prints
// the sweep table, the speedup chart and the host load.
func (a *Application) runSweep(ctx context.Context, out io.Writer) int {
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

	var observer orchestration.SweepObserver = orchestration.NullSweepObserver{}
	if !a.Config.Quiet {
		observer = cli.NewCLISweepObserver(out)
	}

	monitor := sysmon.NewMonitor(sysmonInterval)
	monitor.Start(ctx)
	report := orchestration.RunSweep(ctx, calculatorsToRun, a.sweepPlan(), observer)
	load := monitor.Stop()

	presenter := cli.CLIResultPresenter{}
	exitCode := orchestration.AnalyzeSweep(report, presenter, presenter, out)

	if !a.Config.Quiet && load.Samples > 0 {
		fmt.Fprintf(out, "Host load: avg CPU %.1f%%, peak CPU %.1f%%, peak memory %.1f%% (%d samples).\n",
			load.AvgCPU, load.PeakCPU, load.PeakMemory, load.Samples)
	}

	if a.Config.ReportFile != "" {
		if err := cli.WriteSweepCSV(a.Config.ReportFile, report); err != nil {
			fmt.Fprintf(a.ErrWriter, "Error writing report: %v\n", err)
			if exitCode == apperrors.ExitSuccess {
				exitCode = apperrors.ExitErrorGeneric
			}
		} else if !a.Config.Quiet {
			fmt.Fprintf(out, "%sReport saved to: %s%s\n", ui.ColorGreen(), a.Config.ReportFile, ui.ColorReset())
		}
	}

	return exitCode
}

// serveMetrics exposes the Prometheus registry on --metrics-addr for the
// duration of a run. The returned function shuts the endpoint down.
func (a *Application) serveMetrics(ctx context.Context) func() {
	if a.Config.MetricsAddr == "" {
		return func() {}
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", a.Metrics.Handler())
	srv := &http.Server{
		Addr:              a.Config.MetricsAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.Error("metrics endpoint failed", err, logging.String("addr", a.Config.MetricsAddr))
		}
	}()
	a.Logger.Info("metrics endpoint listening", logging.String("addr", a.Config.MetricsAddr))

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}
}

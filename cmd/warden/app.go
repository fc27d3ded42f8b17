package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"mercator-hq/warden/pkg/audit"
	"mercator-hq/warden/pkg/cli"
	"mercator-hq/warden/pkg/config"
	"mercator-hq/warden/pkg/history"
	"mercator-hq/warden/pkg/report"
	"mercator-hq/warden/pkg/telemetry/logging"
	"mercator-hq/warden/pkg/telemetry/metrics"
	"mercator-hq/warden/pkg/telemetry/tracing"
)

// app holds what a command needs to run audits: configuration, logger,
// telemetry, history and the runner built from them.
type app struct {
	cfg     *config.Config
	format  report.Format
	logger  *slog.Logger
	metrics *metrics.Collector
	tracer  *tracing.Tracer
	history history.Storage
	runner  *audit.Runner
	out     io.Writer
}

// newApp loads configuration and wires the runner. Callers must Close it.
func newApp(cmd *cobra.Command) (*app, error) {
	format, err := report.ParseFormat(outputFormat)
	if err != nil {
		return nil, cli.UsageError(err)
	}

	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(logging.FromConfig(cfg.Telemetry.Logging, cmd.ErrOrStderr()))
	if err != nil {
		return nil, cli.NewConfigError("telemetry.logging", err.Error())
	}

	a := &app{
		cfg:     cfg,
		format:  format,
		logger:  logger,
		metrics: metrics.NewCollector(&cfg.Telemetry.Metrics, prometheus.NewRegistry()),
		out:     cmd.OutOrStdout(),
	}

	a.tracer, err = tracing.New(&cfg.Telemetry.Tracing)
	if err != nil {
		return nil, cli.NewConfigError("telemetry.tracing", err.Error())
	}

	if cfg.History.Enabled {
		a.history, err = history.Open(&cfg.History, logger)
		if err != nil {
			a.Close()
			return nil, cli.NewCommandError(cmd.Name(), fmt.Errorf("failed to open history: %w", err))
		}
	}

	if err := a.rebuild(cfg); err != nil {
		a.Close()
		return nil, err
	}

	return a, nil
}

// rebuild replaces the runner after a configuration change. Telemetry and
// history stay as they were opened.
func (a *app) rebuild(cfg *config.Config) error {
	opts := []audit.Option{audit.WithMetrics(a.metrics), audit.WithTracer(a.tracer)}
	if a.history != nil {
		opts = append(opts, audit.WithHistory(a.history))
	}

	runner, err := audit.NewRunner(cfg, a.logger, opts...)
	if err != nil {
		return cli.NewConfigError("scan", err.Error())
	}
	a.cfg = cfg
	a.runner = runner
	return nil
}

// Close flushes spans and closes history.
func (a *app) Close() {
	if err := a.tracer.Shutdown(context.Background()); err != nil {
		a.logger.Warn("failed to shut down tracer", "error", err)
	}
	if a.history != nil {
		if err := a.history.Close(); err != nil {
			a.logger.Warn("failed to close history", "error", err)
		}
	}
}

// render writes a report in the selected format.
func (a *app) render(rep any) error {
	return report.Render(a.out, a.format, rep)
}

// requireHistory returns the history storage or a configuration error.
func (a *app) requireHistory() (history.Storage, error) {
	if a.history == nil {
		return nil, cli.NewConfigError("history.enabled", "audit history is disabled")
	}
	return a.history, nil
}

// exitCode maps a finished report to the process exit code.
func exitCode(rep any) int {
	if rerr := audit.ReportError(rep); rerr != nil {
		if rerr.IsConfigMissing() {
			return cli.ExitUsage
		}
		return cli.ExitFindings
	}
	if audit.Outcome(rep) == history.OutcomeFindings {
		return cli.ExitFindings
	}
	return cli.ExitClean
}

// worstExitCode combines the exit codes of several reports. Missing
// configuration outranks findings.
func worstExitCode(results []audit.Result) int {
	code := cli.ExitClean
	for _, res := range results {
		if c := exitCode(res.Report); c > code {
			code = c
		}
	}
	return code
}

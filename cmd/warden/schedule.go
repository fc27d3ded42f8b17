package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"mercator-hq/warden/pkg/audit"
	"mercator-hq/warden/pkg/cli"
	"mercator-hq/warden/pkg/history"
	"mercator-hq/warden/pkg/scheduler"
	"mercator-hq/warden/pkg/telemetry/logging"
)

const (
	auditJob = "audits"
	pruneJob = "history-prune"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run audits periodically",
	Long: `Run the configured audits on a cron schedule (schedule.cron, default
hourly) and prune the audit history on its own schedule
(history.retention.prune_schedule) when history is enabled.

Reports are recorded in metrics and history rather than printed. Stops
on SIGINT or SIGTERM after the running job finishes.

Example configuration:
  schedule:
    cron: "*/15 * * * *"
    audits: ["logs", "imports"]`,
	Args: cobra.NoArgs,
	RunE: runSchedule,
}

func init() {
	rootCmd.AddCommand(scheduleCmd)
}

func runSchedule(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := logging.WithTrigger(cmd.Context(), audit.TriggerSchedule)

	s, err := newScheduler(a)
	if err != nil {
		return cli.NewConfigError("schedule", err.Error())
	}
	if err := s.Start(ctx); err != nil {
		return cli.NewCommandError("schedule", err)
	}
	for _, name := range s.Jobs() {
		if next := s.NextRun(name); next != nil {
			a.logger.Info("job scheduled", "job", name, "next_run", next.Format(time.RFC3339))
		}
	}

	<-ctx.Done()
	s.Stop()
	return nil
}

// newScheduler registers the audit job and, with history enabled, the
// retention job.
func newScheduler(a *app) (*scheduler.Scheduler, error) {
	s := scheduler.New(a.logger)

	audits := a.cfg.Schedule.Audits
	err := s.Add(auditJob, a.cfg.Schedule.Cron, func(ctx context.Context) error {
		results, err := a.runner.All(ctx, audits, nil)
		if err != nil {
			return err
		}
		for _, res := range results {
			a.logger.InfoContext(ctx, "scheduled audit finished", "audit", res.Audit, "outcome", res.Outcome)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if a.history != nil && a.cfg.History.Retention.PruneSchedule != "" {
		pruner := history.NewPruner(a.history, a.cfg.History.Retention, a.logger)
		err := s.Add(pruneJob, a.cfg.History.Retention.PruneSchedule, func(ctx context.Context) error {
			_, err := pruner.Prune(ctx)
			return err
		})
		if err != nil {
			return nil, err
		}
	}

	return s, nil
}

package main

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"mercator-hq/warden/pkg/audit"
	"mercator-hq/warden/pkg/cli"
	"mercator-hq/warden/pkg/config"
	"mercator-hq/warden/pkg/policy/store"
	"mercator-hq/warden/pkg/telemetry/logging"
)

var watchFlags struct {
	audits []string
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-run audits when policy documents change",
	Long: `Run the selected audits once, then again whenever a rule, agent,
enforcement status or configuration file changes. Bursts of changes are
debounced (policy.watch.debounce). A changed configuration file is
reloaded; an invalid one is reported and the previous configuration kept.

Stops on SIGINT or SIGTERM.

Examples:
  # Re-run coverage on every rule change
  warden watch

  # Keep coverage and enforcement up to date
  warden watch --audits coverage,enforcement`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringSliceVar(&watchFlags.audits, "audits", []string{config.AuditCoverage}, "audits to run on change")
}

func runWatch(cmd *cobra.Command, args []string) error {
	for _, name := range watchFlags.audits {
		if !slices.Contains(config.AllAudits, name) {
			return cli.UsageError(fmt.Errorf("unknown audit %q (want one of %s)", name, strings.Join(config.AllAudits, ", ")))
		}
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := logging.WithTrigger(cmd.Context(), audit.TriggerWatch)

	watcher, err := store.NewWatcher(watcherConfig(a.cfg), a.logger)
	if err != nil {
		return cli.NewCommandError("watch", err)
	}

	var mu sync.Mutex
	runOnce := func() {
		mu.Lock()
		defer mu.Unlock()

		if config.Path() != "" {
			if err := config.ReloadConfig(); err != nil {
				a.logger.Error("configuration reload failed, keeping previous configuration", "error", err)
			} else if err := a.rebuild(config.GetConfig()); err != nil {
				a.logger.Error("failed to apply reloaded configuration", "error", err)
			}
		}
		watchRound(ctx, a, watchFlags.audits)
	}

	watchRound(ctx, a, watchFlags.audits)
	a.logger.Info("watching for policy changes", "audits", watchFlags.audits)

	watchErr := watcher.Watch(ctx, runOnce)
	if err := watcher.Stop(); err != nil {
		a.logger.Warn("failed to stop watcher", "error", err)
	}
	if watchErr != nil {
		return cli.NewCommandError("watch", watchErr)
	}
	return nil
}

// watchRound runs the audits and prints their reports. Findings are
// logged rather than ending the watch.
func watchRound(ctx context.Context, a *app, audits []string) {
	results, err := a.runner.All(ctx, audits, nil)
	if err != nil {
		if ctx.Err() == nil {
			a.logger.Error("audit round failed", "error", err)
		}
		return
	}
	if err := renderResults(a, results); err != nil {
		a.logger.Error("failed to render reports", "error", err)
	}
	if code := worstExitCode(results); code != cli.ExitClean {
		a.logger.Warn("audit round has findings", "exit_code", code)
	}
}

// watcherConfig watches the policy directories, the directory holding the
// enforcement status document and the configuration file.
func watcherConfig(cfg *config.Config) *store.WatcherConfig {
	wc := store.DefaultWatcherConfig()
	wc.DebounceInterval = cfg.Policy.Watch.Debounce
	wc.Paths = []string{
		cfg.Policy.AgentsDir,
		cfg.Policy.RulesDir,
		filepath.Dir(cfg.Enforcement.StatusFile),
	}
	if path := config.Path(); path != "" {
		wc.Paths = append(wc.Paths, path)
	}
	return wc
}

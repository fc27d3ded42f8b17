// Package health runs preflight checks for "warden doctor".
//
// A Checker runs named checks concurrently, each under its own timeout,
// and aggregates them into a Status. Required checks (the rules directory,
// an enabled history database) make the status not_ready when they fail;
// optional checks (the log corpus, the enforcement status file) only
// degrade it.
//
//	checker := health.New(5 * time.Second)
//	checker.Register("rules_dir", health.DirectoryCheck(cfg.Policy.RulesDir))
//	checker.RegisterOptional("logs_dir", health.DirectoryCheck(cfg.Scan.LogsDir))
//	status := checker.Run(ctx)
//	if !status.Ready() {
//	    os.Exit(1)
//	}
package health

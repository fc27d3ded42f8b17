/*
Package cli provides helpers shared by the warden commands.

Exit Codes:

Commands return errors that ExitCode maps to the process exit status:
0 when clean, 1 for findings or a failed command, 2 for a missing
configuration or invalid usage.

	if report.HasViolations() {
		return cli.Exit(cli.ExitFindings)
	}

Progress Reporting:

"warden audit" reports progress through its audits on stderr:

	progress := cli.NewProgressReporter(os.Stderr)
	progress.Start(len(audits))
	for _, name := range audits {
		progress.Step(name)
		// Run audit
	}
	progress.Finish()

Signal Handling:

For graceful shutdown of watch and schedule modes on SIGINT/SIGTERM:

	ctx := cli.SetupSignalHandler()
	// Use ctx for operations that should be cancelled on shutdown
*/
package cli

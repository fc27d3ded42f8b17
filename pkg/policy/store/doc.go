/*
Package store reads agent and rule definition documents into a Snapshot.

Loading:

	loader := store.NewLoader(store.DefaultLoaderConfig(), logger)
	snap := loader.Load("agents", "system/rules")
	if snap.Err != nil {
		// rules directory missing: report it, do not abort
	}

Documents are parsed in parallel. Every failure stays attached to the
document that caused it: a malformed rule becomes a policy.Rule with Err set
under its file-derived identifier, a malformed agent document is listed in
Snapshot.AgentErrors. Only the absence of the rules directory is reported at
the top level, as a policy.ReportError on Snapshot.Err.

Watching:

Watcher wraps fsnotify with debouncing and calls back after policy files
change. The warden watch command uses it to re-run the coverage audit.
*/
package store

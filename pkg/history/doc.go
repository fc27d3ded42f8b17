// Package history persists summaries of audit runs.
//
// Analyzers never write history themselves; the audit runner stores one
// Record per completed report. Two backends implement Storage:
//
//   - SQLiteStorage: a database file opened with the pure-Go
//     modernc.org/sqlite driver in WAL mode
//   - MemoryStorage: a map, for tests and one-shot runs
//
// A Pruner applies the retention policy (maximum age in days and maximum
// record count). The scheduler runs it on the configured cron schedule and
// "warden history prune" runs it on demand.
package history

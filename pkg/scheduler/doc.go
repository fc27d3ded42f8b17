// Package scheduler runs audits and history pruning on cron schedules.
//
// It wraps github.com/robfig/cron/v3 with named jobs that receive a
// context, structured logging of each run, panic recovery, and skipping of
// overlapping runs. "warden schedule" registers one job for the configured
// audits and, when history is enabled, one for retention pruning.
package scheduler

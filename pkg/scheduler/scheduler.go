package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Parser accepts the standard five-field format plus descriptors such as
// "@hourly" and "@every 10m".
var Parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// JobFunc is the work a scheduled job performs.
type JobFunc func(ctx context.Context) error

// Scheduler runs named jobs on cron schedules. A job still running when its
// next tick arrives is skipped for that tick.
type Scheduler struct {
	cron    *cron.Cron
	mu      sync.Mutex
	logger  *slog.Logger
	entries map[string]cron.EntryID
	ctx     context.Context
	running bool
}

// New creates a scheduler.
func New(logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "scheduler")

	cl := cronLogger{logger: logger}
	return &Scheduler{
		cron: cron.New(
			cron.WithParser(Parser),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		logger:  logger,
		entries: make(map[string]cron.EntryID),
		ctx:     context.Background(),
	}
}

// Add registers a job under a unique name.
func (s *Scheduler) Add(name, spec string, fn JobFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[name]; exists {
		return fmt.Errorf("job %q already scheduled", name)
	}
	if fn == nil {
		return errors.New("job function is required")
	}

	schedule, err := Parser.Parse(spec)
	if err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", spec, err)
	}

	id := s.cron.Schedule(schedule, cron.FuncJob(func() {
		s.run(name, fn)
	}))
	s.entries[name] = id

	s.logger.Debug("job scheduled", "job", name, "schedule", spec)
	return nil
}

// run executes one job invocation.
func (s *Scheduler) run(name string, fn JobFunc) {
	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()

	if ctx.Err() != nil {
		return
	}

	start := time.Now()
	s.logger.Info("scheduled job started", "job", name)

	if err := fn(ctx); err != nil {
		s.logger.Error("scheduled job failed",
			"job", name,
			"error", err,
			"duration", time.Since(start),
		)
		return
	}

	s.logger.Info("scheduled job completed",
		"job", name,
		"duration", time.Since(start),
	)
}

// Start begins running jobs. Jobs receive ctx, and the scheduler stops
// when ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return errors.New("scheduler already running")
	}
	if len(s.entries) == 0 {
		return errors.New("no jobs scheduled")
	}

	s.ctx = ctx
	s.cron.Start()
	s.running = true

	s.logger.Info("scheduler started", "jobs", len(s.entries))

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// Stop stops the scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	<-s.cron.Stop().Done()
	s.logger.Info("scheduler stopped")
}

// IsRunning reports whether the scheduler is running.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.running
}

// NextRun returns the next time the named job runs, or nil when the job is
// unknown or the scheduler has not started.
func (s *Scheduler) NextRun(name string) *time.Time {
	s.mu.Lock()
	id, ok := s.entries[name]
	s.mu.Unlock()
	if !ok {
		return nil
	}

	entry := s.cron.Entry(id)
	if entry.Next.IsZero() {
		return nil
	}
	next := entry.Next
	return &next
}

// Jobs returns the names of the registered jobs.
func (s *Scheduler) Jobs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(s.entries))
	for name := range s.entries {
		names = append(names, name)
	}
	return names
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error("cron: "+msg, append([]interface{}{"error", err}, keysAndValues...)...)
}

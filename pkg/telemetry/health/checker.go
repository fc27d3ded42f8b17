package health

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"time"
)

// Check statuses.
const (
	StatusOK      = "ok"
	StatusFailed  = "failed"
	StatusWarning = "warning"
)

// Overall statuses.
const (
	StatusReady    = "ready"
	StatusDegraded = "degraded"
	StatusNotReady = "not_ready"
)

// CheckFunc performs a single check. It returns nil if the component is
// usable, or an error describing the problem.
type CheckFunc func(ctx context.Context) error

// CheckResult represents the result of a single check.
type CheckResult struct {
	// Name identifies the check.
	Name string `json:"name"`

	// Status is StatusOK, StatusFailed or StatusWarning.
	Status string `json:"status"`

	// Required checks fail the overall status; optional ones only warn.
	Required bool `json:"required"`

	// Message describes the problem, if any.
	Message string `json:"message,omitempty"`

	// Duration is how long the check took.
	Duration time.Duration `json:"duration_ns,omitempty"`
}

// Status represents the aggregated result of all checks.
type Status struct {
	// Status is StatusReady, StatusDegraded (an optional check failed) or
	// StatusNotReady (a required check failed).
	Status string `json:"status"`

	// Checks holds the individual results sorted by name.
	Checks []CheckResult `json:"checks"`

	// Timestamp is when the checks were performed.
	Timestamp time.Time `json:"timestamp"`
}

// Ready reports whether every required check passed.
func (s Status) Ready() bool {
	return s.Status != StatusNotReady
}

type registered struct {
	fn       CheckFunc
	required bool
}

// Checker runs named preflight checks concurrently.
type Checker struct {
	mu     sync.RWMutex
	checks map[string]registered

	// Timeout for individual checks
	checkTimeout time.Duration
}

// ErrCheckTimeout is reported when a check exceeds its timeout.
var ErrCheckTimeout = errors.New("check timeout")

// New creates a new checker with the specified per-check timeout.
// If timeout is 0, defaults to 5 seconds per check.
func New(checkTimeout time.Duration) *Checker {
	if checkTimeout == 0 {
		checkTimeout = 5 * time.Second
	}

	return &Checker{
		checks:       make(map[string]registered),
		checkTimeout: checkTimeout,
	}
}

// Register adds a required check. A check with the same name is replaced.
func (c *Checker) Register(name string, check CheckFunc) {
	c.register(name, check, true)
}

// RegisterOptional adds a check whose failure only degrades the status.
func (c *Checker) RegisterOptional(name string, check CheckFunc) {
	c.register(name, check, false)
}

func (c *Checker) register(name string, check CheckFunc, required bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.checks[name] = registered{fn: check, required: required}
}

// Unregister removes a check.
func (c *Checker) Unregister(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.checks, name)
}

// Names returns the registered check names, sorted.
func (c *Checker) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.checks))
	for name := range c.checks {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Run performs all registered checks and aggregates the results.
func (c *Checker) Run(ctx context.Context) Status {
	c.mu.RLock()
	checks := make(map[string]registered, len(c.checks))
	for name, check := range c.checks {
		checks[name] = check
	}
	c.mu.RUnlock()

	results := make([]CheckResult, 0, len(checks))
	var resultMu sync.Mutex
	var wg sync.WaitGroup

	for name, check := range checks {
		wg.Add(1)
		go func(name string, check registered) {
			defer wg.Done()

			result := c.runCheck(ctx, check.fn)
			result.Name = name
			result.Required = check.required
			if result.Status == StatusFailed && !check.required {
				result.Status = StatusWarning
			}

			resultMu.Lock()
			results = append(results, result)
			resultMu.Unlock()
		}(name, check)
	}

	wg.Wait()

	slices.SortFunc(results, func(a, b CheckResult) int {
		return strings.Compare(a.Name, b.Name)
	})

	status := StatusReady
	for _, result := range results {
		switch result.Status {
		case StatusFailed:
			status = StatusNotReady
		case StatusWarning:
			if status == StatusReady {
				status = StatusDegraded
			}
		}
	}

	return Status{
		Status:    status,
		Checks:    results,
		Timestamp: time.Now(),
	}
}

// runCheck executes a single check with timeout.
func (c *Checker) runCheck(ctx context.Context, check CheckFunc) CheckResult {
	checkCtx, cancel := context.WithTimeout(ctx, c.checkTimeout)
	defer cancel()

	start := time.Now()

	errChan := make(chan error, 1)
	go func() {
		errChan <- check(checkCtx)
	}()

	select {
	case err := <-errChan:
		duration := time.Since(start)
		if err != nil {
			return CheckResult{
				Status:   StatusFailed,
				Message:  err.Error(),
				Duration: duration,
			}
		}
		return CheckResult{
			Status:   StatusOK,
			Duration: duration,
		}

	case <-checkCtx.Done():
		return CheckResult{
			Status:   StatusFailed,
			Message:  ErrCheckTimeout.Error(),
			Duration: time.Since(start),
		}
	}
}

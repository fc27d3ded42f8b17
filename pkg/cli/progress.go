package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// ProgressReporter reports progress through a sequence of audits.
type ProgressReporter interface {
	Start(total int)
	Step(name string)
	Finish()
	Error(err error)
}

// SimpleProgress renders a single-line text progress bar.
type SimpleProgress struct {
	mu      sync.Mutex
	total   int
	current int
	step    string
	started time.Time
	writer  io.Writer
}

// NewProgressReporter creates a new progress reporter that writes to w.
// If w is nil, it defaults to os.Stderr so reports on stdout stay clean.
func NewProgressReporter(w io.Writer) ProgressReporter {
	if w == nil {
		w = os.Stderr
	}
	return &SimpleProgress{
		writer: w,
	}
}

// NopProgress discards all progress.
type NopProgress struct{}

func (NopProgress) Start(int) {}
func (NopProgress) Step(string) {}
func (NopProgress) Finish() {}
func (NopProgress) Error(error) {}

// Start initializes the reporter with the number of steps.
func (p *SimpleProgress) Start(total int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.total = total
	p.current = 0
	p.step = ""
	p.started = time.Now()

	p.render()
}

// Step marks the start of the named step.
func (p *SimpleProgress) Step(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.current < p.total {
		p.current++
	}
	p.step = name
	p.render()
}

// Finish marks the progress as complete.
func (p *SimpleProgress) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.current = p.total
	p.step = fmt.Sprintf("done in %s", time.Since(p.started).Round(time.Millisecond))
	p.render()
	fmt.Fprintln(p.writer)
}

// Error reports an error during progress.
func (p *SimpleProgress) Error(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	fmt.Fprintf(p.writer, "\n✗ Error: %v\n", err)
}

func (p *SimpleProgress) render() {
	if p.total == 0 {
		return
	}

	barWidth := 20
	filled := barWidth * p.current / p.total
	bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)

	fmt.Fprintf(p.writer, "\rAuditing: [%s] %d/%d %-24s", bar, p.current, p.total, p.step)
}

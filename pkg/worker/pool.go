// Package worker reads and parses policy documents and corpus files in
// parallel.
//
// Each path is handled independently: a result carries its own error, and
// results come back in the order the paths were given.
package worker

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// Result is the outcome of parsing one file.
type Result[T any] struct {
	Path  string
	Value T
	Err   error
}

// Pool runs a parse function over a list of paths with bounded parallelism.
type Pool[T any] struct {
	workers int
}

// NewPool creates a pool with the given number of workers. A value <= 0
// selects runtime.NumCPU().
func NewPool[T any](workers int) *Pool[T] {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Pool[T]{workers: workers}
}

// Process applies parse to every path and returns one result per path in
// input order. A failing path does not stop the others.
func (p *Pool[T]) Process(paths []string, parse func(string) (T, error)) []Result[T] {
	if len(paths) == 0 {
		return nil
	}

	results := make([]Result[T], len(paths))
	var next atomic.Int64
	var wg sync.WaitGroup

	for range min(p.workers, len(paths)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				i := int(next.Add(1) - 1)
				if i >= len(paths) {
					return
				}
				val, err := parse(paths[i])
				results[i] = Result[T]{Path: paths[i], Value: val, Err: err}
			}
		}()
	}

	wg.Wait()
	return results
}

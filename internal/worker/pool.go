// Package worker provides bounded concurrent execution for batch
// verification runs.
package worker

import (
	"context"
	"sync"
)

// Job represents a unit of work to be executed
type Job interface {
	Execute(ctx context.Context) Result
}

// Result represents the result of a job execution
type Result interface {
	GetError() error
}

// CancelledResult stands in for a job that never ran because the run was
// cancelled first.
type CancelledResult struct {
	Err error
}

// GetError returns the cancellation error
func (r *CancelledResult) GetError() error {
	return r.Err
}

// Pool executes jobs with bounded concurrency. Results come back in job
// order, so callers can pair them with their inputs by index.
type Pool struct {
	workers int
}

// NewPool creates a pool with the specified concurrency
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	return &Pool{workers: workers}
}

// Workers returns the pool's concurrency bound
func (p *Pool) Workers() int {
	return p.workers
}

// Run executes all jobs and returns one result per job, index-aligned.
// Cancellation stops jobs that have not started; running jobs see it
// through their context.
func (p *Pool) Run(ctx context.Context, jobs []Job) []Result {
	results := make([]Result, len(jobs))

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, p.workers)

	for i, job := range jobs {
		wg.Add(1)
		go func(idx int, j Job) {
			defer wg.Done()

			select {
			case <-ctx.Done():
				results[idx] = &CancelledResult{Err: ctx.Err()}
				return
			case semaphore <- struct{}{}:
			}
			defer func() { <-semaphore }()

			results[idx] = j.Execute(ctx)
		}(i, job)
	}

	wg.Wait()

	return results
}

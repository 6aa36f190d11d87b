package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// mockResult implements Result
type mockResult struct {
	idx int
	err error
}

func (r *mockResult) GetError() error {
	return r.err
}

// mockJob implements Job
type mockJob struct {
	idx       int
	duration  time.Duration
	shouldErr bool
	executed  *int32 // atomic counter
}

func (j *mockJob) Execute(ctx context.Context) Result {
	if j.executed != nil {
		atomic.AddInt32(j.executed, 1)
	}
	if j.duration > 0 {
		select {
		case <-time.After(j.duration):
		case <-ctx.Done():
			return &mockResult{idx: j.idx, err: ctx.Err()}
		}
	}
	if j.shouldErr {
		return &mockResult{idx: j.idx, err: errors.New("job error")}
	}
	return &mockResult{idx: j.idx}
}

func TestNewPool(t *testing.T) {
	p1 := NewPool(5)
	if p1.Workers() != 5 {
		t.Errorf("expected 5 workers, got %d", p1.Workers())
	}

	p2 := NewPool(0)
	if p2.Workers() != 1 {
		t.Errorf("expected default 1 worker for 0 input, got %d", p2.Workers())
	}

	p3 := NewPool(-1)
	if p3.Workers() != 1 {
		t.Errorf("expected default 1 worker for negative input, got %d", p3.Workers())
	}
}

func TestPool_Run(t *testing.T) {
	pool := NewPool(2)

	var executed int32
	count := 10

	jobs := make([]Job, count)
	for i := 0; i < count; i++ {
		jobs[i] = &mockJob{idx: i, executed: &executed}
	}

	results := pool.Run(context.Background(), jobs)

	if len(results) != count {
		t.Errorf("expected %d results, got %d", count, len(results))
	}

	if atomic.LoadInt32(&executed) != int32(count) {
		t.Errorf("expected %d executed jobs, got %d", count, executed)
	}
}

func TestPool_Run_PreservesOrder(t *testing.T) {
	pool := NewPool(4)

	count := 8
	jobs := make([]Job, count)
	for i := 0; i < count; i++ {
		// Later jobs finish first
		jobs[i] = &mockJob{idx: i, duration: time.Duration(count-i) * 5 * time.Millisecond}
	}

	results := pool.Run(context.Background(), jobs)

	for i, result := range results {
		mr, ok := result.(*mockResult)
		if !ok {
			t.Fatalf("unexpected result type at %d: %T", i, result)
		}
		if mr.idx != i {
			t.Errorf("expected result for job %d at index %d, got job %d", i, i, mr.idx)
		}
	}
}

// concurrencyJob tracks max concurrent executions
type concurrencyJob struct {
	start    func()
	end      func()
	duration time.Duration
}

func (j *concurrencyJob) Execute(ctx context.Context) Result {
	if j.start != nil {
		j.start()
	}
	time.Sleep(j.duration)
	if j.end != nil {
		j.end()
	}
	return &mockResult{}
}

func TestPool_Run_Concurrency(t *testing.T) {
	workers := 10
	pool := NewPool(workers)

	var current int32
	var maxConcurrent int32
	var completed int32
	var mu sync.Mutex

	totalJobs := 50

	jobs := make([]Job, totalJobs)
	for i := 0; i < totalJobs; i++ {
		jobs[i] = &concurrencyJob{
			start: func() {
				curr := atomic.AddInt32(&current, 1)
				mu.Lock()
				if curr > maxConcurrent {
					maxConcurrent = curr
				}
				mu.Unlock()
			},
			end: func() {
				atomic.AddInt32(&current, -1)
				atomic.AddInt32(&completed, 1)
			},
			duration: 10 * time.Millisecond,
		}
	}

	pool.Run(context.Background(), jobs)

	if atomic.LoadInt32(&completed) != int32(totalJobs) {
		t.Errorf("expected %d completed jobs, got %d", totalJobs, completed)
	}

	mu.Lock()
	max := maxConcurrent
	mu.Unlock()

	if max > int32(workers) {
		t.Errorf("max concurrency %d exceeded workers %d", max, workers)
	}

	if max <= 1 {
		t.Logf("Warning: max concurrency was %d, expected > 1", max)
	}
}

func TestPool_Run_ErrorHandling(t *testing.T) {
	pool := NewPool(2)

	results := pool.Run(context.Background(), []Job{
		&mockJob{idx: 0, shouldErr: true},
		&mockJob{idx: 1},
	})

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}

	if results[0].GetError() == nil {
		t.Error("expected error from first job")
	}
	if results[1].GetError() != nil {
		t.Errorf("unexpected error from second job: %v", results[1].GetError())
	}
}

func TestPool_Run_Cancelled(t *testing.T) {
	pool := NewPool(1)

	ctx, cancel := context.WithCancel(context.Background())

	jobs := []Job{
		&mockJob{idx: 0, duration: 50 * time.Millisecond},
		&mockJob{idx: 1, duration: 50 * time.Millisecond},
		&mockJob{idx: 2, duration: 50 * time.Millisecond},
	}

	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	done := make(chan []Result, 1)
	go func() {
		done <- pool.Run(ctx, jobs)
	}()

	var results []Result
	select {
	case results = <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}

	cancelled := 0
	for i, result := range results {
		if result == nil {
			t.Fatalf("expected result at index %d, got nil", i)
		}
		if errors.Is(result.GetError(), context.Canceled) {
			cancelled++
		}
	}

	if cancelled == 0 {
		t.Error("expected at least one cancelled result")
	}
}

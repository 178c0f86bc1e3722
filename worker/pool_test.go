package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type countingJob struct {
	id   string
	runs *atomic.Int64
	wg   *sync.WaitGroup
}

func (j *countingJob) ID() string { return j.id }

func (j *countingJob) Execute(ctx context.Context) {
	j.runs.Add(1)
	j.wg.Done()
}

func TestPoolRunsSubmittedJobs(t *testing.T) {
	pool := NewPool(2, 8)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	pool.Start(ctx)

	var runs atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		if err := pool.Submit(&countingJob{id: "job", runs: &runs, wg: &wg}); err != nil {
			t.Fatalf("Submit: %v", err)
		}
	}

	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("jobs did not finish")
	}

	if runs.Load() != 8 {
		t.Errorf("ran %d jobs, want 8", runs.Load())
	}
	pool.Stop()
}

func TestPoolRejectsWhenFull(t *testing.T) {
	pool := NewPool(1, 1)
	// Not started: the buffer holds one job, the second must be rejected.
	var runs atomic.Int64
	var wg sync.WaitGroup
	wg.Add(1)

	if err := pool.Submit(&countingJob{id: "first", runs: &runs, wg: &wg}); err != nil {
		t.Fatalf("first Submit: %v", err)
	}
	if err := pool.Submit(&countingJob{id: "second", runs: &runs, wg: &wg}); err == nil {
		t.Fatal("second Submit should be rejected while the buffer is full")
	}
}

func TestPoolMinimumOneWorker(t *testing.T) {
	pool := NewPool(0, 1)
	if pool.workers != 1 {
		t.Errorf("workers = %d, want clamp to 1", pool.workers)
	}
}

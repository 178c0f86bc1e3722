package worker

import (
	"context"
	"fmt"
	"sync"

	"captionforge/config"
)

// Job is one unit of work executed by the pool.
type Job interface {
	Execute(ctx context.Context)
	ID() string
}

// Pool runs jobs across a bounded set of worker goroutines. Each task
// executes single-threaded inside one worker; the pool size caps how many
// tasks run concurrently.
type Pool struct {
	jobs    chan Job
	workers int
	wg      sync.WaitGroup
}

// NewPool creates a pool with the given worker count and submission buffer.
func NewPool(workers, queueSize int) *Pool {
	if workers < 1 {
		workers = 1
	}
	return &Pool{
		jobs:    make(chan Job, queueSize),
		workers: workers,
	}
}

// Start launches the workers. They drain the job channel until Stop is
// called or the context is canceled.
func (p *Pool) Start(ctx context.Context) {
	config.Log.Infof("starting worker pool with %d workers", p.workers)

	for i := 1; i <= p.workers; i++ {
		p.wg.Add(1)
		go func(id int) {
			defer p.wg.Done()
			for {
				select {
				case job, ok := <-p.jobs:
					if !ok {
						return
					}
					config.Log.WithField("task_id", job.ID()).Infof("worker %d picked up job", id)
					job.Execute(ctx)
				case <-ctx.Done():
					return
				}
			}
		}(i)
	}
}

// Submit queues a job without blocking; a full queue is an error the caller
// decides how to handle.
func (p *Pool) Submit(job Job) error {
	select {
	case p.jobs <- job:
		return nil
	default:
		return fmt.Errorf("job queue full, rejecting task %s", job.ID())
	}
}

// Stop closes the queue and waits for in-flight jobs to finish.
func (p *Pool) Stop() {
	close(p.jobs)
	p.wg.Wait()
	config.Log.Info("worker pool stopped")
}

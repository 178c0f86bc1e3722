package worker

import (
	"context"
	"time"

	"captionforge/config"
	"captionforge/queue"
	"captionforge/task"
)

const (
	dequeueTimeout = 5 * time.Second
	errorBackoff   = 5 * time.Second
)

// Worker polls the queue and hands tasks to the pool. Tasks are independent;
// no cross-task ordering is guaranteed or required.
type Worker struct {
	Queue     *queue.Queue
	Store     StatusStore
	Pool      *Pool
	Processor *Processor
}

// Run loops until the context is canceled.
func (w *Worker) Run(ctx context.Context) {
	config.Log.Info("worker started, polling task queue")

	for {
		if ctx.Err() != nil {
			config.Log.Info("worker stopping")
			return
		}

		env, err := w.Queue.Dequeue(ctx, dequeueTimeout)
		if err != nil {
			if ctx.Err() != nil {
				config.Log.Info("worker stopping")
				return
			}
			config.Log.Errorf("dequeue error: %v", err)
			time.Sleep(errorBackoff)
			continue
		}
		if env == nil {
			continue
		}

		t, err := w.Store.GetTask(env.TaskID)
		if err != nil {
			config.Log.WithField("task_id", env.TaskID).Errorf("task not loadable: %v", err)
			continue
		}

		if err := w.Pool.Submit(&taskJob{processor: w.Processor, task: t}); err != nil {
			config.Log.WithField("task_id", t.ID).Errorf("submit failed: %v", err)
			w.Processor.setStatus(config.Log.WithField("task_id", t.ID), t.ID, task.StatusFailed, "", err.Error())
		}
	}
}

// taskJob adapts a task to the pool's Job interface.
type taskJob struct {
	processor *Processor
	task      *task.Task
}

func (j *taskJob) ID() string { return j.task.ID }

func (j *taskJob) Execute(ctx context.Context) {
	j.processor.Process(ctx, j.task)
}

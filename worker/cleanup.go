package worker

import (
	"context"
	"os"
	"path"
	"path/filepath"
	"time"

	"captionforge/config"
	"captionforge/files"
	"captionforge/task"
)

// TaskLister is the slice of the store the cleaner reads expired tasks from.
type TaskLister interface {
	OldTasks(cutoff time.Time) ([]task.Task, error)
}

// MetadataDeleter drops per-task queue metadata during cleanup.
type MetadataDeleter interface {
	DeleteTaskMetadata(ctx context.Context, taskID string) error
}

// Cleaner periodically deletes result videos and queue metadata for tasks
// older than the TTL, keeping the output volume from filling up.
type Cleaner struct {
	Store     TaskLister
	Queue     MetadataDeleter
	OutputDir string
	TTL       time.Duration
	Interval  time.Duration
}

// Run ticks until the context is canceled.
func (c *Cleaner) Run(ctx context.Context) {
	ticker := time.NewTicker(c.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.sweep(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (c *Cleaner) sweep(ctx context.Context) {
	config.Log.Info("starting cleanup of old videos")

	tasks, err := c.Store.OldTasks(time.Now().Add(-c.TTL))
	if err != nil {
		config.Log.Errorf("cleanup: listing old tasks failed: %v", err)
		return
	}

	deleted := 0
	var freed int64
	for _, t := range tasks {
		if t.ResultURL != "" {
			filename := path.Base(t.ResultURL)
			if files.ValidateFilename(filename) {
				videoPath := filepath.Join(c.OutputDir, filename)
				if info, err := os.Stat(videoPath); err == nil {
					freed += info.Size()
					files.Cleanup(videoPath)
					deleted++
				}
			}
		}

		if c.Queue != nil {
			if err := c.Queue.DeleteTaskMetadata(ctx, t.ID); err != nil {
				config.Log.Warnf("cleanup: dropping metadata for %s failed: %v", t.ID, err)
			}
		}
	}

	config.Log.Infof("cleanup complete: %d videos deleted, %.2fMB freed",
		deleted, float64(freed)/(1024*1024))
}

package transcribe

import (
	"context"
	"sync"

	"captionforge/config"
)

// LoadFunc loads a transcription model for the given size identifier.
type LoadFunc func(ctx context.Context, size string) (Transcriber, error)

// ModelCache is a process-wide single-slot model cache. A loaded model is
// shared read-only across tasks; only the most recently requested size is
// retained, so interleaved requests for differing sizes reload each time.
// That thrash is a deliberate trade-off and each eviction is logged.
type ModelCache struct {
	mu   sync.RWMutex
	load LoadFunc

	size  string
	model Transcriber
}

// NewModelCache creates a cache around the given loader.
func NewModelCache(load LoadFunc) *ModelCache {
	return &ModelCache{load: load}
}

// Get returns the cached model for size, loading it at most once per
// distinct size. The load path is double-checked under the write lock so
// concurrent requests for the same size trigger a single load.
func (c *ModelCache) Get(ctx context.Context, size string) (Transcriber, error) {
	c.mu.RLock()
	if c.model != nil && c.size == size {
		model := c.model
		c.mu.RUnlock()
		return model, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.model != nil && c.size == size {
		return c.model, nil
	}
	if c.model != nil {
		config.Log.Warnf("model cache evicting size=%s for size=%s", c.size, size)
	}

	config.Log.Infof("loading transcription model size=%s", size)
	model, err := c.load(ctx, size)
	if err != nil {
		return nil, err
	}

	c.size = size
	c.model = model
	return model, nil
}

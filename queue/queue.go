package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"captionforge/task"
)

// Envelope is the lightweight queue message; workers load the full record
// from the status store before running.
type Envelope struct {
	TaskID string    `json:"task_id"`
	Type   task.Type `json:"task_type"`
}

// Queue is a Redis list used as a FIFO task queue.
type Queue struct {
	client *redis.Client
	key    string
}

// New connects to Redis and verifies connectivity.
func New(addr, password string, db int, key string) (*Queue, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis at %s: %w", addr, err)
	}

	return &Queue{client: client, key: key}, nil
}

// Enqueue pushes a task envelope onto the queue.
func (q *Queue) Enqueue(ctx context.Context, env Envelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}
	if err := q.client.LPush(ctx, q.key, data).Err(); err != nil {
		return fmt.Errorf("enqueue task %s: %w", env.TaskID, err)
	}
	return nil
}

// Dequeue blocks up to timeout for the next envelope. A timeout returns
// (nil, nil) so the worker loop can poll without treating idleness as an
// error.
func (q *Queue) Dequeue(ctx context.Context, timeout time.Duration) (*Envelope, error) {
	res, err := q.client.BRPop(ctx, timeout, q.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("dequeue: %w", err)
	}
	// BRPop returns [key, value]
	if len(res) != 2 {
		return nil, fmt.Errorf("dequeue: unexpected reply %v", res)
	}

	var env Envelope
	if err := json.Unmarshal([]byte(res[1]), &env); err != nil {
		return nil, fmt.Errorf("unmarshal envelope: %w", err)
	}
	return &env, nil
}

// DeleteTaskMetadata removes per-task redis keys during cleanup.
func (q *Queue) DeleteTaskMetadata(ctx context.Context, taskID string) error {
	return q.client.Del(ctx, "task:"+taskID).Err()
}

// Close releases the redis connection.
func (q *Queue) Close() error {
	return q.client.Close()
}

package store

import (
	"fmt"
	"time"

	postgrest "github.com/supabase-community/postgrest-go"

	"captionforge/task"
)

const tasksTable = "video_tasks"

// Store persists task records through the Supabase PostgREST API.
type Store struct {
	client *postgrest.Client
}

// New creates a store from the Supabase project URL and service key.
func New(supabaseURL, serviceKey string) (*Store, error) {
	if supabaseURL == "" || serviceKey == "" {
		return nil, fmt.Errorf("SUPABASE_URL and SUPABASE_SERVICE_KEY must be set")
	}

	client := postgrest.NewClient(supabaseURL+"/rest/v1", "", map[string]string{
		"apikey":        serviceKey,
		"Authorization": fmt.Sprintf("Bearer %s", serviceKey),
	})
	if client.ClientError != nil {
		return nil, fmt.Errorf("init postgrest client: %w", client.ClientError)
	}
	return &Store{client: client}, nil
}

// CreateTask inserts a new PENDING record.
func (s *Store) CreateTask(t *task.Task) error {
	var results []task.Task
	_, err := s.client.From(tasksTable).
		Insert(t, false, "", "representation", "").
		ExecuteTo(&results)
	if err != nil {
		return fmt.Errorf("insert task %s: %w", t.ID, err)
	}
	if len(results) == 0 {
		return fmt.Errorf("no record returned after insert for task %s", t.ID)
	}
	return nil
}

// GetTask loads the full task record.
func (s *Store) GetTask(id string) (*task.Task, error) {
	var results []task.Task
	_, err := s.client.From(tasksTable).
		Select("*", "", false).
		Eq("id", id).
		ExecuteTo(&results)
	if err != nil {
		return nil, fmt.Errorf("get task %s: %w", id, err)
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("task %s not found", id)
	}
	return &results[0], nil
}

// SetStatus transitions the task. Result URL and error message are optional;
// failures here are returned for the caller to log, never retried.
func (s *Store) SetStatus(id string, status task.Status, resultURL, errMsg string) error {
	update := map[string]interface{}{
		"status":     status,
		"updated_at": time.Now(),
	}
	if resultURL != "" {
		update["result_video_url"] = resultURL
	}
	if errMsg != "" {
		update["error_message"] = errMsg
	}

	var results []task.Task
	_, err := s.client.From(tasksTable).
		Update(update, "", "").
		Eq("id", id).
		ExecuteTo(&results)
	if err != nil {
		return fmt.Errorf("update task %s to %s: %w", id, status, err)
	}
	return nil
}

// OldTasks returns tasks created before the cutoff, for the cleanup loop.
func (s *Store) OldTasks(cutoff time.Time) ([]task.Task, error) {
	var results []task.Task
	_, err := s.client.From(tasksTable).
		Select("*", "", false).
		Lt("created_at", cutoff.UTC().Format(time.RFC3339)).
		ExecuteTo(&results)
	if err != nil {
		return nil, fmt.Errorf("list old tasks: %w", err)
	}
	return results, nil
}

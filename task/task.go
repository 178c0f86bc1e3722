package task

import (
	"time"

	"captionforge/subtitle"
)

// Status is the task lifecycle state. Transitions are linear:
// PENDING -> RUNNING -> SUCCEEDED | FAILED.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusRunning   Status = "RUNNING"
	StatusSucceeded Status = "SUCCEEDED"
	StatusFailed    Status = "FAILED"
)

// Type selects which pipeline a task runs.
type Type string

const (
	TypeCaption         Type = "caption"
	TypeMerge           Type = "merge"
	TypeConcat          Type = "concat"
	TypeBackgroundMusic Type = "background_music"
)

// Suffix is the output filename marker for this task type; the video serving
// endpoint only exposes files carrying one of these suffixes.
func (t Type) Suffix() string {
	switch t {
	case TypeMerge:
		return "_merged.mp4"
	case TypeConcat:
		return "_concat.mp4"
	case TypeBackgroundMusic:
		return "_with_music.mp4"
	default:
		return "_captioned.mp4"
	}
}

// Task is the persisted task record. Pointer fields distinguish unset from
// zero so pipeline defaults only apply when the caller omitted a value.
type Task struct {
	ID     string `json:"id"`
	Type   Type   `json:"task_type"`
	Status Status `json:"status"`

	VideoURL  string   `json:"video_url,omitempty"`
	AudioURL  string   `json:"audio_url,omitempty"`
	MusicURL  string   `json:"music_url,omitempty"`
	VideoURLs []string `json:"video_urls,omitempty"`

	VideoVolume *float64 `json:"video_volume,omitempty"`
	AudioVolume *float64 `json:"audio_volume,omitempty"`
	MusicVolume *float64 `json:"music_volume,omitempty"`
	Width       *int     `json:"width,omitempty"`
	Height      *int     `json:"height,omitempty"`
	ResizeMode  string   `json:"resize_mode,omitempty"`

	// Style overrides the default caption styling for caption tasks;
	// validated at the API boundary, nil means the pipeline default.
	Style *subtitle.Style `json:"style,omitempty"`

	ResultURL string  `json:"result_video_url,omitempty"`
	Error     *string `json:"error_message,omitempty"`

	CreatedAt time.Time `json:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

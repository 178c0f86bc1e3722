package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"captionforge/config"
	"captionforge/queue"
	"captionforge/subtitle"
	"captionforge/task"
)

// createTaskRequest is the request body for all task types; per-type
// requirements are checked after binding.
type createTaskRequest struct {
	VideoURL  string   `json:"video_url" binding:"omitempty,url"`
	AudioURL  string   `json:"audio_url" binding:"omitempty,url"`
	MusicURL  string   `json:"music_url" binding:"omitempty,url"`
	VideoURLs []string `json:"video_urls" binding:"omitempty,dive,url"`

	VideoVolume *float64 `json:"video_volume" binding:"omitempty,gte=0"`
	AudioVolume *float64 `json:"audio_volume" binding:"omitempty,gte=0"`
	MusicVolume *float64 `json:"music_volume" binding:"omitempty,gte=0"`
	Width       *int     `json:"width" binding:"omitempty,gt=0"`
	Height      *int     `json:"height" binding:"omitempty,gt=0"`
	ResizeMode  string   `json:"resize_mode" binding:"omitempty,oneof=cover contain"`

	Style *subtitle.Style `json:"style"`
}

type createTaskResponse struct {
	TaskID string      `json:"task_id"`
	Status task.Status `json:"status"`
}

// HandleCreateTask accepts a new task, persists it as PENDING, and enqueues
// it for the workers.
// POST /api/tasks/:type
func (s *Server) HandleCreateTask(c *gin.Context) {
	taskType := task.Type(c.Param("type"))
	switch taskType {
	case task.TypeCaption, task.TypeMerge, task.TypeConcat, task.TypeBackgroundMusic:
	default:
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown task type"})
		return
	}

	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := validateRequest(taskType, req); err != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": err})
		return
	}

	// Malformed styling is rejected here, at the boundary; the renderers
	// themselves stay best-effort.
	if req.Style != nil {
		if err := req.Style.Validate(); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	t := &task.Task{
		ID:          uuid.NewString(),
		Type:        taskType,
		Status:      task.StatusPending,
		VideoURL:    req.VideoURL,
		AudioURL:    req.AudioURL,
		MusicURL:    req.MusicURL,
		VideoURLs:   req.VideoURLs,
		VideoVolume: req.VideoVolume,
		AudioVolume: req.AudioVolume,
		MusicVolume: req.MusicVolume,
		Width:       req.Width,
		Height:      req.Height,
		ResizeMode:  req.ResizeMode,
		Style:       req.Style,
	}

	if err := s.store.CreateTask(t); err != nil {
		config.Log.Errorf("create task failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create task"})
		return
	}

	if err := s.queue.Enqueue(c.Request.Context(), queue.Envelope{TaskID: t.ID, Type: t.Type}); err != nil {
		config.Log.WithField("task_id", t.ID).Errorf("enqueue failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to enqueue task"})
		return
	}

	c.JSON(http.StatusAccepted, createTaskResponse{TaskID: t.ID, Status: t.Status})
}

// validateRequest enforces the per-type required fields; returns "" when ok.
func validateRequest(taskType task.Type, req createTaskRequest) string {
	switch taskType {
	case task.TypeCaption:
		if req.VideoURL == "" {
			return "video_url is required"
		}
	case task.TypeMerge:
		if req.VideoURL == "" || req.AudioURL == "" {
			return "video_url and audio_url are required"
		}
	case task.TypeConcat:
		if len(req.VideoURLs) < 2 {
			return "at least 2 video_urls are required"
		}
	case task.TypeBackgroundMusic:
		if req.VideoURL == "" || req.MusicURL == "" {
			return "video_url and music_url are required"
		}
	}
	return ""
}

// HandleGetTask returns the task record.
// GET /api/tasks/:id
func (s *Server) HandleGetTask(c *gin.Context) {
	t, err := s.store.GetTask(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
		return
	}
	c.JSON(http.StatusOK, t)
}

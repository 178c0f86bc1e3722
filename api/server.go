package api

import (
	"context"

	"github.com/gin-gonic/gin"

	"captionforge/config"
	"captionforge/queue"
	"captionforge/task"
)

// TaskStore is the API's view of the status store.
type TaskStore interface {
	CreateTask(t *task.Task) error
	GetTask(id string) (*task.Task, error)
}

// TaskQueue accepts new task envelopes for the workers.
type TaskQueue interface {
	Enqueue(ctx context.Context, env queue.Envelope) error
}

// Server wires the HTTP handlers to their collaborators.
type Server struct {
	store    TaskStore
	queue    TaskQueue
	settings config.Settings
}

// NewServer creates the API server.
func NewServer(store TaskStore, q TaskQueue, settings config.Settings) *Server {
	return &Server{store: store, queue: q, settings: settings}
}

// NewRouter constructs a Gin engine with registered routes.
func NewRouter(s *Server) *gin.Engine {
	r := gin.New()
	// Minimal middleware: recovery; request logging stays with logrus
	r.Use(gin.Recovery())

	r.GET("/api/health", s.HandleHealth)
	r.POST("/api/tasks/:type", s.HandleCreateTask)
	r.GET("/api/tasks/:id", s.HandleGetTask)
	r.GET("/video/:filename", s.HandleServeVideo)
	return r
}

// HandleHealth reports liveness.
func (s *Server) HandleHealth(c *gin.Context) {
	c.JSON(200, gin.H{"status": "ok"})
}

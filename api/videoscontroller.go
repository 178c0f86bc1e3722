package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"captionforge/files"
)

// HandleServeVideo streams a processed result video. Only filenames passing
// the output allowlist are ever resolved against the output directory.
// GET /video/:filename
func (s *Server) HandleServeVideo(c *gin.Context) {
	filename := c.Param("filename")

	path := files.VideoPath(s.settings.VideoOutputDir, filename)
	if path == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "video not found"})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", filename))
	c.Header("Cache-Control", "public, max-age=3600")
	c.Header("Content-Type", "video/mp4")
	// http.ServeFile underneath handles Range requests for streaming
	c.File(path)
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/yt-grabber-go/internal/app"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	session *app.SessionModel
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(session *app.SessionModel) *HealthHandler {
	return &HealthHandler{
		session: session,
	}
}

// HealthResponse represents a health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Version   string `json:"version"`
	Downloads struct {
		Active    int `json:"active"`
		Completed int `json:"completed"`
	} `json:"downloads"`
}

// Health handles GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	response := HealthResponse{
		Status:  "ok",
		Version: "1.0.0",
	}
	response.Downloads.Active = h.session.ActiveCount()
	response.Downloads.Completed = h.session.CompletedCount()

	c.JSON(http.StatusOK, response)
}

// Ready handles GET /ready
func (h *HealthHandler) Ready(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

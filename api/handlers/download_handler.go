package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yourusername/yt-grabber-go/internal/app"
	"github.com/yourusername/yt-grabber-go/internal/domain"
)

// DownloadHandler handles download-related HTTP requests
type DownloadHandler struct {
	session *app.SessionModel
	logger  *zap.Logger
}

// NewDownloadHandler creates a new download handler
func NewDownloadHandler(session *app.SessionModel, logger *zap.Logger) *DownloadHandler {
	return &DownloadHandler{
		session: session,
		logger:  logger,
	}
}

// AddDownloadRequest represents a request to add a download
type AddDownloadRequest struct {
	URL     string `json:"url" binding:"required"`
	Quality string `json:"quality,omitempty"`
}

// AddDownload handles POST /api/v1/downloads
func (h *DownloadHandler) AddDownload(c *gin.Context) {
	var req AddDownloadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	taskID, err := h.session.Submit(req.URL, domain.Quality(req.Quality))
	if err != nil {
		if errors.Is(err, domain.ErrInvalidURL) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("Failed to submit download", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	view, ok := h.session.Get(taskID)
	if !ok {
		// Submitted but already removed; report the id alone
		c.JSON(http.StatusCreated, gin.H{"task_id": taskID})
		return
	}

	c.JSON(http.StatusCreated, view)
}

// GetDownload handles GET /api/v1/downloads/:id
func (h *DownloadHandler) GetDownload(c *gin.Context) {
	id := c.Param("id")

	view, ok := h.session.Get(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "download not found"})
		return
	}

	c.JSON(http.StatusOK, view)
}

// ListDownloads handles GET /api/v1/downloads
func (h *DownloadHandler) ListDownloads(c *gin.Context) {
	views := h.session.List()

	if status := c.Query("status"); status != "" {
		filtered := make([]*app.TaskView, 0, len(views))
		for _, v := range views {
			if string(v.Status) == status {
				filtered = append(filtered, v)
			}
		}
		views = filtered
	}

	c.JSON(http.StatusOK, views)
}

// GetStats handles GET /api/v1/downloads/stats
func (h *DownloadHandler) GetStats(c *gin.Context) {
	stats, err := h.session.Stats()
	if err != nil {
		h.logger.Error("Failed to get stats", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, stats)
}

// CancelDownload handles POST /api/v1/downloads/:id/cancel
func (h *DownloadHandler) CancelDownload(c *gin.Context) {
	id := c.Param("id")

	if h.session.Cancel(id) {
		c.JSON(http.StatusOK, gin.H{"message": "download cancelled"})
		return
	}

	if _, ok := h.session.Get(id); ok {
		c.JSON(http.StatusConflict, gin.H{"error": "download is not active"})
		return
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "download not found"})
}

// DeleteDownload handles DELETE /api/v1/downloads/:id
func (h *DownloadHandler) DeleteDownload(c *gin.Context) {
	id := c.Param("id")

	if !h.session.Remove(id) {
		c.JSON(http.StatusNotFound, gin.H{"error": "download not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "download removed"})
}

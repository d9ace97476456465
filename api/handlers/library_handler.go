package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yourusername/yt-grabber-go/internal/domain"
)

// LibraryHandler handles requests against the durable video library
type LibraryHandler struct {
	library domain.LibraryStore
	logger  *zap.Logger
}

// NewLibraryHandler creates a new library handler
func NewLibraryHandler(library domain.LibraryStore, logger *zap.Logger) *LibraryHandler {
	return &LibraryHandler{
		library: library,
		logger:  logger,
	}
}

// ListVideos handles GET /api/v1/library. An optional q parameter
// filters by title or uploader, case-insensitively.
func (h *LibraryHandler) ListVideos(c *gin.Context) {
	var (
		videos []*domain.VideoInfo
		err    error
	)

	if query := c.Query("q"); query != "" {
		videos, err = h.library.Search(query)
	} else {
		videos, err = h.library.LoadAll()
	}
	if err != nil {
		h.logger.Error("Failed to load library", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, videos)
}

// SearchVideos handles GET /api/v1/library/search
func (h *LibraryHandler) SearchVideos(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing query parameter q"})
		return
	}

	videos, err := h.library.Search(query)
	if err != nil {
		h.logger.Error("Failed to search library", zap.String("query", query), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, videos)
}

// GetVideo handles GET /api/v1/library/:video_id
func (h *LibraryHandler) GetVideo(c *gin.Context) {
	videoID := c.Param("video_id")

	video, err := h.library.Find(videoID)
	if err != nil {
		h.logger.Error("Failed to read library", zap.String("video_id", videoID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if video == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "video not found"})
		return
	}

	c.JSON(http.StatusOK, video)
}

// DeleteVideo handles DELETE /api/v1/library/:video_id. The record is
// removed from the library; the downloaded file stays on disk.
func (h *LibraryHandler) DeleteVideo(c *gin.Context) {
	videoID := c.Param("video_id")

	video, err := h.library.Find(videoID)
	if err != nil {
		h.logger.Error("Failed to read library", zap.String("video_id", videoID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if video == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "video not found"})
		return
	}

	if err := h.library.Remove(videoID); err != nil {
		h.logger.Error("Failed to remove library record", zap.String("video_id", videoID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "video removed from library"})
}

package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yourusername/yt-grabber-go/api/handlers"
	"github.com/yourusername/yt-grabber-go/api/middleware"
	"github.com/yourusername/yt-grabber-go/internal/app"
	"github.com/yourusername/yt-grabber-go/internal/domain"
)

// SetupRouter sets up the HTTP router. history may be nil, in which case
// the history routes are not registered.
func SetupRouter(
	session *app.SessionModel,
	library domain.LibraryStore,
	history domain.HistoryRepository,
	log *zap.Logger,
) *gin.Engine {
	// Set Gin mode
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Middleware
	router.Use(middleware.Logger(log))
	router.Use(middleware.Recovery(log))
	router.Use(middleware.CORS())

	// Health endpoints
	healthHandler := handlers.NewHealthHandler(session)
	router.GET("/health", healthHandler.Health)
	router.GET("/ready", healthHandler.Ready)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Download endpoints
		downloadHandler := handlers.NewDownloadHandler(session, log)
		downloads := v1.Group("/downloads")
		{
			downloads.POST("", downloadHandler.AddDownload)
			downloads.GET("", downloadHandler.ListDownloads)
			downloads.GET("/stats", downloadHandler.GetStats)
			downloads.GET("/:id", downloadHandler.GetDownload)
			downloads.POST("/:id/cancel", downloadHandler.CancelDownload)
			downloads.DELETE("/:id", downloadHandler.DeleteDownload)
		}

		// Library endpoints
		libraryHandler := handlers.NewLibraryHandler(library, log)
		libraryGroup := v1.Group("/library")
		{
			libraryGroup.GET("", libraryHandler.ListVideos)
			libraryGroup.GET("/search", libraryHandler.SearchVideos)
			libraryGroup.GET("/:video_id", libraryHandler.GetVideo)
			libraryGroup.DELETE("/:video_id", libraryHandler.DeleteVideo)
		}

		// History endpoints
		if history != nil {
			historyHandler := handlers.NewHistoryHandler(history, log)
			v1.GET("/history", historyHandler.ListHistory)
		}
	}

	return router
}

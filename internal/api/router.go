package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/trakxmap-backend-go/internal/config"
	"github.com/jengzang/trakxmap-backend-go/internal/handler"
	"github.com/jengzang/trakxmap-backend-go/internal/middleware"
	"github.com/jengzang/trakxmap-backend-go/internal/service"
)

// SetupRouter builds the HTTP routes. Background work started for the
// middleware ends when stop is closed.
func SetupRouter(cfg *config.Config, trackService *service.TrackService, stop <-chan struct{}) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.Logger())

	// CORS
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "trakxmap backend is running",
		})
	})

	trackHandler := handler.NewTrackHandler(trackService, cfg.MaxUploadBytes)

	api := r.Group("/api/v1")
	api.Use(middleware.RateLimit(cfg.RateLimit, cfg.RateBurst, stop))
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		tracks := api.Group("/tracks")
		{
			tracks.GET("", trackHandler.ListTracks)
			tracks.GET("/:id", trackHandler.GetTrack)
			tracks.GET("/:id/points", trackHandler.GetPoints)
			tracks.GET("/:id/statistics", trackHandler.GetStatistics)
			tracks.GET("/:id/extent", trackHandler.GetExtent)

			write := tracks.Group("", middleware.JWTAuth(cfg.JWTSecret))
			write.POST("", trackHandler.UploadTracks)
			write.PUT("/:id/name", trackHandler.RenameTrack)
			write.DELETE("/:id", trackHandler.DeleteTrack)
		}
	}

	return r
}

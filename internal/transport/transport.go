package transport

import (
	"errors"
	"net/http"

	"github.com/dkolesni/eventboard/config"
	"github.com/dkolesni/eventboard/internal/entity"
	"github.com/dkolesni/eventboard/internal/transport/middleware"

	"github.com/gin-gonic/gin"
)

func InitRoutes(cfg *config.Config, catalogHandler *CatalogHandler, adminHandler *AdminHandler) *gin.Engine {

	router := gin.New()

	router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Middleware
	router.Use(gin.Recovery())
	router.Use(middleware.Logger())
	router.Use(middleware.Timeout(30))

	// Uploaded event images are served straight from the media dir.
	router.Static("/media", cfg.Media.Dir)

	// API routes
	api := router.Group("/api/v1")
	{
		// Storefront catalog
		events := api.Group("/events")
		{
			events.GET("", catalogHandler.GetEvents)
			events.GET("/trending", catalogHandler.GetTrending)
			events.GET("/:id", catalogHandler.GetEvent)
			events.POST("/:id/book", catalogHandler.BookSeat)
		}

		// Admin console
		admin := api.Group("/admin", middleware.AdminAuth(&cfg.Admin))
		{
			admin.GET("/events", adminHandler.ListEvents)
			admin.POST("/events", adminHandler.CreateEvent)
			admin.PUT("/events/:id", adminHandler.UpdateEvent)
			admin.DELETE("/events/:id", adminHandler.DeleteEvent)
			admin.PUT("/events/:id/trending", adminHandler.SetTrending)
			admin.DELETE("/events/:id/trending", adminHandler.ClearTrending)
		}
	}

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"version": cfg.Server.AppVersion,
		})
	})

	return router
}

// respondError maps the error taxonomy onto distinguishable HTTP responses.
func respondError(c *gin.Context, err error) {
	var validation *entity.ValidationError
	if errors.As(err, &validation) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  "validation failed",
			"fields": validation.Fields,
		})
		return
	}

	switch {
	case errors.Is(err, entity.ErrEventNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "event not found"})
	case errors.Is(err, entity.ErrOutOfCapacity):
		c.JSON(http.StatusConflict, gin.H{"error": "no remaining seats"})
	case errors.Is(err, entity.ErrInvalidTrendingRank):
		c.JSON(http.StatusBadRequest, gin.H{"error": "trending rank must be a positive integer"})
	case errors.Is(err, entity.ErrUploadFailed):
		c.JSON(http.StatusBadGateway, gin.H{"error": "image upload failed"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

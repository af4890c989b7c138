package api

import (
	"github.com/gin-gonic/gin"
)

// SetupRoutes sets up the API routes
func SetupRoutes(handler *Handler) *gin.Engine {
	router := gin.New()

	// Middleware
	router.Use(Recovery())
	router.Use(CORS())
	router.Use(RequestID())
	router.Use(gin.Logger())

	// Health check
	router.GET("/health", handler.HealthCheck)

	// API v1
	v1 := router.Group("/api/v1")
	{
		v1.GET("/compare", handler.Compare)

		repos := v1.Group("/repos/:owner/:repo")
		{
			repos.GET("/analytics", handler.GetAnalytics)
			repos.GET("/health", handler.GetHealth)
			repos.GET("/export/json", handler.ExportJSON)
			repos.GET("/export/html", handler.ExportHTML)
		}
	}

	return router
}

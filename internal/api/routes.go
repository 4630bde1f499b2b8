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
	router.Use(gin.Logger())

	// Health check
	router.GET("/health", handler.HealthCheck)

	// API v1
	v1 := router.Group("/api/v1")
	{
		v1.GET("/listings", handler.GetListings)

		adjustments := v1.Group("/adjustments")
		{
			adjustments.POST("", handler.RunAdjustment)
			adjustments.GET("", handler.ListAdjustments)
			adjustments.GET("/:id", handler.GetAdjustment)
		}
	}

	return router
}

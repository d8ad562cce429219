package http

import (
	"github.com/gin-gonic/gin"
	"github.com/healthpal/backend/config"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RecoveryMiddleware())
	router.Use(LoggerMiddleware())
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	// Health check endpoint
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		v1.GET("/summary", handler.GetDailySummary)

		foodlogs := v1.Group("/foodlogs")
		{
			foodlogs.GET("", handler.ListFoodLogs)
			foodlogs.POST("", handler.CreateFoodLog)
			foodlogs.PUT("/:id", handler.UpdateFoodLog)
			foodlogs.DELETE("/:id", handler.DeleteFoodLog)
		}

		v1.POST("/scan", handler.ScanFood)

		credentials := v1.Group("/credentials")
		{
			credentials.GET("", handler.ListCredentials)
			credentials.PUT("/:provider", handler.SaveCredential)
			credentials.DELETE("/:provider", handler.DeleteCredential)
		}
	}

	return router
}

package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/macroledger/backend/config"
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
	router.Use(RateLimitMiddleware(cfg.RateLimit.PerIP))
	router.Use(MetricsMiddleware())

	// Health check endpoint
	router.GET("/health", handler.HealthCheck)

	// Prometheus metrics
	if cfg.Metrics.Enabled {
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		foods := v1.Group("/foods")
		{
			foods.GET("", handler.ListFoods)
			foods.POST("", handler.RegisterFood)
			foods.DELETE("/:row", handler.DeleteFood)
		}

		log := v1.Group("/log")
		{
			log.GET("", handler.ListLog)
			log.POST("", handler.LogFood)
			log.DELETE("/:row", handler.DeleteLogEntry)
		}

		reports := v1.Group("/reports")
		{
			reports.GET("/summary", handler.Summary)
			reports.GET("/top", handler.TopContributors)
			reports.GET("/goal", handler.GoalProgress)
			reports.GET("/daily", handler.DailyTotals)
		}

		v1.GET("/export/:table", handler.Export)
		v1.POST("/refresh", handler.Refresh)
	}

	return router
}

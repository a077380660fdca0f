package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/ordalabs/orda-backend/internal/handlers"
)

type RouterConfig struct {
	NewsHandler     *handlers.NewsHandler
	AnalysisHandler *handlers.AnalysisHandler
	PipelineHandler *handlers.PipelineHandler
	DatabaseHandler *handlers.DatabaseHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	// Cors
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:80",
			"http://localhost:3000",
			"http://localhost:5173",
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	router.GET("/healthcheck", handlers.HealthCheck)

	api := router.Group("/api")
	{
		// News
		api.GET("/news/latest", cfg.NewsHandler.GetLatest)
		api.GET("/news/:id", cfg.NewsHandler.GetByID)
		// Analysis
		api.POST("/analysis", cfg.AnalysisHandler.Analyze)
		// Pipeline
		api.POST("/pipeline/run", cfg.PipelineHandler.Run)
		api.GET("/pipeline/runs", cfg.PipelineHandler.GetRuns)
		// Knowledge base
		api.POST("/database/vectors", cfg.DatabaseHandler.UpsertVectors)
	}

	return router
}

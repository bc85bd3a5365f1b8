package server

import (
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/openagora/opinion-engine/internal/http/handlers"
	"github.com/openagora/opinion-engine/internal/platform/envutil"
)

type RouterConfig struct {
	HealthHandler         *handlers.HealthHandler
	ClusterizationHandler *handlers.ClusterizationHandler
	StatisticsHandler     *handlers.StatisticsHandler
	SegmentHandler        *handlers.SegmentHandler
	ScatterHandler        *handlers.ScatterHandler
	ExportHandler         *handlers.ExportHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	// Cors
	origins := strings.Split(envutil.String("CORS_ORIGINS", "http://localhost:3000"), ",")
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	router.GET("/healthcheck", cfg.HealthHandler.HealthCheck)

	api := router.Group("/api")
	{
		// Clusterization
		api.POST("/conversations/:conversation_id/clusterize", cfg.ClusterizationHandler.Clusterize)
		api.PATCH("/clusterizations/:clusterization_id/status", cfg.ClusterizationHandler.SetStatus)
		api.GET("/clusterizations/:clusterization_id/shape", cfg.ClusterizationHandler.GetShape)

		// Statistics
		api.GET("/conversations/:conversation_id/statistics/comments", cfg.StatisticsHandler.CommentStatistics)
		api.GET("/conversations/:conversation_id/statistics/users", cfg.StatisticsHandler.UserStatistics)

		// Segments
		api.POST("/conversations/:conversation_id/segments", cfg.SegmentHandler.Create)
		api.GET("/conversations/:conversation_id/segments", cfg.SegmentHandler.List)
		api.DELETE("/segments/:filter_id", cfg.SegmentHandler.Delete)
		api.POST("/segments/:filter_id/toggle", cfg.SegmentHandler.Toggle)
		api.GET("/segments/:filter_id/participants", cfg.SegmentHandler.Participants)

		// Projection
		api.GET("/conversations/:conversation_id/scatter", cfg.ScatterHandler.ProjectScatter)

		// Export
		api.GET("/conversations/:conversation_id/export/comments", cfg.ExportHandler.Comments)
		api.GET("/conversations/:conversation_id/export/participants", cfg.ExportHandler.Participants)
		api.GET("/conversations/:conversation_id/export/votes", cfg.ExportHandler.Votes)
	}

	return router
}

package app

import (
	"github.com/gin-gonic/gin"

	"github.com/openagora/opinion-engine/internal/server"
)

func wireRouter(handlerset Handlers) *gin.Engine {
	return server.NewRouter(server.RouterConfig{
		HealthHandler:         handlerset.Health,
		ClusterizationHandler: handlerset.Clusterization,
		StatisticsHandler:     handlerset.Statistics,
		SegmentHandler:        handlerset.Segment,
		ScatterHandler:        handlerset.Scatter,
		ExportHandler:         handlerset.Export,
	})
}

package app

import (
	"github.com/openagora/opinion-engine/internal/http/handlers"
	"github.com/openagora/opinion-engine/internal/platform/logger"
)

type Handlers struct {
	Health         *handlers.HealthHandler
	Clusterization *handlers.ClusterizationHandler
	Statistics     *handlers.StatisticsHandler
	Segment        *handlers.SegmentHandler
	Scatter        *handlers.ScatterHandler
	Export         *handlers.ExportHandler
}

func wireHandlers(log *logger.Logger, serviceset Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:         handlers.NewHealthHandler(),
		Clusterization: handlers.NewClusterizationHandler(serviceset.Clusterization, serviceset.Shape),
		Statistics:     handlers.NewStatisticsHandler(serviceset.Statistics),
		Segment:        handlers.NewSegmentHandler(serviceset.Segment),
		Scatter:        handlers.NewScatterHandler(serviceset.Projection),
		Export:         handlers.NewExportHandler(serviceset.Export),
	}
}

package app

import (
	"gorm.io/gorm"

	"github.com/openagora/opinion-engine/internal/clients/redis"
	"github.com/openagora/opinion-engine/internal/platform/logger"
	"github.com/openagora/opinion-engine/internal/services"
)

type Services struct {
	Matrix         services.MatrixService
	Clusterization services.ClusterizationService
	Shape          services.ShapeService
	Segment        services.SegmentService
	Statistics     services.StatisticsService
	Projection     services.ProjectionService
	Export         services.ExportService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, reposet Repos, locker redis.Locker) Services {
	log.Info("Wiring services...")

	matrixService := services.NewMatrixService(db, log, reposet.Comment, reposet.Vote)
	clusterizationService := services.NewClusterizationService(
		db, log, cfg.Engine, locker, matrixService,
		reposet.Clusterization, reposet.Cluster, reposet.Stereotype, reposet.Vote,
	)
	shapeService := services.NewShapeService(db, log, cfg.Engine, matrixService, reposet.Clusterization, reposet.Cluster)
	segmentService := services.NewSegmentService(db, log, reposet.SegmentFilter, reposet.Cluster, reposet.Comment, reposet.Vote)
	statisticsService := services.NewStatisticsService(db, log, reposet.Comment, reposet.Vote, reposet.Cluster)
	projectionService := services.NewProjectionService(db, log, matrixService, reposet.Clusterization, reposet.Cluster, reposet.Stereotype)
	exportService := services.NewExportService(db, log, statisticsService, reposet.Comment, reposet.Vote, reposet.User)

	return Services{
		Matrix:         matrixService,
		Clusterization: clusterizationService,
		Shape:          shapeService,
		Segment:        segmentService,
		Statistics:     statisticsService,
		Projection:     projectionService,
		Export:         exportService,
	}
}

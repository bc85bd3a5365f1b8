package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/openagora/opinion-engine/internal/data/repos"
	"github.com/openagora/opinion-engine/internal/math/affinity"
	"github.com/openagora/opinion-engine/internal/math/metric"
	"github.com/openagora/opinion-engine/internal/math/votes"
	"github.com/openagora/opinion-engine/internal/platform/logger"
)

// ClusterView is one cluster of the shape payload.
type ClusterView struct {
	ID          uuid.UUID   `json:"id"`
	Index       int         `json:"index"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Users       []uuid.UUID `json:"users"`
}

// ShapeData is the overlap-visualisation payload: the clusters, the viewer's
// cluster index (-1 when unclustered) and the affinity sets serialised to
// JSON.
type ShapeData struct {
	Clusters     []ClusterView `json:"clusters"`
	UserGroup    int           `json:"user_group"`
	AffinityJSON string        `json:"affinity_json"`
}

type ShapeService interface {
	GetShapeData(ctx context.Context, clusterizationID, viewerUserID uuid.UUID) (*ShapeData, error)
}

type shapeService struct {
	db                 *gorm.DB
	log                *logger.Logger
	cfg                EngineConfig
	matrixService      MatrixService
	clusterizationRepo repos.ClusterizationRepo
	clusterRepo        repos.ClusterRepo
}

func NewShapeService(
	db *gorm.DB,
	baseLog *logger.Logger,
	cfg EngineConfig,
	matrixService MatrixService,
	clusterizationRepo repos.ClusterizationRepo,
	clusterRepo repos.ClusterRepo,
) ShapeService {
	serviceLog := baseLog.With("service", "ShapeService")
	return &shapeService{
		db:                 db,
		log:                serviceLog,
		cfg:                cfg,
		matrixService:      matrixService,
		clusterizationRepo: clusterizationRepo,
		clusterRepo:        clusterRepo,
	}
}

func (ss *shapeService) GetShapeData(ctx context.Context, clusterizationID, viewerUserID uuid.UUID) (*ShapeData, error) {
	cz, err := ss.clusterizationRepo.GetByID(ctx, nil, clusterizationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get clusterization: %w", err)
	}
	clusters, err := ss.clusterRepo.ListByClusterization(ctx, nil, cz.ID)
	if err != nil {
		return nil, fmt.Errorf("list clusters: %w", err)
	}

	views := make([]ClusterView, len(clusters))
	memberships := make([][]uuid.UUID, len(clusters))
	userGroup := -1
	for i, cluster := range clusters {
		members, err := ParseMembers(cluster.Users)
		if err != nil {
			return nil, err
		}
		memberships[i] = members
		views[i] = ClusterView{
			ID:          cluster.ID,
			Index:       cluster.Index,
			Name:        cluster.Name,
			Description: cluster.Description,
			Users:       members,
		}
		for _, id := range members {
			if id == viewerUserID {
				userGroup = i
			}
		}
	}

	sets, err := ss.affinitySets(ctx, cz.ConversationID, memberships)
	if err != nil {
		ss.log.Error("affinity computation failed", "clusterization_id", cz.ID, "error", err)
		return nil, err
	}
	raw, err := json.Marshal(sets)
	if err != nil {
		return nil, fmt.Errorf("marshal affinity sets: %w", err)
	}

	return &ShapeData{
		Clusters:     views,
		UserGroup:    userGroup,
		AffinityJSON: string(raw),
	}, nil
}

// affinitySets rebuilds labels and centroids from the persisted memberships
// and runs the overlap geometry over the fill=mean matrix. Participants not
// assigned to any cluster are left out.
func (ss *shapeService) affinitySets(ctx context.Context, conversationID uuid.UUID, memberships [][]uuid.UUID) ([]affinity.Set, error) {
	matrix, _, _, err := ss.matrixService.VotesTable(ctx, nil, conversationID, votes.FillMean)
	if err != nil {
		return nil, err
	}
	if matrix.Empty() {
		return []affinity.Set{}, nil
	}

	var (
		data      [][]float64
		labels    []int
		centroids = make([][]float64, len(memberships))
	)
	for i, members := range memberships {
		centroid, ok := centroidOf(matrix, members)
		if !ok {
			centroid = make([]float64, matrix.Cols())
		}
		centroids[i] = centroid
		for _, id := range members {
			if row, ok := matrix.Row(id); ok {
				data = append(data, row)
				labels = append(labels, i)
			}
		}
	}
	if len(data) == 0 {
		return []affinity.Set{}, nil
	}

	return affinity.Sets(data, labels, centroids, metric.EuclideanIgnoreZero, ss.cfg.AffinityEpsilon), nil
}

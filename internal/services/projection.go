package services

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/openagora/opinion-engine/internal/data/repos"
	types "github.com/openagora/opinion-engine/internal/domain"
	"github.com/openagora/opinion-engine/internal/math/project"
	"github.com/openagora/opinion-engine/internal/math/votes"
	"github.com/openagora/opinion-engine/internal/platform/logger"
)

// ScatterPoint is one participant in the 2-D scatter. Cluster is the cluster
// index, -1 when the participant is unclustered.
type ScatterPoint struct {
	X       float64   `json:"x"`
	Y       float64   `json:"y"`
	UserID  uuid.UUID `json:"user_id"`
	Cluster int       `json:"cluster"`
}

// StereotypePoint places a persona in the same space as the participants.
type StereotypePoint struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Name string  `json:"name"`
}

type ScatterData struct {
	Method       string            `json:"method"`
	Participants []ScatterPoint    `json:"participants"`
	Stereotypes  []StereotypePoint `json:"stereotypes"`
}

// ProjectionService reduces the vote matrix to 2-D and pushes the attached
// stereotypes through the same fitted transformer. The seed drives the
// stochastic methods, except t-SNE, whose initial layout comes from the
// process RNG and ignores it.
type ProjectionService interface {
	Scatter(ctx context.Context, conversationID uuid.UUID, method string, seed int64) (*ScatterData, error)
}

type projectionService struct {
	db                 *gorm.DB
	log                *logger.Logger
	matrixService      MatrixService
	clusterizationRepo repos.ClusterizationRepo
	clusterRepo        repos.ClusterRepo
	stereotypeRepo     repos.StereotypeRepo
}

func NewProjectionService(
	db *gorm.DB,
	baseLog *logger.Logger,
	matrixService MatrixService,
	clusterizationRepo repos.ClusterizationRepo,
	clusterRepo repos.ClusterRepo,
	stereotypeRepo repos.StereotypeRepo,
) ProjectionService {
	serviceLog := baseLog.With("service", "ProjectionService")
	return &projectionService{
		db:                 db,
		log:                serviceLog,
		matrixService:      matrixService,
		clusterizationRepo: clusterizationRepo,
		clusterRepo:        clusterRepo,
		stereotypeRepo:     stereotypeRepo,
	}
}

func (ps *projectionService) Scatter(ctx context.Context, conversationID uuid.UUID, method string, seed int64) (*ScatterData, error) {
	parsed, err := project.ParseMethod(method)
	if err != nil {
		return nil, err
	}

	// The matrix stays raw; the pipeline's impute step fills the gaps with
	// the same column means fill=mean would use.
	matrix, _, _, err := ps.matrixService.VotesTable(ctx, nil, conversationID, votes.FillRaw)
	if err != nil {
		return nil, err
	}

	emb, err := project.Fit(ctx, matrix.Data, parsed, seed)
	if err != nil {
		ps.log.Error("projection failed",
			"conversation_id", conversationID,
			"method", parsed.String(),
			"error", err)
		return nil, err
	}

	clusterOf, clusters, err := ps.clusterIndex(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	participants := make([]ScatterPoint, len(matrix.Participants))
	for i, id := range matrix.Participants {
		cluster := -1
		if c, ok := clusterOf[id]; ok {
			cluster = c
		}
		participants[i] = ScatterPoint{
			X:       emb.Points[i][0],
			Y:       emb.Points[i][1],
			UserID:  id,
			Cluster: cluster,
		}
	}

	stereotypes, err := ps.placeStereotypes(ctx, matrix, emb, clusters)
	if err != nil {
		return nil, err
	}

	return &ScatterData{
		Method:       parsed.String(),
		Participants: participants,
		Stereotypes:  stereotypes,
	}, nil
}

// clusterIndex maps participants to their cluster index. Missing
// clusterization is fine: everyone is unclustered.
func (ps *projectionService) clusterIndex(ctx context.Context, conversationID uuid.UUID) (map[uuid.UUID]int, []*types.Cluster, error) {
	cz, err := ps.clusterizationRepo.GetByConversation(ctx, nil, conversationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return map[uuid.UUID]int{}, nil, nil
		}
		return nil, nil, fmt.Errorf("get clusterization: %w", err)
	}
	clusters, err := ps.clusterRepo.ListByClusterization(ctx, nil, cz.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("list clusters: %w", err)
	}

	clusterOf := make(map[uuid.UUID]int)
	for i, cluster := range clusters {
		members, err := ParseMembers(cluster.Users)
		if err != nil {
			return nil, nil, err
		}
		for _, id := range members {
			clusterOf[id] = i
		}
	}
	return clusterOf, clusters, nil
}

// placeStereotypes transforms each attached persona's vote vector through
// the fitted embedding. Comments the persona never voted on stay NaN and are
// imputed with the training column means inside Transform.
func (ps *projectionService) placeStereotypes(ctx context.Context, matrix *votes.Matrix, emb *project.Embedding, clusters []*types.Cluster) ([]StereotypePoint, error) {
	if len(clusters) == 0 {
		return []StereotypePoint{}, nil
	}

	clusterIDs := make([]uuid.UUID, len(clusters))
	for i, c := range clusters {
		clusterIDs[i] = c.ID
	}
	links, err := ps.clusterRepo.ListStereotypes(ctx, nil, clusterIDs)
	if err != nil {
		return nil, fmt.Errorf("list cluster stereotypes: %w", err)
	}
	if len(links) == 0 {
		return []StereotypePoint{}, nil
	}

	seen := make(map[uuid.UUID]bool)
	stereotypeIDs := make([]uuid.UUID, 0, len(links))
	for _, l := range links {
		if !seen[l.StereotypeID] {
			seen[l.StereotypeID] = true
			stereotypeIDs = append(stereotypeIDs, l.StereotypeID)
		}
	}

	stereotypes, err := ps.stereotypeRepo.GetByIDs(ctx, nil, stereotypeIDs)
	if err != nil {
		return nil, fmt.Errorf("get stereotypes: %w", err)
	}
	stVotes, err := ps.stereotypeRepo.ListVotes(ctx, nil, stereotypeIDs)
	if err != nil {
		return nil, fmt.Errorf("list stereotype votes: %w", err)
	}
	votesBySt := make(map[uuid.UUID][]*types.StereotypeVote)
	for _, v := range stVotes {
		votesBySt[v.StereotypeID] = append(votesBySt[v.StereotypeID], v)
	}

	points := make([]StereotypePoint, 0, len(stereotypes))
	for _, st := range stereotypes {
		vec := make([]float64, matrix.Cols())
		for j := range vec {
			vec[j] = math.NaN()
		}
		for _, v := range votesBySt[st.ID] {
			if j, ok := matrix.ColumnOf(v.CommentID); ok {
				vec[j] = float64(v.Choice)
			}
		}
		p := emb.Transform(vec)
		points = append(points, StereotypePoint{X: p[0], Y: p[1], Name: st.Name})
	}
	return points, nil
}

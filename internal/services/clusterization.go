package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"gorm.io/gorm"

	"github.com/openagora/opinion-engine/internal/clients/redis"
	"github.com/openagora/opinion-engine/internal/data/repos"
	types "github.com/openagora/opinion-engine/internal/domain"
	"github.com/openagora/opinion-engine/internal/math/kmeans"
	"github.com/openagora/opinion-engine/internal/math/metric"
	"github.com/openagora/opinion-engine/internal/math/votes"
	"github.com/openagora/opinion-engine/internal/platform/logger"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ClusterizationService owns the lifecycle of one clusterization per
// conversation: the staleness check, the stereotype-seeded run and the atomic
// membership write. Concurrent updates collapse onto ErrAlreadyRunning.
type ClusterizationService interface {
	Update(ctx context.Context, conversationID uuid.UUID, force bool) (*types.Clusterization, error)
	SetStatus(ctx context.Context, clusterizationID uuid.UUID, status string) error
}

type clusterizationService struct {
	db                 *gorm.DB
	log                *logger.Logger
	cfg                EngineConfig
	locker             redis.Locker
	matrixService      MatrixService
	clusterizationRepo repos.ClusterizationRepo
	clusterRepo        repos.ClusterRepo
	stereotypeRepo     repos.StereotypeRepo
	voteRepo           repos.VoteRepo
}

func NewClusterizationService(
	db *gorm.DB,
	baseLog *logger.Logger,
	cfg EngineConfig,
	locker redis.Locker,
	matrixService MatrixService,
	clusterizationRepo repos.ClusterizationRepo,
	clusterRepo repos.ClusterRepo,
	stereotypeRepo repos.StereotypeRepo,
	voteRepo repos.VoteRepo,
) ClusterizationService {
	serviceLog := baseLog.With("service", "ClusterizationService")
	return &clusterizationService{
		db:                 db,
		log:                serviceLog,
		cfg:                cfg,
		locker:             locker,
		matrixService:      matrixService,
		clusterizationRepo: clusterizationRepo,
		clusterRepo:        clusterRepo,
		stereotypeRepo:     stereotypeRepo,
		voteRepo:           voteRepo,
	}
}

// Update recomputes cluster memberships when the clusterization is stale.
// A disabled clusterization is returned untouched; a fresh one short-circuits
// unless force is set. Numeric failures leave all persisted state as it was.
func (cs *clusterizationService) Update(ctx context.Context, conversationID uuid.UUID, force bool) (*types.Clusterization, error) {
	cz, err := cs.clusterizationRepo.GetOrCreateByConversation(ctx, nil, conversationID)
	if err != nil {
		return nil, fmt.Errorf("get clusterization: %w", err)
	}
	if cz.Status == types.ClusterizationStatusDisabled {
		return cz, nil
	}

	if !force {
		stale, err := cs.isStale(ctx, cz)
		if err != nil {
			return nil, err
		}
		if !stale {
			return cz, nil
		}
	}

	clusters, err := cs.clusterRepo.ListByClusterization(ctx, nil, cz.ID)
	if err != nil {
		return nil, fmt.Errorf("list clusters: %w", err)
	}
	seedVotes, err := cs.seedVotesByCluster(ctx, clusters)
	if err != nil {
		return nil, err
	}
	if len(seedVotes) == 0 {
		// No cluster carries a stereotype yet; nothing to seed from.
		return cz, nil
	}

	token := uuid.NewString()
	key := "clusterize:" + cz.ID.String()
	acquired, err := cs.locker.Acquire(ctx, key, token, cs.cfg.LockTTL)
	if err != nil {
		return nil, fmt.Errorf("acquire run lock: %w", err)
	}
	if !acquired {
		return cz, ErrAlreadyRunning
	}
	defer func() {
		if err := cs.locker.Release(context.WithoutCancel(ctx), key, token); err != nil {
			cs.log.Warn("release run lock", "clusterization_id", cz.ID, "error", err)
		}
	}()

	matrix, _, _, err := cs.matrixService.VotesTable(ctx, nil, conversationID, votes.FillMean)
	if err != nil {
		return nil, err
	}
	if matrix.Empty() {
		return cz, nil
	}

	seeds := buildSeeds(matrix, clusters, seedVotes)
	result, err := kmeans.RunSeeded(ctx, matrix.Data, seeds, cs.cfg.KMeansMaxIter, metric.EuclideanIgnoreZero, metric.Mean)
	if err != nil {
		cs.log.Error("seeded k-means failed", "clusterization_id", cz.ID, "error", err)
		return nil, err
	}

	memberships := make([][]uuid.UUID, len(clusters))
	for i := range memberships {
		memberships[i] = []uuid.UUID{}
	}
	for row, label := range result.Labels {
		memberships[label] = append(memberships[label], matrix.Participants[row])
	}

	anyMembers := false
	for _, m := range memberships {
		if len(m) > 0 {
			anyMembers = true
			break
		}
	}
	status := types.ClusterizationStatusPendingData
	if anyMembers {
		status = types.ClusterizationStatusActive
	}
	modified := time.Now().UTC()

	err = cs.transaction(ctx, func(tx *gorm.DB) error {
		for i, cluster := range clusters {
			raw, err := json.Marshal(memberships[i])
			if err != nil {
				return fmt.Errorf("marshal members: %w", err)
			}
			if err := cs.clusterRepo.SetUsers(ctx, tx, cluster.ID, raw); err != nil {
				return fmt.Errorf("set cluster users: %w", err)
			}
		}
		if err := cs.clusterizationRepo.UpdateStatus(ctx, tx, cz.ID, status); err != nil {
			return fmt.Errorf("update status: %w", err)
		}
		if err := cs.clusterizationRepo.Touch(ctx, tx, cz.ID, modified); err != nil {
			return fmt.Errorf("touch clusterization: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	cs.log.Info("clusterization updated",
		"clusterization_id", cz.ID,
		"participants", matrix.Rows(),
		"clusters", len(clusters),
		"status", status)

	cz.Status = status
	cz.Modified = modified
	return cz, nil
}

// transaction wraps the membership write. Without a database handle the
// writes go straight to the repos, which then use their own handles.
func (cs *clusterizationService) transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	if cs.db == nil {
		return fn(nil)
	}
	return cs.db.WithContext(ctx).Transaction(fn)
}

func (cs *clusterizationService) SetStatus(ctx context.Context, clusterizationID uuid.UUID, status string) error {
	switch status {
	case types.ClusterizationStatusPendingData,
		types.ClusterizationStatusActive,
		types.ClusterizationStatusDisabled:
	default:
		return fmt.Errorf("unknown clusterization status %q", status)
	}
	if err := cs.clusterizationRepo.UpdateStatus(ctx, nil, clusterizationID, status); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (cs *clusterizationService) isStale(ctx context.Context, cz *types.Clusterization) (bool, error) {
	count, err := cs.voteRepo.CountSince(ctx, nil, cz.ConversationID, cz.Modified)
	if err != nil {
		return false, fmt.Errorf("count votes since modified: %w", err)
	}
	return count > 0, nil
}

// seedVotesByCluster collects each cluster's stereotype votes. The returned
// map is keyed by cluster id and only holds clusters with ≥ 1 stereotype.
func (cs *clusterizationService) seedVotesByCluster(ctx context.Context, clusters []*types.Cluster) (map[uuid.UUID][]*types.StereotypeVote, error) {
	ids := make([]uuid.UUID, len(clusters))
	for i, c := range clusters {
		ids[i] = c.ID
	}
	links, err := cs.clusterRepo.ListStereotypes(ctx, nil, ids)
	if err != nil {
		return nil, fmt.Errorf("list cluster stereotypes: %w", err)
	}
	if len(links) == 0 {
		return nil, nil
	}

	stereotypeIDs := make([]uuid.UUID, 0, len(links))
	clusterOf := make(map[uuid.UUID][]uuid.UUID)
	for _, l := range links {
		stereotypeIDs = append(stereotypeIDs, l.StereotypeID)
		clusterOf[l.ClusterID] = append(clusterOf[l.ClusterID], l.StereotypeID)
	}
	allVotes, err := cs.stereotypeRepo.ListVotes(ctx, nil, stereotypeIDs)
	if err != nil {
		return nil, fmt.Errorf("list stereotype votes: %w", err)
	}
	votesBySt := make(map[uuid.UUID][]*types.StereotypeVote)
	for _, v := range allVotes {
		votesBySt[v.StereotypeID] = append(votesBySt[v.StereotypeID], v)
	}

	out := make(map[uuid.UUID][]*types.StereotypeVote)
	for clusterID, sts := range clusterOf {
		for _, st := range sts {
			out[clusterID] = append(out[clusterID], votesBySt[st]...)
		}
		if _, ok := out[clusterID]; !ok {
			// Cluster with stereotypes but no votes still gets a seed row
			// of zeros, so its label stays addressable.
			out[clusterID] = []*types.StereotypeVote{}
		}
	}
	return out, nil
}

// buildSeeds turns each cluster's stereotype votes into one seed vector in
// matrix column order: the mean of cast values per comment, 0 where no
// stereotype voted.
func buildSeeds(matrix *votes.Matrix, clusters []*types.Cluster, seedVotes map[uuid.UUID][]*types.StereotypeVote) [][]float64 {
	seeds := make([][]float64, len(clusters))
	for i, cluster := range clusters {
		sums := make([]float64, matrix.Cols())
		counts := make([]int, matrix.Cols())
		for _, v := range seedVotes[cluster.ID] {
			j, ok := matrix.ColumnOf(v.CommentID)
			if !ok {
				continue
			}
			sums[j] += float64(v.Choice)
			counts[j]++
		}
		seed := make([]float64, matrix.Cols())
		for j := range seed {
			if counts[j] > 0 {
				seed[j] = sums[j] / float64(counts[j])
			}
		}
		seeds[i] = seed
	}
	return seeds
}

// ParseMembers decodes a cluster's users column.
func ParseMembers(raw []byte) ([]uuid.UUID, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var out []uuid.UUID
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode cluster users: %w", err)
	}
	return out, nil
}

// centroidOf recomputes a cluster centroid as the NaN-ignoring mean of its
// members' matrix rows. Returns false when no member has a matrix row.
func centroidOf(matrix *votes.Matrix, members []uuid.UUID) ([]float64, bool) {
	rows := make([][]float64, 0, len(members))
	for _, id := range members {
		if row, ok := matrix.Row(id); ok {
			rows = append(rows, row)
		}
	}
	if len(rows) == 0 {
		return nil, false
	}
	c := metric.Mean(rows)
	for i, v := range c {
		if math.IsNaN(v) {
			c[i] = 0
		}
	}
	return c, true
}

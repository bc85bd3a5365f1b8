package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/openagora/opinion-engine/internal/data/repos"
	types "github.com/openagora/opinion-engine/internal/domain"
	"github.com/openagora/opinion-engine/internal/math/stats"
	"github.com/openagora/opinion-engine/internal/math/votes"
	"github.com/openagora/opinion-engine/internal/platform/logger"
)

// StatisticsService computes comment and participant statistics, whole
// conversation or restricted to one cluster's members.
type StatisticsService interface {
	CommentStatistics(ctx context.Context, conversationID uuid.UUID, clusterID *uuid.UUID, norm float64, orderBy stats.OrderBy, descending bool) ([]stats.CommentRow, error)
	UserStatistics(ctx context.Context, conversationID uuid.UUID, clusterID *uuid.UUID, norm float64) ([]stats.UserRow, error)
}

type statisticsService struct {
	db          *gorm.DB
	log         *logger.Logger
	commentRepo repos.CommentRepo
	voteRepo    repos.VoteRepo
	clusterRepo repos.ClusterRepo
}

func NewStatisticsService(
	db *gorm.DB,
	baseLog *logger.Logger,
	commentRepo repos.CommentRepo,
	voteRepo repos.VoteRepo,
	clusterRepo repos.ClusterRepo,
) StatisticsService {
	serviceLog := baseLog.With("service", "StatisticsService")
	return &statisticsService{
		db:          db,
		log:         serviceLog,
		commentRepo: commentRepo,
		voteRepo:    voteRepo,
		clusterRepo: clusterRepo,
	}
}

func (ss *statisticsService) CommentStatistics(ctx context.Context, conversationID uuid.UUID, clusterID *uuid.UUID, norm float64, orderBy stats.OrderBy, descending bool) ([]stats.CommentRow, error) {
	comments, voteList, group, err := ss.load(ctx, conversationID, clusterID)
	if err != nil {
		return nil, err
	}

	created := make(map[uuid.UUID]time.Time, len(comments))
	for _, c := range comments {
		created[c.ID] = c.CreatedAt
	}
	voters := make(map[uuid.UUID]bool)
	for _, v := range voteList {
		voters[v.AuthorID] = true
	}

	tallies := votes.Tallies(comments, voteList)
	rows := stats.Comments(tallies, created, len(voters), norm, group)
	stats.Sort(rows, orderBy, descending)
	return rows, nil
}

func (ss *statisticsService) UserStatistics(ctx context.Context, conversationID uuid.UUID, clusterID *uuid.UUID, norm float64) ([]stats.UserRow, error) {
	comments, voteList, group, err := ss.load(ctx, conversationID, clusterID)
	if err != nil {
		return nil, err
	}
	return stats.Users(voteList, len(comments), norm, group), nil
}

// load fetches approved comments and votes, restricting votes to one
// cluster's members when a cluster id is given. group carries the cluster
// name into the output rows.
func (ss *statisticsService) load(ctx context.Context, conversationID uuid.UUID, clusterID *uuid.UUID) ([]*types.Comment, []*types.Vote, string, error) {
	comments, err := ss.commentRepo.ListApproved(ctx, nil, conversationID)
	if err != nil {
		return nil, nil, "", fmt.Errorf("list approved comments: %w", err)
	}
	voteList, err := ss.voteRepo.ListByConversation(ctx, nil, conversationID)
	if err != nil {
		return nil, nil, "", fmt.Errorf("list votes: %w", err)
	}

	if clusterID == nil {
		return comments, voteList, "", nil
	}

	cluster, err := ss.clusterRepo.GetByID(ctx, nil, *clusterID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, "", ErrNotFound
		}
		return nil, nil, "", fmt.Errorf("get cluster: %w", err)
	}
	members, err := ParseMembers(cluster.Users)
	if err != nil {
		return nil, nil, "", err
	}
	inCluster := make(map[uuid.UUID]bool, len(members))
	for _, id := range members {
		inCluster[id] = true
	}
	filtered := make([]*types.Vote, 0, len(voteList))
	for _, v := range voteList {
		if inCluster[v.AuthorID] {
			filtered = append(filtered, v)
		}
	}
	return comments, filtered, cluster.Name, nil
}

package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/openagora/opinion-engine/internal/data/repos"
	types "github.com/openagora/opinion-engine/internal/domain"
	"github.com/openagora/opinion-engine/internal/math/votes"
	"github.com/openagora/opinion-engine/internal/platform/logger"
)

// MatrixService materialises the conversation's vote matrix and tallies.
// Every numeric consumer (manager, projection, statistics) goes through it so
// the deterministic ordering is decided in exactly one place.
type MatrixService interface {
	VotesTable(ctx context.Context, tx *gorm.DB, conversationID uuid.UUID, fill votes.Fill) (*votes.Matrix, []*types.Comment, []*types.Vote, error)
	Tallies(ctx context.Context, tx *gorm.DB, conversationID uuid.UUID) ([]votes.Tally, []*types.Comment, []*types.Vote, error)
}

type matrixService struct {
	db          *gorm.DB
	log         *logger.Logger
	commentRepo repos.CommentRepo
	voteRepo    repos.VoteRepo
}

func NewMatrixService(
	db *gorm.DB,
	baseLog *logger.Logger,
	commentRepo repos.CommentRepo,
	voteRepo repos.VoteRepo,
) MatrixService {
	serviceLog := baseLog.With("service", "MatrixService")
	return &matrixService{
		db:          db,
		log:         serviceLog,
		commentRepo: commentRepo,
		voteRepo:    voteRepo,
	}
}

func (ms *matrixService) VotesTable(ctx context.Context, tx *gorm.DB, conversationID uuid.UUID, fill votes.Fill) (*votes.Matrix, []*types.Comment, []*types.Vote, error) {
	comments, voteList, err := ms.load(ctx, tx, conversationID)
	if err != nil {
		return nil, nil, nil, err
	}
	return votes.Build(comments, voteList, fill), comments, voteList, nil
}

func (ms *matrixService) Tallies(ctx context.Context, tx *gorm.DB, conversationID uuid.UUID) ([]votes.Tally, []*types.Comment, []*types.Vote, error) {
	comments, voteList, err := ms.load(ctx, tx, conversationID)
	if err != nil {
		return nil, nil, nil, err
	}
	return votes.Tallies(comments, voteList), comments, voteList, nil
}

func (ms *matrixService) load(ctx context.Context, tx *gorm.DB, conversationID uuid.UUID) ([]*types.Comment, []*types.Vote, error) {
	comments, err := ms.commentRepo.ListApproved(ctx, tx, conversationID)
	if err != nil {
		return nil, nil, fmt.Errorf("list approved comments: %w", err)
	}
	voteList, err := ms.voteRepo.ListByConversation(ctx, tx, conversationID)
	if err != nil {
		return nil, nil, fmt.Errorf("list votes: %w", err)
	}
	return comments, voteList, nil
}

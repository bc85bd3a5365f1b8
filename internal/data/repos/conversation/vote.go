package conversation

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/openagora/opinion-engine/internal/domain"
	"github.com/openagora/opinion-engine/internal/platform/logger"
)

type VoteRepo interface {
	Upsert(ctx context.Context, tx *gorm.DB, vote *types.Vote) (*types.Vote, error)
	ListByConversation(ctx context.Context, tx *gorm.DB, conversationID uuid.UUID) ([]*types.Vote, error)
	ListByComments(ctx context.Context, tx *gorm.DB, commentIDs []uuid.UUID) ([]*types.Vote, error)
	CountSince(ctx context.Context, tx *gorm.DB, conversationID uuid.UUID, since time.Time) (int64, error)
}

type voteRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewVoteRepo(db *gorm.DB, baseLog *logger.Logger) VoteRepo {
	repoLog := baseLog.With("repo", "VoteRepo")
	return &voteRepo{db: db, log: repoLog}
}

// Upsert records a vote, replacing any earlier choice by the same author on
// the same comment. Revotes bump created_at so staleness checks see them.
func (vr *voteRepo) Upsert(ctx context.Context, tx *gorm.DB, vote *types.Vote) (*types.Vote, error) {
	transaction := tx
	if transaction == nil {
		transaction = vr.db
	}

	if err := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "author_id"}, {Name: "comment_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"choice":     vote.Choice,
				"channel":    vote.Channel,
				"created_at": gorm.Expr("now()"),
			}),
		}).
		Create(vote).Error; err != nil {
		return nil, err
	}
	return vote, nil
}

// ListByConversation returns every vote on the conversation's comments,
// ordered by cast time then id so row ordering downstream is reproducible.
func (vr *voteRepo) ListByConversation(ctx context.Context, tx *gorm.DB, conversationID uuid.UUID) ([]*types.Vote, error) {
	transaction := tx
	if transaction == nil {
		transaction = vr.db
	}

	var results []*types.Vote
	if err := transaction.WithContext(ctx).
		Joins("JOIN comment ON comment.id = vote.comment_id").
		Where("comment.conversation_id = ?", conversationID).
		Order("vote.created_at ASC, vote.id ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (vr *voteRepo) ListByComments(ctx context.Context, tx *gorm.DB, commentIDs []uuid.UUID) ([]*types.Vote, error) {
	transaction := tx
	if transaction == nil {
		transaction = vr.db
	}

	var results []*types.Vote
	if len(commentIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("comment_id IN ?", commentIDs).
		Order("created_at ASC, id ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// CountSince counts votes cast on the conversation strictly after the given
// instant. The clusterization manager uses it as the dirty check.
func (vr *voteRepo) CountSince(ctx context.Context, tx *gorm.DB, conversationID uuid.UUID, since time.Time) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = vr.db
	}

	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.Vote{}).
		Joins("JOIN comment ON comment.id = vote.comment_id").
		Where("comment.conversation_id = ? AND vote.created_at > ?", conversationID, since).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

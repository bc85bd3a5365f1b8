package conversation

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/openagora/opinion-engine/internal/domain"
	"github.com/openagora/opinion-engine/internal/platform/logger"
)

type CommentRepo interface {
	Create(ctx context.Context, tx *gorm.DB, comments []*types.Comment) ([]*types.Comment, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, commentIDs []uuid.UUID) ([]*types.Comment, error)
	ListByConversation(ctx context.Context, tx *gorm.DB, conversationID uuid.UUID) ([]*types.Comment, error)
	ListApproved(ctx context.Context, tx *gorm.DB, conversationID uuid.UUID) ([]*types.Comment, error)
	UpdateStatus(ctx context.Context, tx *gorm.DB, commentID uuid.UUID, status string) error
}

type commentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCommentRepo(db *gorm.DB, baseLog *logger.Logger) CommentRepo {
	repoLog := baseLog.With("repo", "CommentRepo")
	return &commentRepo{db: db, log: repoLog}
}

func (cr *commentRepo) Create(ctx context.Context, tx *gorm.DB, comments []*types.Comment) ([]*types.Comment, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}

	if len(comments) == 0 {
		return []*types.Comment{}, nil
	}

	// The partial unique index on (conversation_id, author_id, md5(content))
	// rejects duplicate non-rejected comments; surface that as a no-op.
	if err := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&comments).Error; err != nil {
		return nil, err
	}
	return comments, nil
}

func (cr *commentRepo) GetByIDs(ctx context.Context, tx *gorm.DB, commentIDs []uuid.UUID) ([]*types.Comment, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}

	var results []*types.Comment
	if len(commentIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("id IN ?", commentIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (cr *commentRepo) ListByConversation(ctx context.Context, tx *gorm.DB, conversationID uuid.UUID) ([]*types.Comment, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}

	var results []*types.Comment
	if err := transaction.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at ASC, id ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// ListApproved returns the approved comments in matrix column order:
// creation time ascending, id as tie-break.
func (cr *commentRepo) ListApproved(ctx context.Context, tx *gorm.DB, conversationID uuid.UUID) ([]*types.Comment, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}

	var results []*types.Comment
	if err := transaction.WithContext(ctx).
		Where("conversation_id = ? AND status = ?", conversationID, types.CommentStatusApproved).
		Order("created_at ASC, id ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (cr *commentRepo) UpdateStatus(ctx context.Context, tx *gorm.DB, commentID uuid.UUID, status string) error {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}
	return transaction.WithContext(ctx).
		Model(&types.Comment{}).
		Where("id = ?", commentID).
		Update("status", status).Error
}

package conversation

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/openagora/opinion-engine/internal/domain"
	"github.com/openagora/opinion-engine/internal/platform/logger"
)

type ConversationRepo interface {
	Create(ctx context.Context, tx *gorm.DB, conversations []*types.Conversation) ([]*types.Conversation, error)
	GetByID(ctx context.Context, tx *gorm.DB, conversationID uuid.UUID) (*types.Conversation, error)
	ListByAuthor(ctx context.Context, tx *gorm.DB, authorID uuid.UUID) ([]*types.Conversation, error)
}

type conversationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewConversationRepo(db *gorm.DB, baseLog *logger.Logger) ConversationRepo {
	repoLog := baseLog.With("repo", "ConversationRepo")
	return &conversationRepo{db: db, log: repoLog}
}

func (cr *conversationRepo) Create(ctx context.Context, tx *gorm.DB, conversations []*types.Conversation) ([]*types.Conversation, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}

	if len(conversations) == 0 {
		return []*types.Conversation{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&conversations).Error; err != nil {
		return nil, err
	}
	return conversations, nil
}

func (cr *conversationRepo) GetByID(ctx context.Context, tx *gorm.DB, conversationID uuid.UUID) (*types.Conversation, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}

	var result types.Conversation
	if err := transaction.WithContext(ctx).
		Where("id = ?", conversationID).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (cr *conversationRepo) ListByAuthor(ctx context.Context, tx *gorm.DB, authorID uuid.UUID) ([]*types.Conversation, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}

	var results []*types.Conversation
	if err := transaction.WithContext(ctx).
		Where("author_id = ?", authorID).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

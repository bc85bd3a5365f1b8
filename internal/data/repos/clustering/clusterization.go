package clustering

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/openagora/opinion-engine/internal/domain"
	"github.com/openagora/opinion-engine/internal/platform/logger"
)

type ClusterizationRepo interface {
	GetOrCreateByConversation(ctx context.Context, tx *gorm.DB, conversationID uuid.UUID) (*types.Clusterization, error)
	GetByConversation(ctx context.Context, tx *gorm.DB, conversationID uuid.UUID) (*types.Clusterization, error)
	GetByID(ctx context.Context, tx *gorm.DB, clusterizationID uuid.UUID) (*types.Clusterization, error)
	UpdateStatus(ctx context.Context, tx *gorm.DB, clusterizationID uuid.UUID, status string) error
	Touch(ctx context.Context, tx *gorm.DB, clusterizationID uuid.UUID, modified time.Time) error
}

type clusterizationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewClusterizationRepo(db *gorm.DB, baseLog *logger.Logger) ClusterizationRepo {
	repoLog := baseLog.With("repo", "ClusterizationRepo")
	return &clusterizationRepo{db: db, log: repoLog}
}

// GetOrCreateByConversation returns the conversation's clusterization,
// creating it in pending_data when missing. At most one per conversation.
func (cr *clusterizationRepo) GetOrCreateByConversation(ctx context.Context, tx *gorm.DB, conversationID uuid.UUID) (*types.Clusterization, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}

	var result types.Clusterization
	err := transaction.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		First(&result).Error
	if err == nil {
		return &result, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	result = types.Clusterization{
		ID:             uuid.New(),
		ConversationID: conversationID,
		Status:         types.ClusterizationStatusPendingData,
		Modified:       time.Now().UTC(),
	}
	if err := transaction.WithContext(ctx).Create(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (cr *clusterizationRepo) GetByConversation(ctx context.Context, tx *gorm.DB, conversationID uuid.UUID) (*types.Clusterization, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}

	var result types.Clusterization
	if err := transaction.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (cr *clusterizationRepo) GetByID(ctx context.Context, tx *gorm.DB, clusterizationID uuid.UUID) (*types.Clusterization, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}

	var result types.Clusterization
	if err := transaction.WithContext(ctx).
		Where("id = ?", clusterizationID).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

// UpdateStatus fails with gorm.ErrRecordNotFound when no row matches; a
// plain Update reports nothing for an unknown id.
func (cr *clusterizationRepo) UpdateStatus(ctx context.Context, tx *gorm.DB, clusterizationID uuid.UUID, status string) error {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}
	result := transaction.WithContext(ctx).
		Model(&types.Clusterization{}).
		Where("id = ?", clusterizationID).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Touch records a successful recomputation.
func (cr *clusterizationRepo) Touch(ctx context.Context, tx *gorm.DB, clusterizationID uuid.UUID, modified time.Time) error {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}
	return transaction.WithContext(ctx).
		Model(&types.Clusterization{}).
		Where("id = ?", clusterizationID).
		Update("modified", modified).Error
}

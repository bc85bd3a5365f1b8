package clustering

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/openagora/opinion-engine/internal/domain"
	"github.com/openagora/opinion-engine/internal/platform/logger"
)

type SegmentFilterRepo interface {
	Create(ctx context.Context, tx *gorm.DB, filter *types.SegmentFilter) (*types.SegmentFilter, error)
	GetByID(ctx context.Context, tx *gorm.DB, filterID uuid.UUID) (*types.SegmentFilter, error)
	ListByConversation(ctx context.Context, tx *gorm.DB, conversationID uuid.UUID) ([]*types.SegmentFilter, error)
	Update(ctx context.Context, tx *gorm.DB, filter *types.SegmentFilter) error
	Delete(ctx context.Context, tx *gorm.DB, filterID uuid.UUID) error
}

type segmentFilterRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSegmentFilterRepo(db *gorm.DB, baseLog *logger.Logger) SegmentFilterRepo {
	repoLog := baseLog.With("repo", "SegmentFilterRepo")
	return &segmentFilterRepo{db: db, log: repoLog}
}

func (sr *segmentFilterRepo) Create(ctx context.Context, tx *gorm.DB, filter *types.SegmentFilter) (*types.SegmentFilter, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	if err := transaction.WithContext(ctx).Create(filter).Error; err != nil {
		return nil, err
	}
	return filter, nil
}

func (sr *segmentFilterRepo) GetByID(ctx context.Context, tx *gorm.DB, filterID uuid.UUID) (*types.SegmentFilter, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	var result types.SegmentFilter
	if err := transaction.WithContext(ctx).
		Where("id = ?", filterID).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (sr *segmentFilterRepo) ListByConversation(ctx context.Context, tx *gorm.DB, conversationID uuid.UUID) ([]*types.SegmentFilter, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	var results []*types.SegmentFilter
	if err := transaction.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (sr *segmentFilterRepo) Update(ctx context.Context, tx *gorm.DB, filter *types.SegmentFilter) error {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	return transaction.WithContext(ctx).
		Model(&types.SegmentFilter{}).
		Where("id = ?", filter.ID).
		Updates(map[string]any{
			"clusters":         filter.Clusters,
			"engagement_level": filter.EngagementLevel,
			"comments":         filter.Comments,
			"updated_at":       gorm.Expr("now()"),
		}).Error
}

func (sr *segmentFilterRepo) Delete(ctx context.Context, tx *gorm.DB, filterID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	return transaction.WithContext(ctx).
		Where("id = ?", filterID).
		Delete(&types.SegmentFilter{}).Error
}

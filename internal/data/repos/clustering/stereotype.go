package clustering

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/openagora/opinion-engine/internal/domain"
	"github.com/openagora/opinion-engine/internal/platform/logger"
)

type StereotypeRepo interface {
	Create(ctx context.Context, tx *gorm.DB, stereotypes []*types.Stereotype) ([]*types.Stereotype, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, stereotypeIDs []uuid.UUID) ([]*types.Stereotype, error)
	ListByOwner(ctx context.Context, tx *gorm.DB, ownerID uuid.UUID) ([]*types.Stereotype, error)
	UpsertVote(ctx context.Context, tx *gorm.DB, vote *types.StereotypeVote) (*types.StereotypeVote, error)
	ListVotes(ctx context.Context, tx *gorm.DB, stereotypeIDs []uuid.UUID) ([]*types.StereotypeVote, error)
}

type stereotypeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewStereotypeRepo(db *gorm.DB, baseLog *logger.Logger) StereotypeRepo {
	repoLog := baseLog.With("repo", "StereotypeRepo")
	return &stereotypeRepo{db: db, log: repoLog}
}

func (sr *stereotypeRepo) Create(ctx context.Context, tx *gorm.DB, stereotypes []*types.Stereotype) ([]*types.Stereotype, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	if len(stereotypes) == 0 {
		return []*types.Stereotype{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&stereotypes).Error; err != nil {
		return nil, err
	}
	return stereotypes, nil
}

func (sr *stereotypeRepo) GetByIDs(ctx context.Context, tx *gorm.DB, stereotypeIDs []uuid.UUID) ([]*types.Stereotype, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	var results []*types.Stereotype
	if len(stereotypeIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("id IN ?", stereotypeIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (sr *stereotypeRepo) ListByOwner(ctx context.Context, tx *gorm.DB, ownerID uuid.UUID) ([]*types.Stereotype, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	var results []*types.Stereotype
	if err := transaction.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// UpsertVote sets the persona's stance on a comment, replacing an earlier one.
func (sr *stereotypeRepo) UpsertVote(ctx context.Context, tx *gorm.DB, vote *types.StereotypeVote) (*types.StereotypeVote, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	if err := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "stereotype_id"}, {Name: "comment_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"choice":     vote.Choice,
				"updated_at": gorm.Expr("now()"),
			}),
		}).
		Create(vote).Error; err != nil {
		return nil, err
	}
	return vote, nil
}

func (sr *stereotypeRepo) ListVotes(ctx context.Context, tx *gorm.DB, stereotypeIDs []uuid.UUID) ([]*types.StereotypeVote, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	var results []*types.StereotypeVote
	if len(stereotypeIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("stereotype_id IN ?", stereotypeIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

package clustering

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/openagora/opinion-engine/internal/domain"
	"github.com/openagora/opinion-engine/internal/platform/logger"
)

type ClusterRepo interface {
	Create(ctx context.Context, tx *gorm.DB, clusters []*types.Cluster) ([]*types.Cluster, error)
	GetByID(ctx context.Context, tx *gorm.DB, clusterID uuid.UUID) (*types.Cluster, error)
	ListByClusterization(ctx context.Context, tx *gorm.DB, clusterizationID uuid.UUID) ([]*types.Cluster, error)
	SetUsers(ctx context.Context, tx *gorm.DB, clusterID uuid.UUID, users datatypes.JSON) error
	AddStereotype(ctx context.Context, tx *gorm.DB, clusterID, stereotypeID uuid.UUID) error
	ListStereotypes(ctx context.Context, tx *gorm.DB, clusterIDs []uuid.UUID) ([]*types.ClusterStereotype, error)
}

type clusterRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewClusterRepo(db *gorm.DB, baseLog *logger.Logger) ClusterRepo {
	repoLog := baseLog.With("repo", "ClusterRepo")
	return &clusterRepo{db: db, log: repoLog}
}

func (cr *clusterRepo) Create(ctx context.Context, tx *gorm.DB, clusters []*types.Cluster) ([]*types.Cluster, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}

	if len(clusters) == 0 {
		return []*types.Cluster{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&clusters).Error; err != nil {
		return nil, err
	}
	return clusters, nil
}

func (cr *clusterRepo) GetByID(ctx context.Context, tx *gorm.DB, clusterID uuid.UUID) (*types.Cluster, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}

	var result types.Cluster
	if err := transaction.WithContext(ctx).
		Where("id = ?", clusterID).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

// ListByClusterization returns clusters in declaration order. The position in
// this slice is the k-means label, so the ordering is part of the contract.
func (cr *clusterRepo) ListByClusterization(ctx context.Context, tx *gorm.DB, clusterizationID uuid.UUID) ([]*types.Cluster, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}

	var results []*types.Cluster
	if err := transaction.WithContext(ctx).
		Where("clusterization_id = ?", clusterizationID).
		Order(`"index" ASC`).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// SetUsers replaces the cluster's membership wholesale.
func (cr *clusterRepo) SetUsers(ctx context.Context, tx *gorm.DB, clusterID uuid.UUID, users datatypes.JSON) error {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}
	return transaction.WithContext(ctx).
		Model(&types.Cluster{}).
		Where("id = ?", clusterID).
		Updates(map[string]any{
			"users":      users,
			"updated_at": gorm.Expr("now()"),
		}).Error
}

func (cr *clusterRepo) AddStereotype(ctx context.Context, tx *gorm.DB, clusterID, stereotypeID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}
	link := &types.ClusterStereotype{ClusterID: clusterID, StereotypeID: stereotypeID}
	return transaction.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(link).Error
}

func (cr *clusterRepo) ListStereotypes(ctx context.Context, tx *gorm.DB, clusterIDs []uuid.UUID) ([]*types.ClusterStereotype, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}

	var results []*types.ClusterStereotype
	if len(clusterIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("cluster_id IN ?", clusterIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

package catalog

import (
	"context"

	"github.com/castellanosdev/shopline-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// VariantRepository reads purchasable variants together with their products.
type VariantRepository interface {
	WithTx(tx *gorm.DB) VariantRepository
	FindByID(ctx context.Context, id uuid.UUID) (*models.Variant, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Variant, error)
}

type variantRepository struct {
	db *gorm.DB
}

// NewVariantRepository builds a variant repository bound to the provided DB.
func NewVariantRepository(db *gorm.DB) VariantRepository {
	return &variantRepository{db: db}
}

func (r *variantRepository) WithTx(tx *gorm.DB) VariantRepository {
	if tx == nil {
		return r
	}
	return &variantRepository{db: tx}
}

func (r *variantRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Variant, error) {
	var variant models.Variant
	err := r.db.WithContext(ctx).
		Preload("Product").
		Where("id = ? AND deleted_at IS NULL", id).
		First(&variant).Error
	if err != nil {
		return nil, err
	}
	return &variant, nil
}

func (r *variantRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Variant, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var variants []models.Variant
	err := r.db.WithContext(ctx).
		Preload("Product").
		Where("id IN ? AND deleted_at IS NULL", ids).
		Find(&variants).Error
	if err != nil {
		return nil, err
	}
	return variants, nil
}

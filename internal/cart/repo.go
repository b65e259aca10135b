package cart

import (
	"context"

	"github.com/castellanosdev/shopline-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository manages persistent cart lines.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.CartLine, error)
	FindByUserAndVariants(ctx context.Context, userID uuid.UUID, variantIDs []uuid.UUID) ([]models.CartLine, error)
	FindLine(ctx context.Context, userID, lineID uuid.UUID) (*models.CartLine, error)
	MergeLine(ctx context.Context, userID, variantID uuid.UUID, qty int) (*models.CartLine, error)
	UpdateQuantity(ctx context.Context, userID, lineID uuid.UUID, qty int) error
	DeleteLine(ctx context.Context, userID, lineID uuid.UUID) error
	DeleteByUserAndVariants(ctx context.Context, userID uuid.UUID, variantIDs []uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a cart repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.CartLine, error) {
	var lines []models.CartLine
	err := r.db.WithContext(ctx).
		Preload("Variant.Product").
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&lines).Error
	if err != nil {
		return nil, err
	}
	return lines, nil
}

func (r *repository) FindByUserAndVariants(ctx context.Context, userID uuid.UUID, variantIDs []uuid.UUID) ([]models.CartLine, error) {
	if len(variantIDs) == 0 {
		return nil, nil
	}
	var lines []models.CartLine
	err := r.db.WithContext(ctx).
		Preload("Variant.Product").
		Where("user_id = ? AND variant_id IN ?", userID, variantIDs).
		Order("created_at ASC").
		Find(&lines).Error
	if err != nil {
		return nil, err
	}
	return lines, nil
}

func (r *repository) FindLine(ctx context.Context, userID, lineID uuid.UUID) (*models.CartLine, error) {
	var line models.CartLine
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", lineID, userID).
		First(&line).Error
	if err != nil {
		return nil, err
	}
	return &line, nil
}

// MergeLine inserts a new line or adds qty onto an existing (user, variant)
// line. The conditional update keeps concurrent merges from clobbering each
// other.
func (r *repository) MergeLine(ctx context.Context, userID, variantID uuid.UUID, qty int) (*models.CartLine, error) {
	db := r.db.WithContext(ctx)

	res := db.Model(&models.CartLine{}).
		Where("user_id = ? AND variant_id = ?", userID, variantID).
		Update("quantity", gorm.Expr("quantity + ?", qty))
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		line := models.CartLine{
			UserID:    userID,
			VariantID: variantID,
			Quantity:  qty,
		}
		if err := db.Create(&line).Error; err != nil {
			return nil, err
		}
		return &line, nil
	}

	var line models.CartLine
	if err := db.Where("user_id = ? AND variant_id = ?", userID, variantID).First(&line).Error; err != nil {
		return nil, err
	}
	return &line, nil
}

func (r *repository) UpdateQuantity(ctx context.Context, userID, lineID uuid.UUID, qty int) error {
	res := r.db.WithContext(ctx).Model(&models.CartLine{}).
		Where("id = ? AND user_id = ?", lineID, userID).
		Update("quantity", qty)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) DeleteLine(ctx context.Context, userID, lineID uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", lineID, userID).
		Delete(&models.CartLine{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) DeleteByUserAndVariants(ctx context.Context, userID uuid.UUID, variantIDs []uuid.UUID) error {
	if len(variantIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Where("user_id = ? AND variant_id IN ?", userID, variantIDs).
		Delete(&models.CartLine{}).Error
}

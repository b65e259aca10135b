package coupons

import (
	"context"
	"strings"
	"time"

	"github.com/castellanosdev/shopline-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository manages coupon rows and their scope records.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByCode(ctx context.Context, code string) (*models.Coupon, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Coupon, error)
	ListCurrent(ctx context.Context, now time.Time) ([]models.Coupon, error)
	IncrementUsage(ctx context.Context, id uuid.UUID) (bool, error)
	DecrementUsage(ctx context.Context, id uuid.UUID) error
	Create(ctx context.Context, coupon *models.Coupon) (*models.Coupon, error)
	Update(ctx context.Context, coupon *models.Coupon) (*models.Coupon, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a coupon repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindByCode(ctx context.Context, code string) (*models.Coupon, error) {
	var coupon models.Coupon
	err := r.db.WithContext(ctx).
		Preload("Scopes").
		Where("code = ?", strings.ToUpper(strings.TrimSpace(code))).
		First(&coupon).Error
	if err != nil {
		return nil, err
	}
	return &coupon, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Coupon, error) {
	var coupon models.Coupon
	err := r.db.WithContext(ctx).
		Preload("Scopes").
		Where("id = ?", id).
		First(&coupon).Error
	if err != nil {
		return nil, err
	}
	return &coupon, nil
}

// ListCurrent returns coupons whose validity window contains now. Usage caps
// are not filtered here; callers run the full validation per coupon.
func (r *repository) ListCurrent(ctx context.Context, now time.Time) ([]models.Coupon, error) {
	var coupons []models.Coupon
	err := r.db.WithContext(ctx).
		Preload("Scopes").
		Where("(starts_at IS NULL OR starts_at <= ?) AND (ends_at IS NULL OR ends_at >= ?)", now, now).
		Order("created_at ASC").
		Find(&coupons).Error
	if err != nil {
		return nil, err
	}
	return coupons, nil
}

// IncrementUsage bumps times_used only while the cap allows it. Returns false
// when the coupon is exhausted.
func (r *repository) IncrementUsage(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Exec(`
		UPDATE coupons
		SET times_used = times_used + 1,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND (max_usage IS NULL OR times_used < max_usage)
	`, id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// DecrementUsage returns one use to the coupon, never going below zero.
func (r *repository) DecrementUsage(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Exec(`
		UPDATE coupons
		SET times_used = times_used - 1,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND times_used > 0
	`, id).Error
}

func (r *repository) Create(ctx context.Context, coupon *models.Coupon) (*models.Coupon, error) {
	if err := r.db.WithContext(ctx).Create(coupon).Error; err != nil {
		return nil, err
	}
	return coupon, nil
}

// Update saves coupon fields and replaces its scope records.
func (r *repository) Update(ctx context.Context, coupon *models.Coupon) (*models.Coupon, error) {
	db := r.db.WithContext(ctx)
	if err := db.Where("coupon_id = ?", coupon.ID).Delete(&models.CouponScope{}).Error; err != nil {
		return nil, err
	}
	if err := db.Save(coupon).Error; err != nil {
		return nil, err
	}
	return coupon, nil
}

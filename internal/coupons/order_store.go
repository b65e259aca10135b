package coupons

import (
	"context"

	"github.com/castellanosdev/shopline-backend/pkg/db/models"
	"github.com/castellanosdev/shopline-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type orderStore struct {
	db *gorm.DB
}

// NewOrderStore builds the default order accessor used by the coupon engine.
func NewOrderStore(db *gorm.DB) OrderStore {
	return &orderStore{db: db}
}

func (s *orderStore) WithTx(tx *gorm.DB) OrderStore {
	if tx == nil {
		return s
	}
	return &orderStore{db: tx}
}

func (s *orderStore) FindForUser(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).
		Preload("Lines").
		Where("id = ? AND user_id = ? AND deletion_state = ?", orderID, userID, enums.DeletionStateActive).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (s *orderStore) UpdatePricing(ctx context.Context, orderID uuid.UUID, finalTotalCents int, couponID *uuid.UUID) error {
	return s.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ?", orderID).
		Updates(map[string]any{
			"final_total_cents": finalTotalCents,
			"coupon_id":         couponID,
		}).Error
}

package models

import (
	"time"

	"github.com/google/uuid"
)

// CouponScope is an explicit join record limiting a single-target coupon to
// a product or a category. Exactly one of ProductID/CategoryID is set.
type CouponScope struct {
	ID         uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	CouponID   uuid.UUID  `gorm:"column:coupon_id;type:uuid;not null;index"`
	ProductID  *uuid.UUID `gorm:"column:product_id;type:uuid"`
	CategoryID *uuid.UUID `gorm:"column:category_id;type:uuid"`
	CreatedAt  time.Time  `gorm:"column:created_at;autoCreateTime"`
}

// Matches reports whether the scope covers the given product/category pair.
func (s CouponScope) Matches(productID, categoryID uuid.UUID) bool {
	if s.ProductID != nil && *s.ProductID == productID {
		return true
	}
	if s.CategoryID != nil && *s.CategoryID == categoryID {
		return true
	}
	return false
}

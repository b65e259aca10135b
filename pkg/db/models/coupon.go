package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/castellanosdev/shopline-backend/pkg/enums"
)

// Coupon is a promotional code. TimesUsed is a single atomically-updated
// counter column so the usage cap survives multiple server instances.
type Coupon struct {
	ID                 uuid.UUID                `gorm:"column:id;type:uuid;primaryKey"`
	Code               string                   `gorm:"column:code;not null;uniqueIndex"`
	DiscountType       enums.CouponDiscountType `gorm:"column:discount_type;type:text;not null"`
	DiscountValue      int                      `gorm:"column:discount_value;not null"`
	Target             enums.CouponTarget       `gorm:"column:target;type:text;not null;default:'all'"`
	MinimumOrderCents  *int                     `gorm:"column:minimum_order_cents"`
	MaxUsage           *int                     `gorm:"column:max_usage"`
	TimesUsed          int                      `gorm:"column:times_used;not null;default:0"`
	StartsAt           *time.Time               `gorm:"column:starts_at"`
	EndsAt             *time.Time               `gorm:"column:ends_at"`
	Scopes             []CouponScope            `gorm:"foreignKey:CouponID;constraint:OnDelete:CASCADE"`
	CreatedAt          time.Time                `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time                `gorm:"column:updated_at;autoUpdateTime"`
}

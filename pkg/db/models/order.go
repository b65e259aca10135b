package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/castellanosdev/shopline-backend/pkg/enums"
)

// Order is the priced result of a checkout. SubtotalCents and FinalTotalCents
// are stored, never recomputed from live variant prices; FinalTotalCents is
// always <= SubtotalCents.
type Order struct {
	ID                uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	UserID            uuid.UUID           `gorm:"column:user_id;type:uuid;not null;index"`
	Status            enums.OrderStatus   `gorm:"column:status;type:text;not null;default:'pending'"`
	SubtotalCents     int                 `gorm:"column:subtotal_cents;not null"`
	FinalTotalCents   int                 `gorm:"column:final_total_cents;not null"`
	CouponID          *uuid.UUID          `gorm:"column:coupon_id;type:uuid"`
	ShippingAddressID *uuid.UUID          `gorm:"column:shipping_address_id;type:uuid"`
	Message           *string             `gorm:"column:message"`
	DeletionState     enums.DeletionState `gorm:"column:deletion_state;type:text;not null;default:'active'"`
	DeletedAt         *time.Time          `gorm:"column:deleted_at"`
	Lines             []OrderLine         `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt         time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

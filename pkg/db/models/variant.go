package models

import (
	"time"

	"github.com/google/uuid"
)

// Variant is a purchasable SKU of a product with its own price and stock.
// Stock never goes negative: reservations decrement it through a conditional
// update, not through this struct.
type Variant struct {
	ID                 uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	ProductID          uuid.UUID  `gorm:"column:product_id;type:uuid;not null"`
	SKU                string     `gorm:"column:sku;not null;uniqueIndex"`
	PriceCents         int        `gorm:"column:price_cents;not null"`
	DiscountPriceCents *int       `gorm:"column:discount_price_cents"`
	Stock              int        `gorm:"column:stock;not null;default:0"`
	Product            *Product   `gorm:"foreignKey:ProductID"`
	DeletedAt          *time.Time `gorm:"column:deleted_at"`
	CreatedAt          time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

// EffectivePriceCents returns the discount price when present, else the list
// price.
func (v Variant) EffectivePriceCents() int {
	if v.DiscountPriceCents != nil {
		return *v.DiscountPriceCents
	}
	return v.PriceCents
}

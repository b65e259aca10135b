package models

import (
	"time"

	"github.com/google/uuid"
)

// OrderLine is the price/stock snapshot taken at order creation. Product and
// category ids are copied alongside the prices so coupon targeting never
// needs a live join back to the catalog. Immutable once the order leaves
// pending.
type OrderLine struct {
	ID                           uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	OrderID                      uuid.UUID `gorm:"column:order_id;type:uuid;not null;index"`
	VariantID                    uuid.UUID `gorm:"column:variant_id;type:uuid;not null"`
	ProductID                    uuid.UUID `gorm:"column:product_id;type:uuid;not null"`
	CategoryID                   uuid.UUID `gorm:"column:category_id;type:uuid;not null"`
	Quantity                     int       `gorm:"column:quantity;not null"`
	PriceAtPurchaseCents         int       `gorm:"column:price_at_purchase_cents;not null"`
	DiscountPriceAtPurchaseCents *int      `gorm:"column:discount_price_at_purchase_cents"`
	CreatedAt                    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt                    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TotalCents returns quantity times the captured effective unit price.
func (l OrderLine) TotalCents() int {
	unit := l.PriceAtPurchaseCents
	if l.DiscountPriceAtPurchaseCents != nil {
		unit = *l.DiscountPriceAtPurchaseCents
	}
	return unit * l.Quantity
}

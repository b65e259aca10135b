package models

import (
	"time"

	"github.com/google/uuid"
)

// CartLine holds a user's intent to buy a variant. The (user, variant) pair
// is unique; adding the same variant twice merges quantities.
type CartLine struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_cart_lines_user_variant"`
	VariantID uuid.UUID `gorm:"column:variant_id;type:uuid;not null;uniqueIndex:idx_cart_lines_user_variant"`
	Quantity  int       `gorm:"column:quantity;not null"`
	Variant   *Variant  `gorm:"foreignKey:VariantID"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

package models

import (
	"time"

	"github.com/google/uuid"
)

// Product is the catalog entity that variants hang off.
type Product struct {
	ID         uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	Name       string     `gorm:"column:name;not null"`
	CategoryID uuid.UUID  `gorm:"column:category_id;type:uuid;not null"`
	Category   *Category  `gorm:"foreignKey:CategoryID"`
	DeletedAt  *time.Time `gorm:"column:deleted_at"`
	CreatedAt  time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

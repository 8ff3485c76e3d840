package models

import (
	"time"

	"github.com/google/uuid"
)

// Product is the logical good; variants carry per-shop pricing and stock.
type Product struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Name       string    `gorm:"column:name;not null;uniqueIndex:ux_products_name_category"`
	CategoryID int64     `gorm:"column:category_id;not null;uniqueIndex:ux_products_name_category"`
	Category   Category  `gorm:"foreignKey:CategoryID"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
}

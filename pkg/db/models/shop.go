package models

import (
	"time"

	"github.com/google/uuid"
)

// Shop is a partner storefront. State false hides the shop and its variants
// from public listings without deleting anything.
type Shop struct {
	ID         uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	Name       string     `gorm:"column:name;not null"`
	URL        *string    `gorm:"column:url"`
	OwnerID    uuid.UUID  `gorm:"column:owner_id;type:uuid;not null;uniqueIndex"`
	State      bool       `gorm:"column:state;not null;default:true"`
	Categories []Category `gorm:"many2many:shop_categories"`
	CreatedAt  time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

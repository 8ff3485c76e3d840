package models

import (
	"time"

	"github.com/google/uuid"
)

// Contact is a delivery address plus phone owned by one user.
type Contact struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;index"`
	City      string    `gorm:"column:city;not null"`
	Street    string    `gorm:"column:street;not null"`
	House     string    `gorm:"column:house"`
	Structure string    `gorm:"column:structure"`
	Building  string    `gorm:"column:building"`
	Apartment string    `gorm:"column:apartment"`
	Phone     string    `gorm:"column:phone;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

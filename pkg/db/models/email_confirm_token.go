package models

import (
	"time"

	"github.com/google/uuid"
)

// EmailConfirmToken is a one-shot activation key mailed to new accounts.
// The row is deleted once the account is confirmed.
type EmailConfirmToken struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex"`
	Key       string    `gorm:"column:key;not null;index"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

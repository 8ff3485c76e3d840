package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/avolkov/orderflow-backend/pkg/enums"
)

// Order covers the whole lifecycle: it starts as the user's basket and turns
// into a placed order when state flips to new. The partial unique index keeps
// concurrent first-adds from ever creating two baskets for one user.
type Order struct {
	ID        uuid.UUID        `gorm:"column:id;type:uuid;primaryKey"`
	UserID    uuid.UUID        `gorm:"column:user_id;type:uuid;not null;uniqueIndex:ux_orders_user_basket,where:state = 'basket'"`
	State     enums.OrderState `gorm:"column:state;type:text;not null;default:'basket'"`
	ContactID *uuid.UUID       `gorm:"column:contact_id;type:uuid"`
	Contact   *Contact         `gorm:"foreignKey:ContactID"`
	Items     []OrderItem      `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

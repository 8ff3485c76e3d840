package payloads

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UserRegisteredEvent carries what the notification worker needs to send
// the confirmation email.
type UserRegisteredEvent struct {
	UserID     uuid.UUID `json:"user_id"`
	Email      string    `json:"email"`
	ConfirmKey string    `json:"confirm_key"`
}

// OrderPlacedEvent is emitted when a basket transitions to the new state.
type OrderPlacedEvent struct {
	OrderID   uuid.UUID       `json:"order_id"`
	UserID    uuid.UUID       `json:"user_id"`
	Email     string          `json:"email"`
	ContactID uuid.UUID       `json:"contact_id"`
	ItemCount int             `json:"item_count"`
	Total     decimal.Decimal `json:"total"`
}

// CatalogImportedEvent reports a completed price-list import.
type CatalogImportedEvent struct {
	ShopID       uuid.UUID `json:"shop_id"`
	ShopName     string    `json:"shop_name"`
	OwnerID      uuid.UUID `json:"owner_id"`
	OwnerEmail   string    `json:"owner_email"`
	VariantCount int       `json:"variant_count"`
}

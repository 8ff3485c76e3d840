package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderItem ties a basket/order to a variant. While the order is a basket the
// live variant price applies; at placement the name and unit price are copied
// into the snapshot columns so catalog re-imports cannot rewrite history. The
// variant reference is severed (SET NULL) if the variant is replaced later.
type OrderItem struct {
	ID        uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	OrderID   uuid.UUID  `gorm:"column:order_id;type:uuid;not null;uniqueIndex:ux_order_items_order_variant"`
	VariantID *uuid.UUID `gorm:"column:variant_id;type:uuid;uniqueIndex:ux_order_items_order_variant;constraint:OnDelete:SET NULL"`
	Quantity  int        `gorm:"column:quantity;not null"`

	ProductName string           `gorm:"column:product_name"`
	UnitPrice   *decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2)"`

	Variant   *ProductVariant `gorm:"foreignKey:VariantID"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
}

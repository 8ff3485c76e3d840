package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductVariant is one shop's listing of a product: supplier reference id,
// price, recommended retail price and stock. Replaced wholesale on every
// catalog import.
type ProductVariant struct {
	ID         uuid.UUID          `gorm:"column:id;type:uuid;primaryKey"`
	ShopID     uuid.UUID          `gorm:"column:shop_id;type:uuid;not null;uniqueIndex:ux_variants_shop_product"`
	ProductID  uuid.UUID          `gorm:"column:product_id;type:uuid;not null;uniqueIndex:ux_variants_shop_product"`
	ExternalID int64              `gorm:"column:external_id;not null"`
	Model      string             `gorm:"column:model"`
	Price      decimal.Decimal    `gorm:"column:price;type:numeric(12,2);not null"`
	PriceRRC   decimal.Decimal    `gorm:"column:price_rrc;type:numeric(12,2);not null"`
	Quantity   int                `gorm:"column:quantity;not null"`
	Shop       Shop               `gorm:"foreignKey:ShopID"`
	Product    Product            `gorm:"foreignKey:ProductID"`
	Parameters []VariantParameter `gorm:"foreignKey:VariantID;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time          `gorm:"column:created_at;autoCreateTime"`
}

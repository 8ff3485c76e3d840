package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/avolkov/orderflow-backend/pkg/db/models"
	"github.com/avolkov/orderflow-backend/pkg/enums"
)

// AddItemInput is one requested basket line.
type AddItemInput struct {
	VariantID uuid.UUID `json:"variant_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,gt=0"`
}

// AddItemsRequest adds variants to the caller's basket.
type AddItemsRequest struct {
	Items []AddItemInput `json:"items" validate:"required,min=1,dive"`
}

// ItemError reports why one line of a batch request was rejected.
type ItemError struct {
	VariantID uuid.UUID `json:"variant_id"`
	Message   string    `json:"message"`
}

// AddItemsResponse reports how many lines landed and which were rejected.
type AddItemsResponse struct {
	Created int         `json:"created"`
	Errors  []ItemError `json:"errors,omitempty"`
}

// QuantityInput targets one basket item by its id.
type QuantityInput struct {
	ID       uuid.UUID `json:"id" validate:"required"`
	Quantity int       `json:"quantity" validate:"required,gt=0"`
}

// UpdateQuantitiesRequest changes quantities on existing basket items.
type UpdateQuantitiesRequest struct {
	Items []QuantityInput `json:"items" validate:"required,min=1,dive"`
}

type UpdateQuantitiesResponse struct {
	Updated int64 `json:"updated"`
}

// RemoveItemsRequest deletes basket items by id.
type RemoveItemsRequest struct {
	Items []uuid.UUID `json:"items" validate:"required,min=1"`
}

type RemoveItemsResponse struct {
	Deleted int64 `json:"deleted"`
}

// PlaceOrderRequest turns a basket into a placed order.
type PlaceOrderRequest struct {
	ID        uuid.UUID `json:"id" validate:"required"`
	ContactID uuid.UUID `json:"contact_id" validate:"required"`
}

// OrderItemDTO is one line of a basket or placed order. For baskets the name
// and price come from the live variant; for placed orders from the snapshot.
type OrderItemDTO struct {
	ID          uuid.UUID       `json:"id"`
	VariantID   *uuid.UUID      `json:"variant_id,omitempty"`
	ProductName string          `json:"product_name"`
	ShopName    string          `json:"shop_name,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// OrderDTO is the full order view with a computed total.
type OrderDTO struct {
	ID        uuid.UUID        `json:"id"`
	State     enums.OrderState `json:"state"`
	ContactID *uuid.UUID       `json:"contact_id,omitempty"`
	Items     []OrderItemDTO   `json:"items"`
	Total     decimal.Decimal  `json:"total"`
	CreatedAt time.Time        `json:"created_at"`
}

// basketToDTO prices each line from the live variant.
func basketToDTO(order *models.Order) *OrderDTO {
	dto := &OrderDTO{
		ID:        order.ID,
		State:     order.State,
		ContactID: order.ContactID,
		Items:     make([]OrderItemDTO, 0, len(order.Items)),
		Total:     decimal.Zero,
		CreatedAt: order.CreatedAt,
	}
	for _, item := range order.Items {
		line := OrderItemDTO{
			ID:        item.ID,
			VariantID: item.VariantID,
			Quantity:  item.Quantity,
			UnitPrice: decimal.Zero,
		}
		if item.Variant != nil {
			line.ProductName = item.Variant.Product.Name
			line.ShopName = item.Variant.Shop.Name
			line.UnitPrice = item.Variant.Price
		}
		line.LineTotal = line.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		dto.Total = dto.Total.Add(line.LineTotal)
		dto.Items = append(dto.Items, line)
	}
	return dto
}

// placedToDTO prices each line from the placement snapshot so later catalog
// imports never change the total.
func placedToDTO(order *models.Order) *OrderDTO {
	dto := &OrderDTO{
		ID:        order.ID,
		State:     order.State,
		ContactID: order.ContactID,
		Items:     make([]OrderItemDTO, 0, len(order.Items)),
		Total:     decimal.Zero,
		CreatedAt: order.CreatedAt,
	}
	for _, item := range order.Items {
		line := OrderItemDTO{
			ID:          item.ID,
			VariantID:   item.VariantID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   decimal.Zero,
		}
		if item.UnitPrice != nil {
			line.UnitPrice = *item.UnitPrice
		}
		line.LineTotal = line.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		dto.Total = dto.Total.Add(line.LineTotal)
		dto.Items = append(dto.Items, line)
	}
	return dto
}

package shops

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/avolkov/orderflow-backend/pkg/db/models"
)

// CategoryDTO mirrors one taxonomy row.
type CategoryDTO struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// ShopDTO is the public storefront shape.
type ShopDTO struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	URL   *string   `json:"url,omitempty"`
	State bool      `json:"state"`
}

// VariantDTO is one purchasable listing with its product and parameters.
type VariantDTO struct {
	ID         uuid.UUID         `json:"id"`
	ExternalID int64             `json:"external_id"`
	Model      string            `json:"model,omitempty"`
	Product    string            `json:"product"`
	CategoryID int64             `json:"category_id"`
	Category   string            `json:"category"`
	Shop       ShopDTO           `json:"shop"`
	Price      decimal.Decimal   `json:"price"`
	PriceRRC   decimal.Decimal   `json:"price_rrc"`
	Quantity   int               `json:"quantity"`
	Parameters map[string]string `json:"parameters,omitempty"`
}

// VariantSearchFilter narrows the public catalog listing.
type VariantSearchFilter struct {
	ShopID     *uuid.UUID
	CategoryID *int64
}

// VariantPage is one page of catalog results.
type VariantPage struct {
	Items      []VariantDTO `json:"items"`
	NextCursor string       `json:"next_cursor,omitempty"`
}

// PartnerStateResponse reports whether the shop accepts orders.
type PartnerStateResponse struct {
	ShopID uuid.UUID `json:"shop_id"`
	Name   string    `json:"name"`
	State  bool      `json:"state"`
}

// UpdatePartnerStateRequest toggles order intake for the caller's shop.
type UpdatePartnerStateRequest struct {
	State bool `json:"state"`
}

func categoryFromModel(c *models.Category) CategoryDTO {
	return CategoryDTO{ID: c.ID, Name: c.Name}
}

func shopFromModel(s *models.Shop) ShopDTO {
	return ShopDTO{ID: s.ID, Name: s.Name, URL: s.URL, State: s.State}
}

func variantFromModel(v *models.ProductVariant) VariantDTO {
	params := make(map[string]string, len(v.Parameters))
	for _, p := range v.Parameters {
		params[p.Parameter.Name] = p.Value
	}
	return VariantDTO{
		ID:         v.ID,
		ExternalID: v.ExternalID,
		Model:      v.Model,
		Product:    v.Product.Name,
		CategoryID: v.Product.CategoryID,
		Category:   v.Product.Category.Name,
		Shop:       shopFromModel(&v.Shop),
		Price:      v.Price,
		PriceRRC:   v.PriceRRC,
		Quantity:   v.Quantity,
		Parameters: params,
	}
}

package importer

import (
	"fmt"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Money decodes YAML numeric scalars into exact decimals.
type Money struct {
	decimal.Decimal
}

func (m *Money) UnmarshalYAML(value *yaml.Node) error {
	d, err := decimal.NewFromString(value.Value)
	if err != nil {
		return fmt.Errorf("invalid decimal %q", value.Value)
	}
	m.Decimal = d
	return nil
}

// PriceList is the parsed supplier document.
type PriceList struct {
	Shop       string              `yaml:"shop"`
	Categories []PriceListCategory `yaml:"categories"`
	Goods      []PriceListGood     `yaml:"goods"`
}

// PriceListCategory declares one taxonomy entry the goods may reference.
type PriceListCategory struct {
	ID   int64  `yaml:"id"`
	Name string `yaml:"name"`
}

// PriceListGood is one variant row in the supplier catalog.
type PriceListGood struct {
	ID         int64          `yaml:"id"`
	Category   int64          `yaml:"category"`
	Model      string         `yaml:"model"`
	Name       string         `yaml:"name"`
	Price      Money          `yaml:"price"`
	PriceRRC   Money          `yaml:"price_rrc"`
	Quantity   int            `yaml:"quantity"`
	Parameters map[string]any `yaml:"parameters"`
}

// ImportRequest is the payload for POST /partner/update.
type ImportRequest struct {
	URL string `json:"url" validate:"required,url"`
}

// ImportResult reports what one import run replaced.
type ImportResult struct {
	ShopID       string `json:"shop_id"`
	ShopName     string `json:"shop_name"`
	Categories   int    `json:"categories"`
	ImportedRows int    `json:"imported"`
}

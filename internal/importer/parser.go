package importer

import (
	"fmt"
	"io"
	"strings"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	pkgerrors "github.com/avolkov/orderflow-backend/pkg/errors"
)

// Parse decodes and fully validates a price-list document. Validation
// problems are accumulated so a supplier sees every defect in one pass; any
// problem at all rejects the whole document before the DB is touched.
func Parse(r io.Reader) (*PriceList, error) {
	var doc PriceList
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&doc); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "malformed price list")
	}

	if err := validate(&doc); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid price list").
			WithDetails(strings.Split(err.Error(), "; "))
	}
	return &doc, nil
}

func validate(doc *PriceList) error {
	var errs error

	if strings.TrimSpace(doc.Shop) == "" {
		errs = multierr.Append(errs, fmt.Errorf("shop name is required"))
	}
	if len(doc.Categories) == 0 {
		errs = multierr.Append(errs, fmt.Errorf("at least one category is required"))
	}

	declared := make(map[int64]struct{}, len(doc.Categories))
	for i, cat := range doc.Categories {
		if cat.ID <= 0 {
			errs = multierr.Append(errs, fmt.Errorf("categories[%d]: id must be positive", i))
		}
		if strings.TrimSpace(cat.Name) == "" {
			errs = multierr.Append(errs, fmt.Errorf("categories[%d]: name is required", i))
		}
		if _, dup := declared[cat.ID]; dup {
			errs = multierr.Append(errs, fmt.Errorf("categories[%d]: duplicate id %d", i, cat.ID))
		}
		declared[cat.ID] = struct{}{}
	}

	seenGoods := make(map[int64]struct{}, len(doc.Goods))
	for i, good := range doc.Goods {
		if good.ID <= 0 {
			errs = multierr.Append(errs, fmt.Errorf("goods[%d]: id must be positive", i))
		} else if _, dup := seenGoods[good.ID]; dup {
			errs = multierr.Append(errs, fmt.Errorf("goods[%d]: duplicate id %d", i, good.ID))
		} else {
			seenGoods[good.ID] = struct{}{}
		}
		if strings.TrimSpace(good.Name) == "" {
			errs = multierr.Append(errs, fmt.Errorf("goods[%d]: name is required", i))
		}
		if _, ok := declared[good.Category]; !ok {
			errs = multierr.Append(errs, fmt.Errorf("goods[%d]: category %d is not declared", i, good.Category))
		}
		if good.Price.IsNegative() {
			errs = multierr.Append(errs, fmt.Errorf("goods[%d]: price must not be negative", i))
		}
		if good.PriceRRC.IsNegative() {
			errs = multierr.Append(errs, fmt.Errorf("goods[%d]: price_rrc must not be negative", i))
		}
		if good.Quantity < 0 {
			errs = multierr.Append(errs, fmt.Errorf("goods[%d]: quantity must not be negative", i))
		}
		for name := range good.Parameters {
			if strings.TrimSpace(name) == "" {
				errs = multierr.Append(errs, fmt.Errorf("goods[%d]: parameter names must not be empty", i))
			}
		}
	}

	return errs
}

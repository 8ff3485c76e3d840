package importer

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/avolkov/orderflow-backend/pkg/errors"
)

const validPriceList = `
shop: Svyaznoy
categories:
  - id: 224
    name: Smartphones
  - id: 15
    name: Accessories
goods:
  - id: 4216292
    category: 224
    model: apple/iphone/xs-max
    name: Smartphone Apple iPhone XS Max 512GB (gold)
    price: 110000.00
    price_rrc: 116990.00
    quantity: 14
    parameters:
      "Screen size (inch)": 6.5
      "Resolution (pix)": 2688x1242
      "Internal memory (GB)": 512
      "Color": gold
  - id: 4672670
    category: 15
    model: apple/airpods
    name: AirPods with charging case
    price: 12990
    price_rrc: 13990
    quantity: 50
    parameters: {}
`

func TestParseValidDocument(t *testing.T) {
	doc, err := Parse(strings.NewReader(validPriceList))
	require.NoError(t, err)

	assert.Equal(t, "Svyaznoy", doc.Shop)
	require.Len(t, doc.Categories, 2)
	assert.EqualValues(t, 224, doc.Categories[0].ID)

	require.Len(t, doc.Goods, 2)
	first := doc.Goods[0]
	assert.EqualValues(t, 4216292, first.ID)
	assert.Equal(t, "110000", first.Price.String())
	assert.Equal(t, "116990", first.PriceRRC.String())
	assert.Equal(t, 14, first.Quantity)
	assert.Equal(t, "6.5", firstParam(first.Parameters, "Screen size (inch)"))
}

func firstParam(params map[string]any, key string) string {
	if v, ok := params[key]; ok {
		return fmt.Sprint(v)
	}
	return ""
}

func TestParseRejections(t *testing.T) {
	cases := []struct {
		name string
		doc  string
		want string
	}{
		{
			name: "missing shop",
			doc: `
categories:
  - id: 1
    name: Phones
goods: []
`,
			want: "shop name is required",
		},
		{
			name: "no categories",
			doc: `
shop: Test
goods: []
`,
			want: "at least one category is required",
		},
		{
			name: "category without name",
			doc: `
shop: Test
categories:
  - id: 1
goods: []
`,
			want: "name is required",
		},
		{
			name: "good references undeclared category",
			doc: `
shop: Test
categories:
  - id: 1
    name: Phones
goods:
  - id: 10
    category: 99
    name: Phone X
    price: 100
    price_rrc: 120
    quantity: 1
`,
			want: "category 99 is not declared",
		},
		{
			name: "negative price",
			doc: `
shop: Test
categories:
  - id: 1
    name: Phones
goods:
  - id: 10
    category: 1
    name: Phone X
    price: -5
    price_rrc: 120
    quantity: 1
`,
			want: "price must not be negative",
		},
		{
			name: "negative quantity",
			doc: `
shop: Test
categories:
  - id: 1
    name: Phones
goods:
  - id: 10
    category: 1
    name: Phone X
    price: 5
    price_rrc: 120
    quantity: -1
`,
			want: "quantity must not be negative",
		},
		{
			name: "duplicate good id",
			doc: `
shop: Test
categories:
  - id: 1
    name: Phones
goods:
  - id: 10
    category: 1
    name: Phone X
    price: 5
    price_rrc: 6
    quantity: 1
  - id: 10
    category: 1
    name: Phone Y
    price: 5
    price_rrc: 6
    quantity: 1
`,
			want: "duplicate id 10",
		},
		{
			name: "not yaml at all",
			doc:  `{{{{`,
			want: "malformed price list",
		},
		{
			name: "unknown field",
			doc: `
shop: Test
categories: []
goods: []
surprise: true
`,
			want: "malformed price list",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tc.doc))
			typed := pkgerrors.As(err)
			require.NotNil(t, typed, "expected typed error")
			assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestParseAccumulatesAllProblems(t *testing.T) {
	doc := `
shop: ""
categories:
  - id: 0
    name: ""
goods:
  - id: 0
    category: 7
    name: ""
    price: -1
    price_rrc: -2
    quantity: -3
`
	_, err := Parse(strings.NewReader(doc))
	require.Error(t, err)
	msg := err.Error()
	for _, want := range []string{
		"shop name is required",
		"id must be positive",
		"category 7 is not declared",
		"price must not be negative",
		"price_rrc must not be negative",
		"quantity must not be negative",
	} {
		assert.Contains(t, msg, want)
	}
}

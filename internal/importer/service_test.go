package importer

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/avolkov/orderflow-backend/pkg/config"
	"github.com/avolkov/orderflow-backend/pkg/db"
	"github.com/avolkov/orderflow-backend/pkg/db/models"
	"github.com/avolkov/orderflow-backend/pkg/enums"
	pkgerrors "github.com/avolkov/orderflow-backend/pkg/errors"
	"github.com/avolkov/orderflow-backend/pkg/outbox"
)

func newImportTestDB(t *testing.T) *db.Client {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(
		&models.User{},
		&models.Shop{},
		&models.Category{},
		&models.Product{},
		&models.ProductVariant{},
		&models.Parameter{},
		&models.VariantParameter{},
		&models.Order{},
		&models.OrderItem{},
		&models.Contact{},
		&models.OutboxEvent{},
	))
	return db.FromGorm(conn)
}

func newImportService(t *testing.T, client *db.Client) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		DB:      client,
		Fetcher: NewFetcher(config.ImporterConfig{FetchTimeout: 5 * time.Second, MaxBodyBytes: 1 << 20}),
		Outbox:  outbox.NewService(outbox.NewRepository(client.DB()), nil),
	})
	require.NoError(t, err)
	return svc
}

func seedShopOwner(t *testing.T, client *db.Client) uuid.UUID {
	t.Helper()
	owner := models.User{
		ID:           uuid.New(),
		Email:        fmt.Sprintf("owner-%s@example.com", uuid.NewString()[:8]),
		PasswordHash: "x",
		FirstName:    "Shop",
		LastName:     "Owner",
		Role:         enums.UserRoleShop,
		IsActive:     true,
	}
	require.NoError(t, client.DB().Create(&owner).Error)
	return owner.ID
}

func mustParse(t *testing.T, doc string) *PriceList {
	t.Helper()
	parsed, err := Parse(strings.NewReader(doc))
	require.NoError(t, err)
	return parsed
}

func TestImportCreatesShopAndCatalog(t *testing.T) {
	client := newImportTestDB(t)
	svc := newImportService(t, client)
	ownerID := seedShopOwner(t, client)

	result, err := svc.Import(context.Background(), ownerID, mustParse(t, validPriceList))
	require.NoError(t, err)
	assert.Equal(t, "Svyaznoy", result.ShopName)
	assert.Equal(t, 2, result.Categories)
	assert.Equal(t, 2, result.ImportedRows)

	var shop models.Shop
	require.NoError(t, client.DB().First(&shop, "owner_id = ?", ownerID).Error)
	assert.True(t, shop.State)

	var variantCount int64
	require.NoError(t, client.DB().Model(&models.ProductVariant{}).
		Where("shop_id = ?", shop.ID).Count(&variantCount).Error)
	assert.EqualValues(t, 2, variantCount)

	var paramCount int64
	require.NoError(t, client.DB().Model(&models.VariantParameter{}).Count(&paramCount).Error)
	assert.EqualValues(t, 4, paramCount)

	var event models.OutboxEvent
	require.NoError(t, client.DB().First(&event, "event_type = ?", enums.EventCatalogImported).Error)
	assert.Equal(t, shop.ID, event.AggregateID)
}

func TestImportIsIdempotentOnShopResolution(t *testing.T) {
	client := newImportTestDB(t)
	svc := newImportService(t, client)
	ownerID := seedShopOwner(t, client)

	_, err := svc.Import(context.Background(), ownerID, mustParse(t, validPriceList))
	require.NoError(t, err)
	_, err = svc.Import(context.Background(), ownerID, mustParse(t, validPriceList))
	require.NoError(t, err)

	var shopCount int64
	require.NoError(t, client.DB().Model(&models.Shop{}).Count(&shopCount).Error)
	assert.EqualValues(t, 1, shopCount)

	var variantCount int64
	require.NoError(t, client.DB().Model(&models.ProductVariant{}).Count(&variantCount).Error)
	assert.EqualValues(t, 2, variantCount)
}

func TestImportFullyReplacesCatalog(t *testing.T) {
	client := newImportTestDB(t)
	svc := newImportService(t, client)
	ownerID := seedShopOwner(t, client)

	_, err := svc.Import(context.Background(), ownerID, mustParse(t, validPriceList))
	require.NoError(t, err)

	replacement := `
shop: Svyaznoy
categories:
  - id: 224
    name: Smartphones
goods:
  - id: 9999
    category: 224
    model: apple/iphone/15
    name: Smartphone Apple iPhone 15 128GB (black)
    price: 90000
    price_rrc: 95000
    quantity: 3
    parameters:
      "Color": black
`
	result, err := svc.Import(context.Background(), ownerID, mustParse(t, replacement))
	require.NoError(t, err)
	assert.Equal(t, 1, result.ImportedRows)

	var variants []models.ProductVariant
	require.NoError(t, client.DB().Find(&variants).Error)
	require.Len(t, variants, 1)
	assert.EqualValues(t, 9999, variants[0].ExternalID)

	// old parameter rows went with the old variants
	var paramLinks int64
	require.NoError(t, client.DB().Model(&models.VariantParameter{}).Count(&paramLinks).Error)
	assert.EqualValues(t, 1, paramLinks)
}

func TestImportRenamesShopForSameOwner(t *testing.T) {
	client := newImportTestDB(t)
	svc := newImportService(t, client)
	ownerID := seedShopOwner(t, client)

	_, err := svc.Import(context.Background(), ownerID, mustParse(t, validPriceList))
	require.NoError(t, err)

	renamed := strings.Replace(validPriceList, "shop: Svyaznoy", "shop: Euroset", 1)
	result, err := svc.Import(context.Background(), ownerID, mustParse(t, renamed))
	require.NoError(t, err)
	assert.Equal(t, "Euroset", result.ShopName)

	var shopCount int64
	require.NoError(t, client.DB().Model(&models.Shop{}).Count(&shopCount).Error)
	assert.EqualValues(t, 1, shopCount)
}

func TestImportRollsBackOnMidBatchFailure(t *testing.T) {
	client := newImportTestDB(t)
	svc := newImportService(t, client)
	ownerID := seedShopOwner(t, client)

	_, err := svc.Import(context.Background(), ownerID, mustParse(t, validPriceList))
	require.NoError(t, err)

	// two goods resolving to the same product violate the one-variant-per-
	// product-per-shop constraint partway through the batch
	conflicting := `
shop: Svyaznoy
categories:
  - id: 224
    name: Smartphones
goods:
  - id: 111
    category: 224
    name: Same Phone
    price: 100
    price_rrc: 110
    quantity: 1
  - id: 222
    category: 224
    name: Same Phone
    price: 200
    price_rrc: 210
    quantity: 2
`
	_, err = svc.Import(context.Background(), ownerID, mustParse(t, conflicting))
	require.Error(t, err)

	// prior catalog survives untouched
	var variants []models.ProductVariant
	require.NoError(t, client.DB().Find(&variants).Error)
	require.Len(t, variants, 2)
	for _, v := range variants {
		assert.NotEqualValues(t, 111, v.ExternalID)
	}
}

func TestImportRejectsCustomerAccounts(t *testing.T) {
	client := newImportTestDB(t)
	svc := newImportService(t, client)

	customer := models.User{
		ID:           uuid.New(),
		Email:        "customer@example.com",
		PasswordHash: "x",
		Role:         enums.UserRoleCustomer,
		IsActive:     true,
	}
	require.NoError(t, client.DB().Create(&customer).Error)

	_, err := svc.Import(context.Background(), customer.ID, mustParse(t, validPriceList))
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeForbidden, typed.Code())
}

func TestImportFromURLFetchesAndImports(t *testing.T) {
	client := newImportTestDB(t)
	svc := newImportService(t, client)
	ownerID := seedShopOwner(t, client)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(validPriceList))
	}))
	defer srv.Close()

	result, err := svc.ImportFromURL(context.Background(), ownerID, ImportRequest{URL: srv.URL})
	require.NoError(t, err)
	assert.Equal(t, 2, result.ImportedRows)
}

func TestFetcherRejectsBadSources(t *testing.T) {
	fetcher := NewFetcher(config.ImporterConfig{FetchTimeout: 2 * time.Second, MaxBodyBytes: 64})

	_, err := fetcher.Fetch(context.Background(), "ftp://example.com/list.yaml")
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err = fetcher.Fetch(context.Background(), srv.URL)
	typed = pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeDependency, typed.Code())

	big := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(make([]byte, 256))
	}))
	defer big.Close()

	_, err = fetcher.Fetch(context.Background(), big.URL)
	typed = pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

package shops

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/avolkov/orderflow-backend/pkg/db/models"
	pkgerrors "github.com/avolkov/orderflow-backend/pkg/errors"
	"github.com/avolkov/orderflow-backend/pkg/pagination"
)

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(
		&models.Category{},
		&models.Shop{},
		&models.Product{},
		&models.ProductVariant{},
		&models.Parameter{},
		&models.VariantParameter{},
	))

	svc, err := NewService(ServiceParams{Repo: NewRepository(conn)})
	require.NoError(t, err)
	return svc, conn
}

func seedShop(t *testing.T, conn *gorm.DB, name string, state bool) *models.Shop {
	t.Helper()
	shop := models.Shop{
		ID:      uuid.New(),
		Name:    name,
		OwnerID: uuid.New(),
		State:   state,
	}
	require.NoError(t, conn.Create(&shop).Error)
	return &shop
}

func seedVariant(t *testing.T, conn *gorm.DB, shop *models.Shop, categoryID int64, product string, quantity int, createdAt time.Time) *models.ProductVariant {
	t.Helper()
	category := models.Category{ID: categoryID, Name: fmt.Sprintf("category-%d", categoryID)}
	require.NoError(t, conn.FirstOrCreate(&category, models.Category{ID: categoryID}).Error)

	prod := models.Product{ID: uuid.New(), Name: product, CategoryID: categoryID}
	require.NoError(t, conn.Create(&prod).Error)

	variant := models.ProductVariant{
		ID:         uuid.New(),
		ShopID:     shop.ID,
		ProductID:  prod.ID,
		ExternalID: int64(uuid.New().ID()),
		Price:      decimal.NewFromInt(1000),
		PriceRRC:   decimal.NewFromInt(1200),
		Quantity:   quantity,
		CreatedAt:  createdAt,
	}
	require.NoError(t, conn.Create(&variant).Error)
	return &variant
}

func TestListShopsReturnsOnlyActiveStorefronts(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	seedShop(t, conn, "Open Shop", true)
	seedShop(t, conn, "Closed Shop", false)

	shops, err := svc.ListShops(ctx)
	require.NoError(t, err)
	require.Len(t, shops, 1)
	assert.Equal(t, "Open Shop", shops[0].Name)
	assert.True(t, shops[0].State)
}

func TestSearchVariantsHidesClosedShopsAndEmptyStock(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	now := time.Now().UTC()

	open := seedShop(t, conn, "Open Shop", true)
	closed := seedShop(t, conn, "Closed Shop", false)

	visible := seedVariant(t, conn, open, 10, "Visible Phone", 5, now)
	seedVariant(t, conn, closed, 10, "Hidden Phone", 5, now)
	seedVariant(t, conn, open, 10, "Sold Out Phone", 0, now)

	page, err := svc.SearchVariants(ctx, VariantSearchFilter{}, pagination.Params{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, visible.ID, page.Items[0].ID)
	assert.Equal(t, "Visible Phone", page.Items[0].Product)
	assert.Equal(t, "Open Shop", page.Items[0].Shop.Name)
}

func TestSearchVariantsAppliesShopAndCategoryFilters(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	now := time.Now().UTC()

	first := seedShop(t, conn, "First", true)
	second := seedShop(t, conn, "Second", true)

	seedVariant(t, conn, first, 10, "Phone A", 5, now)
	seedVariant(t, conn, first, 20, "Tablet A", 5, now)
	seedVariant(t, conn, second, 10, "Phone B", 5, now)

	categoryID := int64(10)
	page, err := svc.SearchVariants(ctx, VariantSearchFilter{
		ShopID:     &first.ID,
		CategoryID: &categoryID,
	}, pagination.Params{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Phone A", page.Items[0].Product)
	assert.Equal(t, categoryID, page.Items[0].CategoryID)
}

func TestSearchVariantsPaginatesWithCursor(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	base := time.Now().UTC().Add(-time.Hour)

	shop := seedShop(t, conn, "Paged Shop", true)
	for i := 0; i < 3; i++ {
		seedVariant(t, conn, shop, 10, fmt.Sprintf("Phone %d", i), 5, base.Add(time.Duration(i)*time.Minute))
	}

	first, err := svc.SearchVariants(ctx, VariantSearchFilter{}, pagination.Params{Limit: 2})
	require.NoError(t, err)
	require.Len(t, first.Items, 2)
	require.NotEmpty(t, first.NextCursor)

	second, err := svc.SearchVariants(ctx, VariantSearchFilter{}, pagination.Params{Limit: 2, Cursor: first.NextCursor})
	require.NoError(t, err)
	require.Len(t, second.Items, 1)
	assert.Empty(t, second.NextCursor)

	seen := map[uuid.UUID]bool{}
	for _, item := range append(first.Items, second.Items...) {
		assert.False(t, seen[item.ID], "duplicate item across pages")
		seen[item.ID] = true
	}
}

func TestSearchVariantsRejectsMalformedCursor(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.SearchVariants(context.Background(), VariantSearchFilter{}, pagination.Params{Cursor: "not-a-cursor"})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestPartnerStateRoundTrip(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	ownerID := uuid.New()
	_, err := svc.PartnerState(ctx, ownerID)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())

	shop := models.Shop{ID: uuid.New(), Name: "Svyaznoy", OwnerID: ownerID, State: true}
	require.NoError(t, conn.Create(&shop).Error)

	state, err := svc.PartnerState(ctx, ownerID)
	require.NoError(t, err)
	assert.True(t, state.State)
	assert.Equal(t, shop.ID, state.ShopID)

	updated, err := svc.UpdatePartnerState(ctx, ownerID, UpdatePartnerStateRequest{State: false})
	require.NoError(t, err)
	assert.False(t, updated.State)

	state, err = svc.PartnerState(ctx, ownerID)
	require.NoError(t, err)
	assert.False(t, state.State)
}

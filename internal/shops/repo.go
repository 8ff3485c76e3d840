package shops

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/avolkov/orderflow-backend/pkg/db/models"
	"github.com/avolkov/orderflow-backend/pkg/pagination"
)

// Repository serves the public catalog queries plus partner shop lookups.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) ListCategories(ctx context.Context) ([]models.Category, error) {
	var rows []models.Category
	err := r.db.WithContext(ctx).Order("id ASC").Find(&rows).Error
	return rows, err
}

func (r *Repository) ListActiveShops(ctx context.Context) ([]models.Shop, error) {
	var rows []models.Shop
	err := r.db.WithContext(ctx).
		Where("state = ?", true).
		Order("name ASC").
		Find(&rows).Error
	return rows, err
}

func (r *Repository) FindByOwner(ctx context.Context, ownerID uuid.UUID) (*models.Shop, error) {
	var shop models.Shop
	err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).First(&shop).Error
	if err != nil {
		return nil, err
	}
	return &shop, nil
}

func (r *Repository) UpdateState(ctx context.Context, shopID uuid.UUID, state bool) error {
	return r.db.WithContext(ctx).
		Model(&models.Shop{}).
		Where("id = ?", shopID).
		UpdateColumn("state", state).Error
}

// SearchVariants pages through in-stock listings of active shops, newest
// first, applying the optional shop/category filters.
func (r *Repository) SearchVariants(ctx context.Context, filter VariantSearchFilter, limit int, cursor *pagination.Cursor) ([]models.ProductVariant, error) {
	query := r.db.WithContext(ctx).
		Model(&models.ProductVariant{}).
		Joins("JOIN shops ON shops.id = product_variants.shop_id").
		Joins("JOIN products ON products.id = product_variants.product_id").
		Where("shops.state = ?", true).
		Where("product_variants.quantity > 0")

	if filter.ShopID != nil {
		query = query.Where("product_variants.shop_id = ?", *filter.ShopID)
	}
	if filter.CategoryID != nil {
		query = query.Where("products.category_id = ?", *filter.CategoryID)
	}
	if cursor != nil {
		query = query.Where(
			"(product_variants.created_at, product_variants.id) < (?, ?)",
			cursor.CreatedAt, cursor.ID,
		)
	}

	var rows []models.ProductVariant
	err := query.
		Preload("Shop").
		Preload("Product").
		Preload("Product.Category").
		Preload("Parameters").
		Preload("Parameters.Parameter").
		Order("product_variants.created_at DESC").
		Order("product_variants.id DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

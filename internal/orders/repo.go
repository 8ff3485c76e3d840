package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/avolkov/orderflow-backend/pkg/db/models"
	"github.com/avolkov/orderflow-backend/pkg/enums"
)

// Repository persists baskets and placed orders. Item queries are always
// scoped to an order owned by the caller.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) FindBasket(ctx context.Context, userID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND state = ?", userID, enums.OrderStateBasket).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// FindBasketWithItems preloads the live variant graph for pricing.
func (r *Repository) FindBasketWithItems(ctx context.Context, userID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND state = ?", userID, enums.OrderStateBasket).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_items.created_at ASC")
		}).
		Preload("Items.Variant").
		Preload("Items.Variant.Product").
		Preload("Items.Variant.Shop").
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *Repository) CreateBasket(ctx context.Context, userID uuid.UUID) (*models.Order, error) {
	order := models.Order{
		ID:     uuid.New(),
		UserID: userID,
		State:  enums.OrderStateBasket,
	}
	if err := r.db.WithContext(ctx).Create(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *Repository) FindVariant(ctx context.Context, id uuid.UUID) (*models.ProductVariant, error) {
	var variant models.ProductVariant
	err := r.db.WithContext(ctx).
		Preload("Shop").
		Preload("Product").
		First(&variant, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &variant, nil
}

func (r *Repository) CreateItem(ctx context.Context, item *models.OrderItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

// UpdateItemQuantity changes one item's quantity if it belongs to the order.
// Foreign ids affect zero rows.
func (r *Repository) UpdateItemQuantity(ctx context.Context, orderID, itemID uuid.UUID, quantity int) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.OrderItem{}).
		Where("id = ? AND order_id = ?", itemID, orderID).
		Update("quantity", quantity)
	return res.RowsAffected, res.Error
}

// DeleteItems removes the given items from the order and reports how many
// rows were actually deleted.
func (r *Repository) DeleteItems(ctx context.Context, orderID uuid.UUID, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).
		Where("order_id = ? AND id IN ?", orderID, ids).
		Delete(&models.OrderItem{})
	return res.RowsAffected, res.Error
}

func (r *Repository) ListPlaced(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	var rows []models.Order
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND state <> ?", userID, enums.OrderStateBasket).
		Preload("Items").
		Preload("Contact").
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

// ListPlacedForShop returns placed orders that contain at least one of the
// shop's live variants. Items severed by a later re-import are invisible
// here; the customer still sees them through the snapshot.
func (r *Repository) ListPlacedForShop(ctx context.Context, shopID uuid.UUID) ([]models.Order, error) {
	var rows []models.Order
	err := r.db.WithContext(ctx).
		Distinct("orders.*").
		Joins("JOIN order_items ON order_items.order_id = orders.id").
		Joins("JOIN product_variants ON product_variants.id = order_items.variant_id").
		Where("product_variants.shop_id = ? AND orders.state <> ?", shopID, enums.OrderStateBasket).
		Preload("Items").
		Preload("Contact").
		Order("orders.created_at DESC").
		Find(&rows).Error
	return rows, err
}

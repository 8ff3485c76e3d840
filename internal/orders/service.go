package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/avolkov/orderflow-backend/pkg/db"
	"github.com/avolkov/orderflow-backend/pkg/db/models"
	"github.com/avolkov/orderflow-backend/pkg/enums"
	pkgerrors "github.com/avolkov/orderflow-backend/pkg/errors"
	"github.com/avolkov/orderflow-backend/pkg/logger"
	"github.com/avolkov/orderflow-backend/pkg/outbox"
	"github.com/avolkov/orderflow-backend/pkg/outbox/payloads"
)

// Service is the basket and order surface used by the controllers.
type Service interface {
	AddItems(ctx context.Context, userID uuid.UUID, req AddItemsRequest) (*AddItemsResponse, error)
	UpdateQuantities(ctx context.Context, userID uuid.UUID, req UpdateQuantitiesRequest) (*UpdateQuantitiesResponse, error)
	RemoveItems(ctx context.Context, userID uuid.UUID, req RemoveItemsRequest) (*RemoveItemsResponse, error)
	Place(ctx context.Context, userID uuid.UUID, req PlaceOrderRequest) (*OrderDTO, error)
	Basket(ctx context.Context, userID uuid.UUID) (*OrderDTO, error)
	ListPlaced(ctx context.Context, userID uuid.UUID) ([]OrderDTO, error)
	ListForShop(ctx context.Context, ownerID uuid.UUID) ([]OrderDTO, error)
}

type service struct {
	db     *db.Client
	repo   *Repository
	outbox *outbox.Service
	logg   *logger.Logger
}

// ServiceParams bundles the order service dependencies.
type ServiceParams struct {
	DB     *db.Client
	Repo   *Repository
	Outbox *outbox.Service
	Logger *logger.Logger
}

func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("database client is required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("order repository is required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox service is required")
	}
	return &service{
		db:     params.DB,
		repo:   params.Repo,
		outbox: params.Outbox,
		logg:   params.Logger,
	}, nil
}

// AddItems validates each line independently and reports per-line failures
// alongside the created count. Lines do not fail each other.
func (s *service) AddItems(ctx context.Context, userID uuid.UUID, req AddItemsRequest) (*AddItemsResponse, error) {
	if len(req.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "items are required")
	}

	basket, err := s.getOrCreateBasket(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := &AddItemsResponse{}
	for _, input := range req.Items {
		if msg := s.addItem(ctx, basket.ID, input); msg != "" {
			resp.Errors = append(resp.Errors, ItemError{VariantID: input.VariantID, Message: msg})
			continue
		}
		resp.Created++
	}
	return resp, nil
}

func (s *service) addItem(ctx context.Context, basketID uuid.UUID, input AddItemInput) string {
	if input.Quantity < 1 {
		return "quantity must be positive"
	}

	variant, err := s.repo.FindVariant(ctx, input.VariantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "variant not found"
		}
		return "could not load variant"
	}
	if !variant.Shop.State {
		return "shop is not accepting orders"
	}

	variantID := input.VariantID
	item := models.OrderItem{
		ID:        uuid.New(),
		OrderID:   basketID,
		VariantID: &variantID,
		Quantity:  input.Quantity,
	}
	if err := s.repo.CreateItem(ctx, &item); err != nil {
		if db.IsUniqueViolation(err, "ux_order_items_order_variant") {
			return "variant is already in the basket"
		}
		return "could not add item"
	}
	return ""
}

// getOrCreateBasket races the partial unique index: a concurrent first add
// may create the basket between our lookup and insert, so a unique violation
// is resolved by re-reading.
func (s *service) getOrCreateBasket(ctx context.Context, userID uuid.UUID) (*models.Order, error) {
	basket, err := s.repo.FindBasket(ctx, userID)
	if err == nil {
		return basket, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load basket")
	}

	basket, err = s.repo.CreateBasket(ctx, userID)
	if err == nil {
		return basket, nil
	}
	if db.IsUniqueViolation(err, "ux_orders_user_basket") {
		basket, err = s.repo.FindBasket(ctx, userID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reload basket")
		}
		return basket, nil
	}
	return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create basket")
}

func (s *service) UpdateQuantities(ctx context.Context, userID uuid.UUID, req UpdateQuantitiesRequest) (*UpdateQuantitiesResponse, error) {
	if len(req.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "items are required")
	}
	for _, input := range req.Items {
		if input.Quantity < 1 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
		}
	}

	basket, err := s.repo.FindBasket(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &UpdateQuantitiesResponse{}, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load basket")
	}

	resp := &UpdateQuantitiesResponse{}
	for _, input := range req.Items {
		affected, err := s.repo.UpdateItemQuantity(ctx, basket.ID, input.ID, input.Quantity)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update item quantity")
		}
		resp.Updated += affected
	}
	return resp, nil
}

func (s *service) RemoveItems(ctx context.Context, userID uuid.UUID, req RemoveItemsRequest) (*RemoveItemsResponse, error) {
	if len(req.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "items are required")
	}

	basket, err := s.repo.FindBasket(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &RemoveItemsResponse{}, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load basket")
	}

	deleted, err := s.repo.DeleteItems(ctx, basket.ID, req.Items)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "remove items")
	}
	return &RemoveItemsResponse{Deleted: deleted}, nil
}

// Place flips the basket to the new state, snapshots every line's name and
// price, and emits the placement event, all in one transaction. The guarded
// UPDATE makes a double placement fail with a state conflict instead of
// re-emitting.
func (s *service) Place(ctx context.Context, userID uuid.UUID, req PlaceOrderRequest) (*OrderDTO, error) {
	var contact models.Contact
	err := s.db.DB().WithContext(ctx).
		Where("id = ? AND user_id = ?", req.ContactID, userID).
		First(&contact).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "contact not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load contact")
	}

	var user models.User
	if err := s.db.DB().WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user")
	}

	var placed *models.Order
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		res := tx.WithContext(ctx).
			Model(&models.Order{}).
			Where("id = ? AND user_id = ? AND state = ?", req.ID, userID, enums.OrderStateBasket).
			Updates(map[string]any{
				"contact_id": req.ContactID,
				"state":      enums.OrderStateNew,
			})
		if res.Error != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, res.Error, "place order")
		}
		if res.RowsAffected == 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order is not an open basket")
		}

		var items []models.OrderItem
		if err := tx.WithContext(ctx).
			Preload("Variant").
			Preload("Variant.Product").
			Where("order_id = ?", req.ID).
			Find(&items).Error; err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load basket items")
		}

		total := decimal.Zero
		kept := make([]models.OrderItem, 0, len(items))
		for _, item := range items {
			// a variant severed while the order was still a basket cannot be
			// priced; the line is dropped at placement
			if item.VariantID == nil || item.Variant == nil {
				if err := tx.WithContext(ctx).Delete(&models.OrderItem{}, "id = ?", item.ID).Error; err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "drop stale item")
				}
				continue
			}
			price := item.Variant.Price
			if err := tx.WithContext(ctx).
				Model(&models.OrderItem{}).
				Where("id = ?", item.ID).
				Updates(map[string]any{
					"product_name": item.Variant.Product.Name,
					"unit_price":   price,
				}).Error; err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "snapshot item")
			}
			item.ProductName = item.Variant.Product.Name
			item.UnitPrice = &price
			total = total.Add(price.Mul(decimal.NewFromInt(int64(item.Quantity))))
			kept = append(kept, item)
		}
		if len(kept) == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "basket is empty")
		}

		contactID := req.ContactID
		placed = &models.Order{
			ID:        req.ID,
			UserID:    userID,
			State:     enums.OrderStateNew,
			ContactID: &contactID,
			Items:     kept,
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderPlaced,
			AggregateType: enums.AggregateOrder,
			AggregateID:   req.ID,
			Actor:         &outbox.ActorRef{UserID: userID, Role: string(user.Role)},
			Data: payloads.OrderPlacedEvent{
				OrderID:   req.ID,
				UserID:    userID,
				Email:     user.Email,
				ContactID: req.ContactID,
				ItemCount: len(kept),
				Total:     total,
			},
			Version: 1,
		})
	})
	if err != nil {
		return nil, err
	}

	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"order_id": placed.ID.String(),
			"items":    len(placed.Items),
		})
		s.logg.Info(logCtx, "order placed")
	}
	return placedToDTO(placed), nil
}

// Basket returns the caller's open basket, or an empty one if none exists
// yet. Lines are priced from the live catalog.
func (s *service) Basket(ctx context.Context, userID uuid.UUID) (*OrderDTO, error) {
	basket, err := s.repo.FindBasketWithItems(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &OrderDTO{
				State: enums.OrderStateBasket,
				Items: []OrderItemDTO{},
				Total: decimal.Zero,
			}, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load basket")
	}
	return basketToDTO(basket), nil
}

func (s *service) ListPlaced(ctx context.Context, userID uuid.UUID) ([]OrderDTO, error) {
	rows, err := s.repo.ListPlaced(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list orders")
	}
	out := make([]OrderDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *placedToDTO(&rows[i]))
	}
	return out, nil
}

// ListForShop is the partner view: placed orders containing the owner shop's
// variants. Baskets are never visible to partners.
func (s *service) ListForShop(ctx context.Context, ownerID uuid.UUID) ([]OrderDTO, error) {
	var shop models.Shop
	err := s.db.DB().WithContext(ctx).Where("owner_id = ?", ownerID).First(&shop).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "shop not found; import a price list first")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load shop")
	}

	rows, err := s.repo.ListPlacedForShop(ctx, shop.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list shop orders")
	}
	out := make([]OrderDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *placedToDTO(&rows[i]))
	}
	return out, nil
}

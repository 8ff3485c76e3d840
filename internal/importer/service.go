package importer

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/avolkov/orderflow-backend/pkg/db"
	"github.com/avolkov/orderflow-backend/pkg/db/models"
	"github.com/avolkov/orderflow-backend/pkg/enums"
	pkgerrors "github.com/avolkov/orderflow-backend/pkg/errors"
	"github.com/avolkov/orderflow-backend/pkg/logger"
	"github.com/avolkov/orderflow-backend/pkg/outbox"
	"github.com/avolkov/orderflow-backend/pkg/outbox/payloads"
)

// Service runs the full price-list replacement for a partner shop.
type Service interface {
	ImportFromURL(ctx context.Context, ownerID uuid.UUID, req ImportRequest) (*ImportResult, error)
	Import(ctx context.Context, ownerID uuid.UUID, doc *PriceList) (*ImportResult, error)
}

type service struct {
	db      *db.Client
	fetcher *Fetcher
	outbox  *outbox.Service
	logg    *logger.Logger
}

// ServiceParams bundles the importer dependencies.
type ServiceParams struct {
	DB      *db.Client
	Fetcher *Fetcher
	Outbox  *outbox.Service
	Logger  *logger.Logger
}

func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("database client is required")
	}
	if params.Fetcher == nil {
		return nil, fmt.Errorf("fetcher is required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox service is required")
	}
	return &service{
		db:      params.DB,
		fetcher: params.Fetcher,
		outbox:  params.Outbox,
		logg:    params.Logger,
	}, nil
}

func (s *service) ImportFromURL(ctx context.Context, ownerID uuid.UUID, req ImportRequest) (*ImportResult, error) {
	body, err := s.fetcher.Fetch(ctx, req.URL)
	if err != nil {
		return nil, err
	}
	doc, err := Parse(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	return s.Import(ctx, ownerID, doc)
}

// Import replaces the owner's entire catalog in one transaction. The shop is
// resolved or created first, then every existing variant is dropped and the
// document's goods are inserted fresh. Either everything lands or nothing
// does.
func (s *service) Import(ctx context.Context, ownerID uuid.UUID, doc *PriceList) (*ImportResult, error) {
	owner, err := s.loadOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	var result ImportResult
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		shop, err := resolveShop(ctx, tx, ownerID, doc.Shop)
		if err != nil {
			return err
		}

		categories, err := resolveCategories(ctx, tx, shop, doc.Categories)
		if err != nil {
			return err
		}

		if err := tx.WithContext(ctx).
			Where("variant_id IN (?)", tx.Model(&models.ProductVariant{}).
				Select("id").Where("shop_id = ?", shop.ID)).
			Delete(&models.VariantParameter{}).Error; err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "drop existing variant parameters")
		}
		// order item snapshots keep history; the live reference is severed
		if err := tx.WithContext(ctx).
			Model(&models.OrderItem{}).
			Where("variant_id IN (?)", tx.Model(&models.ProductVariant{}).
				Select("id").Where("shop_id = ?", shop.ID)).
			Update("variant_id", nil).Error; err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "detach order items")
		}
		if err := tx.WithContext(ctx).
			Where("shop_id = ?", shop.ID).
			Delete(&models.ProductVariant{}).Error; err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "drop existing variants")
		}

		imported, err := insertGoods(ctx, tx, shop, doc.Goods)
		if err != nil {
			return err
		}

		result = ImportResult{
			ShopID:       shop.ID.String(),
			ShopName:     shop.Name,
			Categories:   len(categories),
			ImportedRows: imported,
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventCatalogImported,
			AggregateType: enums.AggregateShop,
			AggregateID:   shop.ID,
			Actor:         &outbox.ActorRef{UserID: ownerID, Role: string(enums.UserRoleShop)},
			Data: payloads.CatalogImportedEvent{
				ShopID:       shop.ID,
				ShopName:     shop.Name,
				OwnerID:      ownerID,
				OwnerEmail:   owner.Email,
				VariantCount: imported,
			},
			Version: 1,
		})
	})
	if err != nil {
		return nil, err
	}

	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"shop_id":  result.ShopID,
			"imported": result.ImportedRows,
		})
		s.logg.Info(logCtx, "catalog import completed")
	}
	return &result, nil
}

func (s *service) loadOwner(ctx context.Context, ownerID uuid.UUID) (*models.User, error) {
	var owner models.User
	if err := s.db.DB().WithContext(ctx).First(&owner, "id = ?", ownerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load owner")
	}
	if owner.Role != enums.UserRoleShop {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only shop accounts can import price lists")
	}
	return &owner, nil
}

// resolveShop finds the owner's shop or creates it, keeping the display name
// in sync with the document. Idempotent across re-imports.
func resolveShop(ctx context.Context, tx *gorm.DB, ownerID uuid.UUID, name string) (*models.Shop, error) {
	var shop models.Shop
	err := tx.WithContext(ctx).Where("owner_id = ?", ownerID).First(&shop).Error
	switch {
	case err == nil:
		if shop.Name != name {
			if err := tx.WithContext(ctx).Model(&shop).UpdateColumn("name", name).Error; err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "rename shop")
			}
			shop.Name = name
		}
		return &shop, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		shop = models.Shop{
			ID:      uuid.New(),
			Name:    name,
			OwnerID: ownerID,
			State:   true,
		}
		if err := tx.WithContext(ctx).Create(&shop).Error; err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create shop")
		}
		return &shop, nil
	default:
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup shop")
	}
}

func resolveCategories(ctx context.Context, tx *gorm.DB, shop *models.Shop, cats []PriceListCategory) ([]models.Category, error) {
	out := make([]models.Category, 0, len(cats))
	for _, cat := range cats {
		var row models.Category
		err := tx.WithContext(ctx).First(&row, "id = ?", cat.ID).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			row = models.Category{ID: cat.ID, Name: cat.Name}
			if err := tx.WithContext(ctx).Create(&row).Error; err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create category")
			}
		case err != nil:
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup category")
		}
		if err := tx.WithContext(ctx).Model(shop).Association("Categories").Append(&row); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "link category to shop")
		}
		out = append(out, row)
	}
	return out, nil
}

func insertGoods(ctx context.Context, tx *gorm.DB, shop *models.Shop, goods []PriceListGood) (int, error) {
	imported := 0
	for _, good := range goods {
		product, err := resolveProduct(ctx, tx, good.Name, good.Category)
		if err != nil {
			return 0, err
		}

		variant := models.ProductVariant{
			ID:         uuid.New(),
			ShopID:     shop.ID,
			ProductID:  product.ID,
			ExternalID: good.ID,
			Model:      good.Model,
			Price:      good.Price.Decimal,
			PriceRRC:   good.PriceRRC.Decimal,
			Quantity:   good.Quantity,
		}
		if err := tx.WithContext(ctx).Create(&variant).Error; err != nil {
			return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create variant")
		}

		for name, value := range good.Parameters {
			parameter, err := resolveParameter(ctx, tx, name)
			if err != nil {
				return 0, err
			}
			link := models.VariantParameter{
				ID:          uuid.New(),
				VariantID:   variant.ID,
				ParameterID: parameter.ID,
				Value:       fmt.Sprint(value),
			}
			if err := tx.WithContext(ctx).Create(&link).Error; err != nil {
				return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create variant parameter")
			}
		}
		imported++
	}
	return imported, nil
}

func resolveProduct(ctx context.Context, tx *gorm.DB, name string, categoryID int64) (*models.Product, error) {
	var product models.Product
	err := tx.WithContext(ctx).
		Where("name = ? AND category_id = ?", name, categoryID).
		First(&product).Error
	switch {
	case err == nil:
		return &product, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		product = models.Product{ID: uuid.New(), Name: name, CategoryID: categoryID}
		if err := tx.WithContext(ctx).Create(&product).Error; err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create product")
		}
		return &product, nil
	default:
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup product")
	}
}

func resolveParameter(ctx context.Context, tx *gorm.DB, name string) (*models.Parameter, error) {
	var parameter models.Parameter
	err := tx.WithContext(ctx).Where("name = ?", name).First(&parameter).Error
	switch {
	case err == nil:
		return &parameter, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		parameter = models.Parameter{ID: uuid.New(), Name: name}
		if err := tx.WithContext(ctx).Create(&parameter).Error; err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create parameter")
		}
		return &parameter, nil
	default:
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup parameter")
	}
}

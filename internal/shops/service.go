package shops

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/avolkov/orderflow-backend/pkg/db/models"
	pkgerrors "github.com/avolkov/orderflow-backend/pkg/errors"
	"github.com/avolkov/orderflow-backend/pkg/pagination"
)

// Service is the public catalog plus partner-state surface.
type Service interface {
	ListCategories(ctx context.Context) ([]CategoryDTO, error)
	ListShops(ctx context.Context) ([]ShopDTO, error)
	SearchVariants(ctx context.Context, filter VariantSearchFilter, page pagination.Params) (*VariantPage, error)
	PartnerState(ctx context.Context, ownerID uuid.UUID) (*PartnerStateResponse, error)
	UpdatePartnerState(ctx context.Context, ownerID uuid.UUID, req UpdatePartnerStateRequest) (*PartnerStateResponse, error)
}

type service struct {
	repo *Repository
}

// ServiceParams bundles the dependencies for the shops service.
type ServiceParams struct {
	Repo *Repository
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("shops repository is required")
	}
	return &service{repo: params.Repo}, nil
}

func (s *service) ListCategories(ctx context.Context) ([]CategoryDTO, error) {
	rows, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list categories")
	}
	out := make([]CategoryDTO, 0, len(rows))
	for i := range rows {
		out = append(out, categoryFromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) ListShops(ctx context.Context) ([]ShopDTO, error) {
	rows, err := s.repo.ListActiveShops(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list shops")
	}
	out := make([]ShopDTO, 0, len(rows))
	for i := range rows {
		out = append(out, shopFromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) SearchVariants(ctx context.Context, filter VariantSearchFilter, page pagination.Params) (*VariantPage, error) {
	cursor, err := pagination.ParseCursor(page.Cursor)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid cursor")
	}

	limit := pagination.NormalizeLimit(page.Limit)
	rows, err := s.repo.SearchVariants(ctx, filter, pagination.LimitWithBuffer(page.Limit), cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "search variants")
	}

	nextCursor := ""
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}

	items := make([]VariantDTO, 0, len(rows))
	for i := range rows {
		items = append(items, variantFromModel(&rows[i]))
	}
	return &VariantPage{Items: items, NextCursor: nextCursor}, nil
}

func (s *service) PartnerState(ctx context.Context, ownerID uuid.UUID) (*PartnerStateResponse, error) {
	shop, err := s.findShop(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return &PartnerStateResponse{ShopID: shop.ID, Name: shop.Name, State: shop.State}, nil
}

func (s *service) UpdatePartnerState(ctx context.Context, ownerID uuid.UUID, req UpdatePartnerStateRequest) (*PartnerStateResponse, error) {
	shop, err := s.findShop(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateState(ctx, shop.ID, req.State); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update shop state")
	}
	return &PartnerStateResponse{ShopID: shop.ID, Name: shop.Name, State: req.State}, nil
}

func (s *service) findShop(ctx context.Context, ownerID uuid.UUID) (*models.Shop, error) {
	shop, err := s.repo.FindByOwner(ctx, ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "shop not found; import a price list first")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load shop")
	}
	return shop, nil
}

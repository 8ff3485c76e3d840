package contacts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/avolkov/orderflow-backend/pkg/db/models"
	pkgerrors "github.com/avolkov/orderflow-backend/pkg/errors"
)

// Service is the contact book surface used by the controller.
type Service interface {
	List(ctx context.Context, userID uuid.UUID) ([]ContactDTO, error)
	Create(ctx context.Context, userID uuid.UUID, req CreateContactRequest) (*ContactDTO, error)
	Update(ctx context.Context, userID uuid.UUID, req UpdateContactRequest) (*ContactDTO, error)
	Delete(ctx context.Context, userID uuid.UUID, req DeleteContactsRequest) (*DeleteContactsResponse, error)
}

type service struct {
	repo *Repository
}

// ServiceParams bundles the dependencies for the contacts service.
type ServiceParams struct {
	Repo *Repository
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("contacts repository is required")
	}
	return &service{repo: params.Repo}, nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID) ([]ContactDTO, error) {
	rows, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list contacts")
	}
	return FromModels(rows), nil
}

func (s *service) Create(ctx context.Context, userID uuid.UUID, req CreateContactRequest) (*ContactDTO, error) {
	if strings.TrimSpace(req.City) == "" || strings.TrimSpace(req.Street) == "" || strings.TrimSpace(req.Phone) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "city, street and phone are required")
	}

	contact := models.Contact{
		ID:        uuid.New(),
		UserID:    userID,
		City:      req.City,
		Street:    req.Street,
		House:     req.House,
		Structure: req.Structure,
		Building:  req.Building,
		Apartment: req.Apartment,
		Phone:     req.Phone,
	}
	if err := s.repo.Create(ctx, &contact); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create contact")
	}
	return FromModel(&contact), nil
}

func (s *service) Update(ctx context.Context, userID uuid.UUID, req UpdateContactRequest) (*ContactDTO, error) {
	if req.ID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "contact id is required")
	}

	updates := map[string]any{}
	setIfPresent := func(column string, value *string) {
		if value != nil {
			updates[column] = *value
		}
	}
	setIfPresent("city", req.City)
	setIfPresent("street", req.Street)
	setIfPresent("house", req.House)
	setIfPresent("structure", req.Structure)
	setIfPresent("building", req.Building)
	setIfPresent("apartment", req.Apartment)
	setIfPresent("phone", req.Phone)

	if len(updates) > 0 {
		affected, err := s.repo.Update(ctx, userID, req.ID, updates)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update contact")
		}
		if affected == 0 {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "contact not found")
		}
	}

	contact, err := s.repo.FindByIDForUser(ctx, userID, req.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "contact not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load contact")
	}
	return FromModel(contact), nil
}

func (s *service) Delete(ctx context.Context, userID uuid.UUID, req DeleteContactsRequest) (*DeleteContactsResponse, error) {
	if len(req.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "items are required")
	}
	deleted, err := s.repo.DeleteBatch(ctx, userID, req.Items)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete contacts")
	}
	return &DeleteContactsResponse{Deleted: deleted}, nil
}

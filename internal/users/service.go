package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/avolkov/orderflow-backend/pkg/assets"
	"github.com/avolkov/orderflow-backend/pkg/config"
	pkgerrors "github.com/avolkov/orderflow-backend/pkg/errors"
	"github.com/avolkov/orderflow-backend/pkg/security"
)

// Service exposes the account profile surface.
type Service interface {
	Details(ctx context.Context, userID uuid.UUID) (*UserDTO, error)
	UpdateDetails(ctx context.Context, userID uuid.UUID, req UpdateDetailsRequest) (*UserDTO, error)
}

// UpdateDetailsRequest updates the caller's own profile. All fields optional.
type UpdateDetailsRequest struct {
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Company   *string `json:"company,omitempty"`
	Position  *string `json:"position,omitempty"`
	Password  *string `json:"password,omitempty"`
}

type service struct {
	repo        *Repository
	deriver     assets.Deriver
	passwordCfg config.PasswordConfig
}

// ServiceParams bundles the dependencies required to build a users service.
type ServiceParams struct {
	Repo           *Repository
	Deriver        assets.Deriver
	PasswordConfig config.PasswordConfig
}

// NewService constructs the profile service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("users repository is required")
	}
	return &service{
		repo:        params.Repo,
		deriver:     params.Deriver,
		passwordCfg: params.PasswordConfig,
	}, nil
}

func (s *service) Details(ctx context.Context, userID uuid.UUID) (*UserDTO, error) {
	user, err := s.repo.FindByIDWithContacts(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user")
	}

	dto := FromModel(user)
	s.attachAvatarURLs(dto, user.AvatarID)
	return dto, nil
}

func (s *service) UpdateDetails(ctx context.Context, userID uuid.UUID, req UpdateDetailsRequest) (*UserDTO, error) {
	update := UpdateUserDTO{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Company:   req.Company,
		Position:  req.Position,
	}

	if req.Password != nil {
		password := strings.TrimSpace(*req.Password)
		if err := security.ValidateStrength(password, s.passwordCfg); err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
		}
		hash, err := security.HashPassword(password, s.passwordCfg)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
		}
		update.PasswordHash = &hash
	}

	if err := s.repo.Update(ctx, userID, update); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update user")
	}

	return s.Details(ctx, userID)
}

func (s *service) attachAvatarURLs(dto *UserDTO, avatarID *uuid.UUID) {
	if s.deriver == nil || avatarID == nil || dto == nil {
		return
	}
	urls := make(map[string]string, 3)
	for _, variant := range []assets.Variant{assets.VariantThumbnail, assets.VariantCard, assets.VariantPreview} {
		if url, err := s.deriver.DeriveURL(*avatarID, variant); err == nil {
			urls[string(variant)] = url
		}
	}
	if len(urls) > 0 {
		dto.AvatarURLs = urls
	}
}

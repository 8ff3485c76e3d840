package auth

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/avolkov/orderflow-backend/internal/users"
	"github.com/avolkov/orderflow-backend/pkg/config"
	"github.com/avolkov/orderflow-backend/pkg/db"
	"github.com/avolkov/orderflow-backend/pkg/enums"
	pkgerrors "github.com/avolkov/orderflow-backend/pkg/errors"
	"github.com/avolkov/orderflow-backend/pkg/outbox"
	"github.com/avolkov/orderflow-backend/pkg/outbox/payloads"
	"github.com/avolkov/orderflow-backend/pkg/security"
)

const confirmKeyLength = 40

// RegisterService handles account creation and email confirmation.
type RegisterService interface {
	Register(ctx context.Context, req RegisterRequest) error
	Confirm(ctx context.Context, req ConfirmRequest) error
}

// RegisterServiceParams packages the dependencies for the registration flow.
type RegisterServiceParams struct {
	DB             *db.Client
	Outbox         *outbox.Service
	PasswordConfig config.PasswordConfig
}

type registerService struct {
	db          *db.Client
	outbox      *outbox.Service
	passwordCfg config.PasswordConfig
}

// NewRegisterService builds a registration service with the provided dependencies.
func NewRegisterService(params RegisterServiceParams) (RegisterService, error) {
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "database client required")
	}
	if params.Outbox == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "outbox service required")
	}
	return &registerService{
		db:          params.DB,
		outbox:      params.Outbox,
		passwordCfg: params.PasswordConfig,
	}, nil
}

// Register creates an inactive account and queues the confirmation email.
// The user row, the confirmation token and the outbox event commit together.
func (s *registerService) Register(ctx context.Context, req RegisterRequest) error {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}

	role := enums.UserRoleCustomer
	if req.Role != "" {
		role = enums.UserRole(req.Role)
		if !role.IsValid() {
			return pkgerrors.New(pkgerrors.CodeValidation, "invalid role")
		}
	}

	if err := security.ValidateStrength(req.Password, s.passwordCfg); err != nil {
		return pkgerrors.New(pkgerrors.CodeValidation, err.Error())
	}
	passwordHash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	confirmKey, err := security.GenerateToken(confirmKeyLength)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate confirm key")
	}

	return s.db.WithTx(ctx, func(tx *gorm.DB) error {
		userRepo := users.NewRepository(tx)

		if _, err := userRepo.FindByEmail(ctx, email); err == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check user email")
		}

		user, err := userRepo.Create(ctx, users.CreateUserDTO{
			Email:        email,
			PasswordHash: passwordHash,
			FirstName:    req.FirstName,
			LastName:     req.LastName,
			Company:      req.Company,
			Position:     req.Position,
			Role:         role,
		})
		if err != nil {
			if db.IsUniqueViolation(err, "ux_users_email") {
				return pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
		}

		if _, err := userRepo.CreateConfirmToken(ctx, user.ID, confirmKey); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create confirm token")
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventUserRegistered,
			AggregateType: enums.AggregateUser,
			AggregateID:   user.ID,
			Actor:         &outbox.ActorRef{UserID: user.ID, Role: string(user.Role)},
			Data: payloads.UserRegisteredEvent{
				UserID:     user.ID,
				Email:      user.Email,
				ConfirmKey: confirmKey,
			},
			Version: 1,
		})
	})
}

// Confirm activates the account named by email when the key matches, then
// burns the token.
func (s *registerService) Confirm(ctx context.Context, req ConfirmRequest) error {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	key := strings.TrimSpace(req.Token)
	if email == "" || key == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "email and token are required")
	}

	return s.db.WithTx(ctx, func(tx *gorm.DB) error {
		userRepo := users.NewRepository(tx)

		user, err := userRepo.FindByEmail(ctx, email)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeValidation, "invalid email or token")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
		}

		token, err := userRepo.FindConfirmToken(ctx, user.ID, key)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeValidation, "invalid email or token")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup confirm token")
		}

		if err := userRepo.Activate(ctx, user.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "activate user")
		}
		if err := userRepo.DeleteConfirmToken(ctx, token.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete confirm token")
		}
		return nil
	})
}

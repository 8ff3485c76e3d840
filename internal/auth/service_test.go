package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	pkgauth "github.com/avolkov/orderflow-backend/pkg/auth"
	"github.com/avolkov/orderflow-backend/pkg/config"
	"github.com/avolkov/orderflow-backend/pkg/db/models"
	"github.com/avolkov/orderflow-backend/pkg/enums"
	pkgerrors "github.com/avolkov/orderflow-backend/pkg/errors"
	"github.com/avolkov/orderflow-backend/pkg/security"
	"gorm.io/gorm"
)

type stubUserRepo struct {
	user      *models.User
	lastLogin *time.Time
}

func (s *stubUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	if s.user == nil || s.user.Email != email {
		return nil, gorm.ErrRecordNotFound
	}
	return s.user, nil
}

func (s *stubUserRepo) UpdateLastLogin(_ context.Context, _ uuid.UUID, at time.Time) error {
	s.lastLogin = &at
	return nil
}

func testPasswordConfig() config.PasswordConfig {
	return config.PasswordConfig{
		MinLength:        8,
		ArgonMemoryKB:    8,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}
}

func mustHashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := security.HashPassword(password, testPasswordConfig())
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return hash
}

func jwtTestConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "secret",
		Issuer:            "orderflow",
		ExpirationMinutes: 30,
	}
}

func TestServiceLoginMintsRoleClaim(t *testing.T) {
	password := "shop-secret-1"
	user := &models.User{
		ID:           uuid.New(),
		Email:        "partner@example.com",
		PasswordHash: mustHashPassword(t, password),
		FirstName:    "Pat",
		LastName:     "Partner",
		Role:         enums.UserRoleShop,
		IsActive:     true,
	}
	repo := &stubUserRepo{user: user}
	cfg := jwtTestConfig()

	svc, err := NewService(ServiceParams{UserRepo: repo, JWTConfig: cfg})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}

	resp, err := svc.Login(context.Background(), LoginRequest{
		Email:    user.Email,
		Password: password,
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	claims, err := pkgauth.ParseAccessToken(cfg, resp.Token)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.UserID != user.ID {
		t.Fatalf("expected user id claim %s, got %s", user.ID, claims.UserID)
	}
	if claims.Role != enums.UserRoleShop {
		t.Fatalf("expected shop role claim, got %s", claims.Role)
	}
	if repo.lastLogin == nil {
		t.Fatalf("expected last login to be recorded")
	}
	if resp.User == nil || resp.User.Email != user.Email {
		t.Fatalf("expected user dto in response")
	}
}

func TestServiceLoginRejectsInactiveAccount(t *testing.T) {
	password := "customer-pw-1"
	user := &models.User{
		ID:           uuid.New(),
		Email:        "pending@example.com",
		PasswordHash: mustHashPassword(t, password),
		Role:         enums.UserRoleCustomer,
		IsActive:     false,
	}
	svc, err := NewService(ServiceParams{UserRepo: &stubUserRepo{user: user}, JWTConfig: jwtTestConfig()})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}

	_, err = svc.Login(context.Background(), LoginRequest{Email: user.Email, Password: password})
	if err == nil {
		t.Fatalf("expected unauthorized for inactive account")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized error, got %v", err)
	}
}

func TestServiceLoginRejectsWrongPassword(t *testing.T) {
	user := &models.User{
		ID:           uuid.New(),
		Email:        "buyer@example.com",
		PasswordHash: mustHashPassword(t, "right-password1"),
		Role:         enums.UserRoleCustomer,
		IsActive:     true,
	}
	svc, err := NewService(ServiceParams{UserRepo: &stubUserRepo{user: user}, JWTConfig: jwtTestConfig()})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}

	_, err = svc.Login(context.Background(), LoginRequest{Email: user.Email, Password: "wrong-password1"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized error, got %v", err)
	}
}

func TestServiceLoginUnknownEmail(t *testing.T) {
	svc, err := NewService(ServiceParams{UserRepo: &stubUserRepo{}, JWTConfig: jwtTestConfig()})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}

	_, err = svc.Login(context.Background(), LoginRequest{Email: "ghost@example.com", Password: "whatever123"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized error, got %v", err)
	}
}

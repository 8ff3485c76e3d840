package users

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/avolkov/orderflow-backend/pkg/db/models"
)

// Repository exposes user-related persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a users repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new user and returns the persisted model.
func (r *Repository) Create(ctx context.Context, dto CreateUserDTO) (*models.User, error) {
	user := dto.ToModel()
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// FindByEmail retrieves the user matching the provided email.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByID loads a user by their UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByIDWithContacts loads a user together with their delivery contacts.
func (r *Repository) FindByIDWithContacts(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Preload("Contacts").First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// Update applies the provided profile changes.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, dto UpdateUserDTO) error {
	updates := map[string]any{}
	if dto.FirstName != nil {
		updates["first_name"] = *dto.FirstName
	}
	if dto.LastName != nil {
		updates["last_name"] = *dto.LastName
	}
	if dto.Company != nil {
		updates["company"] = *dto.Company
	}
	if dto.Position != nil {
		updates["position"] = *dto.Position
	}
	if dto.PasswordHash != nil {
		updates["password_hash"] = *dto.PasswordHash
	}
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// Activate flips is_active after email confirmation.
func (r *Repository) Activate(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumn("is_active", true).Error
}

// UpdateLastLogin refreshes the user's last_login_at timestamp.
func (r *Repository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumn("last_login_at", at).Error
}

// CreateConfirmToken stores the activation key for a new account.
func (r *Repository) CreateConfirmToken(ctx context.Context, userID uuid.UUID, key string) (*models.EmailConfirmToken, error) {
	token := models.EmailConfirmToken{
		ID:     uuid.New(),
		UserID: userID,
		Key:    key,
	}
	if err := r.db.WithContext(ctx).Create(&token).Error; err != nil {
		return nil, err
	}
	return &token, nil
}

// FindConfirmToken looks up the token bound to the user.
func (r *Repository) FindConfirmToken(ctx context.Context, userID uuid.UUID, key string) (*models.EmailConfirmToken, error) {
	var token models.EmailConfirmToken
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND key = ?", userID, key).
		First(&token).Error
	if err != nil {
		return nil, err
	}
	return &token, nil
}

// DeleteConfirmToken removes the one-shot token after use.
func (r *Repository) DeleteConfirmToken(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.EmailConfirmToken{}, "id = ?", id).Error
}

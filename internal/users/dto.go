package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/avolkov/orderflow-backend/pkg/db/models"
	"github.com/avolkov/orderflow-backend/pkg/enums"
)

// UserDTO is the transport shape that omits sensitive credentials.
type UserDTO struct {
	ID          uuid.UUID         `json:"id"`
	Email       string            `json:"email"`
	FirstName   string            `json:"first_name"`
	LastName    string            `json:"last_name"`
	Company     string            `json:"company,omitempty"`
	Position    string            `json:"position,omitempty"`
	Role        enums.UserRole    `json:"role"`
	IsActive    bool              `json:"is_active"`
	AvatarURLs  map[string]string `json:"avatar_urls,omitempty"`
	LastLoginAt *time.Time        `json:"last_login_at,omitempty"`
	Contacts    []ContactSummary  `json:"contacts,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// ContactSummary is the embedded contact shape returned with user details.
type ContactSummary struct {
	ID        uuid.UUID `json:"id"`
	City      string    `json:"city"`
	Street    string    `json:"street"`
	House     string    `json:"house,omitempty"`
	Structure string    `json:"structure,omitempty"`
	Building  string    `json:"building,omitempty"`
	Apartment string    `json:"apartment,omitempty"`
	Phone     string    `json:"phone"`
}

// CreateUserDTO holds the data required by the repo to persist a new user.
type CreateUserDTO struct {
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Company      string
	Position     string
	Role         enums.UserRole
}

// UpdateUserDTO carries optional profile fields; nil means leave unchanged.
type UpdateUserDTO struct {
	FirstName    *string
	LastName     *string
	Company      *string
	Position     *string
	PasswordHash *string
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}

	contacts := make([]ContactSummary, 0, len(u.Contacts))
	for _, c := range u.Contacts {
		contacts = append(contacts, ContactSummary{
			ID:        c.ID,
			City:      c.City,
			Street:    c.Street,
			House:     c.House,
			Structure: c.Structure,
			Building:  c.Building,
			Apartment: c.Apartment,
			Phone:     c.Phone,
		})
	}

	return &UserDTO{
		ID:          u.ID,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Company:     u.Company,
		Position:    u.Position,
		Role:        u.Role,
		IsActive:    u.IsActive,
		LastLoginAt: u.LastLoginAt,
		Contacts:    contacts,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

func (c CreateUserDTO) ToModel() *models.User {
	role := c.Role
	if role == "" {
		role = enums.UserRoleCustomer
	}

	return &models.User{
		ID:           uuid.New(),
		Email:        c.Email,
		PasswordHash: c.PasswordHash,
		FirstName:    c.FirstName,
		LastName:     c.LastName,
		Company:      c.Company,
		Position:     c.Position,
		Role:         role,
		IsActive:     false,
	}
}

package auth

import (
	"github.com/avolkov/orderflow-backend/internal/users"
)

// LoginRequest carries the credentials posted to /user/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse returns the bearer token plus the authenticated profile.
type LoginResponse struct {
	Token string          `json:"token"`
	User  *users.UserDTO  `json:"user"`
}

// RegisterRequest contains the payload for account creation.
type RegisterRequest struct {
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required"`
	Company   string `json:"company,omitempty"`
	Position  string `json:"position,omitempty"`
	Role      string `json:"role,omitempty"`
}

// ConfirmRequest activates an account using the mailed key.
type ConfirmRequest struct {
	Email string `json:"email" validate:"required,email"`
	Token string `json:"token" validate:"required"`
}

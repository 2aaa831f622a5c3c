package domain

import (
	"time"

	"github.com/sentinel-red/sentinel-backend/internal/apperr"
)

// User is the signed-in account shown by the dashboard.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// AuthResponse is returned by login and register.
type AuthResponse struct {
	User         User   `json:"user"`
	Token        string `json:"token"`
	RefreshToken string `json:"refresh_token"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

// MinPasswordLength applies to register and reset.
const MinPasswordLength = 8

var (
	ErrPasswordMismatch = apperr.Validation("Passwords do not match")
	ErrPasswordTooShort = apperr.Validation("Password must be at least 8 characters")
	ErrEmailRequired    = apperr.Validation("email is required")
	ErrPasswordRequired = apperr.Validation("password is required")
	ErrTokenRequired    = apperr.Validation("reset token is required")
	ErrSessionNotFound  = apperr.NotFound("session not found")
)

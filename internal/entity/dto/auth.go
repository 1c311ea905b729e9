package dto

import (
	"time"

	"tutorsite/internal/entity/common"
)

// AuthLoginRequest is the login request payload.
type AuthLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthRegisterRequest is the registration request payload. Role is optional
// and defaults to the standard user role.
type AuthRegisterRequest struct {
	Name     string       `json:"name"`
	Email    string       `json:"email"`
	Password string       `json:"password"`
	Role     *common.Role `json:"role,omitempty"`
}

// RegisterResponse is returned after a successful registration.
type RegisterResponse struct {
	User UserSummary `json:"user"`
}

// SessionUser is the signed-in profile with its bearer token.
type SessionUser struct {
	UserSummary
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// LoginResponse is returned after a successful login.
type LoginResponse struct {
	User SessionUser `json:"user"`
}

package dto

import "github.com/google/uuid"

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RegisterRequest struct {
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required,min=6"`
	Name       string `json:"name" binding:"required"`
	Department string `json:"department"`
	Position   string `json:"position"`
}

type AuthResponse struct {
	Token     string           `json:"token"`
	ExpiresIn int64            `json:"expires_in"`
	Identity  IdentityResponse `json:"identity"`
}

type IdentityResponse struct {
	ID         uuid.UUID `json:"id"`
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	Department string    `json:"department"`
	Position   string    `json:"position"`
	AvatarURL  string    `json:"avatar_url,omitempty"`
	CreatedAt  string    `json:"created_at"`
}

// UpdateProfileRequest is a partial merge; absent fields are untouched.
type UpdateProfileRequest struct {
	Name       *string `json:"name"`
	Department *string `json:"department"`
	Position   *string `json:"position"`
}

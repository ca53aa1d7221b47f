package models

import (
	"time"

	"github.com/google/uuid"
)

// Identity is an authenticated employee account.
type Identity struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	Name         string    `json:"name" db:"name"`
	Department   string    `json:"department" db:"department"`
	Position     string    `json:"position" db:"position"`
	AvatarKey    string    `json:"-" db:"avatar_key"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// Session is one issued login token. A session stays valid until it
// expires or is revoked by logout. The ID doubles as the JWT's jti claim.
type Session struct {
	ID         uuid.UUID  `json:"id" db:"id"`
	IdentityID uuid.UUID  `json:"identity_id" db:"identity_id"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
	ExpiresAt  time.Time  `json:"expires_at" db:"expires_at"`
	RevokedAt  *time.Time `json:"revoked_at,omitempty" db:"revoked_at"`
}

// Package identity implements authentication, registration, and profile
// management for employee accounts.
package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/your-org/attendance/internal/auth"
	"github.com/your-org/attendance/internal/models"
	"github.com/your-org/attendance/pkg/password"
)

var (
	// ErrInvalidCredentials is returned for both unknown email and
	// wrong password; the cause is deliberately not distinguished.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")
	ErrSessionInvalid     = errors.New("session expired or revoked")
	ErrNotFound           = errors.New("identity not found")
)

// Store is the persistence surface the identity service needs.
type Store interface {
	CreateIdentity(ctx context.Context, id *models.Identity) error
	GetIdentity(ctx context.Context, id uuid.UUID) (*models.Identity, error)
	GetIdentityByEmail(ctx context.Context, email string) (*models.Identity, error)
	UpdateIdentity(ctx context.Context, id *models.Identity) error
	CreateSession(ctx context.Context, sess *models.Session) error
	GetSession(ctx context.Context, id uuid.UUID) (*models.Session, error)
	RevokeSession(ctx context.Context, id uuid.UUID) error
}

type Service struct {
	store  Store
	tokens *auth.TokenManager
	now    func() time.Time
}

func NewService(store Store, tokens *auth.TokenManager) *Service {
	return &Service{
		store:  store,
		tokens: tokens,
		now:    time.Now,
	}
}

// LoginResult is a freshly established session.
type LoginResult struct {
	Identity  *models.Identity
	Token     string
	ExpiresIn int64 // seconds
}

// Login authenticates by email and password and opens a session.
func (s *Service) Login(ctx context.Context, email, plaintext string) (*LoginResult, error) {
	ident, err := s.store.GetIdentityByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("look up identity: %w", err)
	}
	if ident == nil {
		return nil, ErrInvalidCredentials
	}

	ok, err := password.Verify(plaintext, ident.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}

	return s.openSession(ctx, ident)
}

// RegisterInput is the profile plus credentials of a new identity.
type RegisterInput struct {
	Email      string
	Password   string
	Name       string
	Department string
	Position   string
}

// Register creates a new identity and opens a session for it. Fails
// with ErrEmailTaken when the email is already registered.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*LoginResult, error) {
	existing, err := s.store.GetIdentityByEmail(ctx, in.Email)
	if err != nil {
		return nil, fmt.Errorf("look up identity: %w", err)
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := password.Hash(in.Password, nil)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	ident := &models.Identity{
		ID:           uuid.New(),
		Email:        in.Email,
		Name:         in.Name,
		Department:   in.Department,
		Position:     in.Position,
		PasswordHash: hash,
	}
	if err := s.store.CreateIdentity(ctx, ident); err != nil {
		return nil, fmt.Errorf("create identity: %w", err)
	}

	return s.openSession(ctx, ident)
}

func (s *Service) openSession(ctx context.Context, ident *models.Identity) (*LoginResult, error) {
	sess := &models.Session{
		ID:         uuid.New(),
		IdentityID: ident.ID,
		ExpiresAt:  s.now().Add(s.tokens.TTL()),
	}
	if err := s.store.CreateSession(ctx, sess); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	token, err := s.tokens.Issue(ident.ID, sess.ID, ident.Email)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	return &LoginResult{
		Identity:  ident,
		Token:     token,
		ExpiresIn: int64(s.tokens.TTL().Seconds()),
	}, nil
}

// Logout revokes the session. Revoking an already-revoked or unknown
// session is not an error.
func (s *Service) Logout(ctx context.Context, sessionID uuid.UUID) error {
	if err := s.store.RevokeSession(ctx, sessionID); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

// ValidateSession reports whether the session is active. Implements
// auth.SessionValidator.
func (s *Service) ValidateSession(ctx context.Context, sessionID uuid.UUID) error {
	sess, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("look up session: %w", err)
	}
	if sess == nil || sess.RevokedAt != nil || sess.ExpiresAt.Before(s.now()) {
		return ErrSessionInvalid
	}
	return nil
}

// Get returns an identity by ID.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.Identity, error) {
	ident, err := s.store.GetIdentity(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get identity: %w", err)
	}
	if ident == nil {
		return nil, ErrNotFound
	}
	return ident, nil
}

// ProfileUpdate carries the optional profile fields of a partial
// update; nil fields are left unchanged.
type ProfileUpdate struct {
	Name       *string
	Department *string
	Position   *string
	AvatarKey  *string
}

// UpdateProfile merges the given fields into the identity and persists
// the result.
func (s *Service) UpdateProfile(ctx context.Context, id uuid.UUID, in ProfileUpdate) (*models.Identity, error) {
	ident, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		ident.Name = *in.Name
	}
	if in.Department != nil {
		ident.Department = *in.Department
	}
	if in.Position != nil {
		ident.Position = *in.Position
	}
	if in.AvatarKey != nil {
		ident.AvatarKey = *in.AvatarKey
	}

	if err := s.store.UpdateIdentity(ctx, ident); err != nil {
		return nil, fmt.Errorf("update identity: %w", err)
	}
	return ident, nil
}

// demoIdentities are the development seed accounts.
var demoIdentities = []RegisterInput{
	{
		Email:      "admin@company.com",
		Password:   "123456",
		Name:       "Alice Nguyen",
		Department: "IT",
		Position:   "Manager",
	},
	{
		Email:      "user@company.com",
		Password:   "123456",
		Name:       "Bao Tran",
		Department: "HR",
		Position:   "Staff",
	},
}

// SeedDemo inserts the demo identities if they are absent. Development
// convenience only; gated by config.
func (s *Service) SeedDemo(ctx context.Context) error {
	for _, in := range demoIdentities {
		existing, err := s.store.GetIdentityByEmail(ctx, in.Email)
		if err != nil {
			return fmt.Errorf("look up seed identity: %w", err)
		}
		if existing != nil {
			continue
		}

		hash, err := password.Hash(in.Password, nil)
		if err != nil {
			return fmt.Errorf("hash seed password: %w", err)
		}
		ident := &models.Identity{
			ID:           uuid.New(),
			Email:        in.Email,
			Name:         in.Name,
			Department:   in.Department,
			Position:     in.Position,
			PasswordHash: hash,
		}
		if err := s.store.CreateIdentity(ctx, ident); err != nil {
			return fmt.Errorf("create seed identity: %w", err)
		}
		slog.Info("seeded demo identity", "email", in.Email)
	}
	return nil
}

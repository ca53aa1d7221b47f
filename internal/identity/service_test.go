package identity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/your-org/attendance/internal/auth"
	"github.com/your-org/attendance/internal/models"
)

type memStore struct {
	identities map[uuid.UUID]*models.Identity
	sessions   map[uuid.UUID]*models.Session
}

func newMemStore() *memStore {
	return &memStore{
		identities: make(map[uuid.UUID]*models.Identity),
		sessions:   make(map[uuid.UUID]*models.Session),
	}
}

func (m *memStore) CreateIdentity(_ context.Context, id *models.Identity) error {
	for _, existing := range m.identities {
		if existing.Email == id.Email {
			return errors.New("duplicate email")
		}
	}
	cp := *id
	m.identities[id.ID] = &cp
	return nil
}

func (m *memStore) GetIdentity(_ context.Context, id uuid.UUID) (*models.Identity, error) {
	if ident, ok := m.identities[id]; ok {
		cp := *ident
		return &cp, nil
	}
	return nil, nil
}

func (m *memStore) GetIdentityByEmail(_ context.Context, email string) (*models.Identity, error) {
	for _, ident := range m.identities {
		if ident.Email == email {
			cp := *ident
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memStore) UpdateIdentity(_ context.Context, id *models.Identity) error {
	if _, ok := m.identities[id.ID]; !ok {
		return errors.New("identity not found")
	}
	cp := *id
	m.identities[id.ID] = &cp
	return nil
}

func (m *memStore) CreateSession(_ context.Context, sess *models.Session) error {
	cp := *sess
	m.sessions[sess.ID] = &cp
	return nil
}

func (m *memStore) GetSession(_ context.Context, id uuid.UUID) (*models.Session, error) {
	if sess, ok := m.sessions[id]; ok {
		cp := *sess
		return &cp, nil
	}
	return nil, nil
}

func (m *memStore) RevokeSession(_ context.Context, id uuid.UUID) error {
	if sess, ok := m.sessions[id]; ok && sess.RevokedAt == nil {
		now := time.Now()
		sess.RevokedAt = &now
	}
	return nil
}

func newTestService(t *testing.T) (*Service, *memStore) {
	t.Helper()
	tokens, err := auth.NewTokenManager("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenManager() error = %v", err)
	}
	store := newMemStore()
	return NewService(store, tokens), store
}

func register(t *testing.T, svc *Service, email string) *LoginResult {
	t.Helper()
	res, err := svc.Register(context.Background(), RegisterInput{
		Email:      email,
		Password:   "hunter22",
		Name:       "Test Person",
		Department: "QA",
		Position:   "Engineer",
	})
	if err != nil {
		t.Fatalf("Register(%s) error = %v", email, err)
	}
	return res
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newTestService(t)

	res := register(t, svc, "new@company.com")
	if res.Token == "" {
		t.Error("Register() returned empty token")
	}
	if res.Identity.PasswordHash == "hunter22" {
		t.Error("password stored in plaintext")
	}

	login, err := svc.Login(context.Background(), "new@company.com", "hunter22")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if login.Identity.ID != res.Identity.ID {
		t.Errorf("Login() identity = %v, want %v", login.Identity.ID, res.Identity.ID)
	}
}

func TestLoginFailureIsUniform(t *testing.T) {
	svc, _ := newTestService(t)
	register(t, svc, "known@company.com")

	if _, err := svc.Login(context.Background(), "unknown@company.com", "hunter22"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown email: error = %v, want ErrInvalidCredentials", err)
	}
	if _, err := svc.Login(context.Background(), "known@company.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password: error = %v, want ErrInvalidCredentials", err)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, store := newTestService(t)
	register(t, svc, "taken@company.com")

	identitiesBefore := len(store.identities)
	sessionsBefore := len(store.sessions)

	_, err := svc.Register(context.Background(), RegisterInput{
		Email:    "taken@company.com",
		Password: "other",
		Name:     "Impostor",
	})
	if !errors.Is(err, ErrEmailTaken) {
		t.Errorf("Register() error = %v, want ErrEmailTaken", err)
	}
	if len(store.identities) != identitiesBefore {
		t.Error("duplicate registration created an identity")
	}
	if len(store.sessions) != sessionsBefore {
		t.Error("duplicate registration opened a session")
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	svc, _ := newTestService(t)
	res := register(t, svc, "new@company.com")

	// Resolve the session ID through the token claims.
	tokens, _ := auth.NewTokenManager("test-secret", time.Hour)
	c, err := tokens.Validate(res.Token)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	sessionID, err := uuid.Parse(c.SessionID)
	if err != nil {
		t.Fatalf("parse session id: %v", err)
	}

	if err := svc.ValidateSession(context.Background(), sessionID); err != nil {
		t.Fatalf("ValidateSession() before logout error = %v", err)
	}

	if err := svc.Logout(context.Background(), sessionID); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}

	if err := svc.ValidateSession(context.Background(), sessionID); !errors.Is(err, ErrSessionInvalid) {
		t.Errorf("ValidateSession() after logout error = %v, want ErrSessionInvalid", err)
	}

	// Logging out twice stays quiet.
	if err := svc.Logout(context.Background(), sessionID); err != nil {
		t.Errorf("second Logout() error = %v", err)
	}
}

func TestUpdateProfilePartialMerge(t *testing.T) {
	svc, _ := newTestService(t)
	res := register(t, svc, "new@company.com")

	dept := "Platform"
	updated, err := svc.UpdateProfile(context.Background(), res.Identity.ID, ProfileUpdate{
		Department: &dept,
	})
	if err != nil {
		t.Fatalf("UpdateProfile() error = %v", err)
	}

	if updated.Department != "Platform" {
		t.Errorf("Department = %q, want %q", updated.Department, "Platform")
	}
	if updated.Name != "Test Person" {
		t.Errorf("Name = %q, want untouched %q", updated.Name, "Test Person")
	}
	if updated.Position != "Engineer" {
		t.Errorf("Position = %q, want untouched %q", updated.Position, "Engineer")
	}
}

func TestUpdateProfileUnknownIdentity(t *testing.T) {
	svc, _ := newTestService(t)
	name := "Nobody"
	if _, err := svc.UpdateProfile(context.Background(), uuid.New(), ProfileUpdate{Name: &name}); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateProfile() error = %v, want ErrNotFound", err)
	}
}

func TestSeedDemoIsIdempotent(t *testing.T) {
	svc, store := newTestService(t)

	if err := svc.SeedDemo(context.Background()); err != nil {
		t.Fatalf("SeedDemo() error = %v", err)
	}
	first := len(store.identities)
	if first != 2 {
		t.Fatalf("seeded %d identities, want 2", first)
	}

	if err := svc.SeedDemo(context.Background()); err != nil {
		t.Fatalf("second SeedDemo() error = %v", err)
	}
	if len(store.identities) != first {
		t.Error("second SeedDemo() created duplicates")
	}

	if _, err := svc.Login(context.Background(), "admin@company.com", "123456"); err != nil {
		t.Errorf("Login() with seeded credentials error = %v", err)
	}
}

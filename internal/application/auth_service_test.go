package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/example/hotel-reservations/internal/persistence"
)

type memoryUserStore struct {
	mu      sync.Mutex
	byID    map[string]UserCredentials
	byEmail map[string]UserCredentials
}

func newMemoryUserStore() *memoryUserStore {
	return &memoryUserStore{
		byID:    make(map[string]UserCredentials),
		byEmail: make(map[string]UserCredentials),
	}
}

func (m *memoryUserStore) CreateUser(_ context.Context, creds UserCredentials) (User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.byEmail[creds.User.Email]; exists {
		return User{}, persistence.ErrDuplicate
	}
	m.byID[creds.User.ID] = creds
	m.byEmail[creds.User.Email] = creds
	return creds.User, nil
}

func (m *memoryUserStore) GetUser(_ context.Context, id string) (User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	creds, ok := m.byID[id]
	if !ok {
		return User{}, persistence.ErrNotFound
	}
	return creds.User, nil
}

func (m *memoryUserStore) GetUserCredentialsByEmail(_ context.Context, email string) (UserCredentials, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	creds, ok := m.byEmail[email]
	if !ok {
		return UserCredentials{}, persistence.ErrNotFound
	}
	return creds, nil
}

func (m *memoryUserStore) disable(email string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	creds := m.byEmail[email]
	creds.Disabled = true
	m.byEmail[email] = creds
	m.byID[creds.User.ID] = creds
}

type memorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]Session
	deletes  int
}

func newMemorySessionStore() *memorySessionStore {
	return &memorySessionStore{sessions: make(map[string]Session)}
}

func (m *memorySessionStore) CreateSession(_ context.Context, session Session) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[session.Token] = session
	return session, nil
}

func (m *memorySessionStore) GetSession(_ context.Context, token string) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.sessions[token]
	if !ok {
		return Session{}, persistence.ErrNotFound
	}
	return session, nil
}

func (m *memorySessionStore) RevokeSession(_ context.Context, token string, revokedAt time.Time) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.sessions[token]
	if !ok {
		return Session{}, persistence.ErrNotFound
	}
	session.RevokedAt = &revokedAt
	m.sessions[token] = session
	return session, nil
}

func (m *memorySessionStore) DeleteExpiredSessions(_ context.Context, reference time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.deletes++
	for token, session := range m.sessions {
		if !reference.Before(session.ExpiresAt) {
			delete(m.sessions, token)
		}
	}
	return nil
}

// plainPasswordFuncs sidestep argon2id so tests stay fast.
func plainPasswordFuncs() (PasswordHasher, PasswordVerifier) {
	hash := func(password string) (string, error) {
		return "plain:" + password, nil
	}
	verify := func(hashedPassword, password string) error {
		if hashedPassword != "plain:"+password {
			return fmt.Errorf("mismatch")
		}
		return nil
	}
	return hash, verify
}

func newAuthHarness(t *testing.T) (*AuthService, *memoryUserStore, *memorySessionStore, *mutableClock) {
	t.Helper()

	users := newMemoryUserStore()
	sessions := newMemorySessionStore()
	clock := &mutableClock{current: testNow}
	service := NewAuthService(users, sessions, sequentialIDs("user"), sequentialIDs("token"), clock.Now, 24*time.Hour)
	service.SetPasswordFuncs(plainPasswordFuncs())
	return service, users, sessions, clock
}

type mutableClock struct {
	mu      sync.Mutex
	current time.Time
}

func (c *mutableClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

func (c *mutableClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.current = c.current.Add(d)
	c.mu.Unlock()
}

func validRegisterParams() RegisterParams {
	return RegisterParams{
		Email:    "guest@example.com",
		Password: "correct horse",
		FullName: "Avery Guest",
	}
}

func TestRegisterCreatesGuestAccount(t *testing.T) {
	service, users, _, _ := newAuthHarness(t)

	user, err := service.Register(context.Background(), validRegisterParams())
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if user.Email != "guest@example.com" || user.FullName != "Avery Guest" {
		t.Fatalf("unexpected user: %+v", user)
	}

	stored, err := users.GetUserCredentialsByEmail(context.Background(), "guest@example.com")
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if stored.PasswordHash != "plain:correct horse" {
		t.Fatalf("expected hashed password stored, got %q", stored.PasswordHash)
	}
}

func TestRegisterNormalizesEmail(t *testing.T) {
	service, _, _, _ := newAuthHarness(t)

	params := validRegisterParams()
	params.Email = "  Guest@Example.COM "
	user, err := service.Register(context.Background(), params)
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if user.Email != "guest@example.com" {
		t.Fatalf("expected lowercased email, got %q", user.Email)
	}
}

func TestRegisterValidation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*RegisterParams)
		field  string
	}{
		{"empty email", func(p *RegisterParams) { p.Email = "" }, "email"},
		{"malformed email", func(p *RegisterParams) { p.Email = "not-an-address" }, "email"},
		{"short password", func(p *RegisterParams) { p.Password = "short" }, "password"},
		{"missing name", func(p *RegisterParams) { p.FullName = "  " }, "full_name"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			service, _, _, _ := newAuthHarness(t)

			params := validRegisterParams()
			tc.mutate(&params)

			_, err := service.Register(context.Background(), params)
			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if _, ok := vErr.FieldErrors[tc.field]; !ok {
				t.Fatalf("expected %s field error, got %v", tc.field, vErr.FieldErrors)
			}
		})
	}
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	service, _, _, _ := newAuthHarness(t)
	ctx := context.Background()

	if _, err := service.Register(ctx, validRegisterParams()); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if _, err := service.Register(ctx, validRegisterParams()); !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestAuthenticateIssuesSession(t *testing.T) {
	service, _, sessions, _ := newAuthHarness(t)
	ctx := context.Background()

	registered, err := service.Register(ctx, validRegisterParams())
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	result, err := service.Authenticate(ctx, AuthenticateParams{
		Email:    "guest@example.com",
		Password: "correct horse",
	})
	if err != nil {
		t.Fatalf("authenticate failed: %v", err)
	}
	if result.User.ID != registered.ID {
		t.Fatalf("expected user %q, got %q", registered.ID, result.User.ID)
	}
	if result.Session.Token == "" {
		t.Fatal("expected a session token")
	}
	if !result.Session.ExpiresAt.Equal(testNow.Add(24 * time.Hour)) {
		t.Fatalf("unexpected expiry %v", result.Session.ExpiresAt)
	}
	if sessions.deletes != 1 {
		t.Fatalf("expected expired-session cleanup during login, got %d", sessions.deletes)
	}
}

func TestAuthenticateRejectsBadCredentials(t *testing.T) {
	service, users, _, _ := newAuthHarness(t)
	ctx := context.Background()

	if _, err := service.Register(ctx, validRegisterParams()); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	cases := []struct {
		name   string
		params AuthenticateParams
		want   error
	}{
		{"wrong password", AuthenticateParams{Email: "guest@example.com", Password: "wrong"}, ErrInvalidCredentials},
		{"unknown email", AuthenticateParams{Email: "nobody@example.com", Password: "correct horse"}, ErrInvalidCredentials},
		{"empty password", AuthenticateParams{Email: "guest@example.com"}, ErrInvalidCredentials},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := service.Authenticate(ctx, tc.params); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}

	users.disable("guest@example.com")
	if _, err := service.Authenticate(ctx, AuthenticateParams{Email: "guest@example.com", Password: "correct horse"}); !errors.Is(err, ErrAccountDisabled) {
		t.Fatalf("expected ErrAccountDisabled, got %v", err)
	}
}

func TestValidateSessionLifecycle(t *testing.T) {
	service, _, _, clock := newAuthHarness(t)
	ctx := context.Background()

	registered, err := service.Register(ctx, validRegisterParams())
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	result, err := service.Authenticate(ctx, AuthenticateParams{Email: "guest@example.com", Password: "correct horse"})
	if err != nil {
		t.Fatalf("authenticate failed: %v", err)
	}
	token := result.Session.Token

	principal, err := service.ValidateSession(ctx, token)
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if principal.UserID != registered.ID {
		t.Fatalf("expected principal %q, got %q", registered.ID, principal.UserID)
	}

	if _, err := service.ValidateSession(ctx, "bogus"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for unknown token, got %v", err)
	}
	if _, err := service.ValidateSession(ctx, "  "); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for blank token, got %v", err)
	}

	clock.Advance(25 * time.Hour)
	if _, err := service.ValidateSession(ctx, token); !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired, got %v", err)
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	service, _, _, _ := newAuthHarness(t)
	ctx := context.Background()

	if _, err := service.Register(ctx, validRegisterParams()); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	result, err := service.Authenticate(ctx, AuthenticateParams{Email: "guest@example.com", Password: "correct horse"})
	if err != nil {
		t.Fatalf("authenticate failed: %v", err)
	}
	token := result.Session.Token

	if err := service.Logout(ctx, token); err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	if _, err := service.ValidateSession(ctx, token); !errors.Is(err, ErrSessionRevoked) {
		t.Fatalf("expected ErrSessionRevoked, got %v", err)
	}

	// Revoking again, or revoking nonsense, stays silent.
	if err := service.Logout(ctx, token); err != nil {
		t.Fatalf("repeat logout failed: %v", err)
	}
	if err := service.Logout(ctx, "bogus"); err != nil {
		t.Fatalf("unknown-token logout failed: %v", err)
	}
}

func TestGetUser(t *testing.T) {
	service, _, _, _ := newAuthHarness(t)
	ctx := context.Background()

	registered, err := service.Register(ctx, validRegisterParams())
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	user, err := service.GetUser(ctx, registered.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if user.Email != "guest@example.com" {
		t.Fatalf("unexpected user: %+v", user)
	}

	if _, err := service.GetUser(ctx, "user-404"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

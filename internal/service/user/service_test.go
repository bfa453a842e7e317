package user

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"storefront/internal/domain"
	tokenrepo "storefront/internal/repository/token"
)

// memoryRepo is a lightweight in-memory user repository for tests.
type memoryRepo struct {
	byEmail map[string]domain.User
}

type memoryTokenRepo struct {
	tokens map[string]tokenrepo.Token
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{byEmail: make(map[string]domain.User)}
}

func newMemoryTokenRepo() *memoryTokenRepo {
	return &memoryTokenRepo{tokens: make(map[string]tokenrepo.Token)}
}

func (r *memoryTokenRepo) Create(_ context.Context, token tokenrepo.Token) error {
	if _, exists := r.tokens[token.Token]; exists {
		return domain.ErrAlreadyExists
	}
	r.tokens[token.Token] = token
	return nil
}

func (r *memoryTokenRepo) Get(_ context.Context, token string) (*tokenrepo.Token, error) {
	t, ok := r.tokens[token]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := t
	return &clone, nil
}

func (r *memoryTokenRepo) Delete(_ context.Context, token string) error {
	if _, ok := r.tokens[token]; !ok {
		return domain.ErrNotFound
	}
	delete(r.tokens, token)
	return nil
}

func (r *memoryTokenRepo) DeleteByUser(_ context.Context, userID string) (int64, error) {
	var n int64
	for k, t := range r.tokens {
		if t.UserID == userID {
			delete(r.tokens, k)
			n++
		}
	}
	return n, nil
}

func (r *memoryTokenRepo) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	var n int64
	for k, t := range r.tokens {
		if !t.ExpiresAt.After(now) {
			delete(r.tokens, k)
			n++
		}
	}
	return n, nil
}

func (r *memoryRepo) Create(_ context.Context, u domain.User) (*domain.User, error) {
	key := strings.ToLower(u.Email)
	if _, exists := r.byEmail[key]; exists {
		return nil, domain.ErrAlreadyExists
	}
	clone := u
	clone.Email = key
	if clone.ID == "" {
		clone.ID = "user-" + key
	}
	if clone.Role == "" {
		clone.Role = domain.RoleUser
	}
	r.byEmail[key] = clone
	return &clone, nil
}

func (r *memoryRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	if u, ok := r.byEmail[strings.ToLower(email)]; ok {
		clone := u
		return &clone, nil
	}
	return nil, domain.ErrNotFound
}

func (r *memoryRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	for _, u := range r.byEmail {
		if u.ID == id {
			clone := u
			return &clone, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memoryRepo) Update(_ context.Context, u domain.User) (*domain.User, error) {
	for k, existing := range r.byEmail {
		if existing.ID == u.ID {
			delete(r.byEmail, k)
			r.byEmail[strings.ToLower(u.Email)] = u
			clone := u
			return &clone, nil
		}
	}
	return nil, domain.ErrNotFound
}

func TestRegisterAndLogin_SucceedsWithTrimmedPassword(t *testing.T) {
	svc := New(newMemoryRepo(), newMemoryTokenRepo(), time.Hour, nil)
	ctx := context.Background()

	session, err := svc.Register(ctx, RegisterInput{
		Name:     "Priya",
		Email:    "Priya@Example.com",
		Password: " secret1 ",
	})
	if err != nil {
		t.Fatalf("register returned error: %v", err)
	}
	if session.User.Email != "priya@example.com" || session.Token == "" {
		t.Fatalf("unexpected session %+v", session)
	}
	if session.User.Role != domain.RoleUser {
		t.Fatalf("expected user role, got %s", session.User.Role)
	}

	login, err := svc.Login(ctx, "priya@example.com", "secret1")
	if err != nil {
		t.Fatalf("login failed with trimmed password: %v", err)
	}
	if login.ExpiresIn != 3600 {
		t.Fatalf("expected 3600s ttl, got %d", login.ExpiresIn)
	}

	u, err := svc.LookupByToken(ctx, login.Token)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if u.ID != session.User.ID {
		t.Fatalf("lookup returned %s, want %s", u.ID, session.User.ID)
	}
}

func TestRegister_Validation(t *testing.T) {
	svc := New(newMemoryRepo(), newMemoryTokenRepo(), 0, nil)
	ctx := context.Background()

	cases := []RegisterInput{
		{Name: "", Email: "a@example.com", Password: "secret1"},
		{Name: "A", Email: "not-an-email", Password: "secret1"},
		{Name: "A", Email: "a@example.com", Password: "12345"},
		{Name: strings.Repeat("x", 51), Email: "a@example.com", Password: "secret1"},
	}
	for _, in := range cases {
		if _, err := svc.Register(ctx, in); !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("expected validation error for %+v, got %v", in, err)
		}
	}

	if _, err := svc.Register(ctx, RegisterInput{Name: "A", Email: "a@example.com", Password: "secret1"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := svc.Register(ctx, RegisterInput{Name: "B", Email: "A@example.com", Password: "secret1"}); !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestLogin_RejectsBadCredentials(t *testing.T) {
	svc := New(newMemoryRepo(), newMemoryTokenRepo(), time.Hour, nil)
	ctx := context.Background()
	if _, err := svc.Register(ctx, RegisterInput{Name: "A", Email: "a@example.com", Password: "secret1"}); err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, err := svc.Login(ctx, "a@example.com", "wrong-pass"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Login(ctx, "nobody@example.com", "secret1"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestLookupByToken_ExpiredTokenIsRejectedAndPurged(t *testing.T) {
	tokens := newMemoryTokenRepo()
	svc := New(newMemoryRepo(), tokens, time.Hour, nil)
	ctx := context.Background()

	session, err := svc.Register(ctx, RegisterInput{Name: "A", Email: "a@example.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	svc.tokens.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if _, err := svc.LookupByToken(ctx, session.Token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
	if _, ok := tokens.tokens[session.Token]; ok {
		t.Fatalf("expired token should be deleted")
	}

	if _, err := svc.Login(ctx, "a@example.com", "secret1"); err != nil {
		t.Fatalf("login: %v", err)
	}
	svc.tokens.now = func() time.Time { return time.Now().Add(3 * time.Hour) }
	n, err := svc.PurgeExpiredTokens(ctx)
	if err != nil {
		t.Fatalf("purge: %v", err)
	}
	if n != 1 || len(tokens.tokens) != 0 {
		t.Fatalf("expected one purged token, got n=%d left=%d", n, len(tokens.tokens))
	}
}

func TestLogout_RevokesToken(t *testing.T) {
	svc := New(newMemoryRepo(), newMemoryTokenRepo(), time.Hour, nil)
	ctx := context.Background()
	session, err := svc.Register(ctx, RegisterInput{Name: "A", Email: "a@example.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := svc.Logout(ctx, session.Token); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := svc.LookupByToken(ctx, session.Token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken after logout, got %v", err)
	}
	if err := svc.Logout(ctx, session.Token); err != nil {
		t.Fatalf("second logout should be a no-op, got %v", err)
	}
}

func TestLogoutAll_RevokesEverySession(t *testing.T) {
	svc := New(newMemoryRepo(), newMemoryTokenRepo(), time.Hour, nil)
	ctx := context.Background()
	first, err := svc.Register(ctx, RegisterInput{Name: "A", Email: "a@example.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	second, err := svc.Login(ctx, "a@example.com", "secret1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	other, err := svc.Register(ctx, RegisterInput{Name: "B", Email: "b@example.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("register other: %v", err)
	}

	n, err := svc.LogoutAll(ctx, first.User.ID)
	if err != nil || n != 2 {
		t.Fatalf("LogoutAll: n=%d err=%v", n, err)
	}
	for _, tok := range []string{first.Token, second.Token} {
		if _, err := svc.LookupByToken(ctx, tok); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("expected ErrInvalidToken, got %v", err)
		}
	}
	if _, err := svc.LookupByToken(ctx, other.Token); err != nil {
		t.Fatalf("other user's session must survive, got %v", err)
	}
}

func TestUpdateProfile(t *testing.T) {
	svc := New(newMemoryRepo(), newMemoryTokenRepo(), time.Hour, nil)
	ctx := context.Background()
	session, err := svc.Register(ctx, RegisterInput{Name: "A", Email: "a@example.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	updated, err := svc.UpdateProfile(ctx, session.User.ID, ProfileInput{
		Name:     "Anita",
		Phone:    "9876543210",
		Address:  &domain.Address{City: "Chennai", Country: "India"},
		Password: "newsecret",
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "Anita" || updated.Phone != "9876543210" || updated.Address.City != "Chennai" {
		t.Fatalf("unexpected profile %+v", updated)
	}
	if _, err := svc.Login(ctx, "a@example.com", "newsecret"); err != nil {
		t.Fatalf("login with new password: %v", err)
	}

	if _, err := svc.UpdateProfile(ctx, session.User.ID, ProfileInput{Password: "123"}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := svc.UpdateProfile(ctx, "missing", ProfileInput{Name: "X"}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestEnsureAdmin_CreatesThenPromotes(t *testing.T) {
	repo := newMemoryRepo()
	svc := New(repo, newMemoryTokenRepo(), time.Hour, nil)
	ctx := context.Background()

	admin, err := svc.EnsureAdmin(ctx, "admin@flipkart.com", "admin123")
	if err != nil {
		t.Fatalf("ensure admin: %v", err)
	}
	if admin.Role != domain.RoleAdmin {
		t.Fatalf("expected admin role, got %s", admin.Role)
	}

	if _, err := svc.Register(ctx, RegisterInput{Name: "Ops", Email: "ops@example.com", Password: "secret1"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	promoted, err := svc.EnsureAdmin(ctx, "ops@example.com", "opspass")
	if err != nil {
		t.Fatalf("promote: %v", err)
	}
	if promoted.Role != domain.RoleAdmin || promoted.Name != "Ops" {
		t.Fatalf("unexpected promoted user %+v", promoted)
	}
	if _, err := svc.Login(ctx, "ops@example.com", "opspass"); err != nil {
		t.Fatalf("login with admin password: %v", err)
	}
}

package user

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/mail"
	"strings"
	"time"

	"storefront/internal/domain"
	tokenrepo "storefront/internal/repository/token"
	userrepo "storefront/internal/repository/user"

	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidCredentials is returned when email/password do not match.
	ErrInvalidCredentials = fmt.Errorf("%w: invalid email or password", domain.ErrUnauthorized)
	// ErrInvalidToken indicates the provided token could not be validated.
	ErrInvalidToken = fmt.Errorf("%w: invalid token", domain.ErrUnauthorized)
)

const (
	nameMax     = 50
	passwordMin = 6
)

// Service handles registration, login and profile flows.
type Service struct {
	repo      userrepo.Repository
	tokens    *tokenManager
	accessTTL time.Duration
	logger    *log.Logger
}

// New creates a Service. A non-positive ttl falls back to 48 hours.
func New(repo userrepo.Repository, tokens tokenrepo.Repository, ttl time.Duration, logger *log.Logger) *Service {
	if ttl <= 0 {
		ttl = 48 * time.Hour
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{
		repo:      repo,
		tokens:    newTokenManager(tokens, time.Now),
		accessTTL: ttl,
		logger:    logger,
	}
}

// RegisterInput captures fields expected by the register endpoint.
type RegisterInput struct {
	Name     string         `json:"name"`
	Email    string         `json:"email"`
	Password string         `json:"password"`
	Phone    string         `json:"phone"`
	Address  domain.Address `json:"address"`
}

// ProfileInput carries profile edits. An empty Password keeps the current one.
type ProfileInput struct {
	Name     string          `json:"name"`
	Phone    string          `json:"phone"`
	Address  *domain.Address `json:"address"`
	Password string          `json:"password"`
}

// Session is an authenticated user together with its bearer token.
type Session struct {
	Token     string       `json:"token"`
	ExpiresIn int          `json:"expiresIn"`
	User      *domain.User `json:"user"`
}

// Register creates a shopper account and signs it in.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	name := strings.TrimSpace(in.Name)
	if err := validateName(name); err != nil {
		return nil, err
	}
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return nil, err
	}
	password := strings.TrimSpace(in.Password)
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	u, err := s.repo.Create(ctx, domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hashed),
		Phone:        strings.TrimSpace(in.Phone),
		Role:         domain.RoleUser,
		Address:      in.Address,
	})
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			return nil, fmt.Errorf("%w: user already exists", domain.ErrAlreadyExists)
		}
		return nil, err
	}
	s.logger.Printf("user service: registered id=%s", u.ID)
	return s.session(ctx, u)
}

// Login validates credentials and issues an access token.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	password = strings.TrimSpace(password)
	u, err := s.repo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.session(ctx, u)
}

// LookupByToken returns the user bound to a valid access token.
func (s *Service) LookupByToken(ctx context.Context, token string) (*domain.User, error) {
	meta, ok := s.tokens.Validate(ctx, token)
	if !ok {
		return nil, ErrInvalidToken
	}
	u, err := s.repo.GetByID(ctx, meta.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	return u, nil
}

// Logout revokes a single access token.
func (s *Service) Logout(ctx context.Context, token string) error {
	if err := s.tokens.Revoke(ctx, token); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	return nil
}

// LogoutAll revokes every access token held by the user.
func (s *Service) LogoutAll(ctx context.Context, userID string) (int64, error) {
	n, err := s.tokens.RevokeAll(ctx, userID)
	if err != nil {
		return 0, err
	}
	s.logger.Printf("user service: revoked sessions id=%s count=%d", userID, n)
	return n, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.User, error) {
	return s.repo.GetByID(ctx, id)
}

// UpdateProfile applies the non-empty fields of in to the user.
func (s *Service) UpdateProfile(ctx context.Context, id string, in ProfileInput) (*domain.User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if name := strings.TrimSpace(in.Name); name != "" {
		if err := validateName(name); err != nil {
			return nil, err
		}
		u.Name = name
	}
	if phone := strings.TrimSpace(in.Phone); phone != "" {
		u.Phone = phone
	}
	if in.Address != nil {
		u.Address = *in.Address
	}
	if password := strings.TrimSpace(in.Password); password != "" {
		if err := validatePassword(password); err != nil {
			return nil, err
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		u.PasswordHash = string(hashed)
	}
	return s.repo.Update(ctx, *u)
}

// EnsureAdmin creates the operator account or promotes and re-keys an
// existing one.
func (s *Service) EnsureAdmin(ctx context.Context, email, password string) (*domain.User, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	password = strings.TrimSpace(password)
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByEmail(ctx, email)
	switch {
	case err == nil:
		existing.Role = domain.RoleAdmin
		existing.PasswordHash = string(hashed)
		s.logger.Printf("user service: promoted admin id=%s", existing.ID)
		return s.repo.Update(ctx, *existing)
	case errors.Is(err, domain.ErrNotFound):
		u, err := s.repo.Create(ctx, domain.User{
			Name:         "Admin User",
			Email:        email,
			PasswordHash: string(hashed),
			Role:         domain.RoleAdmin,
		})
		if err != nil {
			return nil, err
		}
		s.logger.Printf("user service: created admin id=%s", u.ID)
		return u, nil
	default:
		return nil, err
	}
}

// PurgeExpiredTokens removes access tokens whose lifetime has elapsed.
func (s *Service) PurgeExpiredTokens(ctx context.Context) (int64, error) {
	n, err := s.tokens.Purge(ctx)
	if err != nil {
		s.logger.Printf("user service: purge tokens error=%v", err)
		return 0, err
	}
	if n > 0 {
		s.logger.Printf("user service: purged tokens count=%d", n)
	}
	return n, nil
}

// AccessTTLSeconds exposes the access token lifetime in seconds.
func (s *Service) AccessTTLSeconds() int {
	return int(s.accessTTL.Seconds())
}

func (s *Service) session(ctx context.Context, u *domain.User) (*Session, error) {
	token, err := s.tokens.Issue(ctx, u.ID, s.accessTTL)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, ExpiresIn: s.AccessTTLSeconds(), User: u}, nil
}

func validateName(name string) error {
	if name == "" {
		return domain.Invalid("name is required")
	}
	if len([]rune(name)) > nameMax {
		return domain.Invalid("name cannot exceed %d characters", nameMax)
	}
	return nil
}

func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", domain.Invalid("email is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", domain.Invalid("please enter a valid email")
	}
	return email, nil
}

func validatePassword(p string) error {
	if len(p) < passwordMin {
		return domain.Invalid("password must be at least %d characters", passwordMin)
	}
	return nil
}

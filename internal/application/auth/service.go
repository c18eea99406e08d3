package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/realscan/realscan/internal/application"
	domain "github.com/realscan/realscan/internal/domain/users"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUsernameTaken      = errors.New("username already exists")
	ErrMissingField       = errors.New("username and password are required")
)

const defaultTokenTTL = 24 * time.Hour

// Service handles credential check and token issuance against the
// generic user store collaborator.
type Service struct {
	Users      domain.Store
	Secret     []byte
	TokenTTL   time.Duration
	BcryptCost int
	Clock      application.Clock
}

// LoginResult is returned by both Login and Register.
type LoginResult struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

// Login checks the password against the stored bcrypt hash and issues
// a signed token. Inactive or unknown users get the same error as a
// wrong password.
func (s *Service) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	if username == "" || password == "" {
		return nil, ErrMissingField
	}
	u, err := s.Users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !u.IsActive {
		return nil, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	now := s.Clock.Now()
	_ = s.Users.UpdateLastLogin(ctx, u.ID, now)
	u.LastLogin = &now

	token, err := s.sign(u, now)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, User: u}, nil
}

// Register creates a new user with a bcrypt-hashed password and logs
// them in. Role defaults to "user".
func (s *Service) Register(ctx context.Context, username, password, role string) (*LoginResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrMissingField
	}
	if _, err := s.Users.FindByUsername(ctx, username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	cost := s.BcryptCost
	if cost <= 0 {
		cost = 12
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return nil, err
	}
	if role == "" {
		role = "user"
	}

	now := s.Clock.Now()
	u := &domain.User{
		ID:           uuid.New().String(),
		Username:     username,
		PasswordHash: string(hash),
		Role:         role,
		IsActive:     true,
		CreatedAt:    now,
	}
	if err := s.Users.Save(ctx, u); err != nil {
		return nil, err
	}

	token, err := s.sign(u, now)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, User: u}, nil
}

func (s *Service) sign(u *domain.User, now time.Time) (string, error) {
	ttl := s.TokenTTL
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	claims := jwt.MapClaims{
		"userId":   u.ID,
		"username": u.Username,
		"role":     u.Role,
		"iat":      now.Unix(),
		"exp":      now.Add(ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.Secret)
}

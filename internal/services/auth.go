package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/simple-diaries/apiserver/internal/auth"
	"github.com/simple-diaries/apiserver/internal/store"
	"github.com/simple-diaries/apiserver/types"
)

// AuthService orchestrates registration and login.
type AuthService struct {
	users  UserRepository
	hasher *auth.PasswordHasher
	tokens *auth.TokenService
}

func NewAuthService(users UserRepository, hasher *auth.PasswordHasher, tokens *auth.TokenService) *AuthService {
	return &AuthService{
		users:  users,
		hasher: hasher,
		tokens: tokens,
	}
}

// AuthResult carries a freshly issued token together with its validity
// duration and the authenticated user.
type AuthResult struct {
	Token    string
	Lifetime time.Duration
	User     types.User
}

// Register creates an account and issues a token for it. An email that is
// already taken yields store.ErrDuplicateEmail, whether caught by the
// pre-check or by the storage uniqueness constraint when two registrations
// race past the check.
func (s *AuthService) Register(ctx context.Context, email, password, fullName string) (AuthResult, error) {
	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return AuthResult{}, fmt.Errorf("check email: %w", err)
	}
	if exists {
		return AuthResult{}, store.ErrDuplicateEmail
	}

	digest, err := s.hasher.Hash(password)
	if err != nil {
		return AuthResult{}, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.Create(ctx, types.User{
		Email:        email,
		FullName:     fullName,
		PasswordHash: digest,
	})
	if err != nil {
		if errors.Is(err, store.ErrDuplicateEmail) {
			return AuthResult{}, store.ErrDuplicateEmail
		}
		return AuthResult{}, fmt.Errorf("create user: %w", err)
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return AuthResult{}, fmt.Errorf("issue token: %w", err)
	}

	return AuthResult{Token: token, Lifetime: s.tokens.Lifetime(), User: user}, nil
}

// Login verifies credentials and issues a token. An unknown email and a
// wrong password both return ErrInvalidCredentials; the real reason is
// logged at debug level only.
func (s *AuthService) Login(ctx context.Context, email, password string) (AuthResult, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			slog.DebugContext(ctx, "login failed", "reason", "unknown email")
			return AuthResult{}, ErrInvalidCredentials
		}
		return AuthResult{}, fmt.Errorf("find user: %w", err)
	}

	if !s.hasher.Matches(password, user.PasswordHash) {
		slog.DebugContext(ctx, "login failed", "reason", "wrong password", "user_id", user.ID)
		return AuthResult{}, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return AuthResult{}, fmt.Errorf("issue token: %w", err)
	}

	return AuthResult{Token: token, Lifetime: s.tokens.Lifetime(), User: user}, nil
}

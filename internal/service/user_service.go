package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/seshat-edu/seshat-backend/internal/model"
)

// UserService handles registration and credential checks.
type UserService struct {
	users UserStore
	auth  *AuthService
}

// NewUserService creates a new UserService.
func NewUserService(users UserStore, auth *AuthService) *UserService {
	return &UserService{users: users, auth: auth}
}

// Register creates an account. Returns ErrEmailTaken if the email exists.
func (s *UserService) Register(ctx context.Context, email, password string) (*model.User, error) {
	hash, err := s.auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	u := &model.User{Email: normalizeEmail(email), PasswordHash: hash}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Authenticate returns the user when email and password match.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	u, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := s.auth.CheckPassword(u.PasswordHash, password); err != nil {
		return nil, err
	}
	return u, nil
}

// CurrentUser resolves the account behind validated claims. A token whose
// user is gone, or whose subject no longer matches that user, is invalid.
func (s *UserService) CurrentUser(ctx context.Context, claims *Claims) (*model.User, error) {
	u, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("%w: unknown user", ErrTokenInvalid)
		}
		return nil, err
	}
	if u.Email != claims.Subject {
		return nil, fmt.Errorf("%w: subject mismatch", ErrTokenInvalid)
	}
	return u, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/fjod/shoes_shop/internal/auth"
	"github.com/fjod/shoes_shop/internal/domain"
	"github.com/fjod/shoes_shop/internal/repository"
)

type AuthService struct {
	users  repository.UserRepository
	tokens *auth.TokenIssuer
}

func NewAuthService(users repository.UserRepository, tokens *auth.TokenIssuer) *AuthService {
	return &AuthService{users: users, tokens: tokens}
}

// Login checks the credentials and returns a signed token for the user.
func (s *AuthService) Login(ctx context.Context, login, password string) (string, *domain.User, error) {
	user, err := s.users.GetUserByLogin(ctx, login)
	if errors.Is(err, repository.ErrUserNotFound) {
		return "", nil, ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, &PersistenceError{Op: "load user", Err: err}
	}

	if err := auth.CheckPassword(user.PasswordHash, password); err != nil {
		if !errors.Is(err, auth.ErrPasswordMismatch) {
			slog.WarnContext(ctx, "password check failed", "user_id", user.ID, "error", err)
		}
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return "", nil, err
	}
	slog.InfoContext(ctx, "user logged in", "user_id", user.ID, "role", user.Role.String())
	return token, user, nil
}

// EnsureUser creates the user unless the login is already taken. It reports whether a user was created.
func (s *AuthService) EnsureUser(ctx context.Context, fullName, login, password string, role domain.Role) (bool, error) {
	_, err := s.users.GetUserByLogin(ctx, login)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return false, &PersistenceError{Op: "load user", Err: err}
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return false, err
	}
	_, err = s.users.CreateUser(ctx, &domain.User{
		FullName:     fullName,
		Login:        login,
		PasswordHash: hash,
		Role:         role,
	})
	if errors.Is(err, repository.ErrDuplicateLogin) {
		return false, nil
	}
	if err != nil {
		return false, &PersistenceError{Op: "create user", Err: err}
	}
	return true, nil
}

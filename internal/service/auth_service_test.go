package service

import (
	"context"
	"testing"
	"time"

	"github.com/fjod/shoes_shop/internal/auth"
	"github.com/fjod/shoes_shop/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthService(store *mockStore) (*AuthService, *auth.TokenIssuer) {
	issuer := auth.NewTokenIssuer("test-secret", time.Hour)
	return NewAuthService(store, issuer), issuer
}

func TestLogin(t *testing.T) {
	store := newMockStore()
	svc, issuer := newAuthService(store)
	ctx := context.Background()

	created, err := svc.EnsureUser(ctx, "Manager Petrov", "manager", "secret", domain.RoleManager)
	require.NoError(t, err)
	require.True(t, created)

	token, user, err := svc.Login(ctx, "manager", "secret")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleManager, user.Role)

	claims, err := issuer.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	store := newMockStore()
	svc, _ := newAuthService(store)
	ctx := context.Background()
	_, err := svc.EnsureUser(ctx, "Manager Petrov", "manager", "secret", domain.RoleManager)
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "manager", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = svc.Login(ctx, "ghost", "secret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestEnsureUser_Existing(t *testing.T) {
	store := newMockStore()
	svc, _ := newAuthService(store)
	ctx := context.Background()

	_, err := svc.EnsureUser(ctx, "Admin", "admin", "one", domain.RoleAdmin)
	require.NoError(t, err)

	created, err := svc.EnsureUser(ctx, "Admin", "admin", "two", domain.RoleAdmin)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Len(t, store.users, 1)

	_, _, err = svc.Login(ctx, "admin", "one")
	assert.NoError(t, err)
}

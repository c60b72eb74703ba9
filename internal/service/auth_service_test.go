package service

import (
	"context"
	"testing"
	"time"

	"autofix/internal/database"
	"autofix/internal/repository"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAuth(t *testing.T) *AuthService {
	t.Helper()
	logger := zerolog.Nop()
	db, err := database.NewDB(":memory:", &logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	hash, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)
	require.NoError(t, db.UpsertAdmin(context.Background(), "admin", hash))

	sessions := repository.NewMemorySessionRepository(time.Hour)
	return NewAuthService(db, sessions, &logger)
}

func TestLogin(t *testing.T) {
	auth := newTestAuth(t)
	ctx := context.Background()

	t.Run("valid credentials", func(t *testing.T) {
		session, err := auth.Login(ctx, "admin", "correct horse battery staple")
		require.NoError(t, err)
		assert.NotEmpty(t, session.Token)
		assert.Equal(t, "admin", session.Username)
	})

	t.Run("username is trimmed", func(t *testing.T) {
		_, err := auth.Login(ctx, "  admin  ", "correct horse battery staple")
		assert.NoError(t, err)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := auth.Login(ctx, "admin", "wrong")
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("unknown username gets the same error", func(t *testing.T) {
		_, err := auth.Login(ctx, "nobody", "correct horse battery staple")
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("empty credentials", func(t *testing.T) {
		_, err := auth.Login(ctx, "", "")
		assert.ErrorIs(t, err, ErrUnauthorized)
	})
}

func TestAuthenticateAndLogout(t *testing.T) {
	auth := newTestAuth(t)
	ctx := context.Background()

	session, err := auth.Login(ctx, "admin", "correct horse battery staple")
	require.NoError(t, err)

	t.Run("valid token resolves", func(t *testing.T) {
		got, err := auth.Authenticate(ctx, session.Token)
		require.NoError(t, err)
		assert.Equal(t, session.Username, got.Username)
	})

	t.Run("empty token rejected", func(t *testing.T) {
		_, err := auth.Authenticate(ctx, "")
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("logout invalidates the token", func(t *testing.T) {
		require.NoError(t, auth.Logout(ctx, session.Token))

		_, err := auth.Authenticate(ctx, session.Token)
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("logout with empty token is a no-op", func(t *testing.T) {
		assert.NoError(t, auth.Logout(ctx, ""))
	})
}

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemorySessionRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("round trip and delete", func(t *testing.T) {
		repo := NewMemorySessionRepository(time.Hour)
		session := testSession("mem-1")
		require.NoError(t, repo.SetSession(ctx, session))

		got, err := repo.GetSession(ctx, "mem-1")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "admin", got.Username)

		require.NoError(t, repo.DeleteSession(ctx, "mem-1"))
		got, err = repo.GetSession(ctx, "mem-1")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("unknown token is nil not error", func(t *testing.T) {
		repo := NewMemorySessionRepository(time.Hour)
		got, err := repo.GetSession(ctx, "missing")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("expired sessions are dropped lazily", func(t *testing.T) {
		repo := NewMemorySessionRepository(-time.Second)
		require.NoError(t, repo.SetSession(ctx, testSession("mem-2")))

		got, err := repo.GetSession(ctx, "mem-2")
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

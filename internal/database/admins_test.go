package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdmins(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.UpsertAdmin(ctx, "admin", "hash-one"))

	t.Run("get by username", func(t *testing.T) {
		admin, err := db.GetAdminByUsername(ctx, "admin")
		require.NoError(t, err)
		assert.Equal(t, "admin", admin.Username)
		assert.Equal(t, "hash-one", admin.PasswordHash)
	})

	t.Run("upsert replaces hash", func(t *testing.T) {
		require.NoError(t, db.UpsertAdmin(ctx, "admin", "hash-two"))

		admin, err := db.GetAdminByUsername(ctx, "admin")
		require.NoError(t, err)
		assert.Equal(t, "hash-two", admin.PasswordHash)
	})

	t.Run("unknown username", func(t *testing.T) {
		_, err := db.GetAdminByUsername(ctx, "nobody")
		assert.ErrorIs(t, err, ErrAdminNotFound)
	})
}

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"autofix/internal/models"
)

// UpsertAdmin creates the admin credential or replaces its hash,
// keyed by the unique username. Used by seeding only; there is no API
// path that creates admins.
func (db *DB) UpsertAdmin(ctx context.Context, username, passwordHash string) error {
	query := `INSERT INTO admins (username, password_hash) VALUES (?, ?)
              ON CONFLICT(username) DO UPDATE SET password_hash = excluded.password_hash`
	if _, err := db.db.ExecContext(ctx, query, username, passwordHash); err != nil {
		return fmt.Errorf("failed to upsert admin: %w", err)
	}
	return nil
}

// GetAdminByUsername returns the stored credential for a username.
func (db *DB) GetAdminByUsername(ctx context.Context, username string) (*models.Admin, error) {
	query := `SELECT id, username, password_hash FROM admins WHERE username = ?`
	var admin models.Admin
	err := db.db.QueryRowContext(ctx, query, username).Scan(&admin.ID, &admin.Username, &admin.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAdminNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get admin: %w", err)
	}
	return &admin, nil
}

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"autofix/internal/models"
)

// CreateMechanic inserts a mechanic and fills in its id.
func (db *DB) CreateMechanic(ctx context.Context, mechanic *models.Mechanic) error {
	now := time.Now().UTC()
	query := `INSERT INTO mechanics (name, specialization, experience, created_at) VALUES (?, ?, ?, ?)`
	result, err := db.db.ExecContext(ctx, query, mechanic.Name, mechanic.Specialization, mechanic.Experience, now)
	if err != nil {
		return fmt.Errorf("failed to create mechanic: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	mechanic.ID = id
	mechanic.CreatedAt = now
	return nil
}

// GetMechanic returns the mechanic by id.
func (db *DB) GetMechanic(ctx context.Context, id int64) (*models.Mechanic, error) {
	query := `SELECT id, name, specialization, experience, created_at FROM mechanics WHERE id = ?`
	var m models.Mechanic
	err := db.db.QueryRowContext(ctx, query, id).Scan(&m.ID, &m.Name, &m.Specialization, &m.Experience, &m.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMechanicNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get mechanic: %w", err)
	}
	return &m, nil
}

// ListMechanics returns all mechanics ordered by id ascending, the
// order the round-robin distribution relies on.
func (db *DB) ListMechanics(ctx context.Context) ([]*models.Mechanic, error) {
	query := `SELECT id, name, specialization, experience, created_at FROM mechanics ORDER BY id ASC`
	rows, err := db.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list mechanics: %w", err)
	}
	defer rows.Close()

	var mechanics []*models.Mechanic
	for rows.Next() {
		m := &models.Mechanic{}
		if err := rows.Scan(&m.ID, &m.Name, &m.Specialization, &m.Experience, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan mechanic: %w", err)
		}
		mechanics = append(mechanics, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate mechanics: %w", err)
	}
	return mechanics, nil
}

// CountMechanics returns the number of mechanics on file.
func (db *DB) CountMechanics(ctx context.Context) (int64, error) {
	var count int64
	if err := db.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM mechanics`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count mechanics: %w", err)
	}
	return count, nil
}

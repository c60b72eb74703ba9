package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"autofix/internal/models"
)

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertNotification(ctx context.Context, ex execer, bookingRef, message string, ts time.Time) error {
	query := `INSERT INTO notifications (booking_ref, message, timestamp) VALUES (?, ?, ?)`
	if _, err := ex.ExecContext(ctx, query, bookingRef, message, ts); err != nil {
		if isForeignKeyViolation(err) {
			return ErrBookingNotFound
		}
		return fmt.Errorf("failed to insert notification: %w", err)
	}
	return nil
}

// AddNotification appends an audit record for an existing booking.
// The booking_ref foreign key rejects records for unknown bookings.
func (db *DB) AddNotification(ctx context.Context, bookingRef, message string) (*models.Notification, error) {
	now := time.Now().UTC()
	query := `INSERT INTO notifications (booking_ref, message, timestamp) VALUES (?, ?, ?)`
	result, err := db.db.ExecContext(ctx, query, bookingRef, message, now)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to add notification: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id: %w", err)
	}
	return &models.Notification{ID: id, BookingRef: bookingRef, Message: message, Timestamp: now}, nil
}

// ListRecentNotifications returns up to limit notifications, newest
// first with id as the tie-break.
func (db *DB) ListRecentNotifications(ctx context.Context, limit int) ([]*models.Notification, error) {
	if limit <= 0 {
		limit = models.DefaultNotificationLimit
	}
	query := `SELECT id, booking_ref, message, timestamp FROM notifications
              ORDER BY timestamp DESC, id DESC LIMIT ?`
	rows, err := db.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	var notifications []*models.Notification
	for rows.Next() {
		n := &models.Notification{}
		if err := rows.Scan(&n.ID, &n.BookingRef, &n.Message, &n.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate notifications: %w", err)
	}
	return notifications, nil
}

// CountNotifications returns the number of audit records for a booking.
func (db *DB) CountNotifications(ctx context.Context, bookingRef string) (int64, error) {
	var count int64
	query := `SELECT COUNT(*) FROM notifications WHERE booking_ref = ?`
	if err := db.db.QueryRowContext(ctx, query, bookingRef).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count notifications: %w", err)
	}
	return count, nil
}

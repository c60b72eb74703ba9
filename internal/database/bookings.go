package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"autofix/internal/models"
)

const bookingColumns = `id, booking_ref, customer_name, customer_email, customer_phone,
                 car_make, car_model, car_year, license_plate, issue_description,
                 preferred_date, preferred_time, status, mechanic_id, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row rowScanner) (*models.Booking, error) {
	b := &models.Booking{}
	var mechanicID sql.NullInt64
	err := row.Scan(
		&b.ID, &b.Reference, &b.CustomerName, &b.CustomerEmail, &b.CustomerPhone,
		&b.CarMake, &b.CarModel, &b.CarYear, &b.LicensePlate, &b.IssueDescription,
		&b.PreferredDate, &b.PreferredTime, &b.Status, &mechanicID, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if mechanicID.Valid {
		b.MechanicID = &mechanicID.Int64
	}
	return b, nil
}

// CreateBooking inserts the booking and its audit notification in one
// transaction, so a failed insert never leaves an orphaned record.
// A booking_ref collision surfaces as ErrDuplicateReference.
func (db *DB) CreateBooking(ctx context.Context, booking *models.Booking, note string) error {
	tx, err := db.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	now := time.Now().UTC()
	query := `INSERT INTO bookings (
				booking_ref, customer_name, customer_email, customer_phone,
				car_make, car_model, car_year, license_plate, issue_description,
				preferred_date, preferred_time, status, mechanic_id, created_at, updated_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	result, err := tx.ExecContext(ctx, query,
		booking.Reference,
		booking.CustomerName,
		booking.CustomerEmail,
		booking.CustomerPhone,
		booking.CarMake,
		booking.CarModel,
		booking.CarYear,
		booking.LicensePlate,
		booking.IssueDescription,
		booking.PreferredDate,
		booking.PreferredTime,
		booking.Status,
		booking.MechanicID,
		now,
		now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateReference
		}
		return fmt.Errorf("failed to create booking: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	if note != "" {
		if err := insertNotification(ctx, tx, booking.Reference, note, now); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit booking: %w", err)
	}

	booking.ID = id
	booking.CreatedAt = now
	booking.UpdatedAt = now
	return nil
}

// GetBooking returns the booking by internal id.
func (db *DB) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ?`
	booking, err := scanBooking(db.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return booking, nil
}

// GetBookingByReference returns the booking by its external reference.
func (db *DB) GetBookingByReference(ctx context.Context, ref string) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE booking_ref = ?`
	booking, err := scanBooking(db.db.QueryRowContext(ctx, query, ref))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking by reference: %w", err)
	}
	return booking, nil
}

// ListBookings returns bookings newest first, id descending on equal
// timestamps so the order stays reproducible. An empty or "all" status
// returns everything.
func (db *DB) ListBookings(ctx context.Context, status string) ([]*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings`
	var args []any
	if status != "" && status != "all" {
		query += ` WHERE status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC, id DESC`

	return db.queryBookings(ctx, query, args...)
}

// TrackBookings returns the bookings whose customer email matches
// case-insensitively, newest first.
func (db *DB) TrackBookings(ctx context.Context, email string) ([]*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings
              WHERE LOWER(customer_email) = LOWER(?)
              ORDER BY created_at DESC, id DESC`
	return db.queryBookings(ctx, query, strings.TrimSpace(email))
}

// ListUnassignedPending returns the auto-assign candidates, oldest
// first so earlier requests get a mechanic first.
func (db *DB) ListUnassignedPending(ctx context.Context) ([]*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings
              WHERE status = ? AND mechanic_id IS NULL
              ORDER BY created_at ASC, id ASC`
	return db.queryBookings(ctx, query, models.StatusPending)
}

func (db *DB) queryBookings(ctx context.Context, query string, args ...any) ([]*models.Booking, error) {
	rows, err := db.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}
	defer rows.Close()

	var bookings []*models.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bookings: %w", err)
	}
	return bookings, nil
}

// UpdateBooking applies the patch and appends the audit notification
// in one transaction, returning the updated booking. A mechanic id
// that references no mechanic surfaces as ErrMechanicNotFound.
func (db *DB) UpdateBooking(ctx context.Context, id int64, patch models.BookingPatch, note string) (*models.Booking, error) {
	tx, err := db.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	sets := make([]string, 0, 3)
	args := make([]any, 0, 4)
	if patch.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, *patch.Status)
	}
	if patch.MechanicSet {
		sets = append(sets, "mechanic_id = ?")
		args = append(args, patch.MechanicID)
	}
	now := time.Now().UTC()
	sets = append(sets, "updated_at = ?")
	args = append(args, now, id)

	query := `UPDATE bookings SET ` + strings.Join(sets, ", ") + ` WHERE id = ?`
	result, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, ErrMechanicNotFound
		}
		return nil, fmt.Errorf("failed to update booking: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, ErrBookingNotFound
	}

	booking, err := scanBooking(tx.QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = ?`, id))
	if err != nil {
		return nil, fmt.Errorf("failed to reload booking: %w", err)
	}

	if note != "" {
		if err := insertNotification(ctx, tx, booking.Reference, note, now); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit booking update: %w", err)
	}
	return booking, nil
}

// DeleteBooking removes the booking. Its notifications go with it via
// the booking_ref cascade.
func (db *DB) DeleteBooking(ctx context.Context, id int64) error {
	result, err := db.db.ExecContext(ctx, `DELETE FROM bookings WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete booking: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrBookingNotFound
	}
	return nil
}

// ApplyAssignments sets mechanic and in-progress status for every
// assignment plus its audit notification, all or nothing.
func (db *DB) ApplyAssignments(ctx context.Context, assignments []models.Assignment) error {
	if len(assignments) == 0 {
		return nil
	}

	tx, err := db.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	now := time.Now().UTC()
	for _, a := range assignments {
		query := `UPDATE bookings SET mechanic_id = ?, status = ?, updated_at = ?
                  WHERE id = ? AND status = ? AND mechanic_id IS NULL`
		result, err := tx.ExecContext(ctx, query, a.MechanicID, models.StatusInProgress, now, a.BookingID, models.StatusPending)
		if err != nil {
			return fmt.Errorf("failed to assign booking %d: %w", a.BookingID, err)
		}
		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rowsAffected == 0 {
			// The booking changed under us since the snapshot; skip its audit row.
			continue
		}

		note := fmt.Sprintf("Assigned to %s", a.MechanicName)
		if err := insertNotification(ctx, tx, a.BookingRef, note, now); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit assignments: %w", err)
	}
	return nil
}

// Stats returns the dashboard counters in a single pass over bookings.
func (db *DB) Stats(ctx context.Context) (*models.Stats, error) {
	stats := &models.Stats{}
	query := `SELECT
	            COUNT(*),
	            COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0),
	            COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0),
	            COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0),
	            COALESCE(SUM(CASE WHEN mechanic_id IS NULL THEN 1 ELSE 0 END), 0)
	          FROM bookings`
	err := db.db.QueryRowContext(ctx, query,
		models.StatusPending, models.StatusInProgress, models.StatusCompleted,
	).Scan(
		&stats.TotalBookings,
		&stats.PendingBookings,
		&stats.InProgressBookings,
		&stats.CompletedBookings,
		&stats.UnassignedBookings,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking stats: %w", err)
	}

	if err := db.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM mechanics`).Scan(&stats.Mechanics); err != nil {
		return nil, fmt.Errorf("failed to count mechanics: %w", err)
	}
	return stats, nil
}

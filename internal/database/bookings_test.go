package database

import (
	"context"
	"testing"

	"autofix/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	logger := zerolog.Nop()
	db, err := NewDB(":memory:", &logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func newTestBooking(ref string) *models.Booking {
	return &models.Booking{
		Reference:        ref,
		CustomerName:     "Alice Thompson",
		CustomerEmail:    "alice@example.com",
		CustomerPhone:    "555-0101",
		CarMake:          "Toyota",
		CarModel:         "Corolla",
		CarYear:          "2019",
		LicensePlate:     "ABC-1234",
		IssueDescription: "Rattling noise when braking",
		PreferredDate:    "2026-09-05",
		PreferredTime:    "09:00",
		Status:           models.StatusPending,
	}
}

func TestCreateBooking(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	booking := newTestBooking("BKAAAAAAAAA1")
	err := db.CreateBooking(ctx, booking, "New booking created for Alice Thompson")
	require.NoError(t, err)
	assert.NotZero(t, booking.ID)
	assert.False(t, booking.CreatedAt.IsZero())

	t.Run("audit notification written in same transaction", func(t *testing.T) {
		count, err := db.CountNotifications(ctx, booking.Reference)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("duplicate reference", func(t *testing.T) {
		dup := newTestBooking("BKAAAAAAAAA1")
		err := db.CreateBooking(ctx, dup, "note")
		assert.ErrorIs(t, err, ErrDuplicateReference)

		// The failed insert must not leave a notification behind.
		count, err := db.CountNotifications(ctx, "BKAAAAAAAAA1")
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})
}

func TestGetBooking(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	booking := newTestBooking("BKAAAAAAAAA2")
	require.NoError(t, db.CreateBooking(ctx, booking, ""))

	t.Run("by id", func(t *testing.T) {
		got, err := db.GetBooking(ctx, booking.ID)
		require.NoError(t, err)
		assert.Equal(t, booking.Reference, got.Reference)
		assert.Nil(t, got.MechanicID)
	})

	t.Run("by reference", func(t *testing.T) {
		got, err := db.GetBookingByReference(ctx, "BKAAAAAAAAA2")
		require.NoError(t, err)
		assert.Equal(t, booking.ID, got.ID)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := db.GetBooking(ctx, 9999)
		assert.ErrorIs(t, err, ErrBookingNotFound)

		_, err = db.GetBookingByReference(ctx, "BKNOPE000000")
		assert.ErrorIs(t, err, ErrBookingNotFound)
	})
}

func TestListBookings(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	refs := []string{"BKLIST000001", "BKLIST000002", "BKLIST000003"}
	for i, ref := range refs {
		b := newTestBooking(ref)
		if i == 2 {
			b.Status = models.StatusCompleted
		}
		require.NoError(t, db.CreateBooking(ctx, b, ""))
	}

	t.Run("newest first with id tie-break", func(t *testing.T) {
		bookings, err := db.ListBookings(ctx, "")
		require.NoError(t, err)
		require.Len(t, bookings, 3)
		assert.Equal(t, "BKLIST000003", bookings[0].Reference)
		assert.Equal(t, "BKLIST000002", bookings[1].Reference)
		assert.Equal(t, "BKLIST000001", bookings[2].Reference)
	})

	t.Run("all is unfiltered", func(t *testing.T) {
		bookings, err := db.ListBookings(ctx, "all")
		require.NoError(t, err)
		assert.Len(t, bookings, 3)
	})

	t.Run("status filter", func(t *testing.T) {
		bookings, err := db.ListBookings(ctx, models.StatusCompleted)
		require.NoError(t, err)
		require.Len(t, bookings, 1)
		assert.Equal(t, "BKLIST000003", bookings[0].Reference)
	})

	t.Run("no matches is empty not error", func(t *testing.T) {
		bookings, err := db.ListBookings(ctx, models.StatusInProgress)
		require.NoError(t, err)
		assert.Empty(t, bookings)
	})
}

func TestTrackBookings(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	mine := newTestBooking("BKTRACK00001")
	mine.CustomerEmail = "Carol.Jones@Example.com"
	require.NoError(t, db.CreateBooking(ctx, mine, ""))

	other := newTestBooking("BKTRACK00002")
	other.CustomerEmail = "someone.else@example.com"
	require.NoError(t, db.CreateBooking(ctx, other, ""))

	t.Run("matches case-insensitively", func(t *testing.T) {
		bookings, err := db.TrackBookings(ctx, "carol.jones@example.COM")
		require.NoError(t, err)
		require.Len(t, bookings, 1)
		assert.Equal(t, "BKTRACK00001", bookings[0].Reference)
	})

	t.Run("unknown email is empty", func(t *testing.T) {
		bookings, err := db.TrackBookings(ctx, "nobody@example.com")
		require.NoError(t, err)
		assert.Empty(t, bookings)
	})
}

func TestUpdateBooking(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	mechanic := &models.Mechanic{Name: "John Smith", Specialization: "Engine", Experience: "10 years"}
	require.NoError(t, db.CreateMechanic(ctx, mechanic))

	booking := newTestBooking("BKUPD0000001")
	require.NoError(t, db.CreateBooking(ctx, booking, ""))

	t.Run("status only", func(t *testing.T) {
		status := models.StatusCompleted
		updated, err := db.UpdateBooking(ctx, booking.ID, models.BookingPatch{Status: &status}, "Status updated to completed")
		require.NoError(t, err)
		assert.Equal(t, models.StatusCompleted, updated.Status)
		assert.Nil(t, updated.MechanicID)
	})

	t.Run("assign mechanic", func(t *testing.T) {
		patch := models.BookingPatch{MechanicID: &mechanic.ID, MechanicSet: true}
		updated, err := db.UpdateBooking(ctx, booking.ID, patch, "Assignment updated")
		require.NoError(t, err)
		require.NotNil(t, updated.MechanicID)
		assert.Equal(t, mechanic.ID, *updated.MechanicID)
		// Status untouched by a mechanic-only patch at this layer.
		assert.Equal(t, models.StatusCompleted, updated.Status)
	})

	t.Run("clear mechanic with explicit null", func(t *testing.T) {
		patch := models.BookingPatch{MechanicID: nil, MechanicSet: true}
		updated, err := db.UpdateBooking(ctx, booking.ID, patch, "Assignment updated")
		require.NoError(t, err)
		assert.Nil(t, updated.MechanicID)
	})

	t.Run("unknown mechanic violates foreign key", func(t *testing.T) {
		bogus := int64(9999)
		patch := models.BookingPatch{MechanicID: &bogus, MechanicSet: true}
		_, err := db.UpdateBooking(ctx, booking.ID, patch, "")
		assert.ErrorIs(t, err, ErrMechanicNotFound)
	})

	t.Run("unknown booking", func(t *testing.T) {
		status := models.StatusPending
		_, err := db.UpdateBooking(ctx, 9999, models.BookingPatch{Status: &status}, "")
		assert.ErrorIs(t, err, ErrBookingNotFound)
	})

	t.Run("audit trail accumulated", func(t *testing.T) {
		count, err := db.CountNotifications(ctx, booking.Reference)
		require.NoError(t, err)
		assert.Equal(t, int64(3), count)
	})
}

func TestDeleteBooking(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	booking := newTestBooking("BKDEL0000001")
	require.NoError(t, db.CreateBooking(ctx, booking, "New booking created for Alice Thompson"))
	_, err := db.AddNotification(ctx, booking.Reference, "Status updated to completed")
	require.NoError(t, err)

	require.NoError(t, db.DeleteBooking(ctx, booking.ID))

	t.Run("booking is gone", func(t *testing.T) {
		_, err := db.GetBooking(ctx, booking.ID)
		assert.ErrorIs(t, err, ErrBookingNotFound)
	})

	t.Run("notifications cascade", func(t *testing.T) {
		count, err := db.CountNotifications(ctx, booking.Reference)
		require.NoError(t, err)
		assert.Equal(t, int64(0), count)
	})

	t.Run("double delete", func(t *testing.T) {
		assert.ErrorIs(t, db.DeleteBooking(ctx, booking.ID), ErrBookingNotFound)
	})
}

func TestListUnassignedPending(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	mechanic := &models.Mechanic{Name: "Sarah Johnson"}
	require.NoError(t, db.CreateMechanic(ctx, mechanic))

	eligible := newTestBooking("BKELIG000001")
	require.NoError(t, db.CreateBooking(ctx, eligible, ""))

	assigned := newTestBooking("BKELIG000002")
	assigned.MechanicID = &mechanic.ID
	require.NoError(t, db.CreateBooking(ctx, assigned, ""))

	completed := newTestBooking("BKELIG000003")
	completed.Status = models.StatusCompleted
	require.NoError(t, db.CreateBooking(ctx, completed, ""))

	bookings, err := db.ListUnassignedPending(ctx)
	require.NoError(t, err)
	require.Len(t, bookings, 1)
	assert.Equal(t, "BKELIG000001", bookings[0].Reference)
}

func TestApplyAssignments(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	mechanic := &models.Mechanic{Name: "Mike Williams"}
	require.NoError(t, db.CreateMechanic(ctx, mechanic))

	booking := newTestBooking("BKASSIGN0001")
	require.NoError(t, db.CreateBooking(ctx, booking, ""))

	stale := newTestBooking("BKASSIGN0002")
	stale.Status = models.StatusCompleted
	require.NoError(t, db.CreateBooking(ctx, stale, ""))

	assignments := []models.Assignment{
		{BookingID: booking.ID, BookingRef: booking.Reference, MechanicID: mechanic.ID, MechanicName: mechanic.Name},
		// Snapshot went stale: this one is completed already and must be skipped.
		{BookingID: stale.ID, BookingRef: stale.Reference, MechanicID: mechanic.ID, MechanicName: mechanic.Name},
	}
	require.NoError(t, db.ApplyAssignments(ctx, assignments))

	t.Run("eligible booking assigned and promoted", func(t *testing.T) {
		got, err := db.GetBooking(ctx, booking.ID)
		require.NoError(t, err)
		require.NotNil(t, got.MechanicID)
		assert.Equal(t, mechanic.ID, *got.MechanicID)
		assert.Equal(t, models.StatusInProgress, got.Status)

		count, err := db.CountNotifications(ctx, booking.Reference)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("stale booking untouched", func(t *testing.T) {
		got, err := db.GetBooking(ctx, stale.ID)
		require.NoError(t, err)
		assert.Nil(t, got.MechanicID)
		assert.Equal(t, models.StatusCompleted, got.Status)

		count, err := db.CountNotifications(ctx, stale.Reference)
		require.NoError(t, err)
		assert.Equal(t, int64(0), count)
	})

	t.Run("empty slice is a no-op", func(t *testing.T) {
		assert.NoError(t, db.ApplyAssignments(ctx, nil))
	})
}

func TestStats(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	mechanic := &models.Mechanic{Name: "Emily Brown"}
	require.NoError(t, db.CreateMechanic(ctx, mechanic))

	pending := newTestBooking("BKSTAT000001")
	require.NoError(t, db.CreateBooking(ctx, pending, ""))

	inProgress := newTestBooking("BKSTAT000002")
	inProgress.Status = models.StatusInProgress
	inProgress.MechanicID = &mechanic.ID
	require.NoError(t, db.CreateBooking(ctx, inProgress, ""))

	completed := newTestBooking("BKSTAT000003")
	completed.Status = models.StatusCompleted
	completed.MechanicID = &mechanic.ID
	require.NoError(t, db.CreateBooking(ctx, completed, ""))

	stats, err := db.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalBookings)
	assert.Equal(t, int64(1), stats.PendingBookings)
	assert.Equal(t, int64(1), stats.InProgressBookings)
	assert.Equal(t, int64(1), stats.CompletedBookings)
	assert.Equal(t, int64(1), stats.UnassignedBookings)
	assert.Equal(t, int64(1), stats.Mechanics)
}

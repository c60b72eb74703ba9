package domain

import (
	"context"

	"autofix/internal/models"
)

// Repository is the persistence gateway consumed by the services.
type Repository interface {
	CreateBooking(ctx context.Context, booking *models.Booking, note string) error
	GetBooking(ctx context.Context, id int64) (*models.Booking, error)
	GetBookingByReference(ctx context.Context, ref string) (*models.Booking, error)
	ListBookings(ctx context.Context, status string) ([]*models.Booking, error)
	TrackBookings(ctx context.Context, email string) ([]*models.Booking, error)
	ListUnassignedPending(ctx context.Context) ([]*models.Booking, error)
	UpdateBooking(ctx context.Context, id int64, patch models.BookingPatch, note string) (*models.Booking, error)
	DeleteBooking(ctx context.Context, id int64) error
	ApplyAssignments(ctx context.Context, assignments []models.Assignment) error
	Stats(ctx context.Context) (*models.Stats, error)

	CreateMechanic(ctx context.Context, mechanic *models.Mechanic) error
	GetMechanic(ctx context.Context, id int64) (*models.Mechanic, error)
	ListMechanics(ctx context.Context) ([]*models.Mechanic, error)

	AddNotification(ctx context.Context, bookingRef, message string) (*models.Notification, error)
	ListRecentNotifications(ctx context.Context, limit int) ([]*models.Notification, error)

	UpsertAdmin(ctx context.Context, username, passwordHash string) error
	GetAdminByUsername(ctx context.Context, username string) (*models.Admin, error)
}

// SessionRepository keeps admin sessions with a TTL.
type SessionRepository interface {
	SetSession(ctx context.Context, session *models.Session) error
	GetSession(ctx context.Context, token string) (*models.Session, error)
	DeleteSession(ctx context.Context, token string) error
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// BookingService is the lifecycle engine surface the API layer calls.
type BookingService interface {
	CreateBooking(ctx context.Context, input models.CreateBookingInput) (*models.Booking, error)
	GetBooking(ctx context.Context, id int64) (*models.Booking, error)
	GetBookingByReference(ctx context.Context, ref string) (*models.Booking, error)
	ListBookings(ctx context.Context, status string) ([]*models.Booking, error)
	TrackBookings(ctx context.Context, email string) ([]*models.Booking, error)
	UpdateBooking(ctx context.Context, id int64, patch models.BookingPatch) (*models.Booking, error)
	DeleteBooking(ctx context.Context, id int64) error
	AutoAssign(ctx context.Context) (int, error)
	ListMechanics(ctx context.Context) ([]*models.Mechanic, error)
	Stats(ctx context.Context) (*models.Stats, error)
}

// NotificationService is the audit-trail recorder.
type NotificationService interface {
	Record(ctx context.Context, bookingRef, message string) (*models.Notification, error)
	ListRecent(ctx context.Context, limit int) ([]*models.Notification, error)
}

// AuthService gates the admin-only API actions.
type AuthService interface {
	Login(ctx context.Context, username, password string) (*models.Session, error)
	Logout(ctx context.Context, token string) error
	Authenticate(ctx context.Context, token string) (*models.Session, error)
}

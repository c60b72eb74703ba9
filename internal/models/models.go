package models

import "time"

type Mechanic struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Specialization string    `json:"specialization"`
	Experience     string    `json:"experience"`
	CreatedAt      time.Time `json:"created_at"`
}

// Notification is an append-only audit record tied to a booking
// reference. It is never updated; deletion happens only through the
// booking cascade.
type Notification struct {
	ID         int64     `json:"id"`
	BookingRef string    `json:"booking_ref"`
	Message    string    `json:"message"`
	Timestamp  time.Time `json:"timestamp"`
}

type Admin struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
}

// Session is an authenticated admin session kept in the session store.
type Session struct {
	Token     string    `json:"token"`
	AdminID   int64     `json:"admin_id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

// Stats mirrors the dashboard counters of the admin front end.
type Stats struct {
	TotalBookings      int64 `json:"total_bookings"`
	PendingBookings    int64 `json:"pending_bookings"`
	InProgressBookings int64 `json:"in_progress_bookings"`
	CompletedBookings  int64 `json:"completed_bookings"`
	UnassignedBookings int64 `json:"unassigned_bookings"`
	Mechanics          int64 `json:"mechanics"`
}

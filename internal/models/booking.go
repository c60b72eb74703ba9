package models

import "time"

type Booking struct {
	ID               int64     `json:"id"`
	Reference        string    `json:"booking_ref"`
	CustomerName     string    `json:"customer_name"`
	CustomerEmail    string    `json:"customer_email"`
	CustomerPhone    string    `json:"customer_phone"`
	CarMake          string    `json:"car_make"`
	CarModel         string    `json:"car_model"`
	CarYear          string    `json:"car_year"`
	LicensePlate     string    `json:"license_plate"`
	IssueDescription string    `json:"issue_description"`
	PreferredDate    string    `json:"preferred_date"` // YYYY-MM-DD
	PreferredTime    string    `json:"preferred_time"` // HH:MM
	Status           string    `json:"status"`
	MechanicID       *int64    `json:"mechanic_id"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Assigned reports whether the booking has a mechanic.
func (b *Booking) Assigned() bool {
	return b.MechanicID != nil
}

// BookingPatch is a partial update. A nil Status leaves the status
// untouched. MechanicSet distinguishes "mechanic_id absent" from
// "mechanic_id explicitly null": when MechanicSet is true and
// MechanicID is nil the assignment is cleared.
type BookingPatch struct {
	Status      *string
	MechanicID  *int64
	MechanicSet bool
}

// Empty reports whether the patch changes nothing.
func (p BookingPatch) Empty() bool {
	return p.Status == nil && !p.MechanicSet
}

// CreateBookingInput carries the customer-submitted booking request.
type CreateBookingInput struct {
	CustomerName     string `json:"customer_name"`
	CustomerEmail    string `json:"customer_email"`
	CustomerPhone    string `json:"customer_phone"`
	CarMake          string `json:"car_make"`
	CarModel         string `json:"car_model"`
	CarYear          string `json:"car_year"`
	LicensePlate     string `json:"license_plate"`
	IssueDescription string `json:"issue_description"`
	PreferredDate    string `json:"preferred_date"`
	PreferredTime    string `json:"preferred_time"`
}

// Assignment pairs an unassigned pending booking with a mechanic
// chosen by the round-robin distribution.
type Assignment struct {
	BookingID    int64  `json:"booking_id"`
	BookingRef   string `json:"booking_ref"`
	MechanicID   int64  `json:"mechanic_id"`
	MechanicName string `json:"mechanic_name"`
}

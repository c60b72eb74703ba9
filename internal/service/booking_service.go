package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"autofix/internal/database"
	"autofix/internal/domain"
	"autofix/internal/events"
	"autofix/internal/models"

	"github.com/rs/zerolog"
)

// BookingService is the booking lifecycle engine: validation,
// reference generation, patch semantics and the round-robin
// auto-assign distribution.
type BookingService struct {
	repo     domain.Repository
	eventBus domain.EventPublisher
	logger   *zerolog.Logger
}

func NewBookingService(repo domain.Repository, eventBus domain.EventPublisher, logger *zerolog.Logger) *BookingService {
	return &BookingService{
		repo:     repo,
		eventBus: eventBus,
		logger:   logger,
	}
}

func (s *BookingService) CreateBooking(ctx context.Context, input models.CreateBookingInput) (*models.Booking, error) {
	if err := validateCreateInput(&input); err != nil {
		return nil, err
	}

	booking := &models.Booking{
		CustomerName:     input.CustomerName,
		CustomerEmail:    input.CustomerEmail,
		CustomerPhone:    input.CustomerPhone,
		CarMake:          input.CarMake,
		CarModel:         input.CarModel,
		CarYear:          input.CarYear,
		LicensePlate:     input.LicensePlate,
		IssueDescription: input.IssueDescription,
		PreferredDate:    input.PreferredDate,
		PreferredTime:    input.PreferredTime,
		Status:           models.StatusPending,
	}

	note := fmt.Sprintf("New booking created for %s", booking.CustomerName)
	for attempt := 1; ; attempt++ {
		ref, err := NewReference()
		if err != nil {
			return nil, err
		}
		booking.Reference = ref

		err = s.repo.CreateBooking(ctx, booking, note)
		if err == nil {
			break
		}
		if errors.Is(err, database.ErrDuplicateReference) && attempt < models.MaxReferenceAttempts {
			s.logger.Warn().Str("booking_ref", ref).Int("attempt", attempt).Msg("reference collision, regenerating")
			continue
		}
		return nil, err
	}

	s.publishEvent(events.EventBookingCreated, booking)
	return booking, nil
}

func (s *BookingService) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	return s.repo.GetBooking(ctx, id)
}

func (s *BookingService) GetBookingByReference(ctx context.Context, ref string) (*models.Booking, error) {
	return s.repo.GetBookingByReference(ctx, strings.TrimSpace(ref))
}

func (s *BookingService) ListBookings(ctx context.Context, status string) ([]*models.Booking, error) {
	status = strings.TrimSpace(status)
	if status != "" && status != "all" && !models.ValidStatus(status) {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}
	return s.repo.ListBookings(ctx, status)
}

func (s *BookingService) TrackBookings(ctx context.Context, email string) ([]*models.Booking, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", ErrValidation)
	}
	return s.repo.TrackBookings(ctx, email)
}

// UpdateBooking applies a partial update. Assigning a mechanic with no
// explicit status promotes a pending unassigned booking to
// in-progress; clearing the mechanic never rewrites status on its own.
// A patch that explicitly sets in-progress while the booking would end
// up unassigned is rejected.
func (s *BookingService) UpdateBooking(ctx context.Context, id int64, patch models.BookingPatch) (*models.Booking, error) {
	if patch.Empty() {
		return nil, fmt.Errorf("%w: no fields to update", ErrValidation)
	}
	if patch.Status != nil && !models.ValidStatus(*patch.Status) {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, *patch.Status)
	}

	current, err := s.repo.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.MechanicSet && patch.MechanicID != nil {
		if _, err := s.repo.GetMechanic(ctx, *patch.MechanicID); err != nil {
			if errors.Is(err, database.ErrMechanicNotFound) {
				return nil, fmt.Errorf("%w: mechanic %d does not exist", ErrValidation, *patch.MechanicID)
			}
			return nil, err
		}
		// Assignment alone moves a fresh booking into the shop queue.
		if patch.Status == nil && current.Status == models.StatusPending && !current.Assigned() {
			inProgress := models.StatusInProgress
			patch.Status = &inProgress
		}
	}

	effectiveMechanic := current.MechanicID
	if patch.MechanicSet {
		effectiveMechanic = patch.MechanicID
	}
	if patch.Status != nil && *patch.Status == models.StatusInProgress && effectiveMechanic == nil {
		return nil, fmt.Errorf("%w: in-progress booking requires an assigned mechanic", ErrValidation)
	}

	var notes []string
	if patch.Status != nil && *patch.Status != current.Status {
		notes = append(notes, fmt.Sprintf("Status updated to %s", *patch.Status))
	}
	if patch.MechanicSet {
		notes = append(notes, "Assignment updated")
	}

	updated, err := s.repo.UpdateBooking(ctx, id, patch, strings.Join(notes, "; "))
	if err != nil {
		return nil, err
	}

	s.publishEvent(events.EventBookingUpdated, updated)
	return updated, nil
}

func (s *BookingService) DeleteBooking(ctx context.Context, id int64) error {
	booking, err := s.repo.GetBooking(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.DeleteBooking(ctx, id); err != nil {
		return err
	}

	s.publishEvent(events.EventBookingDeleted, booking)
	return nil
}

// AutoAssign distributes mechanics over pending unassigned bookings
// round-robin. It is a no-op with zero candidates or zero mechanics
// and is idempotent: a second run over unchanged state assigns nothing.
func (s *BookingService) AutoAssign(ctx context.Context) (int, error) {
	eligible, err := s.repo.ListUnassignedPending(ctx)
	if err != nil {
		return 0, err
	}
	mechanics, err := s.repo.ListMechanics(ctx)
	if err != nil {
		return 0, err
	}

	assignments := RoundRobin(eligible, mechanics)
	if len(assignments) == 0 {
		return 0, nil
	}

	if err := s.repo.ApplyAssignments(ctx, assignments); err != nil {
		return 0, err
	}

	if s.eventBus != nil {
		payload := events.AssignmentEventPayload{AssignedCount: len(assignments)}
		if err := s.eventBus.PublishJSON(events.EventBookingsAssigned, payload); err != nil {
			s.logger.Error().Err(err).Msg("publish assignment event error")
		}
	}
	return len(assignments), nil
}

func (s *BookingService) ListMechanics(ctx context.Context) ([]*models.Mechanic, error) {
	return s.repo.ListMechanics(ctx)
}

func (s *BookingService) Stats(ctx context.Context) (*models.Stats, error) {
	return s.repo.Stats(ctx)
}

// RoundRobin pairs the k-th eligible booking with mechanics[k mod n].
// Pure over its inputs; callers fix the selection order.
func RoundRobin(bookings []*models.Booking, mechanics []*models.Mechanic) []models.Assignment {
	if len(bookings) == 0 || len(mechanics) == 0 {
		return nil
	}

	assignments := make([]models.Assignment, 0, len(bookings))
	for k, b := range bookings {
		m := mechanics[k%len(mechanics)]
		assignments = append(assignments, models.Assignment{
			BookingID:    b.ID,
			BookingRef:   b.Reference,
			MechanicID:   m.ID,
			MechanicName: m.Name,
		})
	}
	return assignments
}

func (s *BookingService) publishEvent(eventType string, booking *models.Booking) {
	if s.eventBus == nil {
		return
	}

	payload := events.BookingEventPayload{
		BookingID:    booking.ID,
		BookingRef:   booking.Reference,
		CustomerName: booking.CustomerName,
		Status:       booking.Status,
		MechanicID:   booking.MechanicID,
	}

	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Int64("booking_id", booking.ID).Msg("publish event error")
	}
}

func validateCreateInput(input *models.CreateBookingInput) error {
	fields := []struct {
		name  string
		value *string
	}{
		{"customer_name", &input.CustomerName},
		{"customer_email", &input.CustomerEmail},
		{"customer_phone", &input.CustomerPhone},
		{"car_make", &input.CarMake},
		{"car_model", &input.CarModel},
		{"car_year", &input.CarYear},
		{"license_plate", &input.LicensePlate},
		{"issue_description", &input.IssueDescription},
		{"preferred_date", &input.PreferredDate},
		{"preferred_time", &input.PreferredTime},
	}
	for _, f := range fields {
		*f.value = strings.TrimSpace(*f.value)
		if *f.value == "" {
			return fmt.Errorf("%w: %s is required", ErrValidation, f.name)
		}
	}

	if !strings.Contains(input.CustomerEmail, "@") {
		return fmt.Errorf("%w: customer_email is not a valid address", ErrValidation)
	}
	if _, err := time.Parse("2006-01-02", input.PreferredDate); err != nil {
		return fmt.Errorf("%w: preferred_date must be YYYY-MM-DD", ErrValidation)
	}

	normalized, err := normalizeTime(input.PreferredTime)
	if err != nil {
		return err
	}
	input.PreferredTime = normalized
	return nil
}

func normalizeTime(raw string) (string, error) {
	for _, layout := range []string{"15:04", "15:04:05"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format("15:04"), nil
		}
	}
	return "", fmt.Errorf("%w: preferred_time must be HH:MM", ErrValidation)
}

package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"autofix/internal/database"
	"autofix/internal/export"
	"autofix/internal/models"
	"autofix/internal/service"
)

func decodeJSON(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dst)
}

// writeServiceError maps the error taxonomy onto HTTP codes and the
// {"error": "..."} shape.
func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, database.ErrBookingNotFound):
		writeError(w, http.StatusNotFound, "booking not found")
	case errors.Is(err, database.ErrMechanicNotFound):
		writeError(w, http.StatusBadRequest, "mechanic not found")
	case errors.Is(err, service.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "unauthorized")
	default:
		s.logger.Error().Err(err).Msg("request failed")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (s *Server) handleBookings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.createBooking(w, r)
	case http.MethodGet:
		s.listBookings(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) createBooking(w http.ResponseWriter, r *http.Request) {
	var input models.CreateBookingInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	booking, err := s.bookings.CreateBooking(r.Context(), input)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"success":     true,
		"booking_ref": booking.Reference,
		"booking":     booking,
	})
}

// listBookings is the full, optionally filtered listing behind the
// admin gate; customers track their own bookings by email instead.
func (s *Server) listBookings(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireAdmin(w, r); !ok {
		return
	}

	bookings, err := s.bookings.ListBookings(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNilBookings(bookings))
}

func (s *Server) handleBookingSubtree(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/bookings/")
	switch {
	case rest == "track":
		s.trackBookings(w, r)
	case rest == "auto-assign":
		s.autoAssign(w, r)
	case rest == "export":
		s.exportBookings(w, r)
	case strings.HasPrefix(rest, "ref/"):
		s.getBookingByReference(w, r, strings.TrimPrefix(rest, "ref/"))
	default:
		id, err := strconv.ParseInt(rest, 10, 64)
		if err != nil {
			writeError(w, http.StatusNotFound, "not found")
			return
		}
		s.handleBookingByID(w, r, id)
	}
}

func (s *Server) handleBookingByID(w http.ResponseWriter, r *http.Request, id int64) {
	switch r.Method {
	case http.MethodGet:
		booking, err := s.bookings.GetBooking(r.Context(), id)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, booking)
	case http.MethodPatch:
		s.updateBooking(w, r, id)
	case http.MethodDelete:
		s.deleteBooking(w, r, id)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) getBookingByReference(w http.ResponseWriter, r *http.Request, ref string) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if ref == "" || strings.Contains(ref, "/") {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	booking, err := s.bookings.GetBookingByReference(r.Context(), ref)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (s *Server) trackBookings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	bookings, err := s.bookings.TrackBookings(r.Context(), r.URL.Query().Get("email"))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNilBookings(bookings))
}

func (s *Server) updateBooking(w http.ResponseWriter, r *http.Request, id int64) {
	if _, ok := s.requireAdmin(w, r); !ok {
		return
	}

	// mechanic_id decodes through RawMessage so "absent" and
	// "explicitly null" stay distinguishable.
	var req struct {
		Status     *string         `json:"status"`
		MechanicID json.RawMessage `json:"mechanic_id"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	patch := models.BookingPatch{Status: req.Status}
	if len(req.MechanicID) > 0 {
		patch.MechanicSet = true
		if !bytes.Equal(bytes.TrimSpace(req.MechanicID), []byte("null")) {
			var mechanicID int64
			if err := json.Unmarshal(req.MechanicID, &mechanicID); err != nil {
				writeError(w, http.StatusBadRequest, "mechanic_id must be a number or null")
				return
			}
			patch.MechanicID = &mechanicID
		}
	}

	booking, err := s.bookings.UpdateBooking(r.Context(), id, patch)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"booking": booking,
	})
}

func (s *Server) deleteBooking(w http.ResponseWriter, r *http.Request, id int64) {
	if _, ok := s.requireAdmin(w, r); !ok {
		return
	}

	if err := s.bookings.DeleteBooking(r.Context(), id); err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *Server) autoAssign(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if _, ok := s.requireAdmin(w, r); !ok {
		return
	}

	assigned, err := s.bookings.AutoAssign(r.Context())
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":        true,
		"assigned_count": assigned,
	})
}

func (s *Server) exportBookings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if _, ok := s.requireAdmin(w, r); !ok {
		return
	}

	bookings, err := s.bookings.ListBookings(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	mechanics, err := s.bookings.ListMechanics(r.Context())
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteBookingsReport(&buf, bookings, mechanics); err != nil {
		s.writeServiceError(w, err)
		return
	}

	filename := fmt.Sprintf("autofix_bookings_%s.xlsx", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleMechanics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	mechanics, err := s.bookings.ListMechanics(r.Context())
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	if mechanics == nil {
		mechanics = []*models.Mechanic{}
	}
	writeJSON(w, http.StatusOK, mechanics)
}

func (s *Server) handleNotifications(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "limit must be a number")
			return
		}
		limit = parsed
	}

	notifications, err := s.notifications.ListRecent(r.Context(), limit)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	if notifications == nil {
		notifications = []*models.Notification{}
	}
	writeJSON(w, http.StatusOK, notifications)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	stats, err := s.bookings.Stats(r.Context())
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func nonNilBookings(bookings []*models.Booking) []*models.Booking {
	if bookings == nil {
		return []*models.Booking{}
	}
	return bookings
}

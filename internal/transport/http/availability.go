package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/matchpoint/courtbook/internal/availability"
)

// AvailabilityReader is the minimal interface the availability handlers need.
type AvailabilityReader interface {
	Slots(ctx context.Context, venueID string, day time.Time, courtID string) ([]availability.TimeSlot, error)
	Statuses(ctx context.Context, venueID string, day time.Time, startM, endM int) ([]availability.CourtStatus, error)
	Durations(ctx context.Context, venueID string, day time.Time, startM int, courtID string) ([]availability.Duration, error)
	Alternatives(ctx context.Context, venueID string, day time.Time, courtID string, startM, endM int, price float64) (availability.Alternatives, error)
}

const dateLayout = "2006-01-02"

// HandleSlots returns the day's time slots for one court.
// GET /availability/slots?venue_id=...&date=2025-06-02&court_id=...
func HandleSlots(svc AvailabilityReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}
		q := r.URL.Query()
		day, ok := parseDate(w, q.Get("date"))
		if !ok {
			return
		}

		slots, err := svc.Slots(r.Context(), q.Get("venue_id"), day, q.Get("court_id"))
		if err != nil {
			writeBookingError(w, err)
			return
		}
		writeJSON(w, map[string]any{"slots": slots})
	}
}

// HandleCourtStatuses classifies every court against a requested window.
// GET /availability/courts?venue_id=...&date=...&start=600&end=660
func HandleCourtStatuses(svc AvailabilityReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}
		q := r.URL.Query()
		day, ok := parseDate(w, q.Get("date"))
		if !ok {
			return
		}
		start, ok := parseMinutes(w, q.Get("start"))
		if !ok {
			return
		}
		end, ok := parseMinutes(w, q.Get("end"))
		if !ok {
			return
		}

		statuses, err := svc.Statuses(r.Context(), q.Get("venue_id"), day, start, end)
		if err != nil {
			writeBookingError(w, err)
			return
		}
		writeJSON(w, map[string]any{"courts": statuses})
	}
}

// HandleDurations enumerates bookable durations from a start time. court_id
// may be empty to price across all free courts.
// GET /availability/durations?venue_id=...&date=...&start=600&court_id=...
func HandleDurations(svc AvailabilityReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}
		q := r.URL.Query()
		day, ok := parseDate(w, q.Get("date"))
		if !ok {
			return
		}
		start, ok := parseMinutes(w, q.Get("start"))
		if !ok {
			return
		}

		durations, err := svc.Durations(r.Context(), q.Get("venue_id"), day, start, q.Get("court_id"))
		if err != nil {
			writeBookingError(w, err)
			return
		}
		writeJSON(w, map[string]any{"durations": durations})
	}
}

// HandleAlternatives searches around a window that could not be booked.
// GET /availability/alternatives?venue_id=...&date=...&court_id=...&start=600&end=660&price=20
func HandleAlternatives(svc AvailabilityReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}
		q := r.URL.Query()
		day, ok := parseDate(w, q.Get("date"))
		if !ok {
			return
		}
		start, ok := parseMinutes(w, q.Get("start"))
		if !ok {
			return
		}
		end, ok := parseMinutes(w, q.Get("end"))
		if !ok {
			return
		}
		price, _ := strconv.ParseFloat(q.Get("price"), 64)

		alts, err := svc.Alternatives(r.Context(), q.Get("venue_id"), day, q.Get("court_id"), start, end, price)
		if err != nil {
			writeBookingError(w, err)
			return
		}
		writeJSON(w, alts)
	}
}

func parseDate(w http.ResponseWriter, raw string) (time.Time, bool) {
	day, err := time.Parse(dateLayout, raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidDate, "date must be YYYY-MM-DD")
		return time.Time{}, false
	}
	return day, true
}

func parseMinutes(w http.ResponseWriter, raw string) (int, bool) {
	m, err := strconv.Atoi(raw)
	if err != nil || m < 0 {
		writeError(w, http.StatusBadRequest, codeInvalidTime, "time must be minutes since midnight")
		return 0, false
	}
	return m, true
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(v)
}

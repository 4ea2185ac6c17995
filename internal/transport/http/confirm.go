package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/matchpoint/courtbook/internal/domain"
)

// PaymentSettler is the minimal interface needed to settle a booking.
type PaymentSettler interface {
	ConfirmPayment(ctx context.Context, bookingID string) (domain.Booking, error)
	CancelBooking(ctx context.Context, bookingID string) (domain.Booking, error)
}

// HandleBookingAction routes POST /bookings/{id}/confirm and
// POST /bookings/{id}/cancel.
func HandleBookingAction(svc PaymentSettler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		bookingID, action, ok := parseBookingActionPath(r.URL.Path)
		if !ok {
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}

		var booking domain.Booking
		var err error
		switch action {
		case "confirm":
			booking, err = svc.ConfirmPayment(r.Context(), bookingID)
		case "cancel":
			booking, err = svc.CancelBooking(r.Context(), bookingID)
		default:
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}
		if err != nil {
			writeBookingError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(bookingResponse{
			ID:            booking.ID,
			VenueID:       booking.VenueID,
			CourtID:       booking.CourtID,
			StartTime:     booking.StartTime,
			EndTime:       booking.EndTime,
			Status:        string(booking.Status),
			PaymentStatus: string(booking.PaymentStatus),
			Price:         booking.Price,
		})
	}
}

func parseBookingActionPath(path string) (string, string, bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) != 3 {
		return "", "", false
	}
	if parts[0] != "bookings" || parts[1] == "" {
		return "", "", false
	}
	return parts[1], parts[2], true
}

package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/matchpoint/courtbook/internal/app"
	"github.com/matchpoint/courtbook/internal/domain"
)

// HoldCreator is the minimal interface needed to create a hold.
type HoldCreator interface {
	CreateHold(ctx context.Context, in app.CreateHoldInput) (domain.Booking, error)
}

// HandleCreateBooking returns an HTTP handler for creating holds.
func HandleCreateBooking(svc HoldCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		var req createBookingRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}
		if err := req.validate(); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, err.Error())
			return
		}

		booking, err := svc.CreateHold(r.Context(), app.CreateHoldInput{
			VenueID:       req.VenueID,
			CourtID:       req.CourtID,
			StartTime:     req.StartTime,
			EndTime:       req.EndTime,
			Price:         req.Price,
			CustomerName:  req.CustomerName,
			CustomerEmail: req.CustomerEmail,
			CustomerPhone: req.CustomerPhone,
		})
		if err != nil {
			writeBookingError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(bookingResponse{
			ID:            booking.ID,
			VenueID:       booking.VenueID,
			CourtID:       booking.CourtID,
			StartTime:     booking.StartTime,
			EndTime:       booking.EndTime,
			Status:        string(booking.Status),
			PaymentStatus: string(booking.PaymentStatus),
			Price:         booking.Price,
			ExpiresAt:     booking.ExpiresAt,
		})
	}
}

func writeBookingError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidID):
		writeError(w, http.StatusBadRequest, codeInvalidID, err.Error())
	case errors.Is(err, domain.ErrInvalidInterval):
		writeError(w, http.StatusBadRequest, codeInvalidInterval, err.Error())
	case errors.Is(err, domain.ErrOutsideOperatingHours):
		writeError(w, http.StatusBadRequest, codeOutsideHours, err.Error())
	case errors.Is(err, domain.ErrVenueNotFound):
		writeError(w, http.StatusNotFound, codeVenueNotFound, err.Error())
	case errors.Is(err, domain.ErrCourtNotFound):
		writeError(w, http.StatusNotFound, codeCourtNotFound, err.Error())
	case errors.Is(err, domain.ErrBookingNotFound):
		writeError(w, http.StatusNotFound, codeBookingNotFound, err.Error())
	case errors.Is(err, domain.ErrCourtInactive):
		writeError(w, http.StatusConflict, codeCourtInactive, err.Error())
	case errors.Is(err, domain.ErrBookingConflict):
		writeError(w, http.StatusConflict, codeBookingConflict, err.Error())
	case errors.Is(err, domain.ErrHoldExpired):
		writeError(w, http.StatusConflict, codeHoldExpired, err.Error())
	case errors.Is(err, domain.ErrAlreadyConfirmed):
		writeError(w, http.StatusConflict, codeAlreadyConfirmed, err.Error())
	case errors.Is(err, domain.ErrBookingNotHolding):
		writeError(w, http.StatusConflict, codeNotHolding, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
	}
}

type createBookingRequest struct {
	VenueID       string    `json:"venue_id"`
	CourtID       string    `json:"court_id"`
	StartTime     time.Time `json:"start_time"`
	EndTime       time.Time `json:"end_time"`
	Price         float64   `json:"price"`
	CustomerName  string    `json:"customer_name"`
	CustomerEmail string    `json:"customer_email"`
	CustomerPhone string    `json:"customer_phone"`
}

func (r createBookingRequest) validate() error {
	if r.VenueID == "" || r.CourtID == "" {
		return errors.New("venue_id and court_id are required")
	}
	if r.StartTime.IsZero() || r.EndTime.IsZero() {
		return errors.New("start_time and end_time are required")
	}
	if !r.StartTime.Before(r.EndTime) {
		return domain.ErrInvalidInterval
	}
	return nil
}

type bookingResponse struct {
	ID            string    `json:"id"`
	VenueID       string    `json:"venue_id"`
	CourtID       string    `json:"court_id"`
	StartTime     time.Time `json:"start_time"`
	EndTime       time.Time `json:"end_time"`
	Status        string    `json:"status"`
	PaymentStatus string    `json:"payment_status"`
	Price         float64   `json:"price"`
	ExpiresAt     time.Time `json:"expires_at,omitempty"`
}

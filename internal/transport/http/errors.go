package http

import (
	"encoding/json"
	"net/http"
)

const (
	codeMethodNotAllowed   = "method_not_allowed"
	codeNotFound           = "not_found"
	codeInvalidRequestBody = "invalid_request_body"
	codeInvalidDate        = "invalid_date"
	codeInvalidTime        = "invalid_time"
	codeInvalidID          = "invalid_id"
	codeInvalidInterval    = "invalid_interval"
	codeOutsideHours       = "outside_operating_hours"
	codeVenueNotFound      = "venue_not_found"
	codeCourtNotFound      = "court_not_found"
	codeCourtInactive      = "court_inactive"
	codeBookingNotFound    = "booking_not_found"
	codeBookingConflict    = "booking_conflict"
	codeHoldExpired        = "hold_expired"
	codeAlreadyConfirmed   = "already_confirmed"
	codeNotHolding         = "not_holding"
	codeForbidden          = "forbidden"
	codeInternalError      = "internal_error"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	payload, err := json.Marshal(errorResponse{
		Error: msg,
		Code:  code,
	})
	if err != nil {
		_, _ = w.Write([]byte(`{"error":"internal error","code":"internal_error"}`))
		return
	}
	_, _ = w.Write(payload)
}

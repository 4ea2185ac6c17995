package domain

import "errors"

var (
	ErrVenueNotFound         = errors.New("venue not found")
	ErrCourtNotFound         = errors.New("court not found")
	ErrCourtInactive         = errors.New("court inactive")
	ErrBookingNotFound       = errors.New("booking not found")
	ErrBookingConflict       = errors.New("booking conflict")
	ErrInvalidInterval       = errors.New("start time must be before end time")
	ErrOutsideOperatingHours = errors.New("outside operating hours")
	ErrHoldExpired           = errors.New("hold expired")
	ErrBookingNotHolding     = errors.New("booking is not holding")
	ErrAlreadyConfirmed      = errors.New("booking already confirmed")
	ErrInvalidID             = errors.New("invalid id")
)

package domain

import "time"

type BookingStatus string

const (
	BookingStatusHolding    BookingStatus = "holding"
	BookingStatusConfirmed  BookingStatus = "confirmed"
	BookingStatusCancelled  BookingStatus = "cancelled"
	BookingStatusCompleted  BookingStatus = "completed"
	BookingStatusNoShow     BookingStatus = "no_show"
	BookingStatusRefunded   BookingStatus = "refunded"
	BookingStatusFailed     BookingStatus = "failed"
	BookingStatusProcessing BookingStatus = "processing"
)

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusRefunded PaymentStatus = "refunded"
	PaymentStatusFailed   PaymentStatus = "failed"
)

// Booking is a single court reservation. Times are absolute UTC instants;
// Date is the venue calendar day the reservation belongs to.
type Booking struct {
	ID            string
	VenueID       string
	CourtID       string
	Date          time.Time
	StartTime     time.Time
	EndTime       time.Time
	Status        BookingStatus
	PaymentStatus PaymentStatus
	Price         float64
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	// ExpiresAt is set only while Status is holding.
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Blocks reports whether the booking keeps its court interval occupied at now.
// Cancelled bookings never block; a holding booking stops blocking once its
// expiry has passed, even before the sweep has cancelled it.
func (b Booking) Blocks(now time.Time) bool {
	if b.Status == BookingStatusCancelled {
		return false
	}
	if b.Status == BookingStatusHolding && !b.ExpiresAt.IsZero() && !b.ExpiresAt.After(now) {
		return false
	}
	return true
}

// Overlaps reports whether [b.StartTime, b.EndTime) intersects [start, end).
func (b Booking) Overlaps(start, end time.Time) bool {
	return b.StartTime.Before(end) && b.EndTime.After(start)
}

// StartMinutes is the booking start as minutes since midnight UTC.
func (b Booking) StartMinutes() int {
	return MinutesOfDay(b.StartTime)
}

// EndMinutes is the booking end as minutes since midnight UTC. An end that
// lands exactly on midnight counts as the end of the previous day.
func (b Booking) EndMinutes() int {
	m := MinutesOfDay(b.EndTime)
	if m == 0 && b.EndTime.After(b.StartTime) {
		return 24 * 60
	}
	return m
}

// MinutesOfDay converts an instant to minutes since midnight UTC.
func MinutesOfDay(t time.Time) int {
	t = t.UTC()
	return t.Hour()*60 + t.Minute()
}

// Day truncates t to its UTC calendar day.
func Day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

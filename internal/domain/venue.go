package domain

import "time"

// Court is a bookable court within a venue.
type Court struct {
	ID         string
	VenueID    string
	Name       string
	HourlyRate float64
	Active     bool
}

// DayHours is an open/close pair in minutes since midnight. A zero value
// (open == close) means the venue is closed that day.
type DayHours struct {
	Open  int
	Close int
}

func (h DayHours) Closed() bool {
	return h.Close <= h.Open
}

// OperatingConfig holds the per-weekday hours and booking limits for a venue,
// all in minutes.
type OperatingConfig struct {
	Hours           [7]DayHours // indexed by time.Weekday
	MinBookingTime  int
	MaxBookingTime  int
	BookingTimeStep int
}

func (c OperatingConfig) ForWeekday(d time.Weekday) DayHours {
	return c.Hours[d]
}

type Venue struct {
	ID     string
	Name   string
	Config OperatingConfig
}

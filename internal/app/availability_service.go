package app

import (
	"context"
	"time"

	"github.com/matchpoint/courtbook/internal/availability"
	"github.com/matchpoint/courtbook/internal/clock"
	"github.com/matchpoint/courtbook/internal/domain"
	"github.com/matchpoint/courtbook/internal/events"
	"github.com/matchpoint/courtbook/internal/timeline"
)

type BookingLister interface {
	ListByVenueDate(ctx context.Context, venueID string, day time.Time) ([]domain.Booking, error)
}

type CourtLister interface {
	ListActiveCourts(ctx context.Context, venueID string) ([]domain.Court, error)
}

// AvailabilityService is the read side: it loads a venue day and answers the
// slot, duration and alternative-window questions the wizard asks.
type AvailabilityService struct {
	venues   VenueReader
	courts   CourtLister
	bookings BookingLister
	clock    clock.Clock
}

func NewAvailabilityService(venues VenueReader, courts CourtLister, bookings BookingLister, clk clock.Clock) *AvailabilityService {
	return &AvailabilityService{
		venues:   venues,
		courts:   courts,
		bookings: bookings,
		clock:    clk,
	}
}

// DaySheet is one venue day loaded in full: everything the availability
// computations need, derived once per request.
type DaySheet struct {
	Venue    domain.Venue
	Courts   []domain.Court
	Bookings []domain.Booking
	Timeline timeline.Timeline
	Grid     availability.Grid
	Now      time.Time
}

// LoadDay fetches the venue, its active courts and the day's bookings and
// builds the slot grid.
func (s *AvailabilityService) LoadDay(ctx context.Context, venueID string, day time.Time) (DaySheet, error) {
	venue, err := s.venues.GetVenue(ctx, venueID)
	if err != nil {
		return DaySheet{}, err
	}

	day = domain.Day(day)
	hours := venue.Config.ForWeekday(day.Weekday())
	if hours.Closed() {
		return DaySheet{}, domain.ErrOutsideOperatingHours
	}
	step := venue.Config.BookingTimeStep
	if step <= 0 {
		step = timeline.DefaultStep
	}
	tl, err := timeline.New(hours.Open, hours.Close, step)
	if err != nil {
		return DaySheet{}, err
	}

	courts, err := s.courts.ListActiveCourts(ctx, venueID)
	if err != nil {
		return DaySheet{}, err
	}
	bookings, err := s.bookings.ListByVenueDate(ctx, venueID, day)
	if err != nil {
		return DaySheet{}, err
	}

	now := s.clock.Now()
	courtIDs := make([]string, len(courts))
	for i, c := range courts {
		courtIDs[i] = c.ID
	}

	return DaySheet{
		Venue:    venue,
		Courts:   courts,
		Bookings: bookings,
		Timeline: tl,
		Grid:     availability.BuildGrid(bookings, courtIDs, tl, now),
		Now:      now,
	}, nil
}

// Slots lists the day's time slots for one court.
func (s *AvailabilityService) Slots(ctx context.Context, venueID string, day time.Time, courtID string) ([]availability.TimeSlot, error) {
	sheet, err := s.LoadDay(ctx, venueID, day)
	if err != nil {
		return nil, err
	}
	if !sheet.HasCourt(courtID) {
		return nil, domain.ErrCourtNotFound
	}
	return sheet.Grid.Slots(courtID, sheet.Timeline), nil
}

// Statuses classifies every active court against a requested window.
func (s *AvailabilityService) Statuses(ctx context.Context, venueID string, day time.Time, startM, endM int) ([]availability.CourtStatus, error) {
	sheet, err := s.LoadDay(ctx, venueID, day)
	if err != nil {
		return nil, err
	}
	return sheet.Grid.Statuses(startM, endM, sheet.Timeline), nil
}

// Durations enumerates bookable durations from a start time. An empty
// courtID prices across all free courts.
func (s *AvailabilityService) Durations(ctx context.Context, venueID string, day time.Time, startM int, courtID string) ([]availability.Duration, error) {
	sheet, err := s.LoadDay(ctx, venueID, day)
	if err != nil {
		return nil, err
	}
	if courtID != "" && !sheet.HasCourt(courtID) {
		return nil, domain.ErrCourtNotFound
	}
	calc := availability.NewCalculator(sheet.Venue.Config, sheet.Timeline, sheet.Courts, sheet.Bookings, sheet.Now)
	return calc.Durations(startM, courtID), nil
}

// Alternatives searches around a window that could not be satisfied exactly.
func (s *AvailabilityService) Alternatives(ctx context.Context, venueID string, day time.Time, courtID string, startM, endM int, price float64) (availability.Alternatives, error) {
	sheet, err := s.LoadDay(ctx, venueID, day)
	if err != nil {
		return availability.Alternatives{}, err
	}
	if !sheet.HasCourt(courtID) {
		return availability.Alternatives{}, domain.ErrCourtNotFound
	}
	res := availability.NewResolver(sheet.Grid, courtID, sheet.Timeline)
	return res.Resolve(startM, endM, price), nil
}

// Snapshot packages the day's bookings for the snapshot bus.
func (s *AvailabilityService) Snapshot(ctx context.Context, venueID string, day time.Time) (events.Snapshot, error) {
	day = domain.Day(day)
	bookings, err := s.bookings.ListByVenueDate(ctx, venueID, day)
	if err != nil {
		return events.Snapshot{}, err
	}
	keyed := make(map[string]domain.Booking, len(bookings))
	for _, b := range bookings {
		keyed[b.ID] = b
	}
	return events.Snapshot{VenueID: venueID, Date: day, Bookings: keyed}, nil
}

func (d DaySheet) HasCourt(courtID string) bool {
	for _, c := range d.Courts {
		if c.ID == courtID {
			return true
		}
	}
	return false
}

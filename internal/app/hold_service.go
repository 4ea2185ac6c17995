package app

import (
	"context"
	"time"

	"github.com/matchpoint/courtbook/internal/clock"
	"github.com/matchpoint/courtbook/internal/domain"
	"github.com/matchpoint/courtbook/internal/events"
)

type BookingRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetCourtForUpdate(ctx context.Context, venueID, courtID string) (domain.Court, error)
	ReleaseExpiredOverlapping(ctx context.Context, courtID string, start, end, now time.Time) error
	FindOverlapping(ctx context.Context, courtID string, start, end, now time.Time) ([]domain.Booking, error)
	CreateBooking(ctx context.Context, b domain.Booking) error
}

type VenueReader interface {
	GetVenue(ctx context.Context, venueID string) (domain.Venue, error)
}

// ChangeListener is told after a committed booking change so derived views
// (the snapshot bus) can refresh.
type ChangeListener interface {
	BookingsChanged(ctx context.Context, venueID string, day time.Time) error
}

// HoldService creates provisional bookings. A hold occupies its interval
// immediately but expires unless payment confirms it within the TTL.
type HoldService struct {
	repo     BookingRepository
	venues   VenueReader
	clock    clock.Clock
	holdTTL  time.Duration
	pub      events.Publisher
	listener ChangeListener
}

const defaultHoldTTL = 15 * time.Minute

func NewHoldService(repo BookingRepository, venues VenueReader, clk clock.Clock, opts ...HoldServiceOption) *HoldService {
	svc := &HoldService{
		repo:    repo,
		venues:  venues,
		clock:   clk,
		holdTTL: defaultHoldTTL,
		pub:     events.NopPublisher{},
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

type HoldServiceOption func(*HoldService)

// WithHoldTTL overrides the default TTL for new holds.
func WithHoldTTL(d time.Duration) HoldServiceOption {
	return func(s *HoldService) {
		if d > 0 {
			s.holdTTL = d
		}
	}
}

// WithPublisher routes lifecycle events to an outbound publisher.
func WithPublisher(p events.Publisher) HoldServiceOption {
	return func(s *HoldService) {
		if p != nil {
			s.pub = p
		}
	}
}

// WithChangeListener notifies a listener after committed changes.
func WithChangeListener(l ChangeListener) HoldServiceOption {
	return func(s *HoldService) {
		s.listener = l
	}
}

type CreateHoldInput struct {
	VenueID       string
	CourtID       string
	StartTime     time.Time
	EndTime       time.Time
	Price         float64
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
}

// CreateHold writes a holding booking for the requested interval. When the
// interval collides with an active booking the distinct outcome is
// domain.ErrBookingConflict; the caller must make the user reselect rather
// than retry the same parameters.
func (s *HoldService) CreateHold(ctx context.Context, in CreateHoldInput) (domain.Booking, error) {
	start, end := in.StartTime.UTC(), in.EndTime.UTC()
	if !start.Before(end) {
		return domain.Booking{}, domain.ErrInvalidInterval
	}

	venue, err := s.venues.GetVenue(ctx, in.VenueID)
	if err != nil {
		return domain.Booking{}, err
	}
	hours := venue.Config.ForWeekday(start.Weekday())
	if hours.Closed() {
		return domain.Booking{}, domain.ErrOutsideOperatingHours
	}
	startM := domain.MinutesOfDay(start)
	endM := startM + int(end.Sub(start)/time.Minute)
	if startM < hours.Open || endM > hours.Close {
		return domain.Booking{}, domain.ErrOutsideOperatingHours
	}

	now := s.clock.Now()
	booking := domain.Booking{
		ID:            newID(),
		VenueID:       in.VenueID,
		CourtID:       in.CourtID,
		Date:          domain.Day(start),
		StartTime:     start,
		EndTime:       end,
		Status:        domain.BookingStatusHolding,
		PaymentStatus: domain.PaymentStatusPending,
		Price:         in.Price,
		CustomerName:  in.CustomerName,
		CustomerEmail: in.CustomerEmail,
		CustomerPhone: in.CustomerPhone,
		ExpiresAt:     now.Add(s.holdTTL),
		CreatedAt:     now,
	}

	err = s.repo.WithTx(ctx, func(txCtx context.Context) error {
		court, err := s.repo.GetCourtForUpdate(txCtx, in.VenueID, in.CourtID)
		if err != nil {
			return err
		}
		if !court.Active {
			return domain.ErrCourtInactive
		}

		// Expired-but-unswept holds would still trip the store's overlap
		// constraint, so release them inside the same transaction first.
		if err := s.repo.ReleaseExpiredOverlapping(txCtx, in.CourtID, start, end, now); err != nil {
			return err
		}

		overlapping, err := s.repo.FindOverlapping(txCtx, in.CourtID, start, end, now)
		if err != nil {
			return err
		}
		if len(overlapping) > 0 {
			return domain.ErrBookingConflict
		}

		return s.repo.CreateBooking(txCtx, booking)
	})
	if err != nil {
		return domain.Booking{}, err
	}

	_ = s.pub.PublishJSON(ctx, events.KeyBookingHeld, bookingEvent(booking))
	if s.listener != nil {
		_ = s.listener.BookingsChanged(ctx, booking.VenueID, booking.Date)
	}
	return booking, nil
}

func bookingEvent(b domain.Booking) map[string]any {
	return map[string]any{
		"booking_id": b.ID,
		"venue_id":   b.VenueID,
		"court_id":   b.CourtID,
		"start":      b.StartTime.Unix(),
		"end":        b.EndTime.Unix(),
		"status":     string(b.Status),
	}
}

package app

import (
	"context"

	"github.com/matchpoint/courtbook/internal/clock"
	"github.com/matchpoint/courtbook/internal/domain"
	"github.com/matchpoint/courtbook/internal/events"
)

type PaymentRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetBookingForUpdate(ctx context.Context, bookingID string) (domain.Booking, error)
	UpdateBookingStatus(ctx context.Context, bookingID string, status domain.BookingStatus, pay domain.PaymentStatus) error
}

// PaymentService settles holds: payment success turns a live hold into a
// confirmed booking, cancellation releases the interval. The actual card
// capture happens elsewhere; this is the state transition it reports into.
type PaymentService struct {
	repo     PaymentRepository
	clock    clock.Clock
	pub      events.Publisher
	listener ChangeListener
}

func NewPaymentService(repo PaymentRepository, clk clock.Clock, opts ...PaymentServiceOption) *PaymentService {
	svc := &PaymentService{
		repo:  repo,
		clock: clk,
		pub:   events.NopPublisher{},
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

type PaymentServiceOption func(*PaymentService)

func WithPaymentPublisher(p events.Publisher) PaymentServiceOption {
	return func(s *PaymentService) {
		if p != nil {
			s.pub = p
		}
	}
}

func WithPaymentChangeListener(l ChangeListener) PaymentServiceOption {
	return func(s *PaymentService) {
		s.listener = l
	}
}

// ConfirmPayment transitions a holding booking to confirmed/paid. Expired
// holds are rejected even when the sweep has not cancelled them yet.
func (s *PaymentService) ConfirmPayment(ctx context.Context, bookingID string) (domain.Booking, error) {
	now := s.clock.Now()
	var result domain.Booking

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		booking, err := s.repo.GetBookingForUpdate(txCtx, bookingID)
		if err != nil {
			return err
		}

		switch {
		case booking.Status == domain.BookingStatusConfirmed:
			return domain.ErrAlreadyConfirmed
		case booking.Status != domain.BookingStatusHolding:
			return domain.ErrBookingNotHolding
		case !booking.ExpiresAt.After(now):
			return domain.ErrHoldExpired
		}

		if err := s.repo.UpdateBookingStatus(txCtx, bookingID, domain.BookingStatusConfirmed, domain.PaymentStatusPaid); err != nil {
			return err
		}

		booking.Status = domain.BookingStatusConfirmed
		booking.PaymentStatus = domain.PaymentStatusPaid
		result = booking
		return nil
	})
	if err != nil {
		return domain.Booking{}, err
	}

	_ = s.pub.PublishJSON(ctx, events.KeyBookingConfirmed, bookingEvent(result))
	if s.listener != nil {
		_ = s.listener.BookingsChanged(ctx, result.VenueID, result.Date)
	}
	return result, nil
}

// CancelBooking releases a hold or confirmed booking. Cancelling an already
// cancelled booking is a no-op returning the current record.
func (s *PaymentService) CancelBooking(ctx context.Context, bookingID string) (domain.Booking, error) {
	var result domain.Booking
	changed := false

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		booking, err := s.repo.GetBookingForUpdate(txCtx, bookingID)
		if err != nil {
			return err
		}
		if booking.Status == domain.BookingStatusCancelled {
			result = booking
			return nil
		}

		pay := domain.PaymentStatusFailed
		if booking.PaymentStatus == domain.PaymentStatusPaid {
			pay = domain.PaymentStatusRefunded
		}
		if err := s.repo.UpdateBookingStatus(txCtx, bookingID, domain.BookingStatusCancelled, pay); err != nil {
			return err
		}

		booking.Status = domain.BookingStatusCancelled
		booking.PaymentStatus = pay
		result = booking
		changed = true
		return nil
	})
	if err != nil {
		return domain.Booking{}, err
	}

	if changed {
		_ = s.pub.PublishJSON(ctx, events.KeyBookingCancelled, bookingEvent(result))
		if s.listener != nil {
			_ = s.listener.BookingsChanged(ctx, result.VenueID, result.Date)
		}
	}
	return result, nil
}

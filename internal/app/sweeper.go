package app

import (
	"context"
	"log"
	"time"

	"github.com/matchpoint/courtbook/internal/clock"
	"github.com/matchpoint/courtbook/internal/domain"
	"github.com/matchpoint/courtbook/internal/events"
)

type SweepRepository interface {
	ExpireHolds(ctx context.Context, now time.Time) ([]domain.Booking, error)
}

// Sweeper cancels holding bookings whose TTL passed. The overlap checks
// already ignore expired holds; the sweep turns that soft state into a
// durable cancellation and tells everyone watching.
type Sweeper struct {
	repo     SweepRepository
	clock    clock.Clock
	interval time.Duration
	pub      events.Publisher
	listener ChangeListener
	logger   *log.Logger
}

func NewSweeper(repo SweepRepository, clk clock.Clock, interval time.Duration, opts ...SweeperOption) *Sweeper {
	s := &Sweeper{
		repo:     repo,
		clock:    clk,
		interval: interval,
		pub:      events.NopPublisher{},
		logger:   log.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type SweeperOption func(*Sweeper)

func WithSweeperPublisher(p events.Publisher) SweeperOption {
	return func(s *Sweeper) {
		if p != nil {
			s.pub = p
		}
	}
}

func WithSweeperChangeListener(l ChangeListener) SweeperOption {
	return func(s *Sweeper) {
		s.listener = l
	}
}

func WithSweeperLogger(l *log.Logger) SweeperOption {
	return func(s *Sweeper) {
		if l != nil {
			s.logger = l
		}
	}
}

// Run sweeps on a fixed interval until the context ends.
func (s *Sweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if n, err := s.SweepOnce(ctx); err != nil {
				s.logger.Printf("sweep error: %v", err)
			} else if n > 0 {
				s.logger.Printf("sweep cancelled %d expired holds", n)
			}
		}
	}
}

// SweepOnce expires every overdue hold and reports how many were cancelled.
func (s *Sweeper) SweepOnce(ctx context.Context) (int, error) {
	expired, err := s.repo.ExpireHolds(ctx, s.clock.Now())
	if err != nil {
		return 0, err
	}

	type venueDay struct {
		venueID string
		day     time.Time
	}
	seen := make(map[venueDay]struct{})
	for _, b := range expired {
		_ = s.pub.PublishJSON(ctx, events.KeyBookingExpired, bookingEvent(b))
		key := venueDay{b.VenueID, b.Date}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		if s.listener != nil {
			_ = s.listener.BookingsChanged(ctx, b.VenueID, b.Date)
		}
	}
	return len(expired), nil
}

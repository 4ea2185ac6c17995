package app

import (
	"context"
	"time"

	"github.com/matchpoint/courtbook/internal/domain"
	"github.com/matchpoint/courtbook/internal/events"
)

// Notifier republishes a venue day on the snapshot bus after a committed
// booking change, so every live wizard session sees the new state.
type Notifier struct {
	bookings BookingLister
	bus      *events.Bus
}

func NewNotifier(bookings BookingLister, bus *events.Bus) *Notifier {
	return &Notifier{bookings: bookings, bus: bus}
}

func (n *Notifier) BookingsChanged(ctx context.Context, venueID string, day time.Time) error {
	day = domain.Day(day)
	list, err := n.bookings.ListByVenueDate(ctx, venueID, day)
	if err != nil {
		return err
	}
	keyed := make(map[string]domain.Booking, len(list))
	for _, b := range list {
		keyed[b.ID] = b
	}
	n.bus.Publish(events.Snapshot{VenueID: venueID, Date: day, Bookings: keyed})
	return nil
}

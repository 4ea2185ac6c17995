package availability

import (
	"math"
	"time"

	"github.com/matchpoint/courtbook/internal/domain"
	"github.com/matchpoint/courtbook/internal/timeline"
)

// Duration is one bookable duration offered from a chosen start time.
type Duration struct {
	Label   string  `json:"label"`
	Minutes int     `json:"minutes"`
	Price   float64 `json:"price"`
}

// Calculator enumerates valid durations for a start time on a given day.
// When no court has been chosen yet the price is the average across the
// courts free for that duration; that average is a preview, not a quote.
type Calculator struct {
	tl       timeline.Timeline
	minTime  int
	maxTime  int
	courts   []domain.Court
	bookings []domain.Booking
	now      time.Time
}

func NewCalculator(cfg domain.OperatingConfig, tl timeline.Timeline, courts []domain.Court, bookings []domain.Booking, now time.Time) *Calculator {
	active := make([]domain.Court, 0, len(courts))
	for _, c := range courts {
		if c.Active {
			active = append(active, c)
		}
	}
	return &Calculator{
		tl:       tl,
		minTime:  cfg.MinBookingTime,
		maxTime:  cfg.MaxBookingTime,
		courts:   active,
		bookings: bookings,
		now:      now,
	}
}

// Durations lists the bookable durations from start for courtID, or across
// all active courts when courtID is empty. When no standard-step duration
// fits, the search retries at the fallback granularity bounded by the next
// conflict, so a shorter booking is still offered when one exists.
func (c *Calculator) Durations(start int, courtID string) []Duration {
	if len(c.courts) == 0 {
		return nil
	}

	out := c.enumerate(start, courtID, c.minTime, c.tl.Step(), c.tl.Close())
	if len(out) > 0 {
		return out
	}

	gran := timeline.FallbackStep
	if gran >= c.tl.Step() {
		return nil
	}
	limit := c.fallbackLimit(start, courtID)
	return c.enumerate(start, courtID, gran, gran, limit)
}

func (c *Calculator) enumerate(start int, courtID string, minDur, step, limit int) []Duration {
	var out []Duration
	for d := minDur; d <= c.maxTime; d += step {
		end := start + d
		if end > limit {
			break
		}
		price, ok := c.price(start, end, courtID)
		if !ok {
			continue
		}
		out = append(out, Duration{
			Label:   timeline.FormatDuration(d),
			Minutes: d,
			Price:   price,
		})
	}
	return out
}

// price returns the offered price for [start, end), and whether the window is
// bookable at all. With a court chosen this is that court's rate; otherwise
// the average over the courts still free for the window.
func (c *Calculator) price(start, end int, courtID string) (float64, bool) {
	if courtID != "" {
		court, ok := c.court(courtID)
		if !ok || !c.courtFree(courtID, start, end) {
			return 0, false
		}
		return roundPrice(court.HourlyRate * float64(end-start) / 60), true
	}

	var sum float64
	n := 0
	for _, court := range c.courts {
		if c.courtFree(court.ID, start, end) {
			sum += court.HourlyRate * float64(end-start) / 60
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return roundPrice(sum / float64(n)), true
}

func (c *Calculator) courtFree(courtID string, start, end int) bool {
	for _, b := range c.bookings {
		if b.CourtID != courtID || !b.Blocks(c.now) {
			continue
		}
		if b.StartMinutes() < end && b.EndMinutes() > start {
			return false
		}
	}
	return true
}

// fallbackLimit bounds the fallback search at the earliest conflicting
// booking after start, or closing time when the rest of the day is clear.
func (c *Calculator) fallbackLimit(start int, courtID string) int {
	limit := c.tl.Close()
	for _, b := range c.bookings {
		if !b.Blocks(c.now) || b.EndMinutes() <= start {
			continue
		}
		if courtID != "" && b.CourtID != courtID {
			continue
		}
		if s := b.StartMinutes(); s > start && s < limit {
			limit = s
		}
	}
	return limit
}

func (c *Calculator) court(id string) (domain.Court, bool) {
	for _, court := range c.courts {
		if court.ID == id {
			return court, true
		}
	}
	return domain.Court{}, false
}

// roundPrice is the single rounding site for money: half-up to 2 decimals.
func roundPrice(v float64) float64 {
	return math.Round(v*100) / 100
}

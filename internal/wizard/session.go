package wizard

import (
	"context"
	"errors"
	"time"

	"github.com/matchpoint/courtbook/internal/app"
	"github.com/matchpoint/courtbook/internal/availability"
	"github.com/matchpoint/courtbook/internal/clock"
	"github.com/matchpoint/courtbook/internal/domain"
	"github.com/matchpoint/courtbook/internal/events"
	"github.com/matchpoint/courtbook/internal/timeline"
)

var (
	ErrVenueClosed     = errors.New("venue closed on that day")
	ErrDateNotSelected = errors.New("date not selected")
	ErrTimeNotSelected = errors.New("time not selected")
	ErrInvalidTime     = errors.New("time is not a valid slot start")
	ErrInvalidDuration = errors.New("duration outside venue limits")
	ErrTimeUnavailable = errors.New("time no longer available")
	ErrDraftIncomplete = errors.New("booking draft incomplete")
)

const (
	noticeTimeInvalidated     = "Your selected time is no longer available. Please pick another slot."
	noticeDurationInvalidated = "Your selected duration is no longer available. Please pick again."
	noticeHoldConflict        = "Someone booked that slot just before you. Please pick another time."
)

// Draft is the booking under construction. Zero values mean "not selected";
// StartMinutes uses -1 because 0 is midnight.
type Draft struct {
	Date            time.Time
	CourtID         string
	StartMinutes    int
	DurationMinutes int
	Price           float64
}

func emptyDraft() Draft {
	return Draft{StartMinutes: -1}
}

func (d Draft) HasDate() bool  { return !d.Date.IsZero() }
func (d Draft) HasCourt() bool { return d.CourtID != "" }
func (d Draft) HasTime() bool  { return d.StartMinutes >= 0 }
func (d Draft) HasDur() bool   { return d.DurationMinutes > 0 }

// Complete reports whether the draft can become a hold.
func (d Draft) Complete() bool {
	return d.HasDate() && d.HasCourt() && d.HasTime() && d.HasDur()
}

func (d Draft) EndMinutes() int {
	return d.StartMinutes + d.DurationMinutes
}

// clearOwned blanks the fields owned by one step.
func (d Draft) clearOwned(step Step) Draft {
	switch step {
	case StepDate:
		d.Date = time.Time{}
	case StepCourt:
		d.CourtID = ""
	case StepTime:
		d.StartMinutes = -1
	case StepDuration:
		d.DurationMinutes = 0
		d.Price = 0
	}
	return d
}

// HoldCreator is what a session needs to turn its draft into a hold.
type HoldCreator interface {
	CreateHold(ctx context.Context, in app.CreateHoldInput) (domain.Booking, error)
}

// Session is one user's walk through the wizard. It owns the only mutable
// draft/progress pair; everything it derives (slots, durations, statuses)
// is recomputed from the latest booking snapshot.
//
// Sessions are single-goroutine by design: snapshots arrive on the bus
// channel and must be applied by the same goroutine that handles user
// intents.
type Session struct {
	venue  domain.Venue
	courts []domain.Court
	flow   FlowType
	clk    clock.Clock

	progress Progress
	draft    Draft

	tl       timeline.Timeline
	haveTL   bool
	grid     availability.Grid
	haveGrid bool
	bookings []domain.Booking

	booking *domain.Booking
}

func NewSession(venue domain.Venue, courts []domain.Court, flow FlowType, clk clock.Clock) *Session {
	active := make([]domain.Court, 0, len(courts))
	for _, c := range courts {
		if c.Active {
			active = append(active, c)
		}
	}
	return &Session{
		venue:    venue,
		courts:   active,
		flow:     flow,
		clk:      clk,
		progress: NewProgress(flow),
		draft:    emptyDraft(),
	}
}

func (s *Session) Progress() Progress { return s.progress }
func (s *Session) Draft() Draft       { return s.draft }

// Notice returns and clears the pending user-visible notice.
func (s *Session) Notice() string {
	n := s.progress.Notice
	s.progress.Notice = ""
	return n
}

// Booking returns the hold created by ConfirmHold, if any.
func (s *Session) Booking() *domain.Booking { return s.booking }

// SelectDate picks the calendar day. The booking feed for the new day
// arrives asynchronously; until it does, availability is unknown and no
// selection is invalidated.
func (s *Session) SelectDate(day time.Time) error {
	day = domain.Day(day)
	hours := s.venue.Config.ForWeekday(day.Weekday())
	if hours.Closed() {
		return ErrVenueClosed
	}
	step := s.venue.Config.BookingTimeStep
	if step <= 0 {
		step = timeline.DefaultStep
	}
	tl, err := timeline.New(hours.Open, hours.Close, step)
	if err != nil {
		return err
	}

	progress, err := s.progress.TransitionToNext(StepDate)
	if err != nil {
		return err
	}

	dateChanged := !day.Equal(s.draft.Date)
	s.draft.Date = day
	s.tl, s.haveTL = tl, true
	if dateChanged {
		s.haveGrid = false
		s.grid = nil
		s.bookings = nil
	}
	s.progress = progress
	s.revalidate()
	return nil
}

// SelectCourt picks a court. Re-picking from an earlier step keeps later
// fields only while they are still valid for the new court.
func (s *Session) SelectCourt(courtID string) error {
	if _, ok := s.court(courtID); !ok {
		return domain.ErrCourtNotFound
	}
	progress, err := s.progress.TransitionToNext(StepCourt)
	if err != nil {
		return err
	}
	s.draft.CourtID = courtID
	// An averaged preview price becomes this court's real price.
	if s.draft.HasTime() && s.draft.HasDur() {
		if price, ok := s.priceFor(s.draft.StartMinutes, s.draft.DurationMinutes, courtID); ok {
			s.draft.Price = price
		}
	}
	s.progress = progress
	s.revalidate()
	return nil
}

// SelectTime picks a slot start, rejected up front when the grid already
// knows it is taken.
func (s *Session) SelectTime(startMinutes int) error {
	if !s.draft.HasDate() || !s.haveTL {
		return ErrDateNotSelected
	}
	if !s.tl.Contains(startMinutes) {
		return ErrInvalidTime
	}
	if s.haveGrid && !s.windowFree(s.draft.CourtID, startMinutes, startMinutes+s.tl.Step()) {
		return ErrTimeUnavailable
	}
	progress, err := s.progress.TransitionToNext(StepTime)
	if err != nil {
		return err
	}
	s.draft.StartMinutes = startMinutes
	s.progress = progress
	s.revalidate()
	return nil
}

// SelectDuration picks a duration and prices it.
func (s *Session) SelectDuration(minutes int) error {
	if !s.draft.HasTime() {
		return ErrTimeNotSelected
	}
	cfg := s.venue.Config
	if minutes < timeline.FallbackStep || minutes > cfg.MaxBookingTime {
		return ErrInvalidDuration
	}
	if s.draft.StartMinutes+minutes > s.tl.Close() {
		return domain.ErrOutsideOperatingHours
	}

	price, ok := s.priceFor(s.draft.StartMinutes, minutes, s.draft.CourtID)
	if !ok {
		return ErrTimeUnavailable
	}

	progress, err := s.progress.TransitionToNext(StepDuration)
	if err != nil {
		return err
	}
	s.draft.DurationMinutes = minutes
	s.draft.Price = price
	s.progress = progress
	s.revalidate()
	return nil
}

// NavigateToStep jumps to a previously expanded step. Going backward clears
// every field owned by a later step, in the same assignment as the position
// change, so a stale selection can never survive into payment.
func (s *Session) NavigateToStep(pos int) error {
	progress, err := s.progress.SetActive(pos)
	if err != nil {
		return err
	}

	draft := s.draft
	if pos < s.progress.Current {
		for p := pos + 1; p < len(progress.Steps); p++ {
			draft = draft.clearOwned(progress.Steps[p])
		}
	}

	s.progress, s.draft = progress, draft
	s.revalidate()
	return nil
}

// ConfirmHold turns a complete draft into a holding booking. A conflict
// clears the time and duration so the user must reselect; the same request
// is never silently retried.
func (s *Session) ConfirmHold(ctx context.Context, creator HoldCreator, customerName, customerEmail, customerPhone string) (domain.Booking, error) {
	if !s.draft.Complete() {
		return domain.Booking{}, ErrDraftIncomplete
	}

	start := s.draft.Date.Add(time.Duration(s.draft.StartMinutes) * time.Minute)
	end := start.Add(time.Duration(s.draft.DurationMinutes) * time.Minute)

	booking, err := creator.CreateHold(ctx, app.CreateHoldInput{
		VenueID:       s.venue.ID,
		CourtID:       s.draft.CourtID,
		StartTime:     start,
		EndTime:       end,
		Price:         s.draft.Price,
		CustomerName:  customerName,
		CustomerEmail: customerEmail,
		CustomerPhone: customerPhone,
	})
	if err != nil {
		if errors.Is(err, domain.ErrBookingConflict) {
			s.draft = s.draft.clearOwned(StepTime).clearOwned(StepDuration)
			s.progress = s.progress.WithNotice(noticeHoldConflict)
		}
		return domain.Booking{}, err
	}

	s.booking = &booking
	if completed, ok := s.lastSelectionStep(); ok {
		if progress, err := s.progress.TransitionToNext(completed); err == nil {
			s.progress = progress
		}
	}
	return booking, nil
}

// CompletePayment advances past the payment step once the external payment
// flow reports success.
func (s *Session) CompletePayment() error {
	progress, err := s.progress.TransitionToNext(StepPayment)
	if err != nil {
		return err
	}
	s.progress = progress
	return nil
}

// ApplySnapshot feeds the latest booking collection into the session. Only a
// snapshot for the selected venue day replaces the grid; stale deliveries
// for another day are dropped.
func (s *Session) ApplySnapshot(sn events.Snapshot) {
	if sn.VenueID != s.venue.ID || !s.draft.HasDate() || !domain.Day(sn.Date).Equal(s.draft.Date) || !s.haveTL {
		return
	}

	s.bookings = make([]domain.Booking, 0, len(sn.Bookings))
	for _, b := range sn.Bookings {
		s.bookings = append(s.bookings, b)
	}

	ids := make([]string, len(s.courts))
	for i, c := range s.courts {
		ids[i] = c.ID
	}
	s.grid = availability.BuildGrid(s.bookings, ids, s.tl, s.clk.Now())
	s.haveGrid = true
	s.revalidate()
}

// TimeSlots renders the day for the selected court, or the merged "free on
// any court" view when no court is chosen yet.
func (s *Session) TimeSlots() []availability.TimeSlot {
	if !s.haveGrid || !s.haveTL {
		return nil
	}
	if s.draft.HasCourt() {
		return s.grid.Slots(s.draft.CourtID, s.tl)
	}

	out := make([]availability.TimeSlot, 0, s.tl.SlotCount())
	for _, m := range s.tl.Slots() {
		out = append(out, availability.TimeSlot{
			Label:     timeline.FormatMinutes(m),
			Value:     m,
			Available: s.windowFree("", m, m+s.tl.Step()),
		})
	}
	return out
}

// Durations enumerates the bookable durations for the current draft.
func (s *Session) Durations() []availability.Duration {
	if !s.draft.HasTime() || !s.haveTL {
		return nil
	}
	calc := availability.NewCalculator(s.venue.Config, s.tl, s.courts, s.bookings, s.clk.Now())
	return calc.Durations(s.draft.StartMinutes, s.draft.CourtID)
}

// CourtStatuses classifies every court against the currently selected window.
func (s *Session) CourtStatuses() []availability.CourtStatus {
	if !s.haveGrid || !s.draft.HasTime() {
		return nil
	}
	end := s.draft.EndMinutes()
	if !s.draft.HasDur() {
		end = s.draft.StartMinutes + s.tl.Step()
	}
	return s.grid.Statuses(s.draft.StartMinutes, end, s.tl)
}

// Alternatives searches around the selected window on the selected court.
func (s *Session) Alternatives() availability.Alternatives {
	if !s.haveGrid || !s.draft.HasCourt() || !s.draft.HasTime() || !s.draft.HasDur() {
		return availability.Alternatives{}
	}
	res := availability.NewResolver(s.grid, s.draft.CourtID, s.tl)
	return res.Resolve(s.draft.StartMinutes, s.draft.EndMinutes(), s.draft.Price)
}

// revalidate is the reactive invalidation pass: after any booking-field
// mutation or snapshot, drop just the selections the grid no longer
// supports and leave a notice. Distinct from the explicit back-navigation
// cascade, which clears regardless of validity.
func (s *Session) revalidate() {
	if !s.haveGrid || !s.draft.HasTime() {
		return
	}

	step := s.tl.Step()
	if s.draft.HasDur() {
		if !s.windowFree(s.draft.CourtID, s.draft.StartMinutes, s.draft.EndMinutes()) {
			// The start slot itself may still be free; keep it then.
			if s.windowFree(s.draft.CourtID, s.draft.StartMinutes, s.draft.StartMinutes+step) {
				s.draft = s.draft.clearOwned(StepDuration)
				s.progress = s.progress.WithNotice(noticeDurationInvalidated)
			} else {
				s.draft = s.draft.clearOwned(StepTime).clearOwned(StepDuration)
				s.progress = s.progress.WithNotice(noticeTimeInvalidated)
			}
		}
		return
	}

	if !s.windowFree(s.draft.CourtID, s.draft.StartMinutes, s.draft.StartMinutes+step) {
		s.draft = s.draft.clearOwned(StepTime)
		s.progress = s.progress.WithNotice(noticeTimeInvalidated)
	}
}

// windowFree checks one court, or any active court when courtID is empty.
func (s *Session) windowFree(courtID string, start, end int) bool {
	if courtID != "" {
		return s.grid.Free(courtID, start, end, s.tl)
	}
	for _, c := range s.courts {
		if s.grid.Free(c.ID, start, end, s.tl) {
			return true
		}
	}
	return false
}

// priceFor mirrors the duration calculator's pricing for a single window.
func (s *Session) priceFor(start, minutes int, courtID string) (float64, bool) {
	calc := availability.NewCalculator(s.venue.Config, s.tl, s.courts, s.bookings, s.clk.Now())
	for _, d := range calc.Durations(start, courtID) {
		if d.Minutes == minutes {
			return d.Price, true
		}
	}
	return 0, false
}

// lastSelectionStep is the final non-payment step of the flow; completing it
// is what arms the payment step.
func (s *Session) lastSelectionStep() (Step, bool) {
	pos := s.progress.PositionOf(StepPayment)
	if pos <= 0 {
		return "", false
	}
	return s.progress.Steps[pos-1], true
}

func (s *Session) court(id string) (domain.Court, bool) {
	for _, c := range s.courts {
		if c.ID == id {
			return c, true
		}
	}
	return domain.Court{}, false
}

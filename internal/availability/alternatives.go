package availability

import (
	"github.com/matchpoint/courtbook/internal/timeline"
)

// Window is a half-open [Start, End) range in minutes of the day.
type Window struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

func (w Window) Minutes() int {
	return w.End - w.Start
}

// PricedWindow is a window with a prorated offer price.
type PricedWindow struct {
	Window
	Price float64 `json:"price"`
}

// Alternatives is the outcome of searching around a request that could not be
// satisfied exactly. Callers present Extended over Alternative over Partial;
// all three nil means nothing bookable was found.
type Alternatives struct {
	Extended    *Window       `json:"extended,omitempty"`
	Alternative *Window       `json:"alternative,omitempty"`
	Partial     *PricedWindow `json:"partial,omitempty"`
}

// Empty reports whether no alternative of any kind was found.
func (a Alternatives) Empty() bool {
	return a.Extended == nil && a.Alternative == nil && a.Partial == nil
}

const (
	// How far an extension search walks, in step increments.
	extendOneSided = 8
	extendBothWays = 4
)

// Resolver searches one court's slot row for alternative windows. It is
// deliberately first-match: searches stop at the first window that satisfies
// the rule, with no ranking by proximity or minimal shift.
type Resolver struct {
	grid    Grid
	courtID string
	tl      timeline.Timeline
}

func NewResolver(grid Grid, courtID string, tl timeline.Timeline) *Resolver {
	return &Resolver{grid: grid, courtID: courtID, tl: tl}
}

// Resolve searches around the original [origStart, origEnd) request.
// origPrice is the price quoted for the original window; the partial offer is
// prorated from it by covered share.
func (r *Resolver) Resolve(origStart, origEnd int, origPrice float64) Alternatives {
	return Alternatives{
		Extended:    r.extended(origStart, origEnd),
		Alternative: r.alternative(origEnd - origStart),
		Partial:     r.partial(origStart, origEnd, origPrice),
	}
}

// partial finds the first contiguous run of free slots inside the original
// window. Later, possibly longer runs inside the window are not considered.
func (r *Resolver) partial(origStart, origEnd int, origPrice float64) *PricedWindow {
	step := r.tl.Step()
	runStart, runEnd := -1, -1
	for m := r.tl.SlotStart(origStart); m < origEnd && m+step <= r.tl.Close(); m += step {
		if r.grid.Free(r.courtID, m, m+step, r.tl) {
			if runStart < 0 {
				runStart = m
			}
			runEnd = m + step
			continue
		}
		if runStart >= 0 {
			break
		}
	}
	if runStart < 0 {
		return nil
	}
	if runEnd > origEnd {
		runEnd = origEnd
	}
	covered := float64(runEnd-runStart) / float64(origEnd-origStart)
	return &PricedWindow{
		Window: Window{Start: runStart, End: runEnd},
		Price:  roundPrice(origPrice * covered),
	}
}

// extended tries, in priority order, to keep as much of the original window
// as possible while reaching the requested duration: grow the end, then grow
// the start, then both sides at once, then any run long enough that still
// overlaps the original window.
func (r *Resolver) extended(origStart, origEnd int) *Window {
	step := r.tl.Step()

	for i := 1; i <= extendOneSided; i++ {
		end := origEnd + i*step
		if end > r.tl.Close() {
			break
		}
		if r.grid.Free(r.courtID, origStart, end, r.tl) {
			return &Window{Start: origStart, End: end}
		}
	}

	for i := 1; i <= extendOneSided; i++ {
		start := origStart - i*step
		if start < r.tl.Open() {
			break
		}
		if r.grid.Free(r.courtID, start, origEnd, r.tl) {
			return &Window{Start: start, End: origEnd}
		}
	}

	for i := 1; i <= extendBothWays; i++ {
		start := origStart - i*step
		end := origEnd + i*step
		if start < r.tl.Open() || end > r.tl.Close() {
			break
		}
		if r.grid.Free(r.courtID, start, end, r.tl) {
			return &Window{Start: start, End: end}
		}
	}

	duration := origEnd - origStart
	for _, s := range r.tl.Slots() {
		end := s + duration
		if end > r.tl.Close() {
			break
		}
		if s < origEnd && end > origStart && r.grid.Free(r.courtID, s, end, r.tl) {
			return &Window{Start: s, End: end}
		}
	}
	return nil
}

// alternative finds the first run of exactly the requested duration anywhere
// in the day, in slot order, with no relation to the original window.
func (r *Resolver) alternative(duration int) *Window {
	for _, s := range r.tl.Slots() {
		end := s + duration
		if end > r.tl.Close() {
			break
		}
		if r.grid.Free(r.courtID, s, end, r.tl) {
			return &Window{Start: s, End: end}
		}
	}
	return nil
}

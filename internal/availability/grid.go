// Package availability derives bookable slots, durations and alternative
// windows from a booking snapshot. Every function here is a pure computation
// over its inputs; recomputing with the same snapshot yields the same result.
package availability

import (
	"sort"
	"time"

	"github.com/matchpoint/courtbook/internal/domain"
	"github.com/matchpoint/courtbook/internal/timeline"
)

// Grid maps court ID -> slot start minute -> free. It is rebuilt from scratch
// on every snapshot; there is no incremental update path.
type Grid map[string]map[int]bool

// BuildGrid marks a slot false when any booking for the court that still
// blocks at now overlaps [slot, slot+step). Courts with no bookings get a
// fully-true row so lookups never distinguish "missing" from "free".
func BuildGrid(bookings []domain.Booking, courtIDs []string, tl timeline.Timeline, now time.Time) Grid {
	grid := make(Grid, len(courtIDs))
	for _, id := range courtIDs {
		row := make(map[int]bool, tl.SlotCount())
		for _, slot := range tl.Slots() {
			row[slot] = true
		}
		grid[id] = row
	}

	step := tl.Step()
	for _, b := range bookings {
		row, ok := grid[b.CourtID]
		if !ok || !b.Blocks(now) {
			continue
		}
		startM, endM := b.StartMinutes(), b.EndMinutes()
		for _, slot := range tl.Slots() {
			if slot < endM && slot+step > startM {
				row[slot] = false
			}
		}
	}
	return grid
}

// Free reports whether every slot of [start, end) is available for the court.
// Windows reaching outside the grid's day are never free.
func (g Grid) Free(courtID string, start, end int, tl timeline.Timeline) bool {
	row, ok := g[courtID]
	if !ok || end <= start || start < tl.Open() || end > tl.Close() {
		return false
	}
	for m := tl.SlotStart(start); m < end; m += tl.Step() {
		if !row[m] {
			return false
		}
	}
	return true
}

// NextConflict returns the first unavailable slot start at or after the given
// minute, or close when the court is free through end of day.
func (g Grid) NextConflict(courtID string, from int, tl timeline.Timeline) int {
	row, ok := g[courtID]
	if !ok {
		return tl.Open()
	}
	for m := tl.SlotStart(from); m+tl.Step() <= tl.Close(); m += tl.Step() {
		if !row[m] {
			return m
		}
	}
	return tl.Close()
}

// TimeSlot is one presentable slot of the day.
type TimeSlot struct {
	Label     string `json:"label"`
	Value     int    `json:"value"`
	Available bool   `json:"available"`
}

// Slots renders the grid row for one court in timeline order.
func (g Grid) Slots(courtID string, tl timeline.Timeline) []TimeSlot {
	row := g[courtID]
	out := make([]TimeSlot, 0, tl.SlotCount())
	for _, m := range tl.Slots() {
		out = append(out, TimeSlot{
			Label:     timeline.FormatMinutes(m),
			Value:     m,
			Available: row[m],
		})
	}
	return out
}

// CourtStatus describes how well one court can satisfy a requested window.
type CourtStatus struct {
	CourtID          string `json:"court_id"`
	Available        bool   `json:"available"`
	FullyAvailable   bool   `json:"fully_available"`
	AvailableSlots   []int  `json:"available_slots"`
	UnavailableSlots []int  `json:"unavailable_slots"`
}

// Status classifies one court against the requested [start, end) window.
func (g Grid) Status(courtID string, start, end int, tl timeline.Timeline) CourtStatus {
	st := CourtStatus{CourtID: courtID}
	row := g[courtID]
	for m := tl.SlotStart(start); m < end && m+tl.Step() <= tl.Close(); m += tl.Step() {
		if row[m] {
			st.AvailableSlots = append(st.AvailableSlots, m)
		} else {
			st.UnavailableSlots = append(st.UnavailableSlots, m)
		}
	}
	st.Available = len(st.AvailableSlots) > 0
	st.FullyAvailable = st.Available && len(st.UnavailableSlots) == 0
	return st
}

// Statuses classifies every court in the grid, ordered by court ID so output
// is stable across recomputes.
func (g Grid) Statuses(start, end int, tl timeline.Timeline) []CourtStatus {
	ids := make([]string, 0, len(g))
	for id := range g {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]CourtStatus, 0, len(ids))
	for _, id := range ids {
		out = append(out, g.Status(id, start, end, tl))
	}
	return out
}

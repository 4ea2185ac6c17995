// Package timeline models a venue business day as fixed-size bookable slots.
// Everything is expressed as whole minutes since midnight; formatting and
// parsing of clock strings happens here and nowhere else.
package timeline

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	// DefaultStep is the slot granularity used when a venue configures none.
	DefaultStep = 30
	// FallbackStep is the finest granularity tried when no standard-step
	// duration fits before the next conflict.
	FallbackStep = 15

	MinutesPerDay = 24 * 60
)

var (
	ErrInvalidHours = errors.New("close must be after open")
	ErrInvalidStep  = errors.New("step must be positive")
	ErrInvalidClock = errors.New("invalid clock value")
)

// Timeline is one business day between open and close, divided into slots of
// step minutes. Slot boundaries are open + i*step; the conversion from an
// arbitrary minute to a slot floors, and only here.
type Timeline struct {
	open  int
	close int
	step  int
}

func New(open, close, step int) (Timeline, error) {
	if step <= 0 {
		return Timeline{}, ErrInvalidStep
	}
	if open < 0 || close > MinutesPerDay || close <= open {
		return Timeline{}, ErrInvalidHours
	}
	return Timeline{open: open, close: close, step: step}, nil
}

func (t Timeline) Open() int  { return t.open }
func (t Timeline) Close() int { return t.close }
func (t Timeline) Step() int  { return t.step }

// SlotCount is the number of whole slots in [open, close).
func (t Timeline) SlotCount() int {
	return (t.close - t.open) / t.step
}

// SlotIndex maps a minute-of-day to the index of the slot containing it.
// Minutes before open map to 0 and minutes at or past close map to the last
// slot; callers that care use Contains first.
func (t Timeline) SlotIndex(minute int) int {
	if minute <= t.open {
		return 0
	}
	idx := (minute - t.open) / t.step
	if max := t.SlotCount() - 1; idx > max {
		return max
	}
	return idx
}

// SlotStart floors a minute-of-day to the start of its slot.
func (t Timeline) SlotStart(minute int) int {
	return t.open + t.SlotIndex(minute)*t.step
}

// NextSlot returns the start of the slot after the one containing minute.
func (t Timeline) NextSlot(minute int) int {
	return t.SlotStart(minute) + t.step
}

// Contains reports whether a slot starting at minute lies fully inside the day.
func (t Timeline) Contains(minute int) bool {
	if minute < t.open || minute+t.step > t.close {
		return false
	}
	return (minute-t.open)%t.step == 0
}

// Slots enumerates every slot start in [open, close).
func (t Timeline) Slots() []int {
	out := make([]int, 0, t.SlotCount())
	for m := t.open; m+t.step <= t.close; m += t.step {
		out = append(out, m)
	}
	return out
}

// MinutesBetween is b - a; negative when b precedes a.
func MinutesBetween(a, b int) int {
	return b - a
}

// FormatMinutes renders a minute-of-day as "HH:mm".
func FormatMinutes(minute int) string {
	return fmt.Sprintf("%02d:%02d", minute/60, minute%60)
}

// ParseClock parses "HH:mm" into minutes since midnight.
func ParseClock(s string) (int, error) {
	hh, mm, ok := strings.Cut(s, ":")
	if !ok {
		return 0, ErrInvalidClock
	}
	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 23 {
		return 0, ErrInvalidClock
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 || m > 59 {
		return 0, ErrInvalidClock
	}
	return h*60 + m, nil
}

// FormatDuration renders a minute count the way the booking UI shows
// durations, e.g. "30 min", "1 h", "1.5 h".
func FormatDuration(minutes int) string {
	if minutes < 60 {
		return fmt.Sprintf("%d min", minutes)
	}
	if minutes%60 == 0 {
		return fmt.Sprintf("%d h", minutes/60)
	}
	return strings.TrimSuffix(fmt.Sprintf("%.2f", float64(minutes)/60), "0") + " h"
}

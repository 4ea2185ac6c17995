package timeline

import "testing"

func TestNew(t *testing.T) {
	t.Parallel()

	if _, err := New(480, 1320, 30); err != nil {
		t.Fatalf("expected valid timeline, got %v", err)
	}
	if _, err := New(480, 480, 30); err != ErrInvalidHours {
		t.Fatalf("expected ErrInvalidHours, got %v", err)
	}
	if _, err := New(480, 1320, 0); err != ErrInvalidStep {
		t.Fatalf("expected ErrInvalidStep, got %v", err)
	}
}

func TestSlotArithmetic(t *testing.T) {
	t.Parallel()

	tl, err := New(480, 1320, 30) // 08:00-22:00
	if err != nil {
		t.Fatalf("new timeline: %v", err)
	}

	if got := tl.SlotCount(); got != 28 {
		t.Fatalf("expected 28 slots, got %d", got)
	}
	if got := tl.SlotIndex(480); got != 0 {
		t.Fatalf("slot index of open: expected 0, got %d", got)
	}
	if got := tl.SlotIndex(875); got != 13 { // 14:35 sits in the 14:30 slot
		t.Fatalf("slot index of 14:35: expected 13, got %d", got)
	}
	if got := tl.SlotStart(875); got != 870 {
		t.Fatalf("slot start of 14:35: expected 870, got %d", got)
	}
	if got := tl.NextSlot(870); got != 900 {
		t.Fatalf("next slot after 14:30: expected 900, got %d", got)
	}

	slots := tl.Slots()
	if len(slots) != 28 || slots[0] != 480 || slots[27] != 1290 {
		t.Fatalf("unexpected slot enumeration: len=%d first=%d last=%d", len(slots), slots[0], slots[len(slots)-1])
	}

	if !tl.Contains(1290) {
		t.Fatalf("expected 21:30 slot to fit before close")
	}
	if tl.Contains(1300) {
		t.Fatalf("unaligned minute must not be a slot start")
	}
	if tl.Contains(1320) {
		t.Fatalf("slot starting at close must not fit")
	}
}

func TestClockFormatting(t *testing.T) {
	t.Parallel()

	if got := FormatMinutes(870); got != "14:30" {
		t.Fatalf("expected 14:30, got %s", got)
	}
	if got := FormatMinutes(0); got != "00:00" {
		t.Fatalf("expected 00:00, got %s", got)
	}

	m, err := ParseClock("09:15")
	if err != nil || m != 555 {
		t.Fatalf("expected 555, got %d err=%v", m, err)
	}
	for _, bad := range []string{"", "9", "24:00", "12:60", "aa:bb"} {
		if _, err := ParseClock(bad); err == nil {
			t.Fatalf("expected error parsing %q", bad)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	t.Parallel()

	cases := map[int]string{
		30:  "30 min",
		45:  "45 min",
		60:  "1 h",
		90:  "1.5 h",
		120: "2 h",
	}
	for minutes, want := range cases {
		if got := FormatDuration(minutes); got != want {
			t.Fatalf("FormatDuration(%d): expected %q, got %q", minutes, want, got)
		}
	}
}

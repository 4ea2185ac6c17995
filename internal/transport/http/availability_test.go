package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/matchpoint/courtbook/internal/availability"
	"github.com/matchpoint/courtbook/internal/domain"
)

type stubAvailabilityService struct {
	slots    []availability.TimeSlot
	statuses []availability.CourtStatus
	durs     []availability.Duration
	alts     availability.Alternatives
	err      error

	gotVenueID string
	gotDay     time.Time
	gotCourtID string
	gotStart   int
	gotEnd     int
}

func (s *stubAvailabilityService) Slots(_ context.Context, venueID string, day time.Time, courtID string) ([]availability.TimeSlot, error) {
	s.gotVenueID, s.gotDay, s.gotCourtID = venueID, day, courtID
	return s.slots, s.err
}

func (s *stubAvailabilityService) Statuses(_ context.Context, venueID string, day time.Time, startM, endM int) ([]availability.CourtStatus, error) {
	s.gotVenueID, s.gotDay, s.gotStart, s.gotEnd = venueID, day, startM, endM
	return s.statuses, s.err
}

func (s *stubAvailabilityService) Durations(_ context.Context, venueID string, day time.Time, startM int, courtID string) ([]availability.Duration, error) {
	s.gotVenueID, s.gotDay, s.gotStart, s.gotCourtID = venueID, day, startM, courtID
	return s.durs, s.err
}

func (s *stubAvailabilityService) Alternatives(_ context.Context, venueID string, day time.Time, courtID string, startM, endM int, _ float64) (availability.Alternatives, error) {
	s.gotVenueID, s.gotDay, s.gotCourtID, s.gotStart, s.gotEnd = venueID, day, courtID, startM, endM
	return s.alts, s.err
}

func TestHandleSlots(t *testing.T) {
	t.Parallel()

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		svc := &stubAvailabilityService{slots: []availability.TimeSlot{
			{Label: "10:00", Value: 600, Available: true},
		}}
		req := httptest.NewRequest(http.MethodGet, "/availability/slots?venue_id=v1&date=2025-06-02&court_id=c1", nil)
		rec := httptest.NewRecorder()

		HandleSlots(svc).ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), `"10:00"`) {
			t.Fatalf("expected slot label in body, got %q", rec.Body.String())
		}
		if svc.gotVenueID != "v1" || svc.gotCourtID != "c1" {
			t.Fatalf("unexpected args: %q %q", svc.gotVenueID, svc.gotCourtID)
		}
		if !svc.gotDay.Equal(time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)) {
			t.Fatalf("unexpected day: %v", svc.gotDay)
		}
	})

	t.Run("bad date", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodGet, "/availability/slots?venue_id=v1&date=02.06.2025", nil)
		rec := httptest.NewRecorder()

		HandleSlots(&stubAvailabilityService{}).ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("court not found", func(t *testing.T) {
		t.Parallel()
		svc := &stubAvailabilityService{err: domain.ErrCourtNotFound}
		req := httptest.NewRequest(http.MethodGet, "/availability/slots?venue_id=v1&date=2025-06-02&court_id=c9", nil)
		rec := httptest.NewRecorder()

		HandleSlots(svc).ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})
}

func TestHandleCourtStatuses(t *testing.T) {
	t.Parallel()

	svc := &stubAvailabilityService{statuses: []availability.CourtStatus{
		{CourtID: "c1", Available: true, FullyAvailable: true},
	}}
	req := httptest.NewRequest(http.MethodGet, "/availability/courts?venue_id=v1&date=2025-06-02&start=600&end=660", nil)
	rec := httptest.NewRecorder()

	HandleCourtStatuses(svc).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if svc.gotStart != 600 || svc.gotEnd != 660 {
		t.Fatalf("unexpected window: %d-%d", svc.gotStart, svc.gotEnd)
	}

	req = httptest.NewRequest(http.MethodGet, "/availability/courts?venue_id=v1&date=2025-06-02&start=ten&end=660", nil)
	rec = httptest.NewRecorder()
	HandleCourtStatuses(svc).ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad start, got %d", rec.Code)
	}
}

func TestHandleDurations(t *testing.T) {
	t.Parallel()

	svc := &stubAvailabilityService{durs: []availability.Duration{
		{Label: "1 h", Minutes: 60, Price: 20},
	}}
	req := httptest.NewRequest(http.MethodGet, "/availability/durations?venue_id=v1&date=2025-06-02&start=600&court_id=c1", nil)
	rec := httptest.NewRecorder()

	HandleDurations(svc).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"1 h"`) {
		t.Fatalf("expected duration label in body, got %q", rec.Body.String())
	}
}

func TestHandleAlternatives(t *testing.T) {
	t.Parallel()

	svc := &stubAvailabilityService{alts: availability.Alternatives{
		Alternative: &availability.Window{Start: 720, End: 780},
	}}
	req := httptest.NewRequest(http.MethodGet, "/availability/alternatives?venue_id=v1&date=2025-06-02&court_id=c1&start=600&end=660&price=20", nil)
	rec := httptest.NewRecorder()

	HandleAlternatives(svc).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if svc.gotStart != 600 || svc.gotEnd != 660 || svc.gotCourtID != "c1" {
		t.Fatalf("unexpected args: %d-%d %q", svc.gotStart, svc.gotEnd, svc.gotCourtID)
	}
}

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/matchpoint/courtbook/internal/domain"
	"github.com/matchpoint/courtbook/internal/testutil"
)

func bookingAt(venueID, courtID string, start, end time.Time, status domain.BookingStatus) domain.Booking {
	return domain.Booking{
		VenueID:       venueID,
		CourtID:       courtID,
		StartTime:     start,
		EndTime:       end,
		Status:        status,
		PaymentStatus: domain.PaymentStatusPending,
	}
}

func TestBookingRepository(t *testing.T) {
	pool := testutil.NewTestPool(t)
	repo := NewBookingRepository(pool)
	testutil.ApplyMigrations(t, context.Background(), pool)

	day := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	at := func(min int) time.Time { return day.Add(time.Duration(min) * time.Minute) }

	t.Run("GetCourtForUpdate returns court and ErrCourtNotFound", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)
		venueID := testutil.InsertVenue(t, ctx, pool, "Matchpoint Mitte")
		courtID := testutil.InsertCourt(t, ctx, pool, venueID, "Court A", 20, true)

		err := repo.WithTx(ctx, func(txCtx context.Context) error {
			court, err := repo.GetCourtForUpdate(txCtx, venueID, courtID)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if court.ID != courtID || court.VenueID != venueID || court.HourlyRate != 20 || !court.Active {
				t.Fatalf("unexpected court: %+v", court)
			}

			missing := "00000000-0000-0000-0000-000000000001"
			if _, err := repo.GetCourtForUpdate(txCtx, venueID, missing); err != domain.ErrCourtNotFound {
				t.Fatalf("expected ErrCourtNotFound, got %v", err)
			}
			return nil
		})
		if err != nil {
			t.Fatalf("tx failed: %v", err)
		}

		if _, err := repo.GetCourtForUpdate(ctx, venueID, "not-a-uuid"); err != domain.ErrInvalidID {
			t.Fatalf("expected ErrInvalidID, got %v", err)
		}
	})

	t.Run("CreateBooking enforces the overlap constraint", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)
		venueID := testutil.InsertVenue(t, ctx, pool, "Matchpoint Mitte")
		courtID := testutil.InsertCourt(t, ctx, pool, venueID, "Court A", 20, true)

		first := bookingAt(venueID, courtID, at(600), at(660), domain.BookingStatusConfirmed)
		first.ID = "11111111-1111-1111-1111-111111111111"
		first.Date = day
		first.CreatedAt = time.Now().UTC()
		if err := repo.CreateBooking(ctx, first); err != nil {
			t.Fatalf("create first booking: %v", err)
		}

		second := bookingAt(venueID, courtID, at(630), at(690), domain.BookingStatusHolding)
		second.ID = "22222222-2222-2222-2222-222222222222"
		second.Date = day
		second.CreatedAt = time.Now().UTC()
		second.ExpiresAt = time.Now().Add(15 * time.Minute).UTC()
		if err := repo.CreateBooking(ctx, second); err != domain.ErrBookingConflict {
			t.Fatalf("expected ErrBookingConflict, got %v", err)
		}

		// A cancelled row does not occupy the interval.
		if err := repo.UpdateBookingStatus(ctx, first.ID, domain.BookingStatusCancelled, domain.PaymentStatusFailed); err != nil {
			t.Fatalf("cancel first booking: %v", err)
		}
		if err := repo.CreateBooking(ctx, second); err != nil {
			t.Fatalf("expected insert after cancellation, got %v", err)
		}
	})

	t.Run("FindOverlapping ignores cancelled and expired holds", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)
		venueID := testutil.InsertVenue(t, ctx, pool, "Matchpoint Mitte")
		courtID := testutil.InsertCourt(t, ctx, pool, venueID, "Court A", 20, true)
		now := time.Now().UTC()

		confirmed := bookingAt(venueID, courtID, at(600), at(660), domain.BookingStatusConfirmed)
		confirmedID := testutil.InsertBooking(t, ctx, pool, confirmed)

		cancelled := bookingAt(venueID, courtID, at(600), at(660), domain.BookingStatusCancelled)
		cancelled.StartTime, cancelled.EndTime = at(720), at(780)
		testutil.InsertBooking(t, ctx, pool, cancelled)

		staleHold := bookingAt(venueID, courtID, at(840), at(900), domain.BookingStatusHolding)
		staleHold.ExpiresAt = now.Add(-time.Minute)
		testutil.InsertBooking(t, ctx, pool, staleHold)

		got, err := repo.FindOverlapping(ctx, courtID, at(540), at(960), now)
		if err != nil {
			t.Fatalf("find overlapping: %v", err)
		}
		if len(got) != 1 || got[0].ID != confirmedID {
			t.Fatalf("expected only the confirmed booking, got %+v", got)
		}
	})

	t.Run("ReleaseExpiredOverlapping frees only stale holds in the window", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)
		venueID := testutil.InsertVenue(t, ctx, pool, "Matchpoint Mitte")
		courtID := testutil.InsertCourt(t, ctx, pool, venueID, "Court A", 20, true)
		now := time.Now().UTC()

		stale := bookingAt(venueID, courtID, at(600), at(660), domain.BookingStatusHolding)
		stale.ExpiresAt = now.Add(-time.Minute)
		staleID := testutil.InsertBooking(t, ctx, pool, stale)

		live := bookingAt(venueID, courtID, at(720), at(780), domain.BookingStatusHolding)
		live.ExpiresAt = now.Add(10 * time.Minute)
		liveID := testutil.InsertBooking(t, ctx, pool, live)

		if err := repo.ReleaseExpiredOverlapping(ctx, courtID, at(600), at(780), now); err != nil {
			t.Fatalf("release expired: %v", err)
		}

		staleRow, err := repo.GetBookingForUpdate(ctx, staleID)
		if err != nil {
			t.Fatalf("get stale: %v", err)
		}
		if staleRow.Status != domain.BookingStatusCancelled {
			t.Fatalf("expected stale hold cancelled, got %s", staleRow.Status)
		}

		liveRow, err := repo.GetBookingForUpdate(ctx, liveID)
		if err != nil {
			t.Fatalf("get live: %v", err)
		}
		if liveRow.Status != domain.BookingStatusHolding {
			t.Fatalf("live hold must survive, got %s", liveRow.Status)
		}
	})

	t.Run("ListByVenueDate returns the day in court order", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)
		venueID := testutil.InsertVenue(t, ctx, pool, "Matchpoint Mitte")
		courtID := testutil.InsertCourt(t, ctx, pool, venueID, "Court A", 20, true)

		testutil.InsertBooking(t, ctx, pool, bookingAt(venueID, courtID, at(600), at(660), domain.BookingStatusConfirmed))
		otherDay := day.AddDate(0, 0, 1)
		testutil.InsertBooking(t, ctx, pool, bookingAt(venueID, courtID, otherDay.Add(10*time.Hour), otherDay.Add(11*time.Hour), domain.BookingStatusConfirmed))

		got, err := repo.ListByVenueDate(ctx, venueID, day)
		if err != nil {
			t.Fatalf("list bookings: %v", err)
		}
		if len(got) != 1 {
			t.Fatalf("expected 1 booking on the day, got %d", len(got))
		}
		if !got[0].Date.Equal(day) || !got[0].StartTime.Equal(at(600)) {
			t.Fatalf("unexpected booking: %+v", got[0])
		}
	})

	t.Run("ExpireHolds cancels and returns overdue holds", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)
		venueID := testutil.InsertVenue(t, ctx, pool, "Matchpoint Mitte")
		courtID := testutil.InsertCourt(t, ctx, pool, venueID, "Court A", 20, true)
		now := time.Now().UTC()

		stale := bookingAt(venueID, courtID, at(600), at(660), domain.BookingStatusHolding)
		stale.ExpiresAt = now.Add(-time.Minute)
		staleID := testutil.InsertBooking(t, ctx, pool, stale)

		live := bookingAt(venueID, courtID, at(720), at(780), domain.BookingStatusHolding)
		live.ExpiresAt = now.Add(10 * time.Minute)
		testutil.InsertBooking(t, ctx, pool, live)

		expired, err := repo.ExpireHolds(ctx, now)
		if err != nil {
			t.Fatalf("expire holds: %v", err)
		}
		if len(expired) != 1 || expired[0].ID != staleID {
			t.Fatalf("expected the stale hold, got %+v", expired)
		}
		if expired[0].Status != domain.BookingStatusCancelled {
			t.Fatalf("expected returned row cancelled, got %s", expired[0].Status)
		}

		again, err := repo.ExpireHolds(ctx, now)
		if err != nil {
			t.Fatalf("second expire: %v", err)
		}
		if len(again) != 0 {
			t.Fatalf("second sweep must find nothing, got %+v", again)
		}
	})

	t.Run("UpdateBookingStatus on a missing booking", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)

		missing := "00000000-0000-0000-0000-000000000001"
		if err := repo.UpdateBookingStatus(ctx, missing, domain.BookingStatusConfirmed, domain.PaymentStatusPaid); err != domain.ErrBookingNotFound {
			t.Fatalf("expected ErrBookingNotFound, got %v", err)
		}
	})
}

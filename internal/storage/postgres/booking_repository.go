package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/matchpoint/courtbook/internal/domain"
)

const bookingColumns = `id, venue_id, court_id, date, start_time, end_time, status, payment_status,
price, customer_name, customer_email, customer_phone, expires_at, created_at`

type BookingRepository struct {
	pool *pgxpool.Pool
}

func NewBookingRepository(pool *pgxpool.Pool) *BookingRepository {
	return &BookingRepository{pool: pool}
}

func (r *BookingRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

func (r *BookingRepository) GetCourtForUpdate(ctx context.Context, venueID, courtID string) (domain.Court, error) {
	const query = `SELECT id, venue_id, name, hourly_rate, active FROM courts WHERE id = $1 AND venue_id = $2 FOR UPDATE`
	var c domain.Court
	err := r.queryRow(ctx, query, courtID, venueID).Scan(&c.ID, &c.VenueID, &c.Name, &c.HourlyRate, &c.Active)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Court{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Court{}, domain.ErrCourtNotFound
		}
		return domain.Court{}, fmt.Errorf("get court: %w", err)
	}
	return c, nil
}

// ReleaseExpiredOverlapping cancels holding bookings on the court whose TTL
// passed and whose interval intersects [start, end). Run inside the hold
// transaction: the exclusion constraint on bookings would otherwise reject
// the insert even though the interval is logically free.
func (r *BookingRepository) ReleaseExpiredOverlapping(ctx context.Context, courtID string, start, end, now time.Time) error {
	const stmt = `
UPDATE bookings
SET status = 'cancelled', payment_status = 'failed'
WHERE court_id = $1
  AND status = 'holding'
  AND expires_at <= $2
  AND start_time < $4 AND end_time > $3`

	if _, err := r.exec(ctx, stmt, courtID, now, start, end); err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("release expired holds: %w", err)
	}
	return nil
}

func (r *BookingRepository) FindOverlapping(ctx context.Context, courtID string, start, end, now time.Time) ([]domain.Booking, error) {
	const query = `
SELECT ` + bookingColumns + `
FROM bookings
WHERE court_id = $1
  AND start_time < $3 AND end_time > $2
  AND status <> 'cancelled'
  AND NOT (status = 'holding' AND expires_at <= $4)
ORDER BY start_time`

	rows, err := r.query(ctx, query, courtID, start, end, now)
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("find overlapping: %w", err)
	}
	defer rows.Close()
	return scanBookings(rows)
}

func (r *BookingRepository) CreateBooking(ctx context.Context, b domain.Booking) error {
	const stmt = `
INSERT INTO bookings (` + bookingColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	var expires *time.Time
	if !b.ExpiresAt.IsZero() {
		expires = &b.ExpiresAt
	}
	_, err := r.exec(ctx, stmt,
		b.ID,
		b.VenueID,
		b.CourtID,
		b.Date,
		b.StartTime,
		b.EndTime,
		b.Status,
		b.PaymentStatus,
		b.Price,
		b.CustomerName,
		b.CustomerEmail,
		b.CustomerPhone,
		expires,
		b.CreatedAt,
	)
	if err != nil {
		// The exclusion constraint is the store's last word on overlap; a
		// concurrent insert that slipped past the FOR UPDATE check lands here.
		if isExclusionViolation(err) || isUniqueViolation(err) {
			return domain.ErrBookingConflict
		}
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("create booking: %w", err)
	}
	return nil
}

func (r *BookingRepository) GetBookingForUpdate(ctx context.Context, bookingID string) (domain.Booking, error) {
	const query = `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1 FOR UPDATE`
	b, err := scanBooking(r.queryRow(ctx, query, bookingID))
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Booking{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Booking{}, domain.ErrBookingNotFound
		}
		return domain.Booking{}, fmt.Errorf("get booking: %w", err)
	}
	return b, nil
}

func (r *BookingRepository) UpdateBookingStatus(ctx context.Context, bookingID string, status domain.BookingStatus, pay domain.PaymentStatus) error {
	const stmt = `UPDATE bookings SET status = $2, payment_status = $3 WHERE id = $1`
	tag, err := r.exec(ctx, stmt, bookingID, status, pay)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("update booking status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrBookingNotFound
	}
	return nil
}

func (r *BookingRepository) ListByVenueDate(ctx context.Context, venueID string, day time.Time) ([]domain.Booking, error) {
	const query = `
SELECT ` + bookingColumns + `
FROM bookings
WHERE venue_id = $1 AND date = $2
ORDER BY court_id, start_time`

	rows, err := r.query(ctx, query, venueID, domain.Day(day))
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	defer rows.Close()
	return scanBookings(rows)
}

// ExpireHolds cancels every holding booking past its TTL and returns the
// bookings it cancelled.
func (r *BookingRepository) ExpireHolds(ctx context.Context, now time.Time) ([]domain.Booking, error) {
	const stmt = `
UPDATE bookings
SET status = 'cancelled', payment_status = 'failed'
WHERE status = 'holding' AND expires_at <= $1
RETURNING ` + bookingColumns

	rows, err := r.query(ctx, stmt, now)
	if err != nil {
		return nil, fmt.Errorf("expire holds: %w", err)
	}
	defer rows.Close()
	return scanBookings(rows)
}

func scanBooking(row pgx.Row) (domain.Booking, error) {
	var b domain.Booking
	var expires *time.Time
	err := row.Scan(
		&b.ID,
		&b.VenueID,
		&b.CourtID,
		&b.Date,
		&b.StartTime,
		&b.EndTime,
		&b.Status,
		&b.PaymentStatus,
		&b.Price,
		&b.CustomerName,
		&b.CustomerEmail,
		&b.CustomerPhone,
		&expires,
		&b.CreatedAt,
	)
	if err != nil {
		return domain.Booking{}, err
	}
	if expires != nil {
		b.ExpiresAt = expires.UTC()
	}
	b.Date = domain.Day(b.Date)
	b.StartTime = b.StartTime.UTC()
	b.EndTime = b.EndTime.UTC()
	return b, nil
}

func scanBookings(rows pgx.Rows) ([]domain.Booking, error) {
	var out []domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bookings: %w", err)
	}
	return out, nil
}

func (r *BookingRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *BookingRepository) query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Query(ctx, sql, args...)
	}
	return r.pool.Query(ctx, sql, args...)
}

func (r *BookingRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}

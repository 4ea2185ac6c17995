package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/matchpoint/courtbook/internal/domain"
)

type VenueRepository struct {
	pool *pgxpool.Pool
}

func NewVenueRepository(pool *pgxpool.Pool) *VenueRepository {
	return &VenueRepository{pool: pool}
}

// GetVenue loads the venue row plus its per-weekday hours.
func (r *VenueRepository) GetVenue(ctx context.Context, venueID string) (domain.Venue, error) {
	const venueQuery = `
SELECT id, name, min_booking_time, max_booking_time, booking_time_step
FROM venues WHERE id = $1`

	var v domain.Venue
	err := r.queryRow(ctx, venueQuery, venueID).Scan(
		&v.ID,
		&v.Name,
		&v.Config.MinBookingTime,
		&v.Config.MaxBookingTime,
		&v.Config.BookingTimeStep,
	)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Venue{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Venue{}, domain.ErrVenueNotFound
		}
		return domain.Venue{}, fmt.Errorf("get venue: %w", err)
	}

	const hoursQuery = `SELECT weekday, open_minutes, close_minutes FROM venue_hours WHERE venue_id = $1`
	rows, err := r.query(ctx, hoursQuery, venueID)
	if err != nil {
		return domain.Venue{}, fmt.Errorf("get venue hours: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var weekday int
		var h domain.DayHours
		if err := rows.Scan(&weekday, &h.Open, &h.Close); err != nil {
			return domain.Venue{}, fmt.Errorf("scan venue hours: %w", err)
		}
		if weekday >= 0 && weekday < len(v.Config.Hours) {
			v.Config.Hours[weekday] = h
		}
	}
	if err := rows.Err(); err != nil {
		return domain.Venue{}, fmt.Errorf("iterate venue hours: %w", err)
	}
	return v, nil
}

func (r *VenueRepository) ListActiveCourts(ctx context.Context, venueID string) ([]domain.Court, error) {
	const query = `
SELECT id, venue_id, name, hourly_rate, active
FROM courts
WHERE venue_id = $1 AND active
ORDER BY name`

	rows, err := r.query(ctx, query, venueID)
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("list courts: %w", err)
	}
	defer rows.Close()

	var out []domain.Court
	for rows.Next() {
		var c domain.Court
		if err := rows.Scan(&c.ID, &c.VenueID, &c.Name, &c.HourlyRate, &c.Active); err != nil {
			return nil, fmt.Errorf("scan court: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate courts: %w", err)
	}
	return out, nil
}

func (r *VenueRepository) query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Query(ctx, sql, args...)
	}
	return r.pool.Query(ctx, sql, args...)
}

func (r *VenueRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}

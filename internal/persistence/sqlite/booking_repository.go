package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/example/tablebook/internal/persistence"
)

// BookingRepository implements persistence.BookingRepository using SQLite.
type BookingRepository struct {
	store *Store
}

// NewBookingRepository creates a SQLite-backed booking repository.
func NewBookingRepository(store *Store) *BookingRepository {
	return &BookingRepository{store: store}
}

const bookingColumns = `id, date, name, party_size, table_id, start_minutes, end_minutes, notes, created_at, updated_at`

// CreateBooking inserts a new booking into its date's collection.
func (r *BookingRepository) CreateBooking(ctx context.Context, booking persistence.Booking) error {
	if booking.ID == "" || booking.Date == "" {
		return persistence.ErrConstraintViolation
	}

	now := time.Now().UTC()
	booking.CreatedAt = now
	booking.UpdatedAt = now

	_, err := r.store.db.ExecContext(ctx, `
		INSERT INTO bookings (`+bookingColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		booking.ID,
		booking.Date,
		booking.Name,
		booking.PartySize,
		booking.TableID,
		booking.Start,
		booking.End,
		booking.Notes,
		booking.CreatedAt.Format(time.RFC3339Nano),
		booking.UpdatedAt.Format(time.RFC3339Nano),
	)
	return mapError(err)
}

// UpdateBooking replaces a stored booking identified by its ID. A date change
// moves the record between per-date collections; creation order within the
// original date is preserved because created_at is untouched.
func (r *BookingRepository) UpdateBooking(ctx context.Context, booking persistence.Booking) error {
	if booking.ID == "" || booking.Date == "" {
		return persistence.ErrConstraintViolation
	}

	booking.UpdatedAt = time.Now().UTC()

	result, err := r.store.db.ExecContext(ctx, `
		UPDATE bookings
		SET date = ?, name = ?, party_size = ?, table_id = ?,
		    start_minutes = ?, end_minutes = ?, notes = ?, updated_at = ?
		WHERE id = ?`,
		booking.Date,
		booking.Name,
		booking.PartySize,
		booking.TableID,
		booking.Start,
		booking.End,
		booking.Notes,
		booking.UpdatedAt.Format(time.RFC3339Nano),
		booking.ID,
	)
	if err != nil {
		return mapError(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: rows affected: %w", err)
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

// GetBooking retrieves a booking by ID.
func (r *BookingRepository) GetBooking(ctx context.Context, id string) (persistence.Booking, error) {
	row := r.store.db.QueryRowContext(ctx, `
		SELECT `+bookingColumns+` FROM bookings WHERE id = ?`, id)

	booking, err := scanBooking(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.Booking{}, persistence.ErrNotFound
		}
		return persistence.Booking{}, mapError(err)
	}
	return booking, nil
}

// ListBookings returns all bookings for a date in creation order. Index
// addressing at the API boundary refers to positions in this list, so the
// ordering ties to created_at with rowid as the deterministic tie-break.
func (r *BookingRepository) ListBookings(ctx context.Context, date string) ([]persistence.Booking, error) {
	rows, err := r.store.db.QueryContext(ctx, `
		SELECT `+bookingColumns+` FROM bookings
		WHERE date = ?
		ORDER BY created_at ASC, rowid ASC`, date)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var bookings []persistence.Booking
	for rows.Next() {
		booking, err := scanBooking(rows.Scan)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, booking)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return bookings, nil
}

// DeleteBooking removes a booking by ID.
func (r *BookingRepository) DeleteBooking(ctx context.Context, id string) error {
	result, err := r.store.db.ExecContext(ctx, `DELETE FROM bookings WHERE id = ?`, id)
	if err != nil {
		return mapError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: rows affected: %w", err)
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

func scanBooking(scan func(dest ...any) error) (persistence.Booking, error) {
	var booking persistence.Booking
	var notes sql.NullString
	var createdAt, updatedAt string

	if err := scan(
		&booking.ID,
		&booking.Date,
		&booking.Name,
		&booking.PartySize,
		&booking.TableID,
		&booking.Start,
		&booking.End,
		&notes,
		&createdAt,
		&updatedAt,
	); err != nil {
		return persistence.Booking{}, err
	}

	if notes.Valid {
		booking.Notes = &notes.String
	}

	var err error
	if booking.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return persistence.Booking{}, fmt.Errorf("sqlite: parse created_at: %w", err)
	}
	if booking.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return persistence.Booking{}, fmt.Errorf("sqlite: parse updated_at: %w", err)
	}
	return booking, nil
}

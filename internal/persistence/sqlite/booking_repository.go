package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/example/studio-scheduler/internal/persistence"
)

// BookingRepository implements persistence.BookingRepository using SQLite.
type BookingRepository struct {
	pool *ConnectionPool
	now  func() time.Time
}

// NewBookingRepository creates a SQLite booking repository.
func NewBookingRepository(pool *ConnectionPool, now func() time.Time) *BookingRepository {
	if now == nil {
		now = time.Now
	}
	return &BookingRepository{pool: pool, now: now}
}

// CreateBooking inserts a new booking row.
func (r *BookingRepository) CreateBooking(ctx context.Context, booking persistence.Booking) error {
	if booking.ID == "" {
		return fmt.Errorf("sqlite: booking id is required")
	}

	_, err := r.pool.db.ExecContext(ctx, `
		INSERT INTO bookings (id, session_id, attendee_id, created_at)
		VALUES (?, ?, ?, ?)`,
		booking.ID,
		booking.SessionID,
		booking.AttendeeID,
		r.now().UTC().Format(time.RFC3339),
	)
	return mapError(err)
}

// ListBookingsForSession returns the bookings attached to a session in
// creation order.
func (r *BookingRepository) ListBookingsForSession(ctx context.Context, sessionID string) ([]persistence.Booking, error) {
	rows, err := r.pool.db.QueryContext(ctx, `
		SELECT id, session_id, attendee_id, created_at
		FROM bookings WHERE session_id = ? ORDER BY created_at, id`, sessionID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var bookings []persistence.Booking
	for rows.Next() {
		var (
			booking   persistence.Booking
			createdAt string
		)
		if err := rows.Scan(&booking.ID, &booking.SessionID, &booking.AttendeeID, &createdAt); err != nil {
			return nil, mapError(err)
		}
		if booking.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
			return nil, fmt.Errorf("sqlite: parse booking created_at: %w", err)
		}
		bookings = append(bookings, booking)
	}
	return bookings, mapError(rows.Err())
}

package postgres

import (
	"context"
	"database/sql"
	"errors"

	"autoport/internal/domain"
	"autoport/internal/repository"
)

// BookingRepository is a PostgreSQL implementation of repository.BookingRepository.
type BookingRepository struct {
	q Querier
}

// NewBookingRepository creates a new PostgreSQL booking repository.
func NewBookingRepository(db *sql.DB) *BookingRepository {
	return &BookingRepository{q: db}
}

// NewBookingRepositoryWithTx creates a booking repository using a transaction.
func NewBookingRepositoryWithTx(tx *sql.Tx) *BookingRepository {
	return &BookingRepository{q: tx}
}

const bookingColumns = `id, trip_id, passenger_id, seats_booked, total_price, status, booked_at, updated_at`

// Create persists a new booking.
func (r *BookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	query := `
		INSERT INTO bookings (id, trip_id, passenger_id, seats_booked, total_price, status, booked_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
	`

	_, err := r.q.ExecContext(ctx, query,
		booking.ID,
		booking.TripID,
		booking.PassengerID,
		booking.SeatsBooked,
		booking.TotalPrice,
		booking.Status,
		booking.BookedAt,
	)

	return err
}

func scanBooking(row interface{ Scan(...any) error }) (*domain.Booking, error) {
	var booking domain.Booking

	err := row.Scan(
		&booking.ID,
		&booking.TripID,
		&booking.PassengerID,
		&booking.SeatsBooked,
		&booking.TotalPrice,
		&booking.Status,
		&booking.BookedAt,
		&booking.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &booking, nil
}

// GetByID retrieves a booking by ID.
func (r *BookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	booking, err := scanBooking(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return booking, nil
}

// GetByIDAndPassenger retrieves a booking by ID, ensuring it belongs to
// the given passenger.
func (r *BookingRepository) GetByIDAndPassenger(ctx context.Context, id, passengerID string) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1 AND passenger_id = $2`

	booking, err := scanBooking(r.q.QueryRowContext(ctx, query, id, passengerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return booking, nil
}

// GetByPassengerID retrieves a passenger's bookings, newest first.
func (r *BookingRepository) GetByPassengerID(ctx context.Context, passengerID string, offset, limit int) ([]*domain.Booking, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE passenger_id = $1
		ORDER BY booked_at DESC
		OFFSET $2 LIMIT $3
	`

	rows, err := r.q.QueryContext(ctx, query, passengerID, offset, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []*domain.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, booking)
	}

	return bookings, rows.Err()
}

// GetConfirmedByTripAndPassenger retrieves a passenger's confirmed
// booking on a trip, if any.
func (r *BookingRepository) GetConfirmedByTripAndPassenger(ctx context.Context, tripID, passengerID string) (*domain.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE trip_id = $1 AND passenger_id = $2 AND status = $3
	`

	booking, err := scanBooking(r.q.QueryRowContext(ctx, query, tripID, passengerID, domain.BookingStatusConfirmed))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return booking, nil
}

// GetConfirmedByTripID retrieves all confirmed bookings on a trip.
func (r *BookingRepository) GetConfirmedByTripID(ctx context.Context, tripID string) ([]*domain.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE trip_id = $1 AND status = $2
		ORDER BY booked_at ASC
	`

	rows, err := r.q.QueryContext(ctx, query, tripID, domain.BookingStatusConfirmed)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []*domain.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, booking)
	}

	return bookings, rows.Err()
}

// CountConfirmedSeats returns the sum of seats across all confirmed
// bookings on a trip.
func (r *BookingRepository) CountConfirmedSeats(ctx context.Context, tripID string) (int, error) {
	query := `
		SELECT COALESCE(SUM(seats_booked), 0)
		FROM bookings
		WHERE trip_id = $1 AND status = $2
	`

	var seats int
	err := r.q.QueryRowContext(ctx, query, tripID, domain.BookingStatusConfirmed).Scan(&seats)
	if err != nil {
		return 0, err
	}

	return seats, nil
}

// Update updates an existing booking.
func (r *BookingRepository) Update(ctx context.Context, booking *domain.Booking) error {
	query := `
		UPDATE bookings
		SET seats_booked = $1, total_price = $2, status = $3, updated_at = NOW()
		WHERE id = $4
	`

	result, err := r.q.ExecContext(ctx, query,
		booking.SeatsBooked,
		booking.TotalPrice,
		booking.Status,
		booking.ID,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// CancelConfirmedByTripID transitions every confirmed booking on a trip
// to the given terminal status, returning the number affected.
func (r *BookingRepository) CancelConfirmedByTripID(ctx context.Context, tripID string, status domain.BookingStatus) (int, error) {
	query := `
		UPDATE bookings
		SET status = $1, updated_at = NOW()
		WHERE trip_id = $2 AND status = $3
	`

	result, err := r.q.ExecContext(ctx, query, status, tripID, domain.BookingStatusConfirmed)
	if err != nil {
		return 0, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}

	return int(rowsAffected), nil
}

// Ensure BookingRepository implements repository.BookingRepository.
var _ repository.BookingRepository = (*BookingRepository)(nil)

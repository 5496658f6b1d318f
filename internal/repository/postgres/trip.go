package postgres

import (
	"context"
	"database/sql"
	"errors"

	"autoport/internal/domain"
	"autoport/internal/repository"
)

// TripRepository is a PostgreSQL implementation of repository.TripRepository.
type TripRepository struct {
	q Querier
}

// NewTripRepository creates a new PostgreSQL trip repository.
func NewTripRepository(db *sql.DB) *TripRepository {
	return &TripRepository{q: db}
}

// NewTripRepositoryWithTx creates a trip repository using a transaction.
func NewTripRepositoryWithTx(tx *sql.Tx) *TripRepository {
	return &TripRepository{q: tx}
}

const tripColumns = `id, driver_id, car_id, from_location, to_location, departure_time, estimated_arrival, price_per_seat, total_seats_offered, available_seats, status, additional_info, created_at, updated_at`

// Create persists a new trip.
func (r *TripRepository) Create(ctx context.Context, trip *domain.Trip) error {
	query := `
		INSERT INTO trips (id, driver_id, car_id, from_location, to_location, departure_time, estimated_arrival, price_per_seat, total_seats_offered, available_seats, status, additional_info, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $13)
	`

	var arrival sql.NullTime
	if !trip.EstimatedArrival.IsZero() {
		arrival = sql.NullTime{Time: trip.EstimatedArrival, Valid: true}
	}

	_, err := r.q.ExecContext(ctx, query,
		trip.ID,
		trip.DriverID,
		trip.CarID,
		trip.FromLocation,
		trip.ToLocation,
		trip.DepartureTime,
		arrival,
		trip.PricePerSeat,
		trip.TotalSeatsOffered,
		trip.AvailableSeats,
		trip.Status,
		trip.AdditionalInfo,
		trip.CreatedAt,
	)

	return err
}

func scanTrip(row interface{ Scan(...any) error }) (*domain.Trip, error) {
	var trip domain.Trip
	var arrival sql.NullTime
	var info sql.NullString

	err := row.Scan(
		&trip.ID,
		&trip.DriverID,
		&trip.CarID,
		&trip.FromLocation,
		&trip.ToLocation,
		&trip.DepartureTime,
		&arrival,
		&trip.PricePerSeat,
		&trip.TotalSeatsOffered,
		&trip.AvailableSeats,
		&trip.Status,
		&info,
		&trip.CreatedAt,
		&trip.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if arrival.Valid {
		trip.EstimatedArrival = arrival.Time
	}
	trip.AdditionalInfo = info.String

	return &trip, nil
}

// GetByID retrieves a trip by ID.
func (r *TripRepository) GetByID(ctx context.Context, id string) (*domain.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips WHERE id = $1`

	trip, err := scanTrip(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return trip, nil
}

// GetByIDForUpdate retrieves a trip by ID holding a row-level exclusive
// lock. Must be called inside a transaction; the lock is held until the
// transaction commits or rolls back, serializing all seat-count writers
// on this trip behind each other.
func (r *TripRepository) GetByIDForUpdate(ctx context.Context, id string) (*domain.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips WHERE id = $1 FOR UPDATE`

	trip, err := scanTrip(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return trip, nil
}

// Update updates an existing trip.
func (r *TripRepository) Update(ctx context.Context, trip *domain.Trip) error {
	query := `
		UPDATE trips
		SET from_location = $1, to_location = $2, departure_time = $3, estimated_arrival = $4,
		    price_per_seat = $5, total_seats_offered = $6, available_seats = $7, status = $8,
		    additional_info = $9, updated_at = NOW()
		WHERE id = $10
	`

	var arrival sql.NullTime
	if !trip.EstimatedArrival.IsZero() {
		arrival = sql.NullTime{Time: trip.EstimatedArrival, Valid: true}
	}

	result, err := r.q.ExecContext(ctx, query,
		trip.FromLocation,
		trip.ToLocation,
		trip.DepartureTime,
		arrival,
		trip.PricePerSeat,
		trip.TotalSeatsOffered,
		trip.AvailableSeats,
		trip.Status,
		trip.AdditionalInfo,
		trip.ID,
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

// UpdateDetails updates a trip's descriptive columns. Seat counts and
// status stay out of the statement so an edit racing a reservation
// cannot write back a stale inventory.
func (r *TripRepository) UpdateDetails(ctx context.Context, trip *domain.Trip) error {
	query := `
		UPDATE trips
		SET from_location = $1, to_location = $2, departure_time = $3, estimated_arrival = $4,
		    price_per_seat = $5, additional_info = $6, updated_at = NOW()
		WHERE id = $7
	`

	var arrival sql.NullTime
	if !trip.EstimatedArrival.IsZero() {
		arrival = sql.NullTime{Time: trip.EstimatedArrival, Valid: true}
	}

	result, err := r.q.ExecContext(ctx, query,
		trip.FromLocation,
		trip.ToLocation,
		trip.DepartureTime,
		arrival,
		trip.PricePerSeat,
		trip.AdditionalInfo,
		trip.ID,
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

// Search retrieves bookable trips matching the given filters.
func (r *TripRepository) Search(ctx context.Context, filter repository.TripSearch) ([]*domain.Trip, error) {
	seats := filter.SeatsNeeded
	if seats < 1 {
		seats = 1
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT ` + tripColumns + `
		FROM trips
		WHERE status = $1
		  AND departure_time > NOW()
		  AND available_seats >= $2
		  AND ($3 = '' OR from_location ILIKE '%' || $3 || '%')
		  AND ($4 = '' OR to_location ILIKE '%' || $4 || '%')
		  AND ($5::date IS NULL OR departure_time::date = $5::date)
		ORDER BY departure_time ASC
		OFFSET $6 LIMIT $7
	`

	var date sql.NullTime
	if !filter.DepartureDate.IsZero() {
		date = sql.NullTime{Time: filter.DepartureDate, Valid: true}
	}

	rows, err := r.q.QueryContext(ctx, query,
		domain.TripStatusScheduled,
		seats,
		filter.FromLocation,
		filter.ToLocation,
		date,
		filter.Offset,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trips []*domain.Trip
	for rows.Next() {
		trip, err := scanTrip(rows)
		if err != nil {
			return nil, err
		}
		trips = append(trips, trip)
	}

	return trips, rows.Err()
}

// GetByDriverID retrieves trips published by a driver, newest first.
func (r *TripRepository) GetByDriverID(ctx context.Context, driverID string, offset, limit int) ([]*domain.Trip, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT ` + tripColumns + `
		FROM trips
		WHERE driver_id = $1
		ORDER BY departure_time DESC
		OFFSET $2 LIMIT $3
	`

	rows, err := r.q.QueryContext(ctx, query, driverID, offset, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trips []*domain.Trip
	for rows.Next() {
		trip, err := scanTrip(rows)
		if err != nil {
			return nil, err
		}
		trips = append(trips, trip)
	}

	return trips, rows.Err()
}

// ListAll retrieves trips across all drivers, newest first.
func (r *TripRepository) ListAll(ctx context.Context, offset, limit int) ([]*domain.Trip, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT ` + tripColumns + `
		FROM trips
		ORDER BY departure_time DESC
		OFFSET $1 LIMIT $2
	`

	rows, err := r.q.QueryContext(ctx, query, offset, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trips []*domain.Trip
	for rows.Next() {
		trip, err := scanTrip(rows)
		if err != nil {
			return nil, err
		}
		trips = append(trips, trip)
	}

	return trips, rows.Err()
}

// Ensure TripRepository implements repository.TripRepository.
var _ repository.TripRepository = (*TripRepository)(nil)

package postgres

import (
	"context"
	"database/sql"
	"errors"

	"autoport/internal/domain"
	"autoport/internal/repository"
)

// CarRepository is a PostgreSQL implementation of repository.CarRepository.
type CarRepository struct {
	q Querier
}

// NewCarRepository creates a new PostgreSQL car repository.
func NewCarRepository(db *sql.DB) *CarRepository {
	return &CarRepository{q: db}
}

// NewCarRepositoryWithTx creates a car repository using a transaction.
func NewCarRepositoryWithTx(tx *sql.Tx) *CarRepository {
	return &CarRepository{q: tx}
}

const carColumns = `id, driver_id, make, model, license_plate, color, seats_count, verification_status, review_notes, is_default, created_at, updated_at`

// Create persists a new car.
func (r *CarRepository) Create(ctx context.Context, car *domain.Car) error {
	query := `
		INSERT INTO cars (id, driver_id, make, model, license_plate, color, seats_count, verification_status, review_notes, is_default, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11)
	`

	_, err := r.q.ExecContext(ctx, query,
		car.ID,
		car.DriverID,
		car.Make,
		car.Model,
		car.LicensePlate,
		car.Color,
		car.SeatsCount,
		car.VerificationStatus,
		car.ReviewNotes,
		car.IsDefault,
		car.CreatedAt,
	)
	if err != nil {
		return mapError(err)
	}

	return nil
}

func scanCar(row interface{ Scan(...any) error }) (*domain.Car, error) {
	var car domain.Car
	var notes sql.NullString

	err := row.Scan(
		&car.ID,
		&car.DriverID,
		&car.Make,
		&car.Model,
		&car.LicensePlate,
		&car.Color,
		&car.SeatsCount,
		&car.VerificationStatus,
		&notes,
		&car.IsDefault,
		&car.CreatedAt,
		&car.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	car.ReviewNotes = notes.String

	return &car, nil
}

// GetByID retrieves a car by ID.
func (r *CarRepository) GetByID(ctx context.Context, id string) (*domain.Car, error) {
	query := `SELECT ` + carColumns + ` FROM cars WHERE id = $1`

	car, err := scanCar(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return car, nil
}

// GetByLicensePlate retrieves a car by its license plate.
func (r *CarRepository) GetByLicensePlate(ctx context.Context, plate string) (*domain.Car, error) {
	query := `SELECT ` + carColumns + ` FROM cars WHERE license_plate = $1`

	car, err := scanCar(r.q.QueryRowContext(ctx, query, plate))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return car, nil
}

// GetByDriverID retrieves all cars belonging to a driver.
func (r *CarRepository) GetByDriverID(ctx context.Context, driverID string) ([]*domain.Car, error) {
	query := `SELECT ` + carColumns + ` FROM cars WHERE driver_id = $1 ORDER BY created_at ASC`

	rows, err := r.q.QueryContext(ctx, query, driverID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cars []*domain.Car
	for rows.Next() {
		car, err := scanCar(rows)
		if err != nil {
			return nil, err
		}
		cars = append(cars, car)
	}

	return cars, rows.Err()
}

// Update updates an existing car.
func (r *CarRepository) Update(ctx context.Context, car *domain.Car) error {
	query := `
		UPDATE cars
		SET make = $1, model = $2, license_plate = $3, color = $4, seats_count = $5,
		    verification_status = $6, review_notes = $7, is_default = $8, updated_at = NOW()
		WHERE id = $9
	`

	result, err := r.q.ExecContext(ctx, query,
		car.Make,
		car.Model,
		car.LicensePlate,
		car.Color,
		car.SeatsCount,
		car.VerificationStatus,
		car.ReviewNotes,
		car.IsDefault,
		car.ID,
	)
	if err != nil {
		return mapError(err)
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

// Delete removes a car.
func (r *CarRepository) Delete(ctx context.Context, id string) error {
	result, err := r.q.ExecContext(ctx, `DELETE FROM cars WHERE id = $1`, id)
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

// ClearDefault unsets the default flag on all of a driver's cars.
func (r *CarRepository) ClearDefault(ctx context.Context, driverID string) error {
	_, err := r.q.ExecContext(ctx, `UPDATE cars SET is_default = FALSE, updated_at = NOW() WHERE driver_id = $1`, driverID)
	return err
}

// ListPendingVerification retrieves cars awaiting admin review.
func (r *CarRepository) ListPendingVerification(ctx context.Context, offset, limit int) ([]*domain.Car, error) {
	query := `
		SELECT ` + carColumns + `
		FROM cars
		WHERE verification_status = $1
		ORDER BY created_at ASC
		OFFSET $2 LIMIT $3
	`

	rows, err := r.q.QueryContext(ctx, query, domain.CarStatusPendingVerification, offset, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cars []*domain.Car
	for rows.Next() {
		car, err := scanCar(rows)
		if err != nil {
			return nil, err
		}
		cars = append(cars, car)
	}

	return cars, rows.Err()
}

// Ensure CarRepository implements repository.CarRepository.
var _ repository.CarRepository = (*CarRepository)(nil)

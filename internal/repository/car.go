package repository

import (
	"context"

	"autoport/internal/domain"
)

// CarRepository defines the persistence operations for cars.
type CarRepository interface {
	// Create persists a new car.
	Create(ctx context.Context, car *domain.Car) error

	// GetByID retrieves a car by ID.
	GetByID(ctx context.Context, id string) (*domain.Car, error)

	// GetByLicensePlate retrieves a car by its license plate.
	GetByLicensePlate(ctx context.Context, plate string) (*domain.Car, error)

	// GetByDriverID retrieves all cars belonging to a driver.
	GetByDriverID(ctx context.Context, driverID string) ([]*domain.Car, error)

	// Update updates an existing car.
	Update(ctx context.Context, car *domain.Car) error

	// Delete removes a car.
	Delete(ctx context.Context, id string) error

	// ClearDefault unsets the default flag on all of a driver's cars.
	ClearDefault(ctx context.Context, driverID string) error

	// ListPendingVerification retrieves cars awaiting admin review.
	ListPendingVerification(ctx context.Context, offset, limit int) ([]*domain.Car, error)
}

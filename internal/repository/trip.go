package repository

import (
	"context"
	"time"

	"autoport/internal/domain"
)

// TripSearch holds the optional filters for searching published trips.
// Zero values mean "no filter"; SeatsNeeded defaults to 1.
type TripSearch struct {
	FromLocation  string
	ToLocation    string
	DepartureDate time.Time
	SeatsNeeded   int
	Offset        int
	Limit         int
}

// TripRepository defines the persistence operations for trips.
type TripRepository interface {
	// Create persists a new trip.
	Create(ctx context.Context, trip *domain.Trip) error

	// GetByID retrieves a trip by ID.
	GetByID(ctx context.Context, id string) (*domain.Trip, error)

	// GetByIDForUpdate retrieves a trip by ID holding a row-level
	// exclusive lock for the duration of the enclosing transaction.
	// Seat-count mutations must go through this read.
	GetByIDForUpdate(ctx context.Context, id string) (*domain.Trip, error)

	// Update updates an existing trip, including its seat inventory.
	// Only callers holding the row lock from GetByIDForUpdate may use
	// it; everything else goes through UpdateDetails.
	Update(ctx context.Context, trip *domain.Trip) error

	// UpdateDetails updates a trip's descriptive columns only. The
	// seat inventory and status columns are left untouched, so the
	// write cannot clobber a reservation committed concurrently.
	UpdateDetails(ctx context.Context, trip *domain.Trip) error

	// Search retrieves bookable trips matching the given filters.
	Search(ctx context.Context, filter TripSearch) ([]*domain.Trip, error)

	// GetByDriverID retrieves trips published by a driver, newest first.
	GetByDriverID(ctx context.Context, driverID string, offset, limit int) ([]*domain.Trip, error)

	// ListAll retrieves trips across all drivers, newest first.
	ListAll(ctx context.Context, offset, limit int) ([]*domain.Trip, error)
}

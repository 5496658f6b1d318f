package repository

import (
	"context"

	"autoport/internal/domain"
)

// BookingRepository defines the persistence operations for bookings.
type BookingRepository interface {
	// Create persists a new booking.
	Create(ctx context.Context, booking *domain.Booking) error

	// GetByID retrieves a booking by ID.
	GetByID(ctx context.Context, id string) (*domain.Booking, error)

	// GetByIDAndPassenger retrieves a booking by ID, ensuring it belongs
	// to the given passenger.
	GetByIDAndPassenger(ctx context.Context, id, passengerID string) (*domain.Booking, error)

	// GetByPassengerID retrieves a passenger's bookings, newest first.
	GetByPassengerID(ctx context.Context, passengerID string, offset, limit int) ([]*domain.Booking, error)

	// GetConfirmedByTripAndPassenger retrieves a passenger's confirmed
	// booking on a trip, if any.
	GetConfirmedByTripAndPassenger(ctx context.Context, tripID, passengerID string) (*domain.Booking, error)

	// GetConfirmedByTripID retrieves all confirmed bookings on a trip.
	GetConfirmedByTripID(ctx context.Context, tripID string) ([]*domain.Booking, error)

	// CountConfirmedSeats returns the sum of seats across all confirmed
	// bookings on a trip.
	CountConfirmedSeats(ctx context.Context, tripID string) (int, error)

	// Update updates an existing booking.
	Update(ctx context.Context, booking *domain.Booking) error

	// CancelConfirmedByTripID transitions every confirmed booking on a
	// trip to the given terminal status, returning the number affected.
	CancelConfirmedByTripID(ctx context.Context, tripID string, status domain.BookingStatus) (int, error)
}

package domain

import "time"

// BookingStatus represents the status of a booking.
type BookingStatus string

const (
	BookingStatusConfirmed            BookingStatus = "CONFIRMED"
	BookingStatusCancelledByPassenger BookingStatus = "CANCELLED_BY_PASSENGER"
	BookingStatusCancelledByDriver    BookingStatus = "CANCELLED_BY_DRIVER"
)

// Booking represents a passenger's claim on one or more seats of a trip.
// TotalPrice is computed from the trip's price at reservation time and
// frozen thereafter. Cancelled states are terminal.
type Booking struct {
	ID          string
	TripID      string
	PassengerID string
	SeatsBooked int
	TotalPrice  float64
	Status      BookingStatus
	BookedAt    time.Time
	UpdatedAt   time.Time
}

// MaxSeatsPerBooking caps how many seats a single booking may claim.
const MaxSeatsPerBooking = 4

package domain

import "time"

// TripStatus represents the current status of a published trip.
type TripStatus string

const (
	TripStatusScheduled         TripStatus = "SCHEDULED"
	TripStatusFull              TripStatus = "FULL"
	TripStatusInProgress        TripStatus = "IN_PROGRESS"
	TripStatusCompleted         TripStatus = "COMPLETED"
	TripStatusCancelledByDriver TripStatus = "CANCELLED_BY_DRIVER"
)

// Trip represents a driver-published ride offering with a seat inventory.
//
// TotalSeatsOffered is fixed at creation (changed only through a resize),
// AvailableSeats is the mutable counter the seat ledger maintains. The
// invariant 0 <= AvailableSeats <= TotalSeatsOffered holds at all times,
// and AvailableSeats == 0 iff Status == FULL while the trip is not
// cancelled.
type Trip struct {
	ID                string
	DriverID          string
	CarID             string
	FromLocation      string
	ToLocation        string
	DepartureTime     time.Time
	EstimatedArrival  time.Time
	PricePerSeat      float64
	TotalSeatsOffered int
	AvailableSeats    int
	Status            TripStatus
	AdditionalInfo    string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Bookable reports whether the trip accepts new reservations.
// A FULL trip is never directly bookable; it must first revert to
// SCHEDULED through a cancellation.
func (t *Trip) Bookable() bool {
	return t.Status == TripStatusScheduled
}

// Open reports whether the trip is still taking place, i.e. seats can
// be released back to it and the driver can still cancel it.
func (t *Trip) Open() bool {
	return t.Status == TripStatusScheduled || t.Status == TripStatusFull
}

package domain

import "time"

// CarVerificationStatus represents the admin-review state of a car.
type CarVerificationStatus string

const (
	CarStatusPendingVerification CarVerificationStatus = "PENDING_VERIFICATION"
	CarStatusApproved            CarVerificationStatus = "APPROVED"
	CarStatusRejected            CarVerificationStatus = "REJECTED"
)

// Car represents a driver's vehicle. Only APPROVED cars can be
// used to publish trips.
type Car struct {
	ID                 string
	DriverID           string
	Make               string
	Model              string
	LicensePlate       string
	Color              string
	SeatsCount         int // total seats including the driver's
	VerificationStatus CarVerificationStatus
	ReviewNotes        string
	IsDefault          bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// MaxPassengerSeats returns the number of seats a driver can offer
// on a trip with this car (one seat is the driver's own).
func (c *Car) MaxPassengerSeats() int {
	return c.SeatsCount - 1
}

package service

import (
	"errors"
	"fmt"
)

// ErrInvalidState is the family error for every precondition failure on
// a ledger or lifecycle operation. Callers can match the family with
// errors.Is(err, ErrInvalidState) or a specific condition below.
var ErrInvalidState = errors.New("invalid state")

var (
	// ErrTripNotBookable is returned when reserving on a trip that is not SCHEDULED.
	ErrTripNotBookable = fmt.Errorf("%w: trip is not available for booking", ErrInvalidState)

	// ErrTripDeparted is returned when reserving on a trip whose departure has passed.
	ErrTripDeparted = fmt.Errorf("%w: trip has already departed", ErrInvalidState)

	// ErrNotEnoughSeats is returned when a reservation asks for more seats than remain.
	ErrNotEnoughSeats = fmt.Errorf("%w: not enough available seats", ErrInvalidState)

	// ErrAlreadyBooked is returned when the passenger already holds a confirmed booking on the trip.
	ErrAlreadyBooked = fmt.Errorf("%w: trip already booked by passenger", ErrInvalidState)

	// ErrBookingNotCancellable is returned when releasing a booking that is not CONFIRMED.
	ErrBookingNotCancellable = fmt.Errorf("%w: booking is not in a cancellable state", ErrInvalidState)

	// ErrTripNotOpen is returned when the owning trip forbids releasing a booking.
	ErrTripNotOpen = fmt.Errorf("%w: trip is not in a suitable state", ErrInvalidState)

	// ErrTripNotCancellable is returned when cancelling a trip that is not SCHEDULED or FULL.
	ErrTripNotCancellable = fmt.Errorf("%w: trip cannot be cancelled in its current state", ErrInvalidState)

	// ErrTripNotEditable is returned when updating a trip that is not SCHEDULED or FULL.
	ErrTripNotEditable = fmt.Errorf("%w: trip is not in an updatable state", ErrInvalidState)

	// ErrSeatsBelowBooked is returned when a resize would shrink capacity below the confirmed seat count.
	ErrSeatsBelowBooked = fmt.Errorf("%w: total seats cannot be less than already booked seats", ErrInvalidState)

	// ErrCarNotApproved is returned when publishing a trip with an unapproved car.
	ErrCarNotApproved = fmt.Errorf("%w: car is not approved for trips", ErrInvalidState)

	// ErrDepartureNotFuture is returned when a trip's departure time is not in the future.
	ErrDepartureNotFuture = fmt.Errorf("%w: departure time must be in the future", ErrInvalidState)

	// ErrSeatsExceedCapacity is returned when offered seats exceed the car's passenger capacity.
	ErrSeatsExceedCapacity = fmt.Errorf("%w: seats offered exceed car capacity", ErrInvalidState)

	// ErrUserNotActive is returned when an OTP login targets a non-active account.
	ErrUserNotActive = fmt.Errorf("%w: user is not active", ErrInvalidState)

	// ErrUserAlreadyActive is returned when registering a phone number that already has an active account.
	ErrUserAlreadyActive = fmt.Errorf("%w: user already registered and active", ErrInvalidState)
)

var (
	// ErrNotOwner is returned when a caller operates on a resource owned by someone else.
	ErrNotOwner = errors.New("resource not owned by caller")

	// ErrInvalidOTP is returned for a wrong, expired or consumed one-time code.
	ErrInvalidOTP = errors.New("invalid or expired verification code")

	// ErrOTPThrottled is returned when codes are requested too frequently for one phone number.
	ErrOTPThrottled = errors.New("verification code requested too recently")

	// ErrInvalidTripID is returned when a trip ID is empty.
	ErrInvalidTripID = errors.New("invalid trip id")

	// ErrInvalidBookingID is returned when a booking ID is empty.
	ErrInvalidBookingID = errors.New("invalid booking id")

	// ErrInvalidUserID is returned when a user ID is empty.
	ErrInvalidUserID = errors.New("invalid user id")

	// ErrInvalidCarID is returned when a car ID is empty.
	ErrInvalidCarID = errors.New("invalid car id")

	// ErrInvalidPhoneNumber is returned when a phone number is empty or malformed.
	ErrInvalidPhoneNumber = errors.New("invalid phone number")

	// ErrInvalidSeats is returned when a seat count is out of range.
	ErrInvalidSeats = errors.New("invalid seat count")

	// ErrInvalidPrice is returned when a per-seat price is not positive.
	ErrInvalidPrice = errors.New("invalid price per seat")

	// ErrDuplicatePlate is returned when a license plate is already registered.
	ErrDuplicatePlate = errors.New("another car with this license plate already exists")

	// ErrCarChangeUnsupported is returned when a trip update tries to swap the car.
	ErrCarChangeUnsupported = errors.New("changing the car for an existing trip is not supported")
)

package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"autoport/internal/domain"
	"autoport/internal/repository"
	"autoport/internal/repository/postgres"
)

// SeatLedger governs every mutation of trip seat inventory and booking
// status. Each operation is a single database transaction that takes a
// row-level exclusive lock on the trip (SELECT ... FOR UPDATE), runs all
// precondition checks against the freshly locked row, and applies the
// trip and booking writes together. Operations on the same trip are
// thereby linearized; operations on different trips proceed in parallel.
type SeatLedger struct {
	db                  *sql.DB
	tripCache           TripInvalidator
	notificationService *NotificationService
}

// TripInvalidator drops cached trip state after a ledger mutation.
type TripInvalidator interface {
	InvalidateTrip(ctx context.Context, tripID string) error
}

// NewSeatLedger creates a new SeatLedger.
func NewSeatLedger(db *sql.DB, tripCache TripInvalidator, notificationService *NotificationService) *SeatLedger {
	return &SeatLedger{
		db:                  db,
		tripCache:           tripCache,
		notificationService: notificationService,
	}
}

// ReserveRequest contains the parameters for reserving seats on a trip.
type ReserveRequest struct {
	TripID      string
	PassengerID string
	Seats       int
}

// ReserveResult contains the outcome of a successful reservation.
type ReserveResult struct {
	Booking *domain.Booking
	Trip    *domain.Trip
}

// Reserve converts a booking request into a confirmed booking while
// decrementing the trip's seat inventory, as one atomic unit. The price
// is frozen at reservation time from the trip's current per-seat price.
func (l *SeatLedger) Reserve(ctx context.Context, req ReserveRequest) (*ReserveResult, error) {
	if req.TripID == "" {
		return nil, ErrInvalidTripID
	}

	if req.PassengerID == "" {
		return nil, ErrInvalidUserID
	}

	if req.Seats < 1 || req.Seats > domain.MaxSeatsPerBooking {
		return nil, ErrInvalidSeats
	}

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	txTripRepo := postgres.NewTripRepositoryWithTx(tx)
	txBookingRepo := postgres.NewBookingRepositoryWithTx(tx)

	// Lock the trip row. Every check below runs against this fresh
	// read; concurrent writers on the same trip block here.
	var trip *domain.Trip
	trip, err = txTripRepo.GetByIDForUpdate(ctx, req.TripID)
	if err != nil {
		return nil, err
	}

	if !trip.Bookable() {
		err = ErrTripNotBookable
		return nil, err
	}

	if !trip.DepartureTime.After(time.Now()) {
		err = ErrTripDeparted
		return nil, err
	}

	if trip.AvailableSeats < req.Seats {
		err = ErrNotEnoughSeats
		return nil, err
	}

	_, err = txBookingRepo.GetConfirmedByTripAndPassenger(ctx, req.TripID, req.PassengerID)
	if err == nil {
		err = ErrAlreadyBooked
		return nil, err
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	trip.AvailableSeats -= req.Seats
	if trip.AvailableSeats == 0 {
		trip.Status = domain.TripStatusFull
	}

	if err = txTripRepo.Update(ctx, trip); err != nil {
		return nil, err
	}

	booking := &domain.Booking{
		ID:          uuid.New().String(),
		TripID:      trip.ID,
		PassengerID: req.PassengerID,
		SeatsBooked: req.Seats,
		TotalPrice:  float64(req.Seats) * trip.PricePerSeat,
		Status:      domain.BookingStatusConfirmed,
		BookedAt:    time.Now(),
	}

	if err = txBookingRepo.Create(ctx, booking); err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}

	l.invalidate(ctx, trip.ID)

	if l.notificationService != nil {
		_ = l.notificationService.NotifyBookingConfirmed(ctx, booking, trip)
	}

	return &ReserveResult{Booking: booking, Trip: trip}, nil
}

// ReleaseRequest contains the parameters for cancelling a booking.
type ReleaseRequest struct {
	BookingID   string
	PassengerID string
}

// ReleaseResult contains the outcome of a successful release.
type ReleaseResult struct {
	Booking *domain.Booking
	Trip    *domain.Trip
}

// Release cancels a passenger's confirmed booking and restores its seats
// to the trip, reverting a FULL trip to SCHEDULED when seats open up.
func (l *SeatLedger) Release(ctx context.Context, req ReleaseRequest) (*ReleaseResult, error) {
	if req.BookingID == "" {
		return nil, ErrInvalidBookingID
	}

	if req.PassengerID == "" {
		return nil, ErrInvalidUserID
	}

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	txTripRepo := postgres.NewTripRepositoryWithTx(tx)
	txBookingRepo := postgres.NewBookingRepositoryWithTx(tx)

	// First read resolves the owning trip so its row can be locked.
	var booking *domain.Booking
	booking, err = txBookingRepo.GetByIDAndPassenger(ctx, req.BookingID, req.PassengerID)
	if err != nil {
		return nil, err
	}

	var trip *domain.Trip
	trip, err = txTripRepo.GetByIDForUpdate(ctx, booking.TripID)
	if err != nil {
		return nil, err
	}

	// Re-read under the trip lock: a concurrent release or cascade
	// cancel may have committed between the first read and the lock.
	booking, err = txBookingRepo.GetByIDAndPassenger(ctx, req.BookingID, req.PassengerID)
	if err != nil {
		return nil, err
	}

	if booking.Status != domain.BookingStatusConfirmed {
		err = ErrBookingNotCancellable
		return nil, err
	}

	if !trip.Open() {
		err = ErrTripNotOpen
		return nil, err
	}

	booking.Status = domain.BookingStatusCancelledByPassenger
	if err = txBookingRepo.Update(ctx, booking); err != nil {
		return nil, err
	}

	trip.AvailableSeats += booking.SeatsBooked
	if trip.Status == domain.TripStatusFull && trip.AvailableSeats > 0 {
		trip.Status = domain.TripStatusScheduled
	}

	if err = txTripRepo.Update(ctx, trip); err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}

	l.invalidate(ctx, trip.ID)

	if l.notificationService != nil {
		_ = l.notificationService.NotifyBookingCancelled(ctx, booking, trip)
	}

	return &ReleaseResult{Booking: booking, Trip: trip}, nil
}

// CancelTripRequest contains the parameters for a driver cancelling a trip.
type CancelTripRequest struct {
	TripID   string
	DriverID string
}

// CancelTripResult contains the outcome of a trip cancellation.
type CancelTripResult struct {
	Trip              *domain.Trip
	CancelledBookings []*domain.Booking
}

// CancelTrip transitions a trip to CANCELLED_BY_DRIVER and cascades the
// cancellation to every confirmed booking, all in one transaction. The
// trip row lock makes the cascade mutually exclusive with any in-flight
// reservation or release on the same trip.
func (l *SeatLedger) CancelTrip(ctx context.Context, req CancelTripRequest) (*CancelTripResult, error) {
	if req.TripID == "" {
		return nil, ErrInvalidTripID
	}

	if req.DriverID == "" {
		return nil, ErrInvalidUserID
	}

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	txTripRepo := postgres.NewTripRepositoryWithTx(tx)
	txBookingRepo := postgres.NewBookingRepositoryWithTx(tx)

	var trip *domain.Trip
	trip, err = txTripRepo.GetByIDForUpdate(ctx, req.TripID)
	if err != nil {
		return nil, err
	}

	if trip.DriverID != req.DriverID {
		err = repository.ErrNotFound
		return nil, err
	}

	if !trip.Open() {
		err = ErrTripNotCancellable
		return nil, err
	}

	var confirmed []*domain.Booking
	confirmed, err = txBookingRepo.GetConfirmedByTripID(ctx, trip.ID)
	if err != nil {
		return nil, err
	}

	trip.Status = domain.TripStatusCancelledByDriver
	if err = txTripRepo.Update(ctx, trip); err != nil {
		return nil, err
	}

	if _, err = txBookingRepo.CancelConfirmedByTripID(ctx, trip.ID, domain.BookingStatusCancelledByDriver); err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}

	l.invalidate(ctx, trip.ID)

	for _, booking := range confirmed {
		booking.Status = domain.BookingStatusCancelledByDriver
	}

	if l.notificationService != nil {
		_ = l.notificationService.NotifyTripCancelled(ctx, trip, confirmed)
	}

	return &CancelTripResult{Trip: trip, CancelledBookings: confirmed}, nil
}

// ResizeRequest contains the parameters for changing a trip's capacity.
type ResizeRequest struct {
	TripID        string
	DriverID      string
	NewTotalSeats int
}

// Resize changes a trip's total offered seats, recomputing the available
// count from the confirmed-seat sum and flipping status between FULL and
// SCHEDULED accordingly. The sum is read and the counts written under
// the same trip row lock, so concurrent reserves and releases cannot
// interleave with the recomputation.
func (l *SeatLedger) Resize(ctx context.Context, req ResizeRequest) (*domain.Trip, error) {
	if req.TripID == "" {
		return nil, ErrInvalidTripID
	}

	if req.DriverID == "" {
		return nil, ErrInvalidUserID
	}

	if req.NewTotalSeats < 1 {
		return nil, ErrInvalidSeats
	}

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	txTripRepo := postgres.NewTripRepositoryWithTx(tx)
	txBookingRepo := postgres.NewBookingRepositoryWithTx(tx)

	var trip *domain.Trip
	trip, err = txTripRepo.GetByIDForUpdate(ctx, req.TripID)
	if err != nil {
		return nil, err
	}

	if trip.DriverID != req.DriverID {
		err = repository.ErrNotFound
		return nil, err
	}

	if !trip.Open() {
		err = ErrTripNotEditable
		return nil, err
	}

	var booked int
	booked, err = txBookingRepo.CountConfirmedSeats(ctx, trip.ID)
	if err != nil {
		return nil, err
	}

	if req.NewTotalSeats < booked {
		err = ErrSeatsBelowBooked
		return nil, err
	}

	trip.TotalSeatsOffered = req.NewTotalSeats
	trip.AvailableSeats = req.NewTotalSeats - booked
	if trip.AvailableSeats == 0 {
		trip.Status = domain.TripStatusFull
	} else {
		trip.Status = domain.TripStatusScheduled
	}

	if err = txTripRepo.Update(ctx, trip); err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}

	l.invalidate(ctx, trip.ID)

	return trip, nil
}

func (l *SeatLedger) invalidate(ctx context.Context, tripID string) {
	if l.tripCache != nil {
		_ = l.tripCache.InvalidateTrip(ctx, tripID)
	}
}

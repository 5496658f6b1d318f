package tests

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"autoport/internal/domain"
	"autoport/internal/repository"
	"autoport/internal/service"
)

// ──────────────────────────────────────────────
// SEAT LEDGER TRANSACTION SCRIPTS
// ──────────────────────────────────────────────
//
// Every ledger operation is one transaction: lock the trip row, check
// preconditions, write trip and bookings together. These tests pin the
// exact statement order, including the FOR UPDATE lock acquisition and
// the rollback on every precondition failure.

const (
	lockTripQuery        = `FROM trips WHERE id = \$1 FOR UPDATE`
	updateTripQuery      = `UPDATE trips`
	insertBookingQuery   = `INSERT INTO bookings`
	confirmedByPairQuery = `WHERE trip_id = \$1 AND passenger_id = \$2 AND status = \$3`
	bookingByPairQuery   = `WHERE id = \$1 AND passenger_id = \$2`
	confirmedByTripQuery = `WHERE trip_id = \$1 AND status = \$2`
	updateBookingQuery   = `UPDATE bookings\s+SET seats_booked = \$1`
	cascadeBookingsQuery = `UPDATE bookings\s+SET status = \$1`
	countConfirmedQuery  = `SELECT COALESCE\(SUM\(seats_booked\), 0\)`
)

func newLedgerDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return db, mock
}

func tripColumns() []string {
	return []string{
		"id", "driver_id", "car_id", "from_location", "to_location",
		"departure_time", "estimated_arrival", "price_per_seat",
		"total_seats_offered", "available_seats", "status",
		"additional_info", "created_at", "updated_at",
	}
}

func tripRow(trip *domain.Trip) *sqlmock.Rows {
	return sqlmock.NewRows(tripColumns()).AddRow(
		trip.ID, trip.DriverID, trip.CarID, trip.FromLocation, trip.ToLocation,
		trip.DepartureTime, nil, trip.PricePerSeat,
		trip.TotalSeatsOffered, trip.AvailableSeats, string(trip.Status),
		trip.AdditionalInfo, trip.CreatedAt, trip.UpdatedAt,
	)
}

func bookingColumns() []string {
	return []string{
		"id", "trip_id", "passenger_id", "seats_booked", "total_price",
		"status", "booked_at", "updated_at",
	}
}

func bookingRow(booking *domain.Booking) *sqlmock.Rows {
	return sqlmock.NewRows(bookingColumns()).AddRow(
		booking.ID, booking.TripID, booking.PassengerID, booking.SeatsBooked,
		booking.TotalPrice, string(booking.Status), booking.BookedAt, booking.UpdatedAt,
	)
}

func scheduledTrip() *domain.Trip {
	now := time.Now()
	return &domain.Trip{
		ID:                "trip-1",
		DriverID:          "driver-1",
		CarID:             "car-1",
		FromLocation:      "Yerevan",
		ToLocation:        "Gyumri",
		DepartureTime:     now.Add(24 * time.Hour),
		PricePerSeat:      25,
		TotalSeatsOffered: 4,
		AvailableSeats:    3,
		Status:            domain.TripStatusScheduled,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

func confirmedBooking() *domain.Booking {
	now := time.Now()
	return &domain.Booking{
		ID:          "booking-1",
		TripID:      "trip-1",
		PassengerID: "passenger-1",
		SeatsBooked: 2,
		TotalPrice:  50,
		Status:      domain.BookingStatusConfirmed,
		BookedAt:    now,
		UpdatedAt:   now,
	}
}

// ──────────────────────────────────────────────
// RESERVE
// ──────────────────────────────────────────────

func TestReserve_DecrementsSeatsAndCreatesBooking(t *testing.T) {
	t.Parallel()

	db, mock := newLedgerDB(t)
	trip := scheduledTrip()

	mock.ExpectBegin()
	mock.ExpectQuery(lockTripQuery).WithArgs(trip.ID).WillReturnRows(tripRow(trip))
	mock.ExpectQuery(confirmedByPairQuery).
		WithArgs(trip.ID, "passenger-1", string(domain.BookingStatusConfirmed)).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec(updateTripQuery).
		WithArgs(trip.FromLocation, trip.ToLocation, sqlmock.AnyArg(), sqlmock.AnyArg(),
			trip.PricePerSeat, 4, 1, string(domain.TripStatusScheduled), trip.AdditionalInfo, trip.ID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(insertBookingQuery).
		WithArgs(sqlmock.AnyArg(), trip.ID, "passenger-1", 2, 50.0,
			string(domain.BookingStatusConfirmed), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	cache := NewMockTripCache()
	ledger := service.NewSeatLedger(db, cache, nil)

	result, err := ledger.Reserve(context.Background(), service.ReserveRequest{
		TripID:      trip.ID,
		PassengerID: "passenger-1",
		Seats:       2,
	})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if result.Booking.TotalPrice != 50 {
		t.Errorf("expected total price 50, got %v", result.Booking.TotalPrice)
	}

	if result.Trip.AvailableSeats != 1 {
		t.Errorf("expected 1 available seat, got %d", result.Trip.AvailableSeats)
	}

	if result.Trip.Status != domain.TripStatusScheduled {
		t.Errorf("expected trip to stay SCHEDULED, got %s", result.Trip.Status)
	}

	if got := cache.InvalidateCallCount; got != 1 {
		t.Errorf("expected 1 cache invalidation, got %d", got)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestReserve_LastSeatFlipsTripToFull(t *testing.T) {
	t.Parallel()

	db, mock := newLedgerDB(t)
	trip := scheduledTrip()
	trip.AvailableSeats = 2

	mock.ExpectBegin()
	mock.ExpectQuery(lockTripQuery).WithArgs(trip.ID).WillReturnRows(tripRow(trip))
	mock.ExpectQuery(confirmedByPairQuery).
		WithArgs(trip.ID, "passenger-1", string(domain.BookingStatusConfirmed)).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec(updateTripQuery).
		WithArgs(trip.FromLocation, trip.ToLocation, sqlmock.AnyArg(), sqlmock.AnyArg(),
			trip.PricePerSeat, 4, 0, string(domain.TripStatusFull), trip.AdditionalInfo, trip.ID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(insertBookingQuery).
		WithArgs(sqlmock.AnyArg(), trip.ID, "passenger-1", 2, 50.0,
			string(domain.BookingStatusConfirmed), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	ledger := service.NewSeatLedger(db, nil, nil)

	result, err := ledger.Reserve(context.Background(), service.ReserveRequest{
		TripID:      trip.ID,
		PassengerID: "passenger-1",
		Seats:       2,
	})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if result.Trip.Status != domain.TripStatusFull {
		t.Errorf("expected trip to flip to FULL, got %s", result.Trip.Status)
	}

	if result.Trip.AvailableSeats != 0 {
		t.Errorf("expected 0 available seats, got %d", result.Trip.AvailableSeats)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestReserve_FullTrip_Rejected(t *testing.T) {
	t.Parallel()

	db, mock := newLedgerDB(t)
	trip := scheduledTrip()
	trip.AvailableSeats = 0
	trip.Status = domain.TripStatusFull

	mock.ExpectBegin()
	mock.ExpectQuery(lockTripQuery).WithArgs(trip.ID).WillReturnRows(tripRow(trip))
	mock.ExpectRollback()

	ledger := service.NewSeatLedger(db, nil, nil)

	_, err := ledger.Reserve(context.Background(), service.ReserveRequest{
		TripID:      trip.ID,
		PassengerID: "passenger-1",
		Seats:       1,
	})
	if !errors.Is(err, service.ErrTripNotBookable) {
		t.Fatalf("expected ErrTripNotBookable, got: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestReserve_NotEnoughSeats_Rejected(t *testing.T) {
	t.Parallel()

	db, mock := newLedgerDB(t)
	trip := scheduledTrip()
	trip.AvailableSeats = 1

	mock.ExpectBegin()
	mock.ExpectQuery(lockTripQuery).WithArgs(trip.ID).WillReturnRows(tripRow(trip))
	mock.ExpectRollback()

	ledger := service.NewSeatLedger(db, nil, nil)

	_, err := ledger.Reserve(context.Background(), service.ReserveRequest{
		TripID:      trip.ID,
		PassengerID: "passenger-1",
		Seats:       3,
	})
	if !errors.Is(err, service.ErrNotEnoughSeats) {
		t.Fatalf("expected ErrNotEnoughSeats, got: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestReserve_DepartedTrip_Rejected(t *testing.T) {
	t.Parallel()

	db, mock := newLedgerDB(t)
	trip := scheduledTrip()
	trip.DepartureTime = time.Now().Add(-time.Hour)

	mock.ExpectBegin()
	mock.ExpectQuery(lockTripQuery).WithArgs(trip.ID).WillReturnRows(tripRow(trip))
	mock.ExpectRollback()

	ledger := service.NewSeatLedger(db, nil, nil)

	_, err := ledger.Reserve(context.Background(), service.ReserveRequest{
		TripID:      trip.ID,
		PassengerID: "passenger-1",
		Seats:       1,
	})
	if !errors.Is(err, service.ErrTripDeparted) {
		t.Fatalf("expected ErrTripDeparted, got: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestReserve_DuplicateBooking_Rejected(t *testing.T) {
	t.Parallel()

	db, mock := newLedgerDB(t)
	trip := scheduledTrip()

	mock.ExpectBegin()
	mock.ExpectQuery(lockTripQuery).WithArgs(trip.ID).WillReturnRows(tripRow(trip))
	mock.ExpectQuery(confirmedByPairQuery).
		WithArgs(trip.ID, "passenger-1", string(domain.BookingStatusConfirmed)).
		WillReturnRows(bookingRow(confirmedBooking()))
	mock.ExpectRollback()

	ledger := service.NewSeatLedger(db, nil, nil)

	_, err := ledger.Reserve(context.Background(), service.ReserveRequest{
		TripID:      trip.ID,
		PassengerID: "passenger-1",
		Seats:       1,
	})
	if !errors.Is(err, service.ErrAlreadyBooked) {
		t.Fatalf("expected ErrAlreadyBooked, got: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestReserve_UnknownTrip_NotFound(t *testing.T) {
	t.Parallel()

	db, mock := newLedgerDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery(lockTripQuery).WithArgs("missing").WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	ledger := service.NewSeatLedger(db, nil, nil)

	_, err := ledger.Reserve(context.Background(), service.ReserveRequest{
		TripID:      "missing",
		PassengerID: "passenger-1",
		Seats:       1,
	})
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestReserve_SeatCountOutOfRange_Rejected(t *testing.T) {
	t.Parallel()

	db, _ := newLedgerDB(t)
	ledger := service.NewSeatLedger(db, nil, nil)

	for _, seats := range []int{0, -1, domain.MaxSeatsPerBooking + 1} {
		_, err := ledger.Reserve(context.Background(), service.ReserveRequest{
			TripID:      "trip-1",
			PassengerID: "passenger-1",
			Seats:       seats,
		})
		if !errors.Is(err, service.ErrInvalidSeats) {
			t.Errorf("seats=%d: expected ErrInvalidSeats, got: %v", seats, err)
		}
	}
}

// Two reservations racing for the last seat are serialized by the trip
// row lock; the loser re-reads a FULL trip and is rejected, so the seat
// count can never go negative.
func TestReserve_SecondReservationAfterFull_Rejected(t *testing.T) {
	t.Parallel()

	db, mock := newLedgerDB(t)
	trip := scheduledTrip()
	trip.AvailableSeats = 1

	// Winner takes the last seat.
	mock.ExpectBegin()
	mock.ExpectQuery(lockTripQuery).WithArgs(trip.ID).WillReturnRows(tripRow(trip))
	mock.ExpectQuery(confirmedByPairQuery).
		WithArgs(trip.ID, "passenger-1", string(domain.BookingStatusConfirmed)).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec(updateTripQuery).
		WithArgs(trip.FromLocation, trip.ToLocation, sqlmock.AnyArg(), sqlmock.AnyArg(),
			trip.PricePerSeat, 4, 0, string(domain.TripStatusFull), trip.AdditionalInfo, trip.ID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(insertBookingQuery).
		WithArgs(sqlmock.AnyArg(), trip.ID, "passenger-1", 1, 25.0,
			string(domain.BookingStatusConfirmed), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	// Loser acquires the lock afterwards and sees the committed FULL row.
	full := scheduledTrip()
	full.AvailableSeats = 0
	full.Status = domain.TripStatusFull
	mock.ExpectBegin()
	mock.ExpectQuery(lockTripQuery).WithArgs(trip.ID).WillReturnRows(tripRow(full))
	mock.ExpectRollback()

	ledger := service.NewSeatLedger(db, nil, nil)

	if _, err := ledger.Reserve(context.Background(), service.ReserveRequest{
		TripID:      trip.ID,
		PassengerID: "passenger-1",
		Seats:       1,
	}); err != nil {
		t.Fatalf("first reservation: expected no error, got: %v", err)
	}

	_, err := ledger.Reserve(context.Background(), service.ReserveRequest{
		TripID:      trip.ID,
		PassengerID: "passenger-2",
		Seats:       1,
	})
	if !errors.Is(err, service.ErrTripNotBookable) {
		t.Fatalf("second reservation: expected ErrTripNotBookable, got: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

// ──────────────────────────────────────────────
// CONCURRENT RESERVATION
// ──────────────────────────────────────────────

// tripInventory is an in-memory stand-in for one trip's seat state. A
// mutex serializes reservations the way the row lock serializes the
// ledger's transactions, with the same precondition checks inside the
// critical section, so goroutines can genuinely race it.
type tripInventory struct {
	mu        sync.Mutex
	total     int
	available int
	status    domain.TripStatus
	booked    map[string]int
}

func newTripInventory(total int) *tripInventory {
	return &tripInventory{
		total:     total,
		available: total,
		status:    domain.TripStatusScheduled,
		booked:    make(map[string]int),
	}
}

func (inv *tripInventory) reserve(passengerID string, seats int) error {
	inv.mu.Lock()
	defer inv.mu.Unlock()

	if inv.status != domain.TripStatusScheduled {
		return service.ErrTripNotBookable
	}

	if _, ok := inv.booked[passengerID]; ok {
		return service.ErrAlreadyBooked
	}

	if seats > inv.available {
		return service.ErrNotEnoughSeats
	}

	inv.available -= seats
	inv.booked[passengerID] = seats
	if inv.available == 0 {
		inv.status = domain.TripStatusFull
	}

	return nil
}

func TestReserve_ConcurrentRequests_NeverOverbook(t *testing.T) {
	t.Parallel()

	const (
		totalSeats = 5
		passengers = 40
	)

	inv := newTripInventory(totalSeats)

	var successes int32
	var wg sync.WaitGroup
	start := make(chan struct{})

	for i := 0; i < passengers; i++ {
		wg.Add(1)
		go func(passengerID string) {
			defer wg.Done()
			<-start

			err := inv.reserve(passengerID, 1)
			if err == nil {
				atomic.AddInt32(&successes, 1)
				return
			}
			if !errors.Is(err, service.ErrInvalidState) {
				t.Errorf("passenger %s: unexpected error: %v", passengerID, err)
			}
		}(fmt.Sprintf("passenger-%d", i))
	}

	close(start)
	wg.Wait()

	if got := atomic.LoadInt32(&successes); got != totalSeats {
		t.Errorf("expected exactly %d reservations to succeed, got %d", totalSeats, got)
	}

	if inv.available != 0 {
		t.Errorf("expected 0 available seats, got %d", inv.available)
	}

	if inv.status != domain.TripStatusFull {
		t.Errorf("expected status FULL, got %s", inv.status)
	}

	var bookedSum int
	for _, seats := range inv.booked {
		bookedSum += seats
	}
	if bookedSum != totalSeats {
		t.Errorf("expected confirmed seats to sum to %d, got %d", totalSeats, bookedSum)
	}
}

func TestReserve_ConcurrentMixedSeatCounts_HoldsInvariant(t *testing.T) {
	t.Parallel()

	const totalSeats = 7

	inv := newTripInventory(totalSeats)

	var wg sync.WaitGroup
	start := make(chan struct{})

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(passengerID string, seats int) {
			defer wg.Done()
			<-start
			_ = inv.reserve(passengerID, seats)
		}(fmt.Sprintf("passenger-%d", i), i%3+1)
	}

	close(start)
	wg.Wait()

	var bookedSum int
	for _, seats := range inv.booked {
		bookedSum += seats
	}

	if bookedSum > totalSeats {
		t.Errorf("overbooked: %d seats confirmed on a %d-seat trip", bookedSum, totalSeats)
	}

	if inv.available != totalSeats-bookedSum {
		t.Errorf("expected %d available seats, got %d", totalSeats-bookedSum, inv.available)
	}

	if inv.available == 0 && inv.status != domain.TripStatusFull {
		t.Errorf("expected status FULL at 0 available seats, got %s", inv.status)
	}
}

// ──────────────────────────────────────────────
// RELEASE
// ──────────────────────────────────────────────

func TestRelease_RestoresSeatsAndRevertsFullTrip(t *testing.T) {
	t.Parallel()

	db, mock := newLedgerDB(t)
	trip := scheduledTrip()
	trip.AvailableSeats = 0
	trip.Status = domain.TripStatusFull
	booking := confirmedBooking()

	mock.ExpectBegin()
	mock.ExpectQuery(bookingByPairQuery).
		WithArgs(booking.ID, booking.PassengerID).
		WillReturnRows(bookingRow(booking))
	mock.ExpectQuery(lockTripQuery).WithArgs(trip.ID).WillReturnRows(tripRow(trip))
	mock.ExpectQuery(bookingByPairQuery).
		WithArgs(booking.ID, booking.PassengerID).
		WillReturnRows(bookingRow(booking))
	mock.ExpectExec(updateBookingQuery).
		WithArgs(booking.SeatsBooked, booking.TotalPrice,
			string(domain.BookingStatusCancelledByPassenger), booking.ID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(updateTripQuery).
		WithArgs(trip.FromLocation, trip.ToLocation, sqlmock.AnyArg(), sqlmock.AnyArg(),
			trip.PricePerSeat, 4, 2, string(domain.TripStatusScheduled), trip.AdditionalInfo, trip.ID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	cache := NewMockTripCache()
	ledger := service.NewSeatLedger(db, cache, nil)

	result, err := ledger.Release(context.Background(), service.ReleaseRequest{
		BookingID:   booking.ID,
		PassengerID: booking.PassengerID,
	})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if result.Booking.Status != domain.BookingStatusCancelledByPassenger {
		t.Errorf("expected booking CANCELLED_BY_PASSENGER, got %s", result.Booking.Status)
	}

	if result.Trip.AvailableSeats != 2 {
		t.Errorf("expected 2 available seats, got %d", result.Trip.AvailableSeats)
	}

	if result.Trip.Status != domain.TripStatusScheduled {
		t.Errorf("expected trip to revert to SCHEDULED, got %s", result.Trip.Status)
	}

	if got := cache.InvalidateCallCount; got != 1 {
		t.Errorf("expected 1 cache invalidation, got %d", got)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestRelease_AlreadyCancelledBooking_Rejected(t *testing.T) {
	t.Parallel()

	db, mock := newLedgerDB(t)
	trip := scheduledTrip()
	booking := confirmedBooking()
	booking.Status = domain.BookingStatusCancelledByPassenger

	mock.ExpectBegin()
	mock.ExpectQuery(bookingByPairQuery).
		WithArgs(booking.ID, booking.PassengerID).
		WillReturnRows(bookingRow(booking))
	mock.ExpectQuery(lockTripQuery).WithArgs(trip.ID).WillReturnRows(tripRow(trip))
	mock.ExpectQuery(bookingByPairQuery).
		WithArgs(booking.ID, booking.PassengerID).
		WillReturnRows(bookingRow(booking))
	mock.ExpectRollback()

	ledger := service.NewSeatLedger(db, nil, nil)

	_, err := ledger.Release(context.Background(), service.ReleaseRequest{
		BookingID:   booking.ID,
		PassengerID: booking.PassengerID,
	})
	if !errors.Is(err, service.ErrBookingNotCancellable) {
		t.Fatalf("expected ErrBookingNotCancellable, got: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestRelease_ForeignBooking_NotFound(t *testing.T) {
	t.Parallel()

	db, mock := newLedgerDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery(bookingByPairQuery).
		WithArgs("booking-1", "intruder").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	ledger := service.NewSeatLedger(db, nil, nil)

	_, err := ledger.Release(context.Background(), service.ReleaseRequest{
		BookingID:   "booking-1",
		PassengerID: "intruder",
	})
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestRelease_CancelledTrip_Rejected(t *testing.T) {
	t.Parallel()

	db, mock := newLedgerDB(t)
	trip := scheduledTrip()
	trip.Status = domain.TripStatusCancelledByDriver
	booking := confirmedBooking()

	mock.ExpectBegin()
	mock.ExpectQuery(bookingByPairQuery).
		WithArgs(booking.ID, booking.PassengerID).
		WillReturnRows(bookingRow(booking))
	mock.ExpectQuery(lockTripQuery).WithArgs(trip.ID).WillReturnRows(tripRow(trip))
	mock.ExpectQuery(bookingByPairQuery).
		WithArgs(booking.ID, booking.PassengerID).
		WillReturnRows(bookingRow(booking))
	mock.ExpectRollback()

	ledger := service.NewSeatLedger(db, nil, nil)

	_, err := ledger.Release(context.Background(), service.ReleaseRequest{
		BookingID:   booking.ID,
		PassengerID: booking.PassengerID,
	})
	if !errors.Is(err, service.ErrTripNotOpen) {
		t.Fatalf("expected ErrTripNotOpen, got: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

// ──────────────────────────────────────────────
// CANCEL TRIP
// ──────────────────────────────────────────────

func TestCancelTrip_CascadesToConfirmedBookings(t *testing.T) {
	t.Parallel()

	db, mock := newLedgerDB(t)
	trip := scheduledTrip()

	first := confirmedBooking()
	second := confirmedBooking()
	second.ID = "booking-2"
	second.PassengerID = "passenger-2"
	second.SeatsBooked = 1
	second.BookedAt = first.BookedAt.Add(time.Minute)

	confirmedRows := sqlmock.NewRows(bookingColumns()).
		AddRow(first.ID, first.TripID, first.PassengerID, first.SeatsBooked,
			first.TotalPrice, string(first.Status), first.BookedAt, first.UpdatedAt).
		AddRow(second.ID, second.TripID, second.PassengerID, second.SeatsBooked,
			second.TotalPrice, string(second.Status), second.BookedAt, second.UpdatedAt)

	mock.ExpectBegin()
	mock.ExpectQuery(lockTripQuery).WithArgs(trip.ID).WillReturnRows(tripRow(trip))
	mock.ExpectQuery(confirmedByTripQuery).
		WithArgs(trip.ID, string(domain.BookingStatusConfirmed)).
		WillReturnRows(confirmedRows)
	mock.ExpectExec(updateTripQuery).
		WithArgs(trip.FromLocation, trip.ToLocation, sqlmock.AnyArg(), sqlmock.AnyArg(),
			trip.PricePerSeat, 4, 3, string(domain.TripStatusCancelledByDriver), trip.AdditionalInfo, trip.ID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(cascadeBookingsQuery).
		WithArgs(string(domain.BookingStatusCancelledByDriver), trip.ID,
			string(domain.BookingStatusConfirmed)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	cache := NewMockTripCache()
	ledger := service.NewSeatLedger(db, cache, nil)

	result, err := ledger.CancelTrip(context.Background(), service.CancelTripRequest{
		TripID:   trip.ID,
		DriverID: trip.DriverID,
	})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if result.Trip.Status != domain.TripStatusCancelledByDriver {
		t.Errorf("expected trip CANCELLED_BY_DRIVER, got %s", result.Trip.Status)
	}

	if len(result.CancelledBookings) != 2 {
		t.Fatalf("expected 2 cancelled bookings, got %d", len(result.CancelledBookings))
	}

	for _, booking := range result.CancelledBookings {
		if booking.Status != domain.BookingStatusCancelledByDriver {
			t.Errorf("booking %s: expected CANCELLED_BY_DRIVER, got %s", booking.ID, booking.Status)
		}
	}

	if got := cache.InvalidateCallCount; got != 1 {
		t.Errorf("expected 1 cache invalidation, got %d", got)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestCancelTrip_NotOwnedByCaller_NotFound(t *testing.T) {
	t.Parallel()

	db, mock := newLedgerDB(t)
	trip := scheduledTrip()

	mock.ExpectBegin()
	mock.ExpectQuery(lockTripQuery).WithArgs(trip.ID).WillReturnRows(tripRow(trip))
	mock.ExpectRollback()

	ledger := service.NewSeatLedger(db, nil, nil)

	_, err := ledger.CancelTrip(context.Background(), service.CancelTripRequest{
		TripID:   trip.ID,
		DriverID: "someone-else",
	})
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestCancelTrip_AlreadyCancelled_Rejected(t *testing.T) {
	t.Parallel()

	db, mock := newLedgerDB(t)
	trip := scheduledTrip()
	trip.Status = domain.TripStatusCancelledByDriver

	mock.ExpectBegin()
	mock.ExpectQuery(lockTripQuery).WithArgs(trip.ID).WillReturnRows(tripRow(trip))
	mock.ExpectRollback()

	ledger := service.NewSeatLedger(db, nil, nil)

	_, err := ledger.CancelTrip(context.Background(), service.CancelTripRequest{
		TripID:   trip.ID,
		DriverID: trip.DriverID,
	})
	if !errors.Is(err, service.ErrTripNotCancellable) {
		t.Fatalf("expected ErrTripNotCancellable, got: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

// ──────────────────────────────────────────────
// RESIZE
// ──────────────────────────────────────────────

func TestResize_RecomputesAvailableFromBookedSum(t *testing.T) {
	t.Parallel()

	db, mock := newLedgerDB(t)
	trip := scheduledTrip()
	trip.AvailableSeats = 1 // 3 of 4 seats booked

	mock.ExpectBegin()
	mock.ExpectQuery(lockTripQuery).WithArgs(trip.ID).WillReturnRows(tripRow(trip))
	mock.ExpectQuery(countConfirmedQuery).
		WithArgs(trip.ID, string(domain.BookingStatusConfirmed)).
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(3))
	mock.ExpectExec(updateTripQuery).
		WithArgs(trip.FromLocation, trip.ToLocation, sqlmock.AnyArg(), sqlmock.AnyArg(),
			trip.PricePerSeat, 5, 2, string(domain.TripStatusScheduled), trip.AdditionalInfo, trip.ID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	ledger := service.NewSeatLedger(db, nil, nil)

	trip, err := ledger.Resize(context.Background(), service.ResizeRequest{
		TripID:        trip.ID,
		DriverID:      trip.DriverID,
		NewTotalSeats: 5,
	})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if trip.TotalSeatsOffered != 5 || trip.AvailableSeats != 2 {
		t.Errorf("expected 5 total / 2 available, got %d/%d",
			trip.TotalSeatsOffered, trip.AvailableSeats)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestResize_DownToBookedCount_FlipsFull(t *testing.T) {
	t.Parallel()

	db, mock := newLedgerDB(t)
	trip := scheduledTrip()
	trip.AvailableSeats = 1 // 3 of 4 seats booked

	mock.ExpectBegin()
	mock.ExpectQuery(lockTripQuery).WithArgs(trip.ID).WillReturnRows(tripRow(trip))
	mock.ExpectQuery(countConfirmedQuery).
		WithArgs(trip.ID, string(domain.BookingStatusConfirmed)).
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(3))
	mock.ExpectExec(updateTripQuery).
		WithArgs(trip.FromLocation, trip.ToLocation, sqlmock.AnyArg(), sqlmock.AnyArg(),
			trip.PricePerSeat, 3, 0, string(domain.TripStatusFull), trip.AdditionalInfo, trip.ID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	ledger := service.NewSeatLedger(db, nil, nil)

	trip, err := ledger.Resize(context.Background(), service.ResizeRequest{
		TripID:        trip.ID,
		DriverID:      trip.DriverID,
		NewTotalSeats: 3,
	})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if trip.Status != domain.TripStatusFull {
		t.Errorf("expected trip to flip to FULL, got %s", trip.Status)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestResize_BelowBookedCount_Rejected(t *testing.T) {
	t.Parallel()

	db, mock := newLedgerDB(t)
	trip := scheduledTrip()
	trip.AvailableSeats = 1 // 3 of 4 seats booked

	mock.ExpectBegin()
	mock.ExpectQuery(lockTripQuery).WithArgs(trip.ID).WillReturnRows(tripRow(trip))
	mock.ExpectQuery(countConfirmedQuery).
		WithArgs(trip.ID, string(domain.BookingStatusConfirmed)).
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(3))
	mock.ExpectRollback()

	ledger := service.NewSeatLedger(db, nil, nil)

	_, err := ledger.Resize(context.Background(), service.ResizeRequest{
		TripID:        trip.ID,
		DriverID:      trip.DriverID,
		NewTotalSeats: 2,
	})
	if !errors.Is(err, service.ErrSeatsBelowBooked) {
		t.Fatalf("expected ErrSeatsBelowBooked, got: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestResize_CancelledTrip_Rejected(t *testing.T) {
	t.Parallel()

	db, mock := newLedgerDB(t)
	trip := scheduledTrip()
	trip.Status = domain.TripStatusCancelledByDriver

	mock.ExpectBegin()
	mock.ExpectQuery(lockTripQuery).WithArgs(trip.ID).WillReturnRows(tripRow(trip))
	mock.ExpectRollback()

	ledger := service.NewSeatLedger(db, nil, nil)

	_, err := ledger.Resize(context.Background(), service.ResizeRequest{
		TripID:        trip.ID,
		DriverID:      trip.DriverID,
		NewTotalSeats: 5,
	})
	if !errors.Is(err, service.ErrTripNotEditable) {
		t.Fatalf("expected ErrTripNotEditable, got: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

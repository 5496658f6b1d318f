package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"autoport/internal/domain"
	"autoport/internal/repository"
)

// TripReader serves trip lookups, optionally through a cache in front
// of the repository.
type TripReader interface {
	GetTrip(ctx context.Context, tripID string) (*domain.Trip, error)
	SetTrip(ctx context.Context, trip *domain.Trip) error
}

// TripService handles publishing and managing trips. Seat-count and
// status mutations are delegated to the SeatLedger; this service owns
// everything that does not touch the seat inventory.
type TripService struct {
	tripRepo  repository.TripRepository
	carRepo   repository.CarRepository
	ledger    *SeatLedger
	tripCache TripReader
}

// NewTripService creates a new TripService.
func NewTripService(
	tripRepo repository.TripRepository,
	carRepo repository.CarRepository,
	ledger *SeatLedger,
	tripCache TripReader,
) *TripService {
	return &TripService{
		tripRepo:  tripRepo,
		carRepo:   carRepo,
		ledger:    ledger,
		tripCache: tripCache,
	}
}

// PublishTripRequest contains the parameters for publishing a trip.
type PublishTripRequest struct {
	DriverID         string
	CarID            string
	FromLocation     string
	ToLocation       string
	DepartureTime    time.Time
	EstimatedArrival time.Time
	PricePerSeat     float64
	TotalSeats       int
	AdditionalInfo   string
}

// Publish creates a new SCHEDULED trip with a full seat inventory.
// The car must belong to the driver, be admin-approved, and offer at
// least one passenger seat beyond the driver's own.
func (s *TripService) Publish(ctx context.Context, req PublishTripRequest) (*domain.Trip, error) {
	if req.DriverID == "" {
		return nil, ErrInvalidUserID
	}

	if req.CarID == "" {
		return nil, ErrInvalidCarID
	}

	if req.PricePerSeat <= 0 {
		return nil, ErrInvalidPrice
	}

	car, err := s.carRepo.GetByID(ctx, req.CarID)
	if err != nil {
		return nil, err
	}

	if car.DriverID != req.DriverID {
		return nil, ErrNotOwner
	}

	if car.VerificationStatus != domain.CarStatusApproved {
		return nil, ErrCarNotApproved
	}

	if !req.DepartureTime.After(time.Now()) {
		return nil, ErrDepartureNotFuture
	}

	if req.TotalSeats < 1 {
		return nil, ErrInvalidSeats
	}

	if req.TotalSeats > car.MaxPassengerSeats() {
		return nil, ErrSeatsExceedCapacity
	}

	trip := &domain.Trip{
		ID:                uuid.New().String(),
		DriverID:          req.DriverID,
		CarID:             req.CarID,
		FromLocation:      req.FromLocation,
		ToLocation:        req.ToLocation,
		DepartureTime:     req.DepartureTime,
		EstimatedArrival:  req.EstimatedArrival,
		PricePerSeat:      req.PricePerSeat,
		TotalSeatsOffered: req.TotalSeats,
		AvailableSeats:    req.TotalSeats,
		Status:            domain.TripStatusScheduled,
		AdditionalInfo:    req.AdditionalInfo,
		CreatedAt:         time.Now(),
	}

	if err := s.tripRepo.Create(ctx, trip); err != nil {
		return nil, err
	}

	return trip, nil
}

// Search retrieves bookable trips matching the filter.
func (s *TripService) Search(ctx context.Context, filter repository.TripSearch) ([]*domain.Trip, error) {
	return s.tripRepo.Search(ctx, filter)
}

// GetTrip retrieves a trip by ID, serving from the cache when possible.
func (s *TripService) GetTrip(ctx context.Context, tripID string) (*domain.Trip, error) {
	if tripID == "" {
		return nil, ErrInvalidTripID
	}

	if s.tripCache != nil {
		if trip, err := s.tripCache.GetTrip(ctx, tripID); err == nil && trip != nil {
			return trip, nil
		}
	}

	trip, err := s.tripRepo.GetByID(ctx, tripID)
	if err != nil {
		return nil, err
	}

	if s.tripCache != nil {
		_ = s.tripCache.SetTrip(ctx, trip)
	}

	return trip, nil
}

// ListByDriver retrieves the trips published by a driver.
func (s *TripService) ListByDriver(ctx context.Context, driverID string, offset, limit int) ([]*domain.Trip, error) {
	if driverID == "" {
		return nil, ErrInvalidUserID
	}

	return s.tripRepo.GetByDriverID(ctx, driverID, offset, limit)
}

// UpdateTripRequest contains the mutable trip fields; nil means "leave as is".
type UpdateTripRequest struct {
	TripID           string
	DriverID         string
	CarID            *string
	FromLocation     *string
	ToLocation       *string
	DepartureTime    *time.Time
	EstimatedArrival *time.Time
	PricePerSeat     *float64
	TotalSeats       *int
	AdditionalInfo   *string
}

// Update edits a trip's details. A capacity change goes through the
// seat ledger's resize so the available count stays consistent with the
// confirmed-seat sum; all other fields are written through
// UpdateDetails, which never touches the seat or status columns, so a
// reservation committing mid-edit is not overwritten.
func (s *TripService) Update(ctx context.Context, req UpdateTripRequest) (*domain.Trip, error) {
	if req.TripID == "" {
		return nil, ErrInvalidTripID
	}

	if req.DriverID == "" {
		return nil, ErrInvalidUserID
	}

	if req.CarID != nil {
		return nil, ErrCarChangeUnsupported
	}

	trip, err := s.tripRepo.GetByID(ctx, req.TripID)
	if err != nil {
		return nil, err
	}

	if trip.DriverID != req.DriverID {
		return nil, repository.ErrNotFound
	}

	if !trip.Open() {
		return nil, ErrTripNotEditable
	}

	if req.DepartureTime != nil {
		if !req.DepartureTime.After(time.Now()) {
			return nil, ErrDepartureNotFuture
		}
		trip.DepartureTime = *req.DepartureTime
	}

	if req.FromLocation != nil {
		trip.FromLocation = *req.FromLocation
	}

	if req.ToLocation != nil {
		trip.ToLocation = *req.ToLocation
	}

	if req.EstimatedArrival != nil {
		trip.EstimatedArrival = *req.EstimatedArrival
	}

	if req.PricePerSeat != nil {
		if *req.PricePerSeat <= 0 {
			return nil, ErrInvalidPrice
		}
		trip.PricePerSeat = *req.PricePerSeat
	}

	if req.AdditionalInfo != nil {
		trip.AdditionalInfo = *req.AdditionalInfo
	}

	if err := s.tripRepo.UpdateDetails(ctx, trip); err != nil {
		return nil, err
	}

	if s.ledger != nil {
		s.ledger.invalidate(ctx, trip.ID)
	}

	if req.TotalSeats != nil && *req.TotalSeats != trip.TotalSeatsOffered {
		return s.ledger.Resize(ctx, ResizeRequest{
			TripID:        req.TripID,
			DriverID:      req.DriverID,
			NewTotalSeats: *req.TotalSeats,
		})
	}

	return trip, nil
}

// Cancel cancels a driver's trip, cascading to its confirmed bookings.
func (s *TripService) Cancel(ctx context.Context, tripID, driverID string) (*CancelTripResult, error) {
	return s.ledger.CancelTrip(ctx, CancelTripRequest{TripID: tripID, DriverID: driverID})
}

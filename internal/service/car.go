package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"autoport/internal/domain"
	"autoport/internal/repository"
)

// CarService handles a driver's vehicle fleet. Every new or materially
// changed car goes back through admin verification before it can be
// used to publish trips.
type CarService struct {
	carRepo repository.CarRepository
}

// NewCarService creates a new CarService.
func NewCarService(carRepo repository.CarRepository) *CarService {
	return &CarService{carRepo: carRepo}
}

// AddCarRequest contains the parameters for registering a car.
type AddCarRequest struct {
	DriverID     string
	Make         string
	Model        string
	LicensePlate string
	Color        string
	SeatsCount   int
}

// Add registers a new car for a driver. The first car automatically
// becomes the driver's default.
func (s *CarService) Add(ctx context.Context, req AddCarRequest) (*domain.Car, error) {
	if req.DriverID == "" {
		return nil, ErrInvalidUserID
	}

	if req.LicensePlate == "" || req.Make == "" || req.Model == "" {
		return nil, ErrInvalidCarID
	}

	if req.SeatsCount < 2 {
		return nil, ErrInvalidSeats
	}

	existing, err := s.carRepo.GetByLicensePlate(ctx, req.LicensePlate)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, ErrDuplicatePlate
	}

	owned, err := s.carRepo.GetByDriverID(ctx, req.DriverID)
	if err != nil {
		return nil, err
	}

	car := &domain.Car{
		ID:                 uuid.New().String(),
		DriverID:           req.DriverID,
		Make:               req.Make,
		Model:              req.Model,
		LicensePlate:       req.LicensePlate,
		Color:              req.Color,
		SeatsCount:         req.SeatsCount,
		VerificationStatus: domain.CarStatusPendingVerification,
		IsDefault:          len(owned) == 0,
		CreatedAt:          time.Now(),
	}

	if err := s.carRepo.Create(ctx, car); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDuplicatePlate
		}
		return nil, err
	}

	return car, nil
}

// List retrieves all cars belonging to a driver.
func (s *CarService) List(ctx context.Context, driverID string) ([]*domain.Car, error) {
	if driverID == "" {
		return nil, ErrInvalidUserID
	}

	return s.carRepo.GetByDriverID(ctx, driverID)
}

// Get retrieves a driver's car by ID.
func (s *CarService) Get(ctx context.Context, carID, driverID string) (*domain.Car, error) {
	car, err := s.carRepo.GetByID(ctx, carID)
	if err != nil {
		return nil, err
	}

	if car.DriverID != driverID {
		return nil, repository.ErrNotFound
	}

	return car, nil
}

// UpdateCarRequest contains the mutable car fields; nil means "leave as is".
type UpdateCarRequest struct {
	CarID        string
	DriverID     string
	Make         *string
	Model        *string
	LicensePlate *string
	Color        *string
	SeatsCount   *int
}

// Update edits a car. Changing identity fields (make, model, plate or
// seat count) sends the car back through admin verification.
func (s *CarService) Update(ctx context.Context, req UpdateCarRequest) (*domain.Car, error) {
	car, err := s.Get(ctx, req.CarID, req.DriverID)
	if err != nil {
		return nil, err
	}

	identityChanged := false

	if req.LicensePlate != nil && *req.LicensePlate != car.LicensePlate {
		other, err := s.carRepo.GetByLicensePlate(ctx, *req.LicensePlate)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		if other != nil {
			return nil, ErrDuplicatePlate
		}
		car.LicensePlate = *req.LicensePlate
		identityChanged = true
	}

	if req.Make != nil && *req.Make != car.Make {
		car.Make = *req.Make
		identityChanged = true
	}

	if req.Model != nil && *req.Model != car.Model {
		car.Model = *req.Model
		identityChanged = true
	}

	if req.SeatsCount != nil && *req.SeatsCount != car.SeatsCount {
		if *req.SeatsCount < 2 {
			return nil, ErrInvalidSeats
		}
		car.SeatsCount = *req.SeatsCount
		identityChanged = true
	}

	if req.Color != nil {
		car.Color = *req.Color
	}

	if identityChanged {
		car.VerificationStatus = domain.CarStatusPendingVerification
		car.ReviewNotes = ""
	}

	if err := s.carRepo.Update(ctx, car); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDuplicatePlate
		}
		return nil, err
	}

	return car, nil
}

// Delete removes a driver's car.
func (s *CarService) Delete(ctx context.Context, carID, driverID string) error {
	if _, err := s.Get(ctx, carID, driverID); err != nil {
		return err
	}

	return s.carRepo.Delete(ctx, carID)
}

// SetDefault marks one of the driver's cars as the default.
func (s *CarService) SetDefault(ctx context.Context, carID, driverID string) (*domain.Car, error) {
	car, err := s.Get(ctx, carID, driverID)
	if err != nil {
		return nil, err
	}

	if err := s.carRepo.ClearDefault(ctx, driverID); err != nil {
		return nil, err
	}

	car.IsDefault = true
	if err := s.carRepo.Update(ctx, car); err != nil {
		return nil, err
	}

	return car, nil
}

package service

import (
	"context"
	"fmt"

	"autoport/internal/domain"
	"autoport/internal/repository"
)

// ErrNotPendingReview is returned when reviewing an entity that is not
// awaiting verification.
var ErrNotPendingReview = fmt.Errorf("%w: not pending review", ErrInvalidState)

// AdminService handles admin verification workflows: approving or
// rejecting driver accounts and cars, and platform-wide listings.
type AdminService struct {
	userRepo            repository.UserRepository
	carRepo             repository.CarRepository
	tripRepo            repository.TripRepository
	notificationService *NotificationService
}

// NewAdminService creates a new AdminService.
func NewAdminService(
	userRepo repository.UserRepository,
	carRepo repository.CarRepository,
	tripRepo repository.TripRepository,
	notificationService *NotificationService,
) *AdminService {
	return &AdminService{
		userRepo:            userRepo,
		carRepo:             carRepo,
		tripRepo:            tripRepo,
		notificationService: notificationService,
	}
}

// ListPendingDrivers retrieves drivers awaiting review.
func (s *AdminService) ListPendingDrivers(ctx context.Context, offset, limit int) ([]*domain.User, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.userRepo.ListDriversPendingReview(ctx, offset, limit)
}

// ReviewDriver approves or rejects a pending driver account. Approval
// activates the account; rejection blocks it.
func (s *AdminService) ReviewDriver(ctx context.Context, driverID string, approve bool, notes string) (*domain.User, error) {
	if driverID == "" {
		return nil, ErrInvalidUserID
	}

	user, err := s.userRepo.GetByID(ctx, driverID)
	if err != nil {
		return nil, err
	}

	if user.Role != domain.RoleDriver || user.Status != domain.UserStatusPendingProfileReview {
		return nil, ErrNotPendingReview
	}

	if approve {
		user.Status = domain.UserStatusActive
	} else {
		user.Status = domain.UserStatusBlocked
	}
	user.ReviewNotes = notes

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	if s.notificationService != nil {
		_ = s.notificationService.NotifyDriverReviewed(ctx, user)
	}

	return user, nil
}

// ListPendingCars retrieves cars awaiting review.
func (s *AdminService) ListPendingCars(ctx context.Context, offset, limit int) ([]*domain.Car, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.carRepo.ListPendingVerification(ctx, offset, limit)
}

// ReviewCar approves or rejects a pending car.
func (s *AdminService) ReviewCar(ctx context.Context, carID string, approve bool, notes string) (*domain.Car, error) {
	if carID == "" {
		return nil, ErrInvalidCarID
	}

	car, err := s.carRepo.GetByID(ctx, carID)
	if err != nil {
		return nil, err
	}

	if car.VerificationStatus != domain.CarStatusPendingVerification {
		return nil, ErrNotPendingReview
	}

	if approve {
		car.VerificationStatus = domain.CarStatusApproved
	} else {
		car.VerificationStatus = domain.CarStatusRejected
	}
	car.ReviewNotes = notes

	if err := s.carRepo.Update(ctx, car); err != nil {
		return nil, err
	}

	if s.notificationService != nil {
		_ = s.notificationService.NotifyCarReviewed(ctx, car)
	}

	return car, nil
}

// ListAllTrips retrieves trips across all drivers for admin oversight.
func (s *AdminService) ListAllTrips(ctx context.Context, offset, limit int) ([]*domain.Trip, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.tripRepo.ListAll(ctx, offset, limit)
}

package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"autoport/internal/domain"
)

// NotificationType represents the type of notification.
type NotificationType string

const (
	NotificationBookingConfirmed NotificationType = "BOOKING_CONFIRMED"
	NotificationBookingCancelled NotificationType = "BOOKING_CANCELLED"
	NotificationTripCancelled    NotificationType = "TRIP_CANCELLED"
	NotificationDriverReviewed   NotificationType = "DRIVER_REVIEWED"
	NotificationCarReviewed      NotificationType = "CAR_REVIEWED"
)

// Notification represents a notification to be sent.
type Notification struct {
	Type        NotificationType
	RecipientID string
	Title       string
	Message     string
	Data        map[string]interface{}
	CreatedAt   time.Time
}

// NotificationService handles notification delivery.
type NotificationService struct {
	// In a real system, this would carry:
	// - Push notification client (FCM, APNS)
	// - SMS client
	// - Email client
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService() *NotificationService {
	return &NotificationService{}
}

// NotifyBookingConfirmed notifies the trip's driver about a new booking.
func (s *NotificationService) NotifyBookingConfirmed(ctx context.Context, booking *domain.Booking, trip *domain.Trip) error {
	notification := Notification{
		Type:        NotificationBookingConfirmed,
		RecipientID: trip.DriverID,
		Title:       "New Booking",
		Message:     fmt.Sprintf("%d seat(s) booked on your trip %s -> %s", booking.SeatsBooked, trip.FromLocation, trip.ToLocation),
		Data: map[string]interface{}{
			"booking_id":      booking.ID,
			"trip_id":         trip.ID,
			"seats_booked":    booking.SeatsBooked,
			"available_seats": trip.AvailableSeats,
		},
		CreatedAt: time.Now(),
	}
	return s.send(ctx, notification)
}

// NotifyBookingCancelled notifies the trip's driver that a passenger
// cancelled a booking and seats were restored.
func (s *NotificationService) NotifyBookingCancelled(ctx context.Context, booking *domain.Booking, trip *domain.Trip) error {
	notification := Notification{
		Type:        NotificationBookingCancelled,
		RecipientID: trip.DriverID,
		Title:       "Booking Cancelled",
		Message:     fmt.Sprintf("A passenger cancelled %d seat(s) on your trip %s -> %s", booking.SeatsBooked, trip.FromLocation, trip.ToLocation),
		Data: map[string]interface{}{
			"booking_id":      booking.ID,
			"trip_id":         trip.ID,
			"available_seats": trip.AvailableSeats,
		},
		CreatedAt: time.Now(),
	}
	return s.send(ctx, notification)
}

// NotifyTripCancelled notifies every passenger whose booking was
// cascade-cancelled when the driver cancelled the trip.
func (s *NotificationService) NotifyTripCancelled(ctx context.Context, trip *domain.Trip, bookings []*domain.Booking) error {
	for _, booking := range bookings {
		notification := Notification{
			Type:        NotificationTripCancelled,
			RecipientID: booking.PassengerID,
			Title:       "Trip Cancelled",
			Message:     fmt.Sprintf("The driver cancelled the trip %s -> %s; your booking was cancelled", trip.FromLocation, trip.ToLocation),
			Data: map[string]interface{}{
				"trip_id":    trip.ID,
				"booking_id": booking.ID,
			},
			CreatedAt: time.Now(),
		}
		if err := s.send(ctx, notification); err != nil {
			return err
		}
	}
	return nil
}

// NotifyDriverReviewed notifies a driver of the admin review outcome.
func (s *NotificationService) NotifyDriverReviewed(ctx context.Context, driver *domain.User) error {
	message := "Your driver account was approved. You can now publish trips."
	if driver.Status != domain.UserStatusActive {
		message = "Your driver account was not approved."
	}

	notification := Notification{
		Type:        NotificationDriverReviewed,
		RecipientID: driver.ID,
		Title:       "Driver Review",
		Message:     message,
		Data: map[string]interface{}{
			"status": string(driver.Status),
		},
		CreatedAt: time.Now(),
	}
	return s.send(ctx, notification)
}

// NotifyCarReviewed notifies a driver of a car's review outcome.
func (s *NotificationService) NotifyCarReviewed(ctx context.Context, car *domain.Car) error {
	message := fmt.Sprintf("Your car %s was approved for trips.", car.LicensePlate)
	if car.VerificationStatus != domain.CarStatusApproved {
		message = fmt.Sprintf("Your car %s was not approved.", car.LicensePlate)
	}

	notification := Notification{
		Type:        NotificationCarReviewed,
		RecipientID: car.DriverID,
		Title:       "Car Review",
		Message:     message,
		Data: map[string]interface{}{
			"car_id": car.ID,
			"status": string(car.VerificationStatus),
		},
		CreatedAt: time.Now(),
	}
	return s.send(ctx, notification)
}

// send delivers a notification (mock implementation).
func (s *NotificationService) send(ctx context.Context, notification Notification) error {
	// A real implementation would store the notification and fan out
	// to push/SMS/email channels.
	log.Printf("[NOTIFICATION] Type=%s, Recipient=%s, Title=%s, Message=%s",
		notification.Type, notification.RecipientID, notification.Title, notification.Message)

	return nil
}

package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"autoport/internal/domain"
	"autoport/internal/middleware"
	"autoport/internal/repository"
	"autoport/internal/service"
)

// BookingHandler handles HTTP requests for bookings.
type BookingHandler struct {
	ledger      *service.SeatLedger
	bookingRepo repository.BookingRepository
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(ledger *service.SeatLedger, bookingRepo repository.BookingRepository) *BookingHandler {
	return &BookingHandler{
		ledger:      ledger,
		bookingRepo: bookingRepo,
	}
}

// CreateBookingRequest is the HTTP request body for booking seats.
type CreateBookingRequest struct {
	TripID string `json:"trip_id"`
	Seats  int    `json:"seats"`
}

// BookingResponse is the HTTP representation of a booking.
type BookingResponse struct {
	ID          string  `json:"id"`
	TripID      string  `json:"trip_id"`
	PassengerID string  `json:"passenger_id"`
	SeatsBooked int     `json:"seats_booked"`
	TotalPrice  float64 `json:"total_price"`
	Status      string  `json:"status"`
	BookedAt    string  `json:"booked_at"`
}

// Create handles POST /v1/bookings
func (h *BookingHandler) Create(c *gin.Context) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	result, err := h.ledger.Reserve(c.Request.Context(), service.ReserveRequest{
		TripID:      req.TripID,
		PassengerID: middleware.UserID(c),
		Seats:       req.Seats,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, gin.H{
		"booking": newBookingResponse(result.Booking),
		"trip":    newTripResponse(result.Trip),
	})
}

// List handles GET /v1/bookings
func (h *BookingHandler) List(c *gin.Context) {
	offset, limit := paginationParams(c)

	bookings, err := h.bookingRepo.GetByPassengerID(c.Request.Context(), middleware.UserID(c), offset, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]BookingResponse, 0, len(bookings))
	for _, booking := range bookings {
		out = append(out, newBookingResponse(booking))
	}

	respondJSON(c, http.StatusOK, out)
}

// Get handles GET /v1/bookings/:id
func (h *BookingHandler) Get(c *gin.Context) {
	booking, err := h.bookingRepo.GetByIDAndPassenger(c.Request.Context(), c.Param("id"), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, newBookingResponse(booking))
}

// Cancel handles POST /v1/bookings/:id/cancel
func (h *BookingHandler) Cancel(c *gin.Context) {
	result, err := h.ledger.Release(c.Request.Context(), service.ReleaseRequest{
		BookingID:   c.Param("id"),
		PassengerID: middleware.UserID(c),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, gin.H{
		"booking": newBookingResponse(result.Booking),
		"trip":    newTripResponse(result.Trip),
	})
}

func newBookingResponse(booking *domain.Booking) BookingResponse {
	return BookingResponse{
		ID:          booking.ID,
		TripID:      booking.TripID,
		PassengerID: booking.PassengerID,
		SeatsBooked: booking.SeatsBooked,
		TotalPrice:  booking.TotalPrice,
		Status:      string(booking.Status),
		BookedAt:    booking.BookedAt.Format(time.RFC3339),
	}
}

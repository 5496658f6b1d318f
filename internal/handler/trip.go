package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"autoport/internal/domain"
	"autoport/internal/middleware"
	"autoport/internal/repository"
	"autoport/internal/service"
)

// TripHandler handles HTTP requests for trips.
type TripHandler struct {
	tripService *service.TripService
}

// NewTripHandler creates a new TripHandler.
func NewTripHandler(tripService *service.TripService) *TripHandler {
	return &TripHandler{tripService: tripService}
}

// PublishTripRequest is the HTTP request body for publishing a trip.
type PublishTripRequest struct {
	CarID            string  `json:"car_id"`
	FromLocation     string  `json:"from_location"`
	ToLocation       string  `json:"to_location"`
	DepartureTime    string  `json:"departure_time"`
	EstimatedArrival string  `json:"estimated_arrival,omitempty"`
	PricePerSeat     float64 `json:"price_per_seat"`
	TotalSeats       int     `json:"total_seats"`
	AdditionalInfo   string  `json:"additional_info,omitempty"`
}

// UpdateTripRequest is the HTTP request body for editing a trip.
// Absent fields are left unchanged.
type UpdateTripRequest struct {
	CarID            *string  `json:"car_id"`
	FromLocation     *string  `json:"from_location"`
	ToLocation       *string  `json:"to_location"`
	DepartureTime    *string  `json:"departure_time"`
	EstimatedArrival *string  `json:"estimated_arrival"`
	PricePerSeat     *float64 `json:"price_per_seat"`
	TotalSeats       *int     `json:"total_seats"`
	AdditionalInfo   *string  `json:"additional_info"`
}

// TripResponse is the HTTP representation of a trip.
type TripResponse struct {
	ID                string  `json:"id"`
	DriverID          string  `json:"driver_id"`
	CarID             string  `json:"car_id"`
	FromLocation      string  `json:"from_location"`
	ToLocation        string  `json:"to_location"`
	DepartureTime     string  `json:"departure_time"`
	EstimatedArrival  string  `json:"estimated_arrival,omitempty"`
	PricePerSeat      float64 `json:"price_per_seat"`
	TotalSeatsOffered int     `json:"total_seats_offered"`
	AvailableSeats    int     `json:"available_seats"`
	Status            string  `json:"status"`
	AdditionalInfo    string  `json:"additional_info,omitempty"`
	CreatedAt         string  `json:"created_at"`
}

// Publish handles POST /v1/trips
func (h *TripHandler) Publish(c *gin.Context) {
	var req PublishTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	departure, err := time.Parse(time.RFC3339, req.DepartureTime)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid departure_time"})
		return
	}

	var arrival time.Time
	if req.EstimatedArrival != "" {
		arrival, err = time.Parse(time.RFC3339, req.EstimatedArrival)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid estimated_arrival"})
			return
		}
	}

	trip, err := h.tripService.Publish(c.Request.Context(), service.PublishTripRequest{
		DriverID:         middleware.UserID(c),
		CarID:            req.CarID,
		FromLocation:     req.FromLocation,
		ToLocation:       req.ToLocation,
		DepartureTime:    departure,
		EstimatedArrival: arrival,
		PricePerSeat:     req.PricePerSeat,
		TotalSeats:       req.TotalSeats,
		AdditionalInfo:   req.AdditionalInfo,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, newTripResponse(trip))
}

// Search handles GET /v1/trips
func (h *TripHandler) Search(c *gin.Context) {
	filter := repository.TripSearch{
		FromLocation: c.Query("from"),
		ToLocation:   c.Query("to"),
	}

	if date := c.Query("date"); date != "" {
		parsed, err := time.Parse("2006-01-02", date)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid date"})
			return
		}
		filter.DepartureDate = parsed
	}

	if seats := c.Query("seats"); seats != "" {
		parsed, err := strconv.Atoi(seats)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid seats"})
			return
		}
		filter.SeatsNeeded = parsed
	}

	filter.Offset, filter.Limit = paginationParams(c)

	trips, err := h.tripService.Search(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, newTripListResponse(trips))
}

// Get handles GET /v1/trips/:id
func (h *TripHandler) Get(c *gin.Context) {
	trip, err := h.tripService.GetTrip(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, newTripResponse(trip))
}

// Mine handles GET /v1/trips/mine
func (h *TripHandler) Mine(c *gin.Context) {
	offset, limit := paginationParams(c)

	trips, err := h.tripService.ListByDriver(c.Request.Context(), middleware.UserID(c), offset, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, newTripListResponse(trips))
}

// Update handles PATCH /v1/trips/:id
func (h *TripHandler) Update(c *gin.Context) {
	var req UpdateTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	update := service.UpdateTripRequest{
		TripID:         c.Param("id"),
		DriverID:       middleware.UserID(c),
		CarID:          req.CarID,
		FromLocation:   req.FromLocation,
		ToLocation:     req.ToLocation,
		PricePerSeat:   req.PricePerSeat,
		TotalSeats:     req.TotalSeats,
		AdditionalInfo: req.AdditionalInfo,
	}

	if req.DepartureTime != nil {
		parsed, err := time.Parse(time.RFC3339, *req.DepartureTime)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid departure_time"})
			return
		}
		update.DepartureTime = &parsed
	}

	if req.EstimatedArrival != nil {
		parsed, err := time.Parse(time.RFC3339, *req.EstimatedArrival)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid estimated_arrival"})
			return
		}
		update.EstimatedArrival = &parsed
	}

	trip, err := h.tripService.Update(c.Request.Context(), update)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, newTripResponse(trip))
}

// Cancel handles POST /v1/trips/:id/cancel
func (h *TripHandler) Cancel(c *gin.Context) {
	result, err := h.tripService.Cancel(c.Request.Context(), c.Param("id"), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, gin.H{
		"trip":               newTripResponse(result.Trip),
		"cancelled_bookings": len(result.CancelledBookings),
	})
}

func newTripResponse(trip *domain.Trip) TripResponse {
	resp := TripResponse{
		ID:                trip.ID,
		DriverID:          trip.DriverID,
		CarID:             trip.CarID,
		FromLocation:      trip.FromLocation,
		ToLocation:        trip.ToLocation,
		DepartureTime:     trip.DepartureTime.Format(time.RFC3339),
		PricePerSeat:      trip.PricePerSeat,
		TotalSeatsOffered: trip.TotalSeatsOffered,
		AvailableSeats:    trip.AvailableSeats,
		Status:            string(trip.Status),
		AdditionalInfo:    trip.AdditionalInfo,
		CreatedAt:         trip.CreatedAt.Format(time.RFC3339),
	}
	if !trip.EstimatedArrival.IsZero() {
		resp.EstimatedArrival = trip.EstimatedArrival.Format(time.RFC3339)
	}
	return resp
}

func newTripListResponse(trips []*domain.Trip) []TripResponse {
	out := make([]TripResponse, 0, len(trips))
	for _, trip := range trips {
		out = append(out, newTripResponse(trip))
	}
	return out
}

// paginationParams parses the offset/limit query parameters, clamping
// the limit to a sane range.
func paginationParams(c *gin.Context) (offset, limit int) {
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	if offset < 0 {
		offset = 0
	}

	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return offset, limit
}

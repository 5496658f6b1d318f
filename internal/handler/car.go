package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"autoport/internal/domain"
	"autoport/internal/middleware"
	"autoport/internal/service"
)

// CarHandler handles HTTP requests for a driver's cars.
type CarHandler struct {
	carService *service.CarService
}

// NewCarHandler creates a new CarHandler.
func NewCarHandler(carService *service.CarService) *CarHandler {
	return &CarHandler{carService: carService}
}

// AddCarRequest is the HTTP request body for registering a car.
type AddCarRequest struct {
	Make         string `json:"make"`
	Model        string `json:"model"`
	LicensePlate string `json:"license_plate"`
	Color        string `json:"color,omitempty"`
	SeatsCount   int    `json:"seats_count"`
}

// UpdateCarRequest is the HTTP request body for editing a car.
// Absent fields are left unchanged.
type UpdateCarRequest struct {
	Make         *string `json:"make"`
	Model        *string `json:"model"`
	LicensePlate *string `json:"license_plate"`
	Color        *string `json:"color"`
	SeatsCount   *int    `json:"seats_count"`
}

// CarResponse is the HTTP representation of a car.
type CarResponse struct {
	ID                 string `json:"id"`
	DriverID           string `json:"driver_id"`
	Make               string `json:"make"`
	Model              string `json:"model"`
	LicensePlate       string `json:"license_plate"`
	Color              string `json:"color,omitempty"`
	SeatsCount         int    `json:"seats_count"`
	VerificationStatus string `json:"verification_status"`
	ReviewNotes        string `json:"review_notes,omitempty"`
	IsDefault          bool   `json:"is_default"`
}

// Create handles POST /v1/cars
func (h *CarHandler) Create(c *gin.Context) {
	var req AddCarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	car, err := h.carService.Add(c.Request.Context(), service.AddCarRequest{
		DriverID:     middleware.UserID(c),
		Make:         req.Make,
		Model:        req.Model,
		LicensePlate: req.LicensePlate,
		Color:        req.Color,
		SeatsCount:   req.SeatsCount,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, newCarResponse(car))
}

// List handles GET /v1/cars
func (h *CarHandler) List(c *gin.Context) {
	cars, err := h.carService.List(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]CarResponse, 0, len(cars))
	for _, car := range cars {
		out = append(out, newCarResponse(car))
	}

	respondJSON(c, http.StatusOK, out)
}

// Get handles GET /v1/cars/:id
func (h *CarHandler) Get(c *gin.Context) {
	car, err := h.carService.Get(c.Request.Context(), c.Param("id"), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, newCarResponse(car))
}

// Update handles PATCH /v1/cars/:id
func (h *CarHandler) Update(c *gin.Context) {
	var req UpdateCarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	car, err := h.carService.Update(c.Request.Context(), service.UpdateCarRequest{
		CarID:        c.Param("id"),
		DriverID:     middleware.UserID(c),
		Make:         req.Make,
		Model:        req.Model,
		LicensePlate: req.LicensePlate,
		Color:        req.Color,
		SeatsCount:   req.SeatsCount,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, newCarResponse(car))
}

// Delete handles DELETE /v1/cars/:id
func (h *CarHandler) Delete(c *gin.Context) {
	if err := h.carService.Delete(c.Request.Context(), c.Param("id"), middleware.UserID(c)); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// SetDefault handles POST /v1/cars/:id/default
func (h *CarHandler) SetDefault(c *gin.Context) {
	car, err := h.carService.SetDefault(c.Request.Context(), c.Param("id"), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, newCarResponse(car))
}

func newCarResponse(car *domain.Car) CarResponse {
	return CarResponse{
		ID:                 car.ID,
		DriverID:           car.DriverID,
		Make:               car.Make,
		Model:              car.Model,
		LicensePlate:       car.LicensePlate,
		Color:              car.Color,
		SeatsCount:         car.SeatsCount,
		VerificationStatus: string(car.VerificationStatus),
		ReviewNotes:        car.ReviewNotes,
		IsDefault:          car.IsDefault,
	}
}

package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"autoport/internal/service"
)

// AdminHandler handles HTTP requests for the admin review queues.
type AdminHandler struct {
	adminService *service.AdminService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(adminService *service.AdminService) *AdminHandler {
	return &AdminHandler{adminService: adminService}
}

// ReviewRequest is the HTTP request body for an approval decision.
type ReviewRequest struct {
	Approve bool   `json:"approve"`
	Notes   string `json:"notes,omitempty"`
}

// PendingDrivers handles GET /v1/admin/drivers/pending
func (h *AdminHandler) PendingDrivers(c *gin.Context) {
	offset, limit := paginationParams(c)

	drivers, err := h.adminService.ListPendingDrivers(c.Request.Context(), offset, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]UserResponse, 0, len(drivers))
	for _, driver := range drivers {
		out = append(out, newUserResponse(driver))
	}

	respondJSON(c, http.StatusOK, out)
}

// ReviewDriver handles POST /v1/admin/drivers/:id/review
func (h *AdminHandler) ReviewDriver(c *gin.Context) {
	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	driver, err := h.adminService.ReviewDriver(c.Request.Context(), c.Param("id"), req.Approve, req.Notes)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, newUserResponse(driver))
}

// PendingCars handles GET /v1/admin/cars/pending
func (h *AdminHandler) PendingCars(c *gin.Context) {
	offset, limit := paginationParams(c)

	cars, err := h.adminService.ListPendingCars(c.Request.Context(), offset, limit)
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

// ReviewCar handles POST /v1/admin/cars/:id/review
func (h *AdminHandler) ReviewCar(c *gin.Context) {
	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	car, err := h.adminService.ReviewCar(c.Request.Context(), c.Param("id"), req.Approve, req.Notes)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, newCarResponse(car))
}

// Trips handles GET /v1/admin/trips
func (h *AdminHandler) Trips(c *gin.Context) {
	offset, limit := paginationParams(c)

	trips, err := h.adminService.ListAllTrips(c.Request.Context(), offset, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, newTripListResponse(trips))
}

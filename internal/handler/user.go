package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"autoport/internal/domain"
	"autoport/internal/middleware"
	"autoport/internal/repository"
)

// UserHandler handles HTTP requests for the authenticated user's profile.
type UserHandler struct {
	userRepo repository.UserRepository
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userRepo repository.UserRepository) *UserHandler {
	return &UserHandler{userRepo: userRepo}
}

// UserResponse is the HTTP representation of a user.
type UserResponse struct {
	ID          string `json:"id"`
	PhoneNumber string `json:"phone_number"`
	FullName    string `json:"full_name"`
	Role        string `json:"role"`
	Status      string `json:"status"`
	ReviewNotes string `json:"review_notes,omitempty"`
	CreatedAt   string `json:"created_at"`
}

// UpdateProfileRequest is the HTTP request body for editing the profile.
type UpdateProfileRequest struct {
	FullName *string `json:"full_name"`
}

// Me handles GET /v1/users/me
func (h *UserHandler) Me(c *gin.Context) {
	user, err := h.userRepo.GetByID(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, newUserResponse(user))
}

// UpdateMe handles PATCH /v1/users/me
func (h *UserHandler) UpdateMe(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	user, err := h.userRepo.GetByID(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	if req.FullName != nil {
		user.FullName = *req.FullName
	}

	if err := h.userRepo.Update(c.Request.Context(), user); err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, newUserResponse(user))
}

func newUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:          user.ID,
		PhoneNumber: user.PhoneNumber,
		FullName:    user.FullName,
		Role:        string(user.Role),
		Status:      string(user.Status),
		ReviewNotes: user.ReviewNotes,
		CreatedAt:   user.CreatedAt.Format(time.RFC3339),
	}
}

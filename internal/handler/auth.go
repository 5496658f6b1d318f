package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"autoport/internal/service"
)

// AuthHandler handles phone-number registration and login.
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// RequestOTPRequest is the HTTP request body for requesting a code.
type RequestOTPRequest struct {
	PhoneNumber string `json:"phone_number"`
}

// VerifyOTPRequest is the HTTP request body for verifying a code.
type VerifyOTPRequest struct {
	PhoneNumber string `json:"phone_number"`
	Code        string `json:"code"`
	FullName    string `json:"full_name,omitempty"`
}

// TokenResponse is the HTTP response for a successful verification.
type TokenResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	User        UserResponse `json:"user"`
}

// RequestRegistrationOTP handles POST /v1/auth/register/request-otp
func (h *AuthHandler) RequestRegistrationOTP(c *gin.Context) {
	var req RequestOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if err := h.authService.RequestRegistrationOTP(c.Request.Context(), req.PhoneNumber); err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, MessageResponse{Message: "verification code sent"})
}

// VerifyRegistration handles POST /v1/auth/register/verify
func (h *AuthHandler) VerifyRegistration(c *gin.Context) {
	var req VerifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	result, err := h.authService.VerifyRegistrationOTP(c.Request.Context(), req.PhoneNumber, req.Code, req.FullName)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, newTokenResponse(result))
}

// RequestLoginOTP handles POST /v1/auth/login/request-otp
func (h *AuthHandler) RequestLoginOTP(c *gin.Context) {
	var req RequestOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if err := h.authService.RequestLoginOTP(c.Request.Context(), req.PhoneNumber); err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, MessageResponse{Message: "verification code sent"})
}

// VerifyLogin handles POST /v1/auth/login/verify
func (h *AuthHandler) VerifyLogin(c *gin.Context) {
	var req VerifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	result, err := h.authService.VerifyLoginOTP(c.Request.Context(), req.PhoneNumber, req.Code)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, newTokenResponse(result))
}

// RegisterDriver handles POST /v1/auth/register-driver
func (h *AuthHandler) RegisterDriver(c *gin.Context) {
	var req VerifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	result, err := h.authService.RegisterDriver(c.Request.Context(), req.PhoneNumber, req.Code, req.FullName)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, newTokenResponse(result))
}

func newTokenResponse(result *service.TokenResult) TokenResponse {
	return TokenResponse{
		AccessToken: result.AccessToken,
		TokenType:   "bearer",
		User:        newUserResponse(result.User),
	}
}

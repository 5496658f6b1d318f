package repository

import (
	"context"

	"autoport/internal/domain"
)

// OTPRepository defines the persistence operations for one-time codes.
type OTPRepository interface {
	// Create persists a new one-time code.
	Create(ctx context.Context, otp *domain.OTP) error

	// GetValid retrieves the most recent unused, unexpired code for a
	// phone number matching the given code value.
	GetValid(ctx context.Context, phone, code string) (*domain.OTP, error)

	// MarkUsed marks a code as consumed.
	MarkUsed(ctx context.Context, id int64) error

	// InvalidateActive marks all unused codes for a phone number as used.
	InvalidateActive(ctx context.Context, phone string) error
}

package domain

import "time"

// OTP is a one-time code sent by SMS during registration and login.
// A code is valid until it expires or is marked used; requesting a new
// code invalidates all earlier active codes for the same phone number.
type OTP struct {
	ID          int64
	PhoneNumber string
	Code        string
	ExpiresAt   time.Time
	Used        bool
	CreatedAt   time.Time
}

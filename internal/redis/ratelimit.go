package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// OTPThrottle rate-limits OTP requests per phone number. One code per
// window: the first request within a window sets a marker key with
// SetNX, later requests see the marker and are refused until it expires.
type OTPThrottle struct {
	client *redis.Client
	window time.Duration
}

// NewOTPThrottle creates a new OTPThrottle.
func NewOTPThrottle(client *redis.Client, window time.Duration) *OTPThrottle {
	if window <= 0 {
		window = time.Minute
	}
	return &OTPThrottle{client: client, window: window}
}

// Allow reports whether a new code may be sent to the phone number.
func (s *OTPThrottle) Allow(ctx context.Context, phoneNumber string) (bool, error) {
	key := fmt.Sprintf("otp:throttle:%s", phoneNumber)

	ok, err := s.client.SetNX(ctx, key, "1", s.window).Result()
	if err != nil {
		return false, err
	}

	return ok, nil
}

package redis

import (
	"autoport/internal/service"
)

// Ensure concrete types satisfy the service-side interfaces.
var (
	_ service.TripReader      = (*TripCache)(nil)
	_ service.TripInvalidator = (*TripCache)(nil)
	_ service.OTPThrottle     = (*OTPThrottle)(nil)
)

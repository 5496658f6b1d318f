package domain

import "time"

// UserRole represents the role of a user.
type UserRole string

const (
	RolePassenger UserRole = "PASSENGER"
	RoleDriver    UserRole = "DRIVER"
	RoleAdmin     UserRole = "ADMIN"
)

// UserStatus represents the account status of a user.
type UserStatus string

const (
	UserStatusPendingVerification  UserStatus = "PENDING_SMS_VERIFICATION"
	UserStatusPendingProfileReview UserStatus = "PENDING_PROFILE_REVIEW"
	UserStatusActive               UserStatus = "ACTIVE"
	UserStatusBlocked              UserStatus = "BLOCKED"
)

// User represents a registered account: passenger, driver or admin.
// Drivers stay in PENDING_PROFILE_REVIEW until an admin approves them.
type User struct {
	ID          string
	PhoneNumber string
	FullName    string
	Role        UserRole
	Status      UserStatus
	ReviewNotes string // notes left by the reviewing admin
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"

	"autoport/internal/domain"
	"autoport/internal/repository"
	"autoport/internal/repository/postgres"
)

// OTPThrottle limits how often codes can be requested per phone number.
type OTPThrottle interface {
	// Allow reports whether a new code may be sent to the phone number.
	Allow(ctx context.Context, phoneNumber string) (bool, error)
}

// AuthService handles phone-based OTP registration and login.
//
// Requesting a code creates the user record if needed, invalidates any
// earlier active codes and sends a fresh one. Verifying a code inside a
// single transaction consumes it and applies the account transition, so
// a code can never activate two sessions.
type AuthService struct {
	db        *sql.DB
	userRepo  repository.UserRepository
	otpRepo   repository.OTPRepository
	smsSender SMSSender
	tokens    *TokenManager
	throttle  OTPThrottle
	otpLength int
	otpTTL    time.Duration
}

// NewAuthService creates a new AuthService.
func NewAuthService(
	db *sql.DB,
	userRepo repository.UserRepository,
	otpRepo repository.OTPRepository,
	smsSender SMSSender,
	tokens *TokenManager,
	throttle OTPThrottle,
	otpLength int,
	otpTTL time.Duration,
) *AuthService {
	if otpLength <= 0 {
		otpLength = 6
	}
	if otpTTL <= 0 {
		otpTTL = 5 * time.Minute
	}
	return &AuthService{
		db:        db,
		userRepo:  userRepo,
		otpRepo:   otpRepo,
		smsSender: smsSender,
		tokens:    tokens,
		throttle:  throttle,
		otpLength: otpLength,
		otpTTL:    otpTTL,
	}
}

// TokenResult is returned by every verification operation.
type TokenResult struct {
	AccessToken string
	User        *domain.User
}

// RequestRegistrationOTP starts registration for a phone number. For an
// unknown number a pending user record is created; an already active
// account is rejected.
func (s *AuthService) RequestRegistrationOTP(ctx context.Context, phoneNumber string) error {
	if phoneNumber == "" {
		return ErrInvalidPhoneNumber
	}

	user, err := s.userRepo.GetByPhone(ctx, phoneNumber)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return err
	}

	if user != nil && user.Status == domain.UserStatusActive {
		return ErrUserAlreadyActive
	}

	if user == nil {
		user = &domain.User{
			ID:          uuid.New().String(),
			PhoneNumber: phoneNumber,
			Role:        domain.RolePassenger,
			Status:      domain.UserStatusPendingVerification,
			CreatedAt:   time.Now(),
		}
		if err := s.userRepo.Create(ctx, user); err != nil {
			return err
		}
	}

	return s.issueOTP(ctx, phoneNumber)
}

// VerifyRegistrationOTP consumes a registration code, activates the
// account with the given full name and returns an access token.
func (s *AuthService) VerifyRegistrationOTP(ctx context.Context, phoneNumber, code, fullName string) (*TokenResult, error) {
	if phoneNumber == "" {
		return nil, ErrInvalidPhoneNumber
	}

	user, err := s.consumeOTP(ctx, phoneNumber, code, func(user *domain.User) error {
		if user.Status == domain.UserStatusActive {
			return ErrUserAlreadyActive
		}
		user.FullName = fullName
		user.Status = domain.UserStatusActive
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.tokenResult(user)
}

// RequestLoginOTP sends a login code to an existing active account.
func (s *AuthService) RequestLoginOTP(ctx context.Context, phoneNumber string) error {
	if phoneNumber == "" {
		return ErrInvalidPhoneNumber
	}

	user, err := s.userRepo.GetByPhone(ctx, phoneNumber)
	if err != nil {
		return err
	}

	if user.Status != domain.UserStatusActive {
		return ErrUserNotActive
	}

	return s.issueOTP(ctx, phoneNumber)
}

// VerifyLoginOTP consumes a login code and returns an access token.
func (s *AuthService) VerifyLoginOTP(ctx context.Context, phoneNumber, code string) (*TokenResult, error) {
	if phoneNumber == "" {
		return nil, ErrInvalidPhoneNumber
	}

	user, err := s.consumeOTP(ctx, phoneNumber, code, func(user *domain.User) error {
		if user.Status != domain.UserStatusActive {
			return ErrUserNotActive
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.tokenResult(user)
}

// RegisterDriver upgrades an OTP-verified account to the driver role.
// The account stays in PENDING_PROFILE_REVIEW until an admin approves it.
func (s *AuthService) RegisterDriver(ctx context.Context, phoneNumber, code, fullName string) (*TokenResult, error) {
	if phoneNumber == "" {
		return nil, ErrInvalidPhoneNumber
	}

	user, err := s.consumeOTP(ctx, phoneNumber, code, func(user *domain.User) error {
		if user.Role == domain.RoleDriver {
			if user.Status == domain.UserStatusActive {
				return ErrUserAlreadyActive
			}
			if user.Status == domain.UserStatusPendingProfileReview {
				return fmt.Errorf("%w: driver registration already pending review", ErrInvalidState)
			}
		}
		user.Role = domain.RoleDriver
		user.FullName = fullName
		user.Status = domain.UserStatusPendingProfileReview
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.tokenResult(user)
}

// issueOTP invalidates earlier active codes, stores a new one and sends it.
func (s *AuthService) issueOTP(ctx context.Context, phoneNumber string) error {
	if s.throttle != nil {
		allowed, err := s.throttle.Allow(ctx, phoneNumber)
		if err != nil {
			return err
		}
		if !allowed {
			return ErrOTPThrottled
		}
	}

	if err := s.otpRepo.InvalidateActive(ctx, phoneNumber); err != nil {
		return err
	}

	code, err := s.generateCode()
	if err != nil {
		return err
	}

	otp := &domain.OTP{
		PhoneNumber: phoneNumber,
		Code:        code,
		ExpiresAt:   time.Now().Add(s.otpTTL),
		CreatedAt:   time.Now(),
	}

	if err := s.otpRepo.Create(ctx, otp); err != nil {
		return err
	}

	return s.smsSender.Send(ctx, phoneNumber, "Your AutoPort verification code is "+code)
}

// consumeOTP validates the code and applies the account transition in
// one transaction: mark the code used, mutate the user, commit.
func (s *AuthService) consumeOTP(ctx context.Context, phoneNumber, code string, transition func(*domain.User) error) (*domain.User, error) {
	if code == "" {
		return nil, ErrInvalidOTP
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	txUserRepo := postgres.NewUserRepositoryWithTx(tx)
	txOTPRepo := postgres.NewOTPRepositoryWithTx(tx)

	var otp *domain.OTP
	otp, err = txOTPRepo.GetValid(ctx, phoneNumber, code)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			err = ErrInvalidOTP
		}
		return nil, err
	}

	var user *domain.User
	user, err = txUserRepo.GetByPhone(ctx, phoneNumber)
	if err != nil {
		return nil, err
	}

	if err = transition(user); err != nil {
		return nil, err
	}

	if err = txOTPRepo.MarkUsed(ctx, otp.ID); err != nil {
		return nil, err
	}

	if err = txUserRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}

	return user, nil
}

func (s *AuthService) tokenResult(user *domain.User) (*TokenResult, error) {
	token, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return nil, err
	}
	return &TokenResult{AccessToken: token, User: user}, nil
}

// generateCode produces a zero-padded numeric code of the configured length.
func (s *AuthService) generateCode() (string, error) {
	max := big.NewInt(1)
	for i := 0; i < s.otpLength; i++ {
		max.Mul(max, big.NewInt(10))
	}

	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%0*d", s.otpLength, n), nil
}

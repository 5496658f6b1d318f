package tests

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"autoport/internal/domain"
	"autoport/internal/service"
)

// ──────────────────────────────────────────────
// OTP REQUEST FLOWS
// ──────────────────────────────────────────────

const (
	otpValidQuery    = `FROM sms_verifications\s+WHERE phone_number = \$1 AND code = \$2`
	markOTPUsedQuery = `UPDATE sms_verifications SET used = TRUE WHERE id = \$1`
	userByPhoneQuery = `FROM users WHERE phone_number = \$1`
	updateUserQuery  = `UPDATE users`
	testPhone        = "+37491000001"
	testOTPTTL       = 5 * time.Minute
)

func newAuthService(userRepo *MockUserRepository, otpRepo *MockOTPRepository, sms *MockSMSSender, throttle *MockOTPThrottle) *service.AuthService {
	tokens := service.NewTokenManager("test-secret", time.Hour)
	return service.NewAuthService(nil, userRepo, otpRepo, sms, tokens, throttle, 6, testOTPTTL)
}

func activeUser() *domain.User {
	now := time.Now()
	return &domain.User{
		ID:          "user-1",
		PhoneNumber: testPhone,
		FullName:    "Ani Petrosyan",
		Role:        domain.RolePassenger,
		Status:      domain.UserStatusActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestRequestRegistrationOTP_NewNumber_CreatesPendingUser(t *testing.T) {
	t.Parallel()

	userRepo := NewMockUserRepository()
	otpRepo := NewMockOTPRepository()
	sms := NewMockSMSSender()

	authService := newAuthService(userRepo, otpRepo, sms, NewMockOTPThrottle())

	if err := authService.RequestRegistrationOTP(context.Background(), testPhone); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	user, err := userRepo.GetByPhone(context.Background(), testPhone)
	if err != nil {
		t.Fatalf("expected pending user record, got: %v", err)
	}

	if user.Status != domain.UserStatusPendingVerification {
		t.Errorf("expected PENDING_SMS_VERIFICATION, got %s", user.Status)
	}

	if otpRepo.CreateCallCount != 1 {
		t.Errorf("expected 1 stored code, got %d", otpRepo.CreateCallCount)
	}

	code := otpRepo.LastCode(testPhone)
	if len(code) != 6 {
		t.Errorf("expected a 6 digit code, got %q", code)
	}

	messages := sms.Messages()
	if len(messages) != 1 || !strings.Contains(messages[0], code) {
		t.Errorf("expected SMS carrying the code, got %v", messages)
	}
}

func TestRequestRegistrationOTP_ActiveAccount_Rejected(t *testing.T) {
	t.Parallel()

	userRepo := NewMockUserRepository()
	userRepo.AddUser(activeUser())
	sms := NewMockSMSSender()

	authService := newAuthService(userRepo, NewMockOTPRepository(), sms, NewMockOTPThrottle())

	err := authService.RequestRegistrationOTP(context.Background(), testPhone)
	if !errors.Is(err, service.ErrUserAlreadyActive) {
		t.Fatalf("expected ErrUserAlreadyActive, got: %v", err)
	}

	if sms.SendCallCount != 0 {
		t.Errorf("expected no SMS, got %d", sms.SendCallCount)
	}
}

func TestRequestRegistrationOTP_Throttled(t *testing.T) {
	t.Parallel()

	throttle := NewMockOTPThrottle()
	throttle.Denied = true
	otpRepo := NewMockOTPRepository()
	sms := NewMockSMSSender()

	authService := newAuthService(NewMockUserRepository(), otpRepo, sms, throttle)

	err := authService.RequestRegistrationOTP(context.Background(), testPhone)
	if !errors.Is(err, service.ErrOTPThrottled) {
		t.Fatalf("expected ErrOTPThrottled, got: %v", err)
	}

	if otpRepo.CreateCallCount != 0 || sms.SendCallCount != 0 {
		t.Error("expected no code stored and no SMS sent while throttled")
	}
}

func TestRequestLoginOTP_InactiveAccount_Rejected(t *testing.T) {
	t.Parallel()

	user := activeUser()
	user.Status = domain.UserStatusPendingVerification
	userRepo := NewMockUserRepository()
	userRepo.AddUser(user)

	authService := newAuthService(userRepo, NewMockOTPRepository(), NewMockSMSSender(), NewMockOTPThrottle())

	err := authService.RequestLoginOTP(context.Background(), testPhone)
	if !errors.Is(err, service.ErrUserNotActive) {
		t.Fatalf("expected ErrUserNotActive, got: %v", err)
	}
}

// ──────────────────────────────────────────────
// OTP VERIFICATION FLOWS
// ──────────────────────────────────────────────
//
// Verification consumes the code and applies the account transition in
// one transaction, so a code can never be redeemed twice.

func userColumns() []string {
	return []string{
		"id", "phone_number", "full_name", "role", "status",
		"review_notes", "created_at", "updated_at",
	}
}

func userRow(user *domain.User) *sqlmock.Rows {
	return sqlmock.NewRows(userColumns()).AddRow(
		user.ID, user.PhoneNumber, user.FullName, string(user.Role),
		string(user.Status), user.ReviewNotes, user.CreatedAt, user.UpdatedAt,
	)
}

func otpRow(id int64, code string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{"id", "phone_number", "code", "expires_at", "used", "created_at"}).
		AddRow(id, testPhone, code, now.Add(testOTPTTL), false, now)
}

func newVerifyService(t *testing.T) (*service.AuthService, sqlmock.Sqlmock, *service.TokenManager) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	tokens := service.NewTokenManager("test-secret", time.Hour)
	authService := service.NewAuthService(db, NewMockUserRepository(), NewMockOTPRepository(),
		NewMockSMSSender(), tokens, nil, 6, testOTPTTL)

	return authService, mock, tokens
}

func TestVerifyRegistrationOTP_ActivatesAccountAndIssuesToken(t *testing.T) {
	t.Parallel()

	authService, mock, tokens := newVerifyService(t)

	pending := activeUser()
	pending.FullName = ""
	pending.Status = domain.UserStatusPendingVerification

	mock.ExpectBegin()
	mock.ExpectQuery(otpValidQuery).WithArgs(testPhone, "123456").WillReturnRows(otpRow(7, "123456"))
	mock.ExpectQuery(userByPhoneQuery).WithArgs(testPhone).WillReturnRows(userRow(pending))
	mock.ExpectExec(markOTPUsedQuery).WithArgs(int64(7)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(updateUserQuery).
		WithArgs("Ani Petrosyan", string(domain.RolePassenger), string(domain.UserStatusActive), "", pending.ID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	result, err := authService.VerifyRegistrationOTP(context.Background(), testPhone, "123456", "Ani Petrosyan")
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if result.User.Status != domain.UserStatusActive {
		t.Errorf("expected ACTIVE, got %s", result.User.Status)
	}

	claims, err := tokens.Verify(result.AccessToken)
	if err != nil {
		t.Fatalf("expected a valid token, got: %v", err)
	}

	if claims.Subject != pending.ID {
		t.Errorf("expected token subject %s, got %s", pending.ID, claims.Subject)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestVerifyLoginOTP_WrongCode_Rejected(t *testing.T) {
	t.Parallel()

	authService, mock, _ := newVerifyService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(otpValidQuery).WithArgs(testPhone, "000000").WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, err := authService.VerifyLoginOTP(context.Background(), testPhone, "000000")
	if !errors.Is(err, service.ErrInvalidOTP) {
		t.Fatalf("expected ErrInvalidOTP, got: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestVerifyLoginOTP_InactiveAccount_Rejected(t *testing.T) {
	t.Parallel()

	authService, mock, _ := newVerifyService(t)

	pending := activeUser()
	pending.Status = domain.UserStatusPendingVerification

	mock.ExpectBegin()
	mock.ExpectQuery(otpValidQuery).WithArgs(testPhone, "123456").WillReturnRows(otpRow(8, "123456"))
	mock.ExpectQuery(userByPhoneQuery).WithArgs(testPhone).WillReturnRows(userRow(pending))
	mock.ExpectRollback()

	_, err := authService.VerifyLoginOTP(context.Background(), testPhone, "123456")
	if !errors.Is(err, service.ErrUserNotActive) {
		t.Fatalf("expected ErrUserNotActive, got: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestRegisterDriver_MovesAccountToPendingReview(t *testing.T) {
	t.Parallel()

	authService, mock, tokens := newVerifyService(t)

	user := activeUser()

	mock.ExpectBegin()
	mock.ExpectQuery(otpValidQuery).WithArgs(testPhone, "123456").WillReturnRows(otpRow(9, "123456"))
	mock.ExpectQuery(userByPhoneQuery).WithArgs(testPhone).WillReturnRows(userRow(user))
	mock.ExpectExec(markOTPUsedQuery).WithArgs(int64(9)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(updateUserQuery).
		WithArgs(user.FullName, string(domain.RoleDriver), string(domain.UserStatusPendingProfileReview), "", user.ID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	result, err := authService.RegisterDriver(context.Background(), testPhone, "123456", user.FullName)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if result.User.Role != domain.RoleDriver {
		t.Errorf("expected DRIVER role, got %s", result.User.Role)
	}

	if result.User.Status != domain.UserStatusPendingProfileReview {
		t.Errorf("expected PENDING_PROFILE_REVIEW, got %s", result.User.Status)
	}

	claims, err := tokens.Verify(result.AccessToken)
	if err != nil {
		t.Fatalf("expected a valid token, got: %v", err)
	}

	if claims.Role != string(domain.RoleDriver) {
		t.Errorf("expected DRIVER role claim, got %s", claims.Role)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

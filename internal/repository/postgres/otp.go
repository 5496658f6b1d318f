package postgres

import (
	"context"
	"database/sql"
	"errors"

	"autoport/internal/domain"
	"autoport/internal/repository"
)

// OTPRepository is a PostgreSQL implementation of repository.OTPRepository.
type OTPRepository struct {
	q Querier
}

// NewOTPRepository creates a new PostgreSQL one-time code repository.
func NewOTPRepository(db *sql.DB) *OTPRepository {
	return &OTPRepository{q: db}
}

// NewOTPRepositoryWithTx creates a one-time code repository using a transaction.
func NewOTPRepositoryWithTx(tx *sql.Tx) *OTPRepository {
	return &OTPRepository{q: tx}
}

// Create persists a new one-time code.
func (r *OTPRepository) Create(ctx context.Context, otp *domain.OTP) error {
	query := `
		INSERT INTO sms_verifications (phone_number, code, expires_at, used, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	return r.q.QueryRowContext(ctx, query,
		otp.PhoneNumber,
		otp.Code,
		otp.ExpiresAt,
		otp.Used,
		otp.CreatedAt,
	).Scan(&otp.ID)
}

// GetValid retrieves the most recent unused, unexpired code for a phone
// number matching the given code value.
func (r *OTPRepository) GetValid(ctx context.Context, phone, code string) (*domain.OTP, error) {
	query := `
		SELECT id, phone_number, code, expires_at, used, created_at
		FROM sms_verifications
		WHERE phone_number = $1 AND code = $2 AND used = FALSE AND expires_at > NOW()
		ORDER BY created_at DESC
		LIMIT 1
	`

	var otp domain.OTP
	err := r.q.QueryRowContext(ctx, query, phone, code).Scan(
		&otp.ID,
		&otp.PhoneNumber,
		&otp.Code,
		&otp.ExpiresAt,
		&otp.Used,
		&otp.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return &otp, nil
}

// MarkUsed marks a code as consumed.
func (r *OTPRepository) MarkUsed(ctx context.Context, id int64) error {
	result, err := r.q.ExecContext(ctx, `UPDATE sms_verifications SET used = TRUE WHERE id = $1`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// InvalidateActive marks all unused codes for a phone number as used.
func (r *OTPRepository) InvalidateActive(ctx context.Context, phone string) error {
	_, err := r.q.ExecContext(ctx, `UPDATE sms_verifications SET used = TRUE WHERE phone_number = $1 AND used = FALSE`, phone)
	return err
}

// Ensure OTPRepository implements repository.OTPRepository.
var _ repository.OTPRepository = (*OTPRepository)(nil)

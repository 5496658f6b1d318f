package postgres

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"autoport/internal/repository"
)

// Querier is an interface satisfied by both *sql.DB and *sql.Tx, so the
// same repository code serves plain calls and transaction-scoped calls.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Ensure interfaces are satisfied.
var (
	_ Querier = (*sql.DB)(nil)
	_ Querier = (*sql.Tx)(nil)
)

// uniqueViolation is the PostgreSQL error code for unique_violation.
const uniqueViolation = "23505"

// mapError translates driver-level errors into repository sentinels.
func mapError(err error) error {
	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == uniqueViolation {
		return repository.ErrDuplicate
	}
	return err
}

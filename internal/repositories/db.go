package repositories

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"

	"github.com/fastapi1403/building-management/internal/utils"
)

// DefaultMaxRetries bounds the optimistic update loop.
const DefaultMaxRetries = 3

// ErrNotFound is returned by every store when a row does not exist.
var ErrNotFound = errors.New("record not found")

// ReasonReferenceChanged is the conflict reason for a write that lost a
// race with a concurrent insert or delete of a referenced row.
const ReasonReferenceChanged = "reference_changed"

// DB is satisfied by *pgxpool.Pool and pgx.Tx.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// ClassifyError maps driver errors onto the store contract: missing rows
// become ErrNotFound, timeouts and retryable server states become
// *utils.TransientError, foreign key violations become a
// *utils.ConflictError, anything else passes through.
func ClassifyError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var transient *utils.TransientError
	if errors.As(err, &transient) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || pgconn.Timeout(err) {
		return &utils.TransientError{Op: op, Err: err}
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == "40001", pgErr.Code == "40P01", pgErr.Code == "55P03", pgErr.Code == "57014":
			return &utils.TransientError{Op: op, Err: err}
		case strings.HasPrefix(pgErr.Code, "08"):
			return &utils.TransientError{Op: op, Err: err}
		case pgErr.Code == "23503":
			return &utils.ConflictError{Reason: ReasonReferenceChanged, Err: err}
		}
		return err
	}
	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) || pgconn.SafeToRetry(err) {
		return &utils.TransientError{Op: op, Err: err}
	}
	return err
}

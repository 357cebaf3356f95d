package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"

	"github.com/fastapi1403/building-management/internal/utils"
)

// EntityWithVersion is what the optimistic update loop needs from a row.
// comparable lets the loop tell a missing row (the zero T) from a real one.
type EntityWithVersion interface {
	comparable
	GetRowVersion() int64
	SetRowVersion(int64)
}

// LoadFunc reads the current row.
type LoadFunc[T EntityWithVersion] func(ctx context.Context, id uuid.UUID) (T, error)

// WriteIfVersionFunc persists e only while the stored row_version still
// equals expected, reporting the outcome through RowsAffected.
type WriteIfVersionFunc[T EntityWithVersion] func(ctx context.Context, e T, expected int64) (pgconn.CommandTag, error)

// WithRetry applies mutate to a fresh copy of the row and writes it back
// guarded by the version it was read at, for up to attempts rounds. A mutate
// error aborts unchanged. Losing every round yields an error wrapping
// utils.ErrRowVersionConflict.
func WithRetry[T EntityWithVersion](
	ctx context.Context,
	attempts int,
	id uuid.UUID,
	load LoadFunc[T],
	write WriteIfVersionFunc[T],
	mutate func(T) error,
) error {
	for round := 1; round <= attempts; round++ {
		if err := ctx.Err(); err != nil {
			return ClassifyError("optimistic update", err)
		}

		current, err := load(ctx, id)
		if err != nil {
			return err
		}
		var zero T
		if current == zero {
			return ErrNotFound
		}

		seen := current.GetRowVersion()
		if err := mutate(current); err != nil {
			return err
		}

		tag, err := write(ctx, current, seen)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 1 {
			current.SetRowVersion(seen + 1)
			return nil
		}
		utils.Logger.Debugf("Row %s moved past version %d; retrying (%d/%d)", id, seen, round, attempts)
	}
	return fmt.Errorf("%w: %d attempts on %s lost to concurrent writers", utils.ErrRowVersionConflict, attempts, id)
}

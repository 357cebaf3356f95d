package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgtype"
	"github.com/jackc/pgx/v4"
)

var baseColumns = []string{
	"id", "is_deleted", "deleted_at", "deleted_by", "deleted_by_cascade",
	"created_at", "created_by", "updated_at", "updated_by", "row_version",
}

// table describes how one entity type maps onto its SQL table. columns,
// dest and values list the entity-specific columns in the same order.
type table[T Record] struct {
	name         string
	parentColumn string
	columns      []string
	newEntity    func() T
	dest         func(T) []any
	values       func(T) []any
}

type pgEntityRepo[T Record] struct {
	db DB
	t  table[T]
}

func newPgEntityRepo[T Record](db DB, t table[T]) *pgEntityRepo[T] {
	return &pgEntityRepo[T]{db: db, t: t}
}

func (r *pgEntityRepo[T]) allColumns() []string {
	cols := make([]string, 0, len(baseColumns)+len(r.t.columns))
	cols = append(cols, baseColumns...)
	return append(cols, r.t.columns...)
}

func (r *pgEntityRepo[T]) selectSQL() string {
	return "SELECT " + strings.Join(r.allColumns(), ", ") + " FROM " + r.t.name
}

func (r *pgEntityRepo[T]) Create(ctx context.Context, e T) error {
	b := e.BaseRef()
	cols := r.allColumns()
	args := []any{
		b.ID, b.IsDeleted, b.DeletedAt, b.DeletedBy, b.DeletedByCascade,
		b.CreatedAt, b.CreatedBy, b.UpdatedAt, b.UpdatedBy, b.RowVersion,
	}
	args = append(args, r.t.values(e)...)

	sql := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", r.t.name, strings.Join(cols, ", "), placeholders(1, len(cols)))
	_, err := r.db.Exec(ctx, sql, args...)
	return ClassifyError("insert "+r.t.name, err)
}

func (r *pgEntityRepo[T]) GetByID(ctx context.Context, id uuid.UUID) (T, error) {
	return r.scan(r.db.QueryRow(ctx, r.selectSQL()+" WHERE id=$1", id))
}

func (r *pgEntityRepo[T]) GetForUpdate(ctx context.Context, id uuid.UUID) (T, error) {
	row := r.db.QueryRow(ctx, r.selectSQL()+" WHERE id=$1 FOR UPDATE", id)
	return r.scan(row)
}

func (r *pgEntityRepo[T]) List(ctx context.Context, f ListFilter) ([]T, error) {
	sql, args, err := r.listSQL(f)
	if err != nil {
		return nil, err
	}
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, ClassifyError("list "+r.t.name, err)
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		e, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, ClassifyError("list "+r.t.name, rows.Err())
}

func (r *pgEntityRepo[T]) listSQL(f ListFilter) (string, []any, error) {
	var (
		where []string
		args  []any
	)
	switch {
	case f.OnlyDeleted:
		where = append(where, "is_deleted=TRUE")
	case !f.IncludeDeleted:
		where = append(where, "is_deleted=FALSE")
	}
	if f.ParentID != nil {
		if r.t.parentColumn == "" {
			return "", nil, fmt.Errorf("%s has no parent column", r.t.name)
		}
		args = append(args, *f.ParentID)
		where = append(where, fmt.Sprintf("%s=$%d", r.t.parentColumn, len(args)))
	}
	if f.DeletedBefore != nil {
		args = append(args, *f.DeletedBefore)
		where = append(where, fmt.Sprintf("deleted_at < $%d", len(args)))
	}

	sql := r.selectSQL()
	if len(where) > 0 {
		sql += " WHERE " + strings.Join(where, " AND ")
	}
	sql += " ORDER BY id"
	if f.Offset > 0 {
		args = append(args, f.Offset)
		sql += fmt.Sprintf(" OFFSET $%d", len(args))
	}
	if f.Limit > 0 {
		args = append(args, f.Limit)
		sql += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	return sql, args, nil
}

func (r *pgEntityRepo[T]) UpdateIfVersion(ctx context.Context, e T, expected int64) (pgconn.CommandTag, error) {
	args := r.t.values(e)
	sets := make([]string, len(r.t.columns))
	for i, c := range r.t.columns {
		sets[i] = fmt.Sprintf("%s=$%d", c, i+1)
	}
	n := len(args)
	b := e.BaseRef()
	sql := fmt.Sprintf(`
		UPDATE %s SET %s, updated_at=$%d, updated_by=$%d, row_version=row_version+1
		WHERE id=$%d AND row_version=$%d AND is_deleted=FALSE`,
		r.t.name, strings.Join(sets, ", "), n+1, n+2, n+3, n+4)
	args = append(args, b.UpdatedAt, b.UpdatedBy, b.ID, expected)

	tag, err := r.db.Exec(ctx, sql, args...)
	return tag, ClassifyError("update "+r.t.name, err)
}

func (r *pgEntityRepo[T]) UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(T) error) error {
	return WithRetry(ctx, DefaultMaxRetries, id, r.GetByID, r.UpdateIfVersion, mutate)
}

func (r *pgEntityRepo[T]) SetDeleted(ctx context.Context, id uuid.UUID, mark SoftDeleteMark) (T, error) {
	var (
		deletedAt *time.Time
		deletedBy *string
	)
	if mark.Deleted {
		at, by := mark.At, mark.Actor
		deletedAt, deletedBy = &at, &by
	}
	row := r.db.QueryRow(ctx, fmt.Sprintf(`
		UPDATE %s SET is_deleted=$2, deleted_at=$3, deleted_by=$4, deleted_by_cascade=$5,
			updated_at=$6, updated_by=$7, row_version=row_version+1
		WHERE id=$1
		RETURNING %s`, r.t.name, strings.Join(r.allColumns(), ", ")),
		id, mark.Deleted, deletedAt, deletedBy, mark.Deleted && mark.Cascade, mark.At, mark.Actor,
	)
	return r.scan(row)
}

func (r *pgEntityRepo[T]) HardDelete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, "DELETE FROM "+r.t.name+" WHERE id=$1", id)
	if err != nil {
		return ClassifyError("delete "+r.t.name, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgEntityRepo[T]) scan(row pgx.Row) (T, error) {
	e := r.t.newEntity()
	b := e.BaseRef()
	var (
		deletedAt pgtype.Timestamptz
		deletedBy pgtype.Text
	)
	dest := []any{
		&b.ID, &b.IsDeleted, &deletedAt, &deletedBy, &b.DeletedByCascade,
		&b.CreatedAt, &b.CreatedBy, &b.UpdatedAt, &b.UpdatedBy, &b.RowVersion,
	}
	dest = append(dest, r.t.dest(e)...)
	if err := row.Scan(dest...); err != nil {
		var zero T
		return zero, ClassifyError("scan "+r.t.name, err)
	}
	if deletedAt.Status == pgtype.Present {
		at := deletedAt.Time
		b.DeletedAt = &at
	}
	if deletedBy.Status == pgtype.Present {
		by := deletedBy.String
		b.DeletedBy = &by
	}
	return e, nil
}

func placeholders(from, n int) string {
	ps := make([]string, n)
	for i := range ps {
		ps[i] = fmt.Sprintf("$%d", from+i)
	}
	return strings.Join(ps, ", ")
}

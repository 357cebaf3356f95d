package memory

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"

	"github.com/fastapi1403/building-management/internal/models"
	"github.com/fastapi1403/building-management/internal/repositories"
)

var (
	tagUpdated    = pgconn.CommandTag("UPDATE 1")
	tagNotUpdated = pgconn.CommandTag("UPDATE 0")
)

type tableRepo[T repositories.Record] struct {
	t    models.EntityType
	sess session
}

func newTableRepo[T repositories.Record](t models.EntityType, sess session) *tableRepo[T] {
	return &tableRepo[T]{t: t, sess: sess}
}

func (r *tableRepo[T]) load(d *dataset, id uuid.UUID) (T, error) {
	e, ok := d.rows[r.t][id]
	if !ok {
		var zero T
		return zero, repositories.ErrNotFound
	}
	return e.Clone().(T), nil
}

func (r *tableRepo[T]) Create(ctx context.Context, e T) error {
	return r.sess.write(ctx, func(d *dataset) error {
		id := e.BaseRef().ID
		if _, exists := d.rows[r.t][id]; exists {
			return fmt.Errorf("%s %s already exists", r.t, id)
		}
		d.rows[r.t][id] = e.Clone()
		return nil
	})
}

func (r *tableRepo[T]) GetByID(ctx context.Context, id uuid.UUID) (T, error) {
	var out T
	err := r.sess.read(ctx, func(d *dataset) error {
		var err error
		out, err = r.load(d, id)
		return err
	})
	return out, err
}

// GetForUpdate needs no row lock: writers are already serialized.
func (r *tableRepo[T]) GetForUpdate(ctx context.Context, id uuid.UUID) (T, error) {
	return r.GetByID(ctx, id)
}

func (r *tableRepo[T]) List(ctx context.Context, f repositories.ListFilter) ([]T, error) {
	if f.ParentID != nil {
		if _, ok := r.t.ParentType(); !ok {
			return nil, fmt.Errorf("%s has no parent column", r.t.Plural())
		}
	}
	var out []T
	err := r.sess.read(ctx, func(d *dataset) error {
		for _, e := range d.rows[r.t] {
			if matches(e, f) {
				out = append(out, e.Clone().(T))
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].BaseRef().ID, out[j].BaseRef().ID
		return bytes.Compare(a[:], b[:]) < 0
	})
	if f.Offset > 0 {
		if f.Offset >= len(out) {
			return nil, nil
		}
		out = out[f.Offset:]
	}
	if f.Limit > 0 && f.Limit < len(out) {
		out = out[:f.Limit]
	}
	return out, nil
}

func matches(e models.Entity, f repositories.ListFilter) bool {
	b := e.BaseRef()
	switch {
	case f.OnlyDeleted && !b.IsDeleted:
		return false
	case !f.OnlyDeleted && !f.IncludeDeleted && b.IsDeleted:
		return false
	}
	if f.ParentID != nil {
		parent, ok := e.StructuralParent()
		if !ok || parent.ID != *f.ParentID {
			return false
		}
	}
	if f.DeletedBefore != nil && (b.DeletedAt == nil || !b.DeletedAt.Before(*f.DeletedBefore)) {
		return false
	}
	return true
}

// UpdateIfVersion writes the entity columns plus updated_at/updated_by of e.
// Identity, creation and deletion fields keep their stored values.
func (r *tableRepo[T]) UpdateIfVersion(ctx context.Context, e T, expected int64) (pgconn.CommandTag, error) {
	tag := tagNotUpdated
	err := r.sess.write(ctx, func(d *dataset) error {
		cur, ok := d.rows[r.t][e.BaseRef().ID]
		if !ok || cur.GetRowVersion() != expected || cur.BaseRef().IsDeleted {
			return nil
		}
		next := e.Clone()
		nb := next.BaseRef()
		kept := *cur.BaseRef()
		kept.UpdatedAt = nb.UpdatedAt
		kept.UpdatedBy = nb.UpdatedBy
		kept.RowVersion = expected + 1
		*nb = kept
		d.rows[r.t][nb.ID] = next
		tag = tagUpdated
		return nil
	})
	return tag, err
}

func (r *tableRepo[T]) UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(T) error) error {
	return repositories.WithRetry(ctx, repositories.DefaultMaxRetries, id, r.GetByID, r.UpdateIfVersion, mutate)
}

func (r *tableRepo[T]) SetDeleted(ctx context.Context, id uuid.UUID, mark repositories.SoftDeleteMark) (T, error) {
	var out T
	err := r.sess.write(ctx, func(d *dataset) error {
		e, err := r.load(d, id)
		if err != nil {
			return err
		}
		b := e.BaseRef()
		b.IsDeleted = mark.Deleted
		if mark.Deleted {
			at, by := mark.At, mark.Actor
			b.DeletedAt, b.DeletedBy = &at, &by
			b.DeletedByCascade = mark.Cascade
		} else {
			b.DeletedAt, b.DeletedBy = nil, nil
			b.DeletedByCascade = false
		}
		b.UpdatedAt = mark.At
		b.UpdatedBy = mark.Actor
		b.RowVersion++
		d.rows[r.t][id] = e.Clone()
		out = e
		return nil
	})
	return out, err
}

func (r *tableRepo[T]) HardDelete(ctx context.Context, id uuid.UUID) error {
	return r.sess.write(ctx, func(d *dataset) error {
		if _, ok := d.rows[r.t][id]; !ok {
			return repositories.ErrNotFound
		}
		delete(d.rows[r.t], id)
		return nil
	})
}

type unitRepo struct {
	*tableRepo[*models.Unit]
}

func (r *unitRepo) ClearAssociation(ctx context.Context, assoc models.EntityType, id uuid.UUID, actor string, at time.Time) (int64, error) {
	if assoc != models.EntityOwner && assoc != models.EntityTenant {
		return 0, fmt.Errorf("units have no %s association", assoc)
	}
	var n int64
	err := r.sess.write(ctx, func(d *dataset) error {
		for uid, e := range d.rows[models.EntityUnit] {
			u := e.Clone().(*models.Unit)
			ref := u.OwnerID
			if assoc == models.EntityTenant {
				ref = u.TenantID
			}
			if ref == nil || *ref != id {
				continue
			}
			if assoc == models.EntityOwner {
				u.OwnerID = nil
			} else {
				u.TenantID = nil
			}
			u.UpdatedAt = at
			u.UpdatedBy = actor
			u.RowVersion++
			d.rows[models.EntityUnit][uid] = u
			n++
		}
		return nil
	})
	return n, err
}

type auditRepo struct {
	sess session
}

func (r *auditRepo) Create(ctx context.Context, entry *models.AuditLog) error {
	cp := *entry
	return r.sess.write(ctx, func(d *dataset) error {
		d.audit = append(d.audit, &cp)
		return nil
	})
}

func (r *auditRepo) ListByEntity(ctx context.Context, entityType models.EntityType, id uuid.UUID) ([]*models.AuditLog, error) {
	var out []*models.AuditLog
	err := r.sess.read(ctx, func(d *dataset) error {
		for _, e := range d.audit {
			if e.EntityType == entityType && e.EntityID == id {
				cp := *e
				out = append(out, &cp)
			}
		}
		return nil
	})
	return out, err
}

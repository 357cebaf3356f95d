package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"

	"github.com/fastapi1403/building-management/internal/models"
)

// Record is the constraint every typed store works over: a pointer entity
// that carries a row version.
type Record interface {
	EntityWithVersion
	models.Entity
}

// ListFilter narrows List. The zero value lists active rows of every parent.
type ListFilter struct {
	IncludeDeleted bool
	OnlyDeleted    bool
	ParentID       *uuid.UUID
	DeletedBefore  *time.Time
	Offset         int
	Limit          int // 0 means no limit
}

// SoftDeleteMark describes one flip of the soft-delete flag.
type SoftDeleteMark struct {
	Deleted bool
	Cascade bool
	Actor   string
	At      time.Time
}

// EntityRepository is typed CRUD over one entity table. GetByID and
// GetForUpdate return rows in any state; List hides soft-deleted rows
// unless asked. SetDeleted never cascades.
type EntityRepository[T Record] interface {
	Create(ctx context.Context, e T) error
	GetByID(ctx context.Context, id uuid.UUID) (T, error)
	GetForUpdate(ctx context.Context, id uuid.UUID) (T, error)
	List(ctx context.Context, f ListFilter) ([]T, error)
	UpdateIfVersion(ctx context.Context, e T, expected int64) (pgconn.CommandTag, error)
	UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(T) error) error
	SetDeleted(ctx context.Context, id uuid.UUID, mark SoftDeleteMark) (T, error)
	HardDelete(ctx context.Context, id uuid.UUID) error
}

type UnitRepository interface {
	EntityRepository[*models.Unit]
	// ClearAssociation detaches every unit pointing at the given owner or
	// tenant and returns how many rows changed.
	ClearAssociation(ctx context.Context, assoc models.EntityType, id uuid.UUID, actor string, at time.Time) (int64, error)
}

type AuditLogRepository interface {
	Create(ctx context.Context, entry *models.AuditLog) error
	ListByEntity(ctx context.Context, entityType models.EntityType, id uuid.UUID) ([]*models.AuditLog, error)
}

// Repository is the type-erased view used by code that walks the hierarchy
// across entity types.
type Repository interface {
	Type() models.EntityType
	Get(ctx context.Context, id uuid.UUID) (models.Entity, error)
	GetForUpdate(ctx context.Context, id uuid.UUID) (models.Entity, error)
	List(ctx context.Context, f ListFilter) ([]models.Entity, error)
	SetDeleted(ctx context.Context, id uuid.UUID, mark SoftDeleteMark) (models.Entity, error)
	HardDelete(ctx context.Context, id uuid.UUID) error
}

type erased[T Record] struct {
	t    models.EntityType
	repo EntityRepository[T]
}

// Erase adapts a typed repository to Repository.
func Erase[T Record](t models.EntityType, repo EntityRepository[T]) Repository {
	return &erased[T]{t: t, repo: repo}
}

func (e *erased[T]) Type() models.EntityType { return e.t }

func (e *erased[T]) Get(ctx context.Context, id uuid.UUID) (models.Entity, error) {
	return e.repo.GetByID(ctx, id)
}

func (e *erased[T]) GetForUpdate(ctx context.Context, id uuid.UUID) (models.Entity, error) {
	return e.repo.GetForUpdate(ctx, id)
}

func (e *erased[T]) List(ctx context.Context, f ListFilter) ([]models.Entity, error) {
	rows, err := e.repo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	out := make([]models.Entity, 0, len(rows))
	for _, r := range rows {
		out = append(out, r)
	}
	return out, nil
}

func (e *erased[T]) SetDeleted(ctx context.Context, id uuid.UUID, mark SoftDeleteMark) (models.Entity, error) {
	return e.repo.SetDeleted(ctx, id, mark)
}

func (e *erased[T]) HardDelete(ctx context.Context, id uuid.UUID) error {
	return e.repo.HardDelete(ctx, id)
}

// Repos bundles the stores bound to one connection or transaction.
type Repos struct {
	Buildings EntityRepository[*models.Building]
	Floors    EntityRepository[*models.Floor]
	Units     UnitRepository
	Owners    EntityRepository[*models.Owner]
	Tenants   EntityRepository[*models.Tenant]
	Audit     AuditLogRepository
}

// For returns the erased repository for t, or nil for an unknown type.
func (r Repos) For(t models.EntityType) Repository {
	switch t {
	case models.EntityBuilding:
		return Erase(t, r.Buildings)
	case models.EntityFloor:
		return Erase(t, r.Floors)
	case models.EntityUnit:
		return Erase[*models.Unit](t, r.Units)
	case models.EntityOwner:
		return Erase(t, r.Owners)
	case models.EntityTenant:
		return Erase(t, r.Tenants)
	}
	return nil
}

// Store hands out repositories. WithTx runs fn inside one transaction:
// any error from fn rolls back every write fn made.
type Store interface {
	Repos() Repos
	WithTx(ctx context.Context, fn func(Repos) error) error
}

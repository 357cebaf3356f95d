package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/fastapi1403/building-management/internal/models"
	"github.com/fastapi1403/building-management/internal/repositories"
	"github.com/fastapi1403/building-management/internal/utils"
)

// EntityService is the typed front of LifecycleService for one entity type:
// creation and updates live here, state transitions are delegated.
type EntityService[T repositories.Record] struct {
	lc   *LifecycleService
	t    models.EntityType
	repo func(repositories.Repos) repositories.EntityRepository[T]
}

func NewEntityService[T repositories.Record](lc *LifecycleService, t models.EntityType, repo func(repositories.Repos) repositories.EntityRepository[T]) *EntityService[T] {
	return &EntityService[T]{lc: lc, t: t, repo: repo}
}

func NewBuildingService(lc *LifecycleService) *EntityService[*models.Building] {
	return NewEntityService(lc, models.EntityBuilding, func(r repositories.Repos) repositories.EntityRepository[*models.Building] { return r.Buildings })
}

func NewFloorService(lc *LifecycleService) *EntityService[*models.Floor] {
	return NewEntityService(lc, models.EntityFloor, func(r repositories.Repos) repositories.EntityRepository[*models.Floor] { return r.Floors })
}

func NewUnitService(lc *LifecycleService) *EntityService[*models.Unit] {
	return NewEntityService(lc, models.EntityUnit, func(r repositories.Repos) repositories.EntityRepository[*models.Unit] { return r.Units })
}

func NewOwnerService(lc *LifecycleService) *EntityService[*models.Owner] {
	return NewEntityService(lc, models.EntityOwner, func(r repositories.Repos) repositories.EntityRepository[*models.Owner] { return r.Owners })
}

func NewTenantService(lc *LifecycleService) *EntityService[*models.Tenant] {
	return NewEntityService(lc, models.EntityTenant, func(r repositories.Repos) repositories.EntityRepository[*models.Tenant] { return r.Tenants })
}

func (s *EntityService[T]) EntityType() models.EntityType { return s.t }

// Create stores e as a new active record at row_version 1. Its parent must
// exist and be active; its owner and tenant only need to exist.
func (s *EntityService[T]) Create(ctx context.Context, actor string, e T) (T, error) {
	var zero T
	if err := s.lc.validateEntity(e); err != nil {
		s.lc.reject(s.t, models.AuditCreate, err)
		return zero, err
	}

	now := s.lc.now()
	*e.BaseRef() = models.Base{
		ID:        uuid.New(),
		CreatedAt: now,
		CreatedBy: actor,
		UpdatedAt: now,
		UpdatedBy: actor,
		Versioned: models.Versioned{RowVersion: 1},
	}

	err := s.lc.inTx(ctx, s.t, models.AuditCreate, func(r repositories.Repos) ([]transition, error) {
		if err := s.lc.checkParent(ctx, r, e); err != nil {
			return nil, err
		}
		for _, ref := range e.Associations() {
			if err := s.lc.checkAssociation(ctx, r, ref); err != nil {
				return nil, err
			}
		}
		if err := s.repo(r).Create(ctx, e); err != nil {
			return nil, err
		}
		tr, err := s.lc.record(ctx, r, e, models.AuditCreate, actor, false, nil)
		if err != nil {
			return nil, err
		}
		return []transition{tr}, nil
	})
	if err != nil {
		return zero, err
	}
	return e, nil
}

// Update applies mutate to the current active record under optimistic
// concurrency. A non-nil expectedVersion must match the stored row_version.
// Base columns are not writable through mutate.
func (s *EntityService[T]) Update(ctx context.Context, actor string, id uuid.UUID, expectedVersion *int64, mutate func(T) error) (T, error) {
	var out T
	err := s.lc.inTx(ctx, s.t, models.AuditUpdate, func(r repositories.Repos) ([]transition, error) {
		repo := s.repo(r)
		err := repo.UpdateWithRetry(ctx, id, func(e T) error {
			b := e.BaseRef()
			if b.IsDeleted {
				return &utils.ConflictError{Reason: ReasonEntityDeleted}
			}
			if expectedVersion != nil && *expectedVersion != b.RowVersion {
				return &utils.ConflictError{Reason: ReasonStaleVersion, Err: utils.ErrRowVersionConflict}
			}

			before := e.Clone()
			if err := mutate(e); err != nil {
				return err
			}
			*e.BaseRef() = *before.BaseRef()
			e.BaseRef().UpdatedAt = s.lc.now()
			e.BaseRef().UpdatedBy = actor

			if err := s.lc.validateEntity(e); err != nil {
				return err
			}
			return s.checkChangedReferences(ctx, r, before, e)
		})
		if err != nil {
			return nil, mapStoreError(s.t, id, err)
		}

		out, err = repo.GetByID(ctx, id)
		if err != nil {
			return nil, mapStoreError(s.t, id, err)
		}
		tr, err := s.lc.record(ctx, r, out, models.AuditUpdate, actor, false, nil)
		if err != nil {
			return nil, err
		}
		return []transition{tr}, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

// checkChangedReferences re-checks only the references an update moved.
func (s *EntityService[T]) checkChangedReferences(ctx context.Context, r repositories.Repos, before, after models.Entity) error {
	if np, ok := after.StructuralParent(); ok {
		if op, _ := before.StructuralParent(); op != np {
			if err := s.lc.checkParent(ctx, r, after); err != nil {
				return err
			}
		}
	}
	old := make(map[models.EntityRef]bool)
	for _, ref := range before.Associations() {
		old[ref] = true
	}
	for _, ref := range after.Associations() {
		if old[ref] {
			continue
		}
		if err := s.lc.checkAssociation(ctx, r, ref); err != nil {
			return err
		}
	}
	return nil
}

func (s *EntityService[T]) Get(ctx context.Context, id uuid.UUID) (T, error) {
	e, err := s.lc.Get(ctx, s.t, id)
	if err != nil {
		var zero T
		return zero, err
	}
	return e.(T), nil
}

func (s *EntityService[T]) List(ctx context.Context, f repositories.ListFilter) ([]T, error) {
	rows, err := s.lc.List(ctx, s.t, f)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(rows))
	for _, e := range rows {
		out = append(out, e.(T))
	}
	return out, nil
}

func (s *EntityService[T]) SoftDelete(ctx context.Context, actor string, id uuid.UUID) (T, error) {
	e, err := s.lc.SoftDelete(ctx, actor, s.t, id)
	if err != nil {
		var zero T
		return zero, err
	}
	return e.(T), nil
}

func (s *EntityService[T]) Restore(ctx context.Context, actor string, id uuid.UUID) (T, error) {
	e, err := s.lc.Restore(ctx, actor, s.t, id)
	if err != nil {
		var zero T
		return zero, err
	}
	return e.(T), nil
}

func (s *EntityService[T]) HardDelete(ctx context.Context, actor string, id uuid.UUID, cascade bool) (*HardDeleteResult, error) {
	return s.lc.HardDelete(ctx, actor, s.t, id, cascade)
}

func (s *EntityService[T]) History(ctx context.Context, id uuid.UUID) ([]*models.AuditLog, error) {
	return s.lc.History(ctx, s.t, id)
}

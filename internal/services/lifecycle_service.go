package services

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/fastapi1403/building-management/internal/cache"
	"github.com/fastapi1403/building-management/internal/metrics"
	"github.com/fastapi1403/building-management/internal/models"
	"github.com/fastapi1403/building-management/internal/repositories"
	"github.com/fastapi1403/building-management/internal/utils"
)

const (
	DefaultListLimit = 100
	MaxListLimit     = 500
)

// CascadePolicy bounds how far transitions propagate down the hierarchy.
// Depth 1 reaches direct children only.
type CascadePolicy struct {
	SoftDeleteDepth int
	HardDeleteDepth int
}

func DefaultCascadePolicy() CascadePolicy {
	return CascadePolicy{SoftDeleteDepth: 1, HardDeleteDepth: 2}
}

// HardDeleteResult lists every record a permanent delete removed, the target last.
type HardDeleteResult struct {
	EntityType    models.EntityType  `json:"entity_type"`
	ID            uuid.UUID          `json:"id"`
	Deleted       []models.EntityRef `json:"deleted"`
	DetachedUnits int64              `json:"detached_units"`
}

// transition is one committed state change, reported to metrics after commit.
type transition struct {
	ref     models.EntityRef
	action  models.AuditAction
	cascade bool
}

// LifecycleService owns the soft-delete state machine. Every operation runs
// in a single store transaction together with its audit entries.
type LifecycleService struct {
	store     repositories.Store
	validator HierarchyValidator
	policy    CascadePolicy
	validate  *validator.Validate
	cache     *cache.EntityCache
	now       func() time.Time
}

// NewLifecycleService builds the service; entityCache may be nil.
func NewLifecycleService(store repositories.Store, policy CascadePolicy, entityCache *cache.EntityCache) *LifecycleService {
	return &LifecycleService{
		store:    store,
		policy:   policy,
		validate: NewValidator(),
		cache:    entityCache,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *LifecycleService) Policy() CascadePolicy { return s.policy }

func (s *LifecycleService) repo(r repositories.Repos, t models.EntityType) (repositories.Repository, error) {
	repo := r.For(t)
	if repo == nil {
		return nil, &utils.ValidationError{Field: "entity_type", Reason: "unknown entity type " + string(t)}
	}
	return repo, nil
}

// Get returns an entity in any non-hard-deleted state.
func (s *LifecycleService) Get(ctx context.Context, t models.EntityType, id uuid.UUID) (models.Entity, error) {
	repo, err := s.repo(s.store.Repos(), t)
	if err != nil {
		return nil, err
	}
	load := func(ctx context.Context) (models.Entity, error) {
		e, err := repo.Get(ctx, id)
		if err != nil {
			return nil, mapStoreError(t, id, err)
		}
		return e, nil
	}
	if s.cache != nil {
		return s.cache.GetOrLoad(ctx, t, id, load)
	}
	return load(ctx)
}

// List returns one page of entities ordered by id.
func (s *LifecycleService) List(ctx context.Context, t models.EntityType, f repositories.ListFilter) ([]models.Entity, error) {
	repo, err := s.repo(s.store.Repos(), t)
	if err != nil {
		return nil, err
	}
	if f.ParentID != nil {
		if _, ok := t.ParentType(); !ok {
			return nil, &utils.ValidationError{Field: "parentId", Reason: t.Plural() + " have no parent"}
		}
	}
	switch {
	case f.Limit <= 0:
		f.Limit = DefaultListLimit
	case f.Limit > MaxListLimit:
		f.Limit = MaxListLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return repo.List(ctx, f)
}

// SoftDelete marks an active entity deleted and cascades to active
// descendants up to the configured depth. Deleting an already soft-deleted
// entity succeeds without changing it.
func (s *LifecycleService) SoftDelete(ctx context.Context, actor string, t models.EntityType, id uuid.UUID) (models.Entity, error) {
	var out models.Entity
	err := s.inTx(ctx, t, models.AuditSoftDelete, func(r repositories.Repos) ([]transition, error) {
		repo, err := s.repo(r, t)
		if err != nil {
			return nil, err
		}
		cur, err := repo.GetForUpdate(ctx, id)
		if err != nil {
			return nil, mapStoreError(t, id, err)
		}
		if cur.BaseRef().IsDeleted {
			out = cur
			return nil, nil
		}

		at := s.now()
		updated, err := repo.SetDeleted(ctx, id, repositories.SoftDeleteMark{Deleted: true, Actor: actor, At: at})
		if err != nil {
			return nil, mapStoreError(t, id, err)
		}
		out = updated

		tr, err := s.record(ctx, r, updated, models.AuditSoftDelete, actor, false, nil)
		if err != nil {
			return nil, err
		}
		cascaded, err := s.cascadeSoftDelete(ctx, r, t, id, actor, at, 1)
		if err != nil {
			return nil, err
		}
		if len(cascaded) > 0 {
			utils.Logger.WithFields(logrus.Fields{
				"entity":   t,
				"id":       id,
				"cascaded": len(cascaded),
			}).Info("Soft delete cascaded to children")
		}
		return append([]transition{tr}, cascaded...), nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// cascadeSoftDelete marks the active children of t/id. Children that were
// already soft-deleted keep their own marks.
func (s *LifecycleService) cascadeSoftDelete(ctx context.Context, r repositories.Repos, t models.EntityType, id uuid.UUID, actor string, at time.Time, level int) ([]transition, error) {
	if level > s.policy.SoftDeleteDepth {
		return nil, nil
	}
	ct, ok := t.ChildType()
	if !ok {
		return nil, nil
	}
	childRepo := r.For(ct)
	kids, err := childRepo.List(ctx, repositories.ListFilter{ParentID: &id})
	if err != nil {
		return nil, err
	}

	var done []transition
	parent := models.EntityRef{Type: t, ID: id}
	for _, k := range kids {
		kid := k.BaseRef().ID
		updated, err := childRepo.SetDeleted(ctx, kid, repositories.SoftDeleteMark{Deleted: true, Cascade: true, Actor: actor, At: at})
		if err != nil {
			return nil, mapStoreError(ct, kid, err)
		}
		tr, err := s.record(ctx, r, updated, models.AuditSoftDelete, actor, true, map[string]any{"parent": parent})
		if err != nil {
			return nil, err
		}
		done = append(done, tr)

		deeper, err := s.cascadeSoftDelete(ctx, r, ct, kid, actor, at, level+1)
		if err != nil {
			return nil, err
		}
		done = append(done, deeper...)
	}
	return done, nil
}

// Restore reactivates a soft-deleted entity whose parent is active. Children
// are left as they are.
func (s *LifecycleService) Restore(ctx context.Context, actor string, t models.EntityType, id uuid.UUID) (models.Entity, error) {
	var out models.Entity
	err := s.inTx(ctx, t, models.AuditRestore, func(r repositories.Repos) ([]transition, error) {
		repo, err := s.repo(r, t)
		if err != nil {
			return nil, err
		}
		v, err := s.validator.CanRestore(ctx, r, t, id)
		if err != nil {
			return nil, err
		}
		if v.Missing {
			return nil, &utils.NotFoundError{EntityType: t, ID: id.String()}
		}
		if !v.Allowed {
			return nil, &utils.ConflictError{Reason: v.Reason}
		}

		updated, err := repo.SetDeleted(ctx, id, repositories.SoftDeleteMark{Deleted: false, Actor: actor, At: s.now()})
		if err != nil {
			return nil, mapStoreError(t, id, err)
		}
		out = updated
		tr, err := s.record(ctx, r, updated, models.AuditRestore, actor, false, nil)
		if err != nil {
			return nil, err
		}
		return []transition{tr}, nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// HardDelete removes an entity in any state. Surviving children block it
// unless cascade is set, in which case the subtree goes first, deepest
// records before their parents. Units pointing at a removed owner or
// tenant are detached.
func (s *LifecycleService) HardDelete(ctx context.Context, actor string, t models.EntityType, id uuid.UUID, cascade bool) (*HardDeleteResult, error) {
	res := &HardDeleteResult{EntityType: t, ID: id}
	err := s.inTx(ctx, t, models.AuditHardDelete, func(r repositories.Repos) ([]transition, error) {
		repo, err := s.repo(r, t)
		if err != nil {
			return nil, err
		}
		v, err := s.validator.CanHardDelete(ctx, r, t, id, cascade, s.policy.HardDeleteDepth)
		if err != nil {
			return nil, err
		}
		if v.Missing {
			return nil, &utils.NotFoundError{EntityType: t, ID: id.String()}
		}
		if !v.Allowed {
			return nil, &utils.ConflictError{Reason: v.Reason, BlockingChildren: v.BlockingChildren}
		}

		var done []transition
		target := models.EntityRef{Type: t, ID: id}
		for _, ref := range v.Plan {
			tr, err := s.remove(ctx, r, r.For(ref.Type), ref, actor, true, map[string]any{"root": target})
			if err != nil {
				return nil, err
			}
			done = append(done, tr)
			res.Deleted = append(res.Deleted, ref)
		}

		switch t {
		case models.EntityOwner, models.EntityTenant:
			n, err := r.Units.ClearAssociation(ctx, t, id, actor, s.now())
			if err != nil {
				return nil, err
			}
			res.DetachedUnits = n
		}

		tr, err := s.remove(ctx, r, repo, target, actor, false, nil)
		if err != nil {
			return nil, err
		}
		res.Deleted = append(res.Deleted, target)
		return append(done, tr), nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (s *LifecycleService) remove(ctx context.Context, r repositories.Repos, repo repositories.Repository, ref models.EntityRef, actor string, cascade bool, details any) (transition, error) {
	e, err := repo.GetForUpdate(ctx, ref.ID)
	if err != nil {
		return transition{}, mapStoreError(ref.Type, ref.ID, err)
	}
	if err := repo.HardDelete(ctx, ref.ID); err != nil {
		return transition{}, mapStoreError(ref.Type, ref.ID, err)
	}
	return s.record(ctx, r, e, models.AuditHardDelete, actor, cascade, details)
}

// History returns the audit trail of an entity, oldest first. The trail
// outlives a hard delete.
func (s *LifecycleService) History(ctx context.Context, t models.EntityType, id uuid.UUID) ([]*models.AuditLog, error) {
	r := s.store.Repos()
	repo, err := s.repo(r, t)
	if err != nil {
		return nil, err
	}
	entries, err := r.Audit.ListByEntity(ctx, t, id)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		if _, err := repo.Get(ctx, id); err != nil {
			return nil, mapStoreError(t, id, err)
		}
	}
	return entries, nil
}

// inTx runs fn in one transaction, then publishes its transitions.
func (s *LifecycleService) inTx(ctx context.Context, t models.EntityType, action models.AuditAction, fn func(repositories.Repos) ([]transition, error)) error {
	var done []transition
	err := s.store.WithTx(ctx, func(r repositories.Repos) error {
		var err error
		done, err = fn(r)
		return err
	})
	if err != nil {
		err = mapContention(err)
		s.reject(t, action, err)
		return err
	}
	if len(done) > 0 && s.cache != nil {
		s.cache.Invalidate()
	}
	for _, d := range done {
		metrics.LifecycleTransitions.WithLabelValues(string(d.ref.Type), string(d.action), strconv.FormatBool(d.cascade)).Inc()
		utils.Logger.WithFields(logrus.Fields{
			"entity":  d.ref.Type,
			"id":      d.ref.ID,
			"action":  d.action,
			"cascade": d.cascade,
		}).Debug("Lifecycle transition committed")
	}
	return nil
}

func (s *LifecycleService) record(ctx context.Context, r repositories.Repos, e models.Entity, action models.AuditAction, actor string, cascade bool, details any) (transition, error) {
	ref := models.EntityRef{Type: e.EntityType(), ID: e.BaseRef().ID}
	entry := &models.AuditLog{
		ID:         uuid.New(),
		EntityType: ref.Type,
		EntityID:   ref.ID,
		Action:     action,
		Actor:      actor,
		Cascade:    cascade,
		RowVersion: e.GetRowVersion(),
		CreatedAt:  s.now(),
	}
	if details != nil {
		raw, err := json.Marshal(details)
		if err != nil {
			return transition{}, err
		}
		msg := json.RawMessage(raw)
		entry.Details = &msg
	}
	if err := r.Audit.Create(ctx, entry); err != nil {
		return transition{}, err
	}
	return transition{ref: ref, action: action, cascade: cascade}, nil
}

func (s *LifecycleService) reject(t models.EntityType, action models.AuditAction, err error) {
	var (
		validErr     *utils.ValidationError
		notFoundErr  *utils.NotFoundError
		conflictErr  *utils.ConflictError
		transientErr *utils.TransientError
	)
	kind := "internal"
	switch {
	case errors.As(err, &validErr):
		kind = "validation"
	case errors.As(err, &notFoundErr):
		kind = "not_found"
	case errors.As(err, &conflictErr):
		kind = "conflict"
	case errors.As(err, &transientErr):
		kind = "transient"
	default:
		utils.Logger.WithError(err).Errorf("Lifecycle %s on %s failed", action, t)
	}
	metrics.LifecycleRejections.WithLabelValues(string(t), string(action), kind).Inc()
}

func (s *LifecycleService) validateEntity(e models.Entity) error {
	if err := s.validate.Struct(e); err != nil {
		return ToValidationError(err)
	}
	return nil
}

// checkParent requires the structural parent of e to exist and be active.
func (s *LifecycleService) checkParent(ctx context.Context, r repositories.Repos, e models.Entity) error {
	parent, ok := e.StructuralParent()
	if !ok {
		return nil
	}
	v, err := s.validator.CanCreateChild(ctx, r, parent.Type, parent.ID)
	if err != nil {
		return err
	}
	if v.ParentMissing {
		return &utils.ValidationError{
			Field:  e.EntityType().ParentField(),
			Reason: "references an unknown " + string(parent.Type),
		}
	}
	if !v.Allowed {
		return &utils.ConflictError{Reason: v.Reason}
	}
	return nil
}

// checkAssociation only requires the owner or tenant to exist; its
// lifecycle state does not matter. The row stays locked so a concurrent hard
// delete waits for this tx.
func (s *LifecycleService) checkAssociation(ctx context.Context, r repositories.Repos, ref models.EntityRef) error {
	if _, err := r.For(ref.Type).GetForUpdate(ctx, ref.ID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return &utils.ValidationError{
				Field:  string(ref.Type) + "_id",
				Reason: "references an unknown " + string(ref.Type),
			}
		}
		return err
	}
	return nil
}

func mapStoreError(t models.EntityType, id uuid.UUID, err error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return &utils.NotFoundError{EntityType: t, ID: id.String()}
	}
	return err
}

// mapContention turns an exhausted optimistic retry into a conflict.
func mapContention(err error) error {
	var conflictErr *utils.ConflictError
	if errors.Is(err, utils.ErrRowVersionConflict) && !errors.As(err, &conflictErr) {
		return &utils.ConflictError{Reason: ReasonContention, Err: err}
	}
	return err
}

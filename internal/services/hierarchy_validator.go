package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/fastapi1403/building-management/internal/models"
	"github.com/fastapi1403/building-management/internal/repositories"
)

// Refusal reasons. They are returned to clients as the machine-readable
// `reason` of a conflict.
const (
	ReasonParentInactive = "parent_inactive"
	ReasonParentMissing  = "parent_missing"
	ReasonNotDeleted     = "not_deleted"
	ReasonHasChildren    = "has_children"
	ReasonCascadeTooDeep = "cascade_depth_exceeded"
	ReasonEntityDeleted  = "entity_soft_deleted"
	ReasonStaleVersion   = "stale_row_version"
	ReasonContention     = "row_version_conflict"
)

// Verdict is the outcome of a hierarchy check. Expected business refusals
// are reported here, never as errors.
type Verdict struct {
	Allowed bool
	Reason  string
	// Missing is set when the subject entity does not exist.
	Missing bool
	// ParentMissing is set when a referenced parent does not exist at all,
	// as opposed to existing in a soft-deleted state.
	ParentMissing    bool
	BlockingChildren []models.EntityRef
	// Plan lists the descendants a cascading hard delete removes, deepest first.
	Plan []models.EntityRef
}

// HierarchyValidator holds the predicates for the Building→Floor→Unit
// hierarchy. Owners and tenants never block and are never gated.
type HierarchyValidator struct{}

// CanCreateChild allows a child iff its parent exists and is active. The
// parent row is locked for the rest of the transaction.
func (HierarchyValidator) CanCreateChild(ctx context.Context, repos repositories.Repos, parentType models.EntityType, parentID uuid.UUID) (Verdict, error) {
	repo := repos.For(parentType)
	if repo == nil {
		return Verdict{}, fmt.Errorf("unknown parent type %q", parentType)
	}
	parent, err := repo.GetForUpdate(ctx, parentID)
	if errors.Is(err, repositories.ErrNotFound) {
		return Verdict{ParentMissing: true, Reason: ReasonParentMissing}, nil
	}
	if err != nil {
		return Verdict{}, err
	}
	if parent.BaseRef().IsDeleted {
		return Verdict{Reason: ReasonParentInactive}, nil
	}
	return Verdict{Allowed: true}, nil
}

// CanRestore allows a restore iff the entity exists, is soft-deleted, and has
// no structural parent or an active one.
func (v HierarchyValidator) CanRestore(ctx context.Context, repos repositories.Repos, t models.EntityType, id uuid.UUID) (Verdict, error) {
	e, err := repos.For(t).GetForUpdate(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return Verdict{Missing: true}, nil
	}
	if err != nil {
		return Verdict{}, err
	}
	if !e.BaseRef().IsDeleted {
		return Verdict{Reason: ReasonNotDeleted}, nil
	}
	parent, ok := e.StructuralParent()
	if !ok {
		return Verdict{Allowed: true}, nil
	}
	return v.CanCreateChild(ctx, repos, parent.Type, parent.ID)
}

// CanHardDelete enumerates the surviving structural children of an entity.
// Without cascade any child blocks. With cascade every descendant must sit
// within maxDepth levels; the ones beyond it are reported as blocking.
func (v HierarchyValidator) CanHardDelete(ctx context.Context, repos repositories.Repos, t models.EntityType, id uuid.UUID, cascade bool, maxDepth int) (Verdict, error) {
	if _, err := repos.For(t).GetForUpdate(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return Verdict{Missing: true}, nil
		}
		return Verdict{}, err
	}

	children, err := v.children(ctx, repos, t, id)
	if err != nil {
		return Verdict{}, err
	}
	if len(children) == 0 {
		return Verdict{Allowed: true}, nil
	}
	if !cascade {
		return Verdict{Reason: ReasonHasChildren, BlockingChildren: children}, nil
	}

	plan, tooDeep, err := v.descendants(ctx, repos, t, id, 1, maxDepth)
	if err != nil {
		return Verdict{}, err
	}
	if len(tooDeep) > 0 {
		return Verdict{Reason: ReasonCascadeTooDeep, BlockingChildren: tooDeep}, nil
	}
	return Verdict{Allowed: true, BlockingChildren: children, Plan: plan}, nil
}

// children lists direct structural children in any non-hard-deleted state.
func (HierarchyValidator) children(ctx context.Context, repos repositories.Repos, t models.EntityType, id uuid.UUID) ([]models.EntityRef, error) {
	ct, ok := t.ChildType()
	if !ok {
		return nil, nil
	}
	rows, err := repos.For(ct).List(ctx, repositories.ListFilter{IncludeDeleted: true, ParentID: &id})
	if err != nil {
		return nil, err
	}
	refs := make([]models.EntityRef, 0, len(rows))
	for _, r := range rows {
		refs = append(refs, models.EntityRef{Type: ct, ID: r.BaseRef().ID})
	}
	return refs, nil
}

// descendants walks depth-first and returns the subtree in post-order.
func (v HierarchyValidator) descendants(ctx context.Context, repos repositories.Repos, t models.EntityType, id uuid.UUID, level, maxDepth int) (plan, tooDeep []models.EntityRef, err error) {
	kids, err := v.children(ctx, repos, t, id)
	if err != nil {
		return nil, nil, err
	}
	for _, k := range kids {
		if level > maxDepth {
			tooDeep = append(tooDeep, k)
			continue
		}
		// Lock before listing so a concurrent child insert is either seen or blocked.
		if _, err := repos.For(k.Type).GetForUpdate(ctx, k.ID); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				continue
			}
			return nil, nil, err
		}
		p, td, err := v.descendants(ctx, repos, k.Type, k.ID, level+1, maxDepth)
		if err != nil {
			return nil, nil, err
		}
		plan = append(plan, p...)
		plan = append(plan, k)
		tooDeep = append(tooDeep, td...)
	}
	return plan, tooDeep, nil
}

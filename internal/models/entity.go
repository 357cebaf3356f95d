// internal/models/entity.go
package models

import (
	"time"

	"github.com/google/uuid"
)

type EntityType string

const (
	EntityBuilding EntityType = "building"
	EntityFloor    EntityType = "floor"
	EntityUnit     EntityType = "unit"
	EntityOwner    EntityType = "owner"
	EntityTenant   EntityType = "tenant"
)

// AllEntityTypes lists every managed type, leaves of the structural hierarchy first.
var AllEntityTypes = []EntityType{EntityUnit, EntityFloor, EntityBuilding, EntityOwner, EntityTenant}

func (t EntityType) Valid() bool {
	switch t {
	case EntityBuilding, EntityFloor, EntityUnit, EntityOwner, EntityTenant:
		return true
	}
	return false
}

// Plural is the collection segment used in URLs and table names.
func (t EntityType) Plural() string { return string(t) + "s" }

// ParentType returns the structural parent of t. Only Building→Floor→Unit is
// structural; owners and tenants are informational associations of units.
func (t EntityType) ParentType() (EntityType, bool) {
	switch t {
	case EntityFloor:
		return EntityBuilding, true
	case EntityUnit:
		return EntityFloor, true
	}
	return "", false
}

func (t EntityType) ChildType() (EntityType, bool) {
	switch t {
	case EntityBuilding:
		return EntityFloor, true
	case EntityFloor:
		return EntityUnit, true
	}
	return "", false
}

// ParentField is the JSON/column name holding the structural parent id.
func (t EntityType) ParentField() string {
	if p, ok := t.ParentType(); ok {
		return string(p) + "_id"
	}
	return ""
}

// EntityRef identifies one record of any type.
type EntityRef struct {
	Type EntityType `json:"type"`
	ID   uuid.UUID  `json:"id"`
}

// Base carries the audit and soft-delete columns shared by every entity.
type Base struct {
	ID               uuid.UUID  `json:"id"`
	IsDeleted        bool       `json:"is_deleted"`
	DeletedAt        *time.Time `json:"deleted_at,omitempty"`
	DeletedBy        *string    `json:"deleted_by,omitempty"`
	DeletedByCascade bool       `json:"deleted_by_cascade"`
	CreatedAt        time.Time  `json:"created_at"`
	CreatedBy        string     `json:"created_by"`
	UpdatedAt        time.Time  `json:"updated_at"`
	UpdatedBy        string     `json:"updated_by"`
	Versioned
}

func (b *Base) GetID() string  { return b.ID.String() }
func (b *Base) BaseRef() *Base { return b }

// Entity is implemented by the pointer types of Building, Floor, Unit, Owner and Tenant.
type Entity interface {
	GetID() string
	GetRowVersion() int64
	SetRowVersion(int64)
	BaseRef() *Base
	EntityType() EntityType
	// StructuralParent reports the gating parent, if the type has one.
	StructuralParent() (EntityRef, bool)
	// Associations lists informational references that never gate transitions.
	Associations() []EntityRef
	// Clone returns a copy that shares no mutable state with the receiver.
	Clone() Entity
}

func cloneBase(b Base) Base {
	if b.DeletedAt != nil {
		at := *b.DeletedAt
		b.DeletedAt = &at
	}
	if b.DeletedBy != nil {
		by := *b.DeletedBy
		b.DeletedBy = &by
	}
	return b
}

func cloneStr(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

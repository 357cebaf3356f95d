// internal/models/unit.go
package models

import "github.com/google/uuid"

type UnitType string

const (
	UnitTypeResidential UnitType = "residential"
	UnitTypeCommercial  UnitType = "commercial"
	UnitTypeOffice      UnitType = "office"
	UnitTypeRetail      UnitType = "retail"
	UnitTypeParking     UnitType = "parking"
)

type UnitStatus string

const (
	UnitStatusVacant      UnitStatus = "vacant"
	UnitStatusOccupied    UnitStatus = "occupied"
	UnitStatusMaintenance UnitStatus = "maintenance"
	UnitStatusReserved    UnitStatus = "reserved"
)

// Unit is a rentable space on a floor. Owner and tenant are informational
// references: a soft-deleted owner does not keep a unit from being active.
type Unit struct {
	Base
	FloorID            uuid.UUID  `json:"floor_id" validate:"required"`
	UnitNumber         string     `json:"unit_number" validate:"required,max=20"`
	Type               UnitType   `json:"type" validate:"required,oneof=residential commercial office retail parking"`
	Status             UnitStatus `json:"status" validate:"required,oneof=vacant occupied maintenance reserved"`
	Area               float64    `json:"area" validate:"gt=0"`
	HasParking         bool       `json:"has_parking"`
	ParkingSpaceNumber *string    `json:"parking_space_number,omitempty" validate:"omitempty,max=20"`
	ResidentCount      int        `json:"resident_count" validate:"gte=0"`
	OwnerID            *uuid.UUID `json:"owner_id,omitempty"`
	TenantID           *uuid.UUID `json:"tenant_id,omitempty"`
}

func (u *Unit) EntityType() EntityType { return EntityUnit }

func (u *Unit) StructuralParent() (EntityRef, bool) {
	return EntityRef{Type: EntityFloor, ID: u.FloorID}, true
}

func (u *Unit) Associations() []EntityRef {
	var refs []EntityRef
	if u.OwnerID != nil {
		refs = append(refs, EntityRef{Type: EntityOwner, ID: *u.OwnerID})
	}
	if u.TenantID != nil {
		refs = append(refs, EntityRef{Type: EntityTenant, ID: *u.TenantID})
	}
	return refs
}

func (u *Unit) Clone() Entity {
	c := *u
	c.Base = cloneBase(u.Base)
	c.ParkingSpaceNumber = cloneStr(u.ParkingSpaceNumber)
	if u.OwnerID != nil {
		id := *u.OwnerID
		c.OwnerID = &id
	}
	if u.TenantID != nil {
		id := *u.TenantID
		c.TenantID = &id
	}
	return &c
}

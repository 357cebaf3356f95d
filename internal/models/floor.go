// internal/models/floor.go
package models

import "github.com/google/uuid"

type Floor struct {
	Base
	BuildingID  uuid.UUID `json:"building_id" validate:"required"`
	Number      int       `json:"number" validate:"gt=0"`
	Name        string    `json:"name" validate:"required,max=100"`
	TotalUnits  int       `json:"total_units" validate:"gte=0"`
	Description *string   `json:"description,omitempty"`
}

func (f *Floor) EntityType() EntityType { return EntityFloor }

func (f *Floor) StructuralParent() (EntityRef, bool) {
	return EntityRef{Type: EntityBuilding, ID: f.BuildingID}, true
}

func (f *Floor) Associations() []EntityRef { return nil }

func (f *Floor) Clone() Entity {
	c := *f
	c.Base = cloneBase(f.Base)
	c.Description = cloneStr(f.Description)
	return &c
}

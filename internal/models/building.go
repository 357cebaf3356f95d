// internal/models/building.go
package models

type Building struct {
	Base
	Name        string  `json:"name" validate:"required,max=100"`
	Address     *string `json:"address,omitempty" validate:"omitempty,max=255"`
	TotalFloors int     `json:"total_floors" validate:"gte=1"`
	Description *string `json:"description,omitempty"`
}

func (b *Building) EntityType() EntityType { return EntityBuilding }

func (b *Building) StructuralParent() (EntityRef, bool) { return EntityRef{}, false }

func (b *Building) Associations() []EntityRef { return nil }

func (b *Building) Clone() Entity {
	c := *b
	c.Base = cloneBase(b.Base)
	c.Address = cloneStr(b.Address)
	c.Description = cloneStr(b.Description)
	return &c
}

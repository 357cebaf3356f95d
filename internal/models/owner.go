// internal/models/owner.go
package models

type OwnerType string

const (
	OwnerTypeIndividual  OwnerType = "individual"
	OwnerTypeCompany     OwnerType = "company"
	OwnerTypeTrust       OwnerType = "trust"
	OwnerTypeJoint       OwnerType = "joint"
	OwnerTypeGovernment  OwnerType = "government"
	OwnerTypeAssociation OwnerType = "association"
)

type Owner struct {
	Base
	Name                 string    `json:"name" validate:"required,max=100"`
	OwnerType            OwnerType `json:"owner_type" validate:"required,oneof=individual company trust joint government association"`
	Phone                string    `json:"phone" validate:"required,max=20"`
	Email                *string   `json:"email,omitempty" validate:"omitempty,email"`
	IdentificationNumber string    `json:"identification_number" validate:"required,max=50"`
	Notes                *string   `json:"notes,omitempty"`
}

func (o *Owner) EntityType() EntityType { return EntityOwner }

func (o *Owner) StructuralParent() (EntityRef, bool) { return EntityRef{}, false }

func (o *Owner) Associations() []EntityRef { return nil }

func (o *Owner) Clone() Entity {
	c := *o
	c.Base = cloneBase(o.Base)
	c.Email = cloneStr(o.Email)
	c.Notes = cloneStr(o.Notes)
	return &c
}

// internal/models/tenant.go
package models

import "time"

type TenantType string

const (
	TenantTypeIndividual   TenantType = "individual"
	TenantTypeFamily       TenantType = "family"
	TenantTypeCompany      TenantType = "company"
	TenantTypeStudent      TenantType = "student"
	TenantTypeGovernment   TenantType = "government"
	TenantTypeOrganization TenantType = "organization"
)

type Tenant struct {
	Base
	Name                 string     `json:"name" validate:"required,max=100"`
	TenantType           TenantType `json:"tenant_type" validate:"required,oneof=individual family company student government organization"`
	Phone                string     `json:"phone" validate:"required,max=20"`
	Email                *string    `json:"email,omitempty" validate:"omitempty,email"`
	IdentificationNumber string     `json:"identification_number" validate:"required,max=50"`
	OccupantCount        int        `json:"occupant_count" validate:"gte=1"`
	LeaseStartDate       *time.Time `json:"lease_start_date,omitempty"`
	LeaseEndDate         *time.Time `json:"lease_end_date,omitempty"`
	Notes                *string    `json:"notes,omitempty"`
}

func (t *Tenant) EntityType() EntityType { return EntityTenant }

func (t *Tenant) StructuralParent() (EntityRef, bool) { return EntityRef{}, false }

func (t *Tenant) Associations() []EntityRef { return nil }

// LeaseInverted reports a lease that ends before it starts.
func (t *Tenant) LeaseInverted() bool {
	return t.LeaseStartDate != nil && t.LeaseEndDate != nil && t.LeaseEndDate.Before(*t.LeaseStartDate)
}

func (t *Tenant) Clone() Entity {
	c := *t
	c.Base = cloneBase(t.Base)
	c.Email = cloneStr(t.Email)
	c.Notes = cloneStr(t.Notes)
	if t.LeaseStartDate != nil {
		d := *t.LeaseStartDate
		c.LeaseStartDate = &d
	}
	if t.LeaseEndDate != nil {
		d := *t.LeaseEndDate
		c.LeaseEndDate = &d
	}
	return &c
}

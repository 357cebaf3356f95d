package dtos

import (
	"time"

	"github.com/fastapi1403/building-management/internal/models"
)

type CreateOwnerRequest struct {
	Name                 string           `json:"name"`
	OwnerType            models.OwnerType `json:"owner_type,omitempty"`
	Phone                string           `json:"phone"`
	Email                *string          `json:"email,omitempty"`
	IdentificationNumber string           `json:"identification_number"`
	Notes                *string          `json:"notes,omitempty"`
}

func (r CreateOwnerRequest) ToModel() *models.Owner {
	o := &models.Owner{
		Name:                 r.Name,
		OwnerType:            r.OwnerType,
		Phone:                r.Phone,
		Email:                r.Email,
		IdentificationNumber: r.IdentificationNumber,
		Notes:                r.Notes,
	}
	if o.OwnerType == "" {
		o.OwnerType = models.OwnerTypeIndividual
	}
	return o
}

type UpdateOwnerRequest struct {
	versioned
	Name                 *string           `json:"name,omitempty"`
	OwnerType            *models.OwnerType `json:"owner_type,omitempty"`
	Phone                *string           `json:"phone,omitempty"`
	Email                *string           `json:"email,omitempty"`
	IdentificationNumber *string           `json:"identification_number,omitempty"`
	Notes                *string           `json:"notes,omitempty"`
}

func (r UpdateOwnerRequest) ApplyTo(o *models.Owner) {
	setIf(&o.Name, r.Name)
	setIf(&o.OwnerType, r.OwnerType)
	setIf(&o.Phone, r.Phone)
	setPtrIf(&o.Email, r.Email)
	setIf(&o.IdentificationNumber, r.IdentificationNumber)
	setPtrIf(&o.Notes, r.Notes)
}

// CreateTenantRequest defaults occupant_count to 1 when omitted.
type CreateTenantRequest struct {
	Name                 string            `json:"name"`
	TenantType           models.TenantType `json:"tenant_type,omitempty"`
	Phone                string            `json:"phone"`
	Email                *string           `json:"email,omitempty"`
	IdentificationNumber string            `json:"identification_number"`
	OccupantCount        *int              `json:"occupant_count,omitempty"`
	LeaseStartDate       *time.Time        `json:"lease_start_date,omitempty"`
	LeaseEndDate         *time.Time        `json:"lease_end_date,omitempty"`
	Notes                *string           `json:"notes,omitempty"`
}

func (r CreateTenantRequest) ToModel() *models.Tenant {
	t := &models.Tenant{
		Name:                 r.Name,
		TenantType:           r.TenantType,
		Phone:                r.Phone,
		Email:                r.Email,
		IdentificationNumber: r.IdentificationNumber,
		OccupantCount:        1,
		LeaseStartDate:       r.LeaseStartDate,
		LeaseEndDate:         r.LeaseEndDate,
		Notes:                r.Notes,
	}
	setIf(&t.OccupantCount, r.OccupantCount)
	if t.TenantType == "" {
		t.TenantType = models.TenantTypeIndividual
	}
	return t
}

type UpdateTenantRequest struct {
	versioned
	Name                 *string            `json:"name,omitempty"`
	TenantType           *models.TenantType `json:"tenant_type,omitempty"`
	Phone                *string            `json:"phone,omitempty"`
	Email                *string            `json:"email,omitempty"`
	IdentificationNumber *string            `json:"identification_number,omitempty"`
	OccupantCount        *int               `json:"occupant_count,omitempty"`
	LeaseStartDate       *time.Time         `json:"lease_start_date,omitempty"`
	LeaseEndDate         *time.Time         `json:"lease_end_date,omitempty"`
	Notes                *string            `json:"notes,omitempty"`
}

func (r UpdateTenantRequest) ApplyTo(t *models.Tenant) {
	setIf(&t.Name, r.Name)
	setIf(&t.TenantType, r.TenantType)
	setIf(&t.Phone, r.Phone)
	setPtrIf(&t.Email, r.Email)
	setIf(&t.IdentificationNumber, r.IdentificationNumber)
	setIf(&t.OccupantCount, r.OccupantCount)
	setPtrIf(&t.LeaseStartDate, r.LeaseStartDate)
	setPtrIf(&t.LeaseEndDate, r.LeaseEndDate)
	setPtrIf(&t.Notes, r.Notes)
}

package dtos

import (
	"github.com/google/uuid"

	"github.com/fastapi1403/building-management/internal/models"
)

type CreateBuildingRequest struct {
	Name        string  `json:"name"`
	Address     *string `json:"address,omitempty"`
	TotalFloors int     `json:"total_floors"`
	Description *string `json:"description,omitempty"`
}

func (r CreateBuildingRequest) ToModel() *models.Building {
	return &models.Building{
		Name:        r.Name,
		Address:     r.Address,
		TotalFloors: r.TotalFloors,
		Description: r.Description,
	}
}

type UpdateBuildingRequest struct {
	versioned
	Name        *string `json:"name,omitempty"`
	Address     *string `json:"address,omitempty"`
	TotalFloors *int    `json:"total_floors,omitempty"`
	Description *string `json:"description,omitempty"`
}

func (r UpdateBuildingRequest) ApplyTo(b *models.Building) {
	setIf(&b.Name, r.Name)
	setPtrIf(&b.Address, r.Address)
	setIf(&b.TotalFloors, r.TotalFloors)
	setPtrIf(&b.Description, r.Description)
}

type CreateFloorRequest struct {
	BuildingID  uuid.UUID `json:"building_id"`
	Number      int       `json:"number"`
	Name        string    `json:"name"`
	TotalUnits  int       `json:"total_units"`
	Description *string   `json:"description,omitempty"`
}

func (r CreateFloorRequest) ToModel() *models.Floor {
	return &models.Floor{
		BuildingID:  r.BuildingID,
		Number:      r.Number,
		Name:        r.Name,
		TotalUnits:  r.TotalUnits,
		Description: r.Description,
	}
}

type UpdateFloorRequest struct {
	versioned
	BuildingID  *uuid.UUID `json:"building_id,omitempty"`
	Number      *int       `json:"number,omitempty"`
	Name        *string    `json:"name,omitempty"`
	TotalUnits  *int       `json:"total_units,omitempty"`
	Description *string    `json:"description,omitempty"`
}

func (r UpdateFloorRequest) ApplyTo(f *models.Floor) {
	setIf(&f.BuildingID, r.BuildingID)
	setIf(&f.Number, r.Number)
	setIf(&f.Name, r.Name)
	setIf(&f.TotalUnits, r.TotalUnits)
	setPtrIf(&f.Description, r.Description)
}

// CreateUnitRequest defaults type to residential and status to vacant.
type CreateUnitRequest struct {
	FloorID            uuid.UUID         `json:"floor_id"`
	UnitNumber         string            `json:"unit_number"`
	Type               models.UnitType   `json:"type,omitempty"`
	Status             models.UnitStatus `json:"status,omitempty"`
	Area               float64           `json:"area"`
	HasParking         bool              `json:"has_parking"`
	ParkingSpaceNumber *string           `json:"parking_space_number,omitempty"`
	ResidentCount      int               `json:"resident_count"`
	OwnerID            *uuid.UUID        `json:"owner_id,omitempty"`
	TenantID           *uuid.UUID        `json:"tenant_id,omitempty"`
}

func (r CreateUnitRequest) ToModel() *models.Unit {
	u := &models.Unit{
		FloorID:            r.FloorID,
		UnitNumber:         r.UnitNumber,
		Type:               r.Type,
		Status:             r.Status,
		Area:               r.Area,
		HasParking:         r.HasParking,
		ParkingSpaceNumber: r.ParkingSpaceNumber,
		ResidentCount:      r.ResidentCount,
		OwnerID:            r.OwnerID,
		TenantID:           r.TenantID,
	}
	if u.Type == "" {
		u.Type = models.UnitTypeResidential
	}
	if u.Status == "" {
		u.Status = models.UnitStatusVacant
	}
	return u
}

// UpdateUnitRequest detaches the owner or tenant with the clear flags; a
// null id alone leaves the association unchanged.
type UpdateUnitRequest struct {
	versioned
	FloorID            *uuid.UUID         `json:"floor_id,omitempty"`
	UnitNumber         *string            `json:"unit_number,omitempty"`
	Type               *models.UnitType   `json:"type,omitempty"`
	Status             *models.UnitStatus `json:"status,omitempty"`
	Area               *float64           `json:"area,omitempty"`
	HasParking         *bool              `json:"has_parking,omitempty"`
	ParkingSpaceNumber *string            `json:"parking_space_number,omitempty"`
	ResidentCount      *int               `json:"resident_count,omitempty"`
	OwnerID            *uuid.UUID         `json:"owner_id,omitempty"`
	TenantID           *uuid.UUID         `json:"tenant_id,omitempty"`
	ClearOwner         bool               `json:"clear_owner,omitempty"`
	ClearTenant        bool               `json:"clear_tenant,omitempty"`
}

func (r UpdateUnitRequest) ApplyTo(u *models.Unit) {
	setIf(&u.FloorID, r.FloorID)
	setIf(&u.UnitNumber, r.UnitNumber)
	setIf(&u.Type, r.Type)
	setIf(&u.Status, r.Status)
	setIf(&u.Area, r.Area)
	setIf(&u.HasParking, r.HasParking)
	setPtrIf(&u.ParkingSpaceNumber, r.ParkingSpaceNumber)
	setIf(&u.ResidentCount, r.ResidentCount)
	setPtrIf(&u.OwnerID, r.OwnerID)
	setPtrIf(&u.TenantID, r.TenantID)
	if r.ClearOwner {
		u.OwnerID = nil
	}
	if r.ClearTenant {
		u.TenantID = nil
	}
}

package repositories

import (
	"github.com/fastapi1403/building-management/internal/models"
)

var buildingTable = table[*models.Building]{
	name:      "buildings",
	columns:   []string{"name", "address", "total_floors", "description"},
	newEntity: func() *models.Building { return &models.Building{} },
	dest: func(b *models.Building) []any {
		return []any{&b.Name, &b.Address, &b.TotalFloors, &b.Description}
	},
	values: func(b *models.Building) []any {
		return []any{b.Name, b.Address, b.TotalFloors, b.Description}
	},
}

var floorTable = table[*models.Floor]{
	name:         "floors",
	parentColumn: "building_id",
	columns:      []string{"building_id", "number", "name", "total_units", "description"},
	newEntity:    func() *models.Floor { return &models.Floor{} },
	dest: func(f *models.Floor) []any {
		return []any{&f.BuildingID, &f.Number, &f.Name, &f.TotalUnits, &f.Description}
	},
	values: func(f *models.Floor) []any {
		return []any{f.BuildingID, f.Number, f.Name, f.TotalUnits, f.Description}
	},
}

var unitTable = table[*models.Unit]{
	name:         "units",
	parentColumn: "floor_id",
	columns: []string{
		"floor_id", "unit_number", "type", "status", "area", "has_parking",
		"parking_space_number", "resident_count", "owner_id", "tenant_id",
	},
	newEntity: func() *models.Unit { return &models.Unit{} },
	dest: func(u *models.Unit) []any {
		return []any{
			&u.FloorID, &u.UnitNumber, &u.Type, &u.Status, &u.Area, &u.HasParking,
			&u.ParkingSpaceNumber, &u.ResidentCount, &u.OwnerID, &u.TenantID,
		}
	},
	values: func(u *models.Unit) []any {
		return []any{
			u.FloorID, u.UnitNumber, string(u.Type), string(u.Status), u.Area, u.HasParking,
			u.ParkingSpaceNumber, u.ResidentCount, u.OwnerID, u.TenantID,
		}
	},
}

var ownerTable = table[*models.Owner]{
	name:      "owners",
	columns:   []string{"name", "owner_type", "phone", "email", "identification_number", "notes"},
	newEntity: func() *models.Owner { return &models.Owner{} },
	dest: func(o *models.Owner) []any {
		return []any{&o.Name, &o.OwnerType, &o.Phone, &o.Email, &o.IdentificationNumber, &o.Notes}
	},
	values: func(o *models.Owner) []any {
		return []any{o.Name, string(o.OwnerType), o.Phone, o.Email, o.IdentificationNumber, o.Notes}
	},
}

var tenantTable = table[*models.Tenant]{
	name: "tenants",
	columns: []string{
		"name", "tenant_type", "phone", "email", "identification_number",
		"occupant_count", "lease_start_date", "lease_end_date", "notes",
	},
	newEntity: func() *models.Tenant { return &models.Tenant{} },
	dest: func(t *models.Tenant) []any {
		return []any{
			&t.Name, &t.TenantType, &t.Phone, &t.Email, &t.IdentificationNumber,
			&t.OccupantCount, &t.LeaseStartDate, &t.LeaseEndDate, &t.Notes,
		}
	},
	values: func(t *models.Tenant) []any {
		return []any{
			t.Name, string(t.TenantType), t.Phone, t.Email, t.IdentificationNumber,
			t.OccupantCount, t.LeaseStartDate, t.LeaseEndDate, t.Notes,
		}
	},
}

func NewBuildingRepository(db DB) EntityRepository[*models.Building] {
	return newPgEntityRepo(db, buildingTable)
}

func NewFloorRepository(db DB) EntityRepository[*models.Floor] {
	return newPgEntityRepo(db, floorTable)
}

func NewOwnerRepository(db DB) EntityRepository[*models.Owner] {
	return newPgEntityRepo(db, ownerTable)
}

func NewTenantRepository(db DB) EntityRepository[*models.Tenant] {
	return newPgEntityRepo(db, tenantTable)
}

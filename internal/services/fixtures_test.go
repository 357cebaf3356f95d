package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/fastapi1403/building-management/internal/models"
	"github.com/fastapi1403/building-management/internal/repositories/memory"
)

const testActor = "admin"

type fixture struct {
	store     *memory.Store
	lc        *LifecycleService
	buildings *EntityService[*models.Building]
	floors    *EntityService[*models.Floor]
	units     *EntityService[*models.Unit]
	owners    *EntityService[*models.Owner]
	tenants   *EntityService[*models.Tenant]
	clock     time.Time
}

func newFixture(t *testing.T, policy CascadePolicy) *fixture {
	t.Helper()
	store := memory.NewStore()
	lc := NewLifecycleService(store, policy, nil)
	f := &fixture{
		store:     store,
		lc:        lc,
		buildings: NewBuildingService(lc),
		floors:    NewFloorService(lc),
		units:     NewUnitService(lc),
		owners:    NewOwnerService(lc),
		tenants:   NewTenantService(lc),
		clock:     time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
	}
	lc.now = func() time.Time { return f.clock }
	return f
}

func (f *fixture) advance(d time.Duration) { f.clock = f.clock.Add(d) }

func (f *fixture) building(t *testing.T, name string) *models.Building {
	t.Helper()
	b, err := f.buildings.Create(context.Background(), testActor, &models.Building{Name: name, TotalFloors: 5})
	require.NoError(t, err)
	return b
}

func (f *fixture) floor(t *testing.T, buildingID uuid.UUID, number int) *models.Floor {
	t.Helper()
	fl, err := f.floors.Create(context.Background(), testActor, &models.Floor{
		BuildingID: buildingID,
		Number:     number,
		Name:       "Floor",
		TotalUnits: 4,
	})
	require.NoError(t, err)
	return fl
}

func (f *fixture) unit(t *testing.T, floorID uuid.UUID, number string) *models.Unit {
	t.Helper()
	u, err := f.units.Create(context.Background(), testActor, &models.Unit{
		FloorID:    floorID,
		UnitNumber: number,
		Type:       models.UnitTypeResidential,
		Status:     models.UnitStatusVacant,
		Area:       72.5,
	})
	require.NoError(t, err)
	return u
}

func (f *fixture) owner(t *testing.T) *models.Owner {
	t.Helper()
	o, err := f.owners.Create(context.Background(), testActor, &models.Owner{
		Name:                 "Sara Ahmadi",
		OwnerType:            models.OwnerTypeIndividual,
		Phone:                "+98-21-5555",
		IdentificationNumber: "ID-1001",
	})
	require.NoError(t, err)
	return o
}

func (f *fixture) tenant(t *testing.T) *models.Tenant {
	t.Helper()
	tn, err := f.tenants.Create(context.Background(), testActor, &models.Tenant{
		Name:                 "Reza Karimi",
		TenantType:           models.TenantTypeFamily,
		Phone:                "+98-21-7777",
		IdentificationNumber: "ID-2002",
		OccupantCount:        3,
	})
	require.NoError(t, err)
	return tn
}

// tower builds one building with one floor holding two units.
func (f *fixture) tower(t *testing.T) (*models.Building, *models.Floor, []*models.Unit) {
	t.Helper()
	b := f.building(t, "Tower A")
	fl := f.floor(t, b.ID, 1)
	return b, fl, []*models.Unit{f.unit(t, fl.ID, "101"), f.unit(t, fl.ID, "102")}
}

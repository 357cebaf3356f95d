package app

import (
	"context"
	"fmt"

	"github.com/fastapi1403/building-management/internal/models"
	"github.com/fastapi1403/building-management/internal/repositories"
	"github.com/fastapi1403/building-management/internal/utils"
)

const seedActor = "system:seed"

// SeedDemoData creates one building with two floors, a few units and their
// owner and tenant. It does nothing when any building already exists,
// deleted or not.
func SeedDemoData(ctx context.Context, svcs *Services) error {
	existing, err := svcs.Buildings.List(ctx, repositories.ListFilter{IncludeDeleted: true, Limit: 1})
	if err != nil {
		return fmt.Errorf("error checking for existing buildings: %w", err)
	}
	if len(existing) > 0 {
		utils.Logger.Info("Store already holds buildings; skipping demo seed.")
		return nil
	}

	owner, err := svcs.Owners.Create(ctx, seedActor, &models.Owner{
		Name:                 "Demo Holdings",
		OwnerType:            models.OwnerTypeCompany,
		Phone:                "+15550000001",
		IdentificationNumber: "DEMO-OWNER-1",
	})
	if err != nil {
		return fmt.Errorf("failed to insert demo owner: %w", err)
	}
	tenant, err := svcs.Tenants.Create(ctx, seedActor, &models.Tenant{
		Name:                 "Demo Tenant",
		TenantType:           models.TenantTypeIndividual,
		Phone:                "+15550000002",
		IdentificationNumber: "DEMO-TENANT-1",
		OccupantCount:        2,
	})
	if err != nil {
		return fmt.Errorf("failed to insert demo tenant: %w", err)
	}

	building, err := svcs.Buildings.Create(ctx, seedActor, &models.Building{
		Name:        "Tower A",
		Address:     utils.Ptr("1 Main St"),
		TotalFloors: 2,
	})
	if err != nil {
		return fmt.Errorf("failed to insert demo building: %w", err)
	}

	units := 0
	for number := 1; number <= building.TotalFloors; number++ {
		floor, err := svcs.Floors.Create(ctx, seedActor, &models.Floor{
			BuildingID: building.ID,
			Number:     number,
			Name:       fmt.Sprintf("Floor %d", number),
			TotalUnits: 2,
		})
		if err != nil {
			return fmt.Errorf("failed to insert demo floor %d: %w", number, err)
		}
		for i := 1; i <= floor.TotalUnits; i++ {
			u := &models.Unit{
				FloorID:    floor.ID,
				UnitNumber: fmt.Sprintf("%d%02d", number, i),
				Type:       models.UnitTypeResidential,
				Status:     models.UnitStatusVacant,
				Area:       65,
				OwnerID:    &owner.ID,
			}
			if number == 1 && i == 1 {
				u.Status = models.UnitStatusOccupied
				u.TenantID = &tenant.ID
				u.ResidentCount = tenant.OccupantCount
			}
			if _, err := svcs.Units.Create(ctx, seedActor, u); err != nil {
				return fmt.Errorf("failed to insert demo unit %s: %w", u.UnitNumber, err)
			}
			units++
		}
	}

	utils.Logger.Infof("Seeded demo building %s with %d floors and %d units.", building.ID, building.TotalFloors, units)
	return nil
}

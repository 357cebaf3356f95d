package app

import (
	"github.com/fastapi1403/building-management/internal/cache"
	"github.com/fastapi1403/building-management/internal/config"
	"github.com/fastapi1403/building-management/internal/models"
	"github.com/fastapi1403/building-management/internal/repositories"
	"github.com/fastapi1403/building-management/internal/services"
)

// Services is the service graph shared by the router and the cron jobs.
type Services struct {
	Lifecycle *services.LifecycleService
	Buildings *services.EntityService[*models.Building]
	Floors    *services.EntityService[*models.Floor]
	Units     *services.EntityService[*models.Unit]
	Owners    *services.EntityService[*models.Owner]
	Tenants   *services.EntityService[*models.Tenant]
	Purge     *services.PurgeService
}

// NewServices wires the services over store; entityCache may be nil.
func NewServices(cfg *config.Config, store repositories.Store, entityCache *cache.EntityCache) *Services {
	lc := services.NewLifecycleService(store, services.CascadePolicy{
		SoftDeleteDepth: cfg.LDFlag_SoftDeleteCascadeDepth,
		HardDeleteDepth: cfg.LDFlag_HardDeleteCascadeDepth,
	}, entityCache)

	return &Services{
		Lifecycle: lc,
		Buildings: services.NewBuildingService(lc),
		Floors:    services.NewFloorService(lc),
		Units:     services.NewUnitService(lc),
		Owners:    services.NewOwnerService(lc),
		Tenants:   services.NewTenantService(lc),
		Purge:     services.NewPurgeService(lc, cfg.PurgeRetention),
	}
}

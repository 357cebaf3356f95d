package main

import (
	"context"
	"net/http"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/fastapi1403/building-management/internal/app"
	"github.com/fastapi1403/building-management/internal/config"
	"github.com/fastapi1403/building-management/internal/controllers"
	"github.com/fastapi1403/building-management/internal/utils"
)

const purgeJobTimeout = 30 * time.Minute

func main() {
	utils.InitLogger(config.AppName)
	cfg := config.LoadConfig()

	application, err := app.NewApp(cfg)
	if err != nil {
		utils.Logger.Fatal("Failed to initialize building-management:", err)
	}
	defer application.Close()

	svcs := app.NewServices(cfg, application.Store, application.Cache)

	if cfg.LDFlag_SeedDbWithTestData {
		if err := app.SeedDemoData(context.Background(), svcs); err != nil {
			utils.Logger.Fatal("Failed to seed demo data:", err)
		}
	}

	var db controllers.Pinger
	if application.DB != nil {
		db = application.DB
	}
	handler, err := app.NewRouter(cfg, svcs, db)
	if err != nil {
		utils.Logger.WithError(err).Fatal("Failed to build router")
	}

	// Cron job setup
	c := cron.New(cron.WithLocation(time.UTC))
	if cfg.PurgeRetention > 0 {
		_, err = c.AddFunc(cfg.PurgeSchedule, func() {
			ctx, cancel := context.WithTimeout(context.Background(), purgeJobTimeout)
			defer cancel()
			utils.Logger.Info("Starting retention purge cron job...")
			report, err := svcs.Purge.Run(ctx)
			if err != nil {
				utils.Logger.WithError(err).Error("Retention purge failed")
				return
			}
			utils.Logger.Infof("Retention purge done: purged=%v skipped=%d", report.Purged, report.Skipped)
		})
		if err != nil {
			utils.Logger.WithError(err).Fatal("Failed to schedule retention purge cron")
		}
		c.Start()
		defer c.Stop()
		utils.Logger.Infof("Scheduled retention purge '%s' for records deleted over %s ago", cfg.PurgeSchedule, cfg.PurgeRetention)
	}

	utils.Logger.Infof("Starting %s on port: %s", cfg.AppName, cfg.AppPort)
	if err := http.ListenAndServe(":"+cfg.AppPort, handler); err != nil {
		utils.Logger.Fatal("building-management failed to start:", err)
	}
}

package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/fastapi1403/building-management/internal/cache"
	"github.com/fastapi1403/building-management/internal/config"
	"github.com/fastapi1403/building-management/internal/repositories"
	"github.com/fastapi1403/building-management/internal/repositories/memory"
	"github.com/fastapi1403/building-management/internal/utils"
)

const (
	maxRetries     = 5
	connectTimeout = 5 * time.Second
	initialBackoff = 500 * time.Millisecond
)

type App struct {
	Config *config.Config
	// DB is nil when the memory store is configured.
	DB    *pgxpool.Pool
	Store repositories.Store
	Cache *cache.EntityCache
}

func NewApp(cfg *config.Config) (*App, error) {
	app := &App{Config: cfg}

	switch cfg.StoreDriver {
	case config.StoreDriverMemory:
		utils.Logger.Warn("Using the in-memory store; data is lost on restart")
		app.Store = memory.NewStore()
	default:
		dbPool, err := connectWithRetry(cfg.DBUrl)
		if err != nil {
			return nil, err
		}
		app.DB = dbPool
		app.Store = repositories.NewPgStore(dbPool)
	}

	if cfg.LDFlag_EnableReadCache {
		cacheCfg := cache.DefaultConfig()
		if cfg.CacheTTL > 0 {
			cacheCfg.TTL = cfg.CacheTTL
		}
		c, err := cache.New(cacheCfg)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("creating read cache: %w", err)
		}
		app.Cache = c
		utils.Logger.Infof("Read cache enabled; ttl=%s", cacheCfg.TTL)
	}
	return app, nil
}

func connectWithRetry(databaseURL string) (*pgxpool.Pool, error) {
	var (
		dbPool  *pgxpool.Pool
		err     error
		backoff = initialBackoff
	)

	for i := 1; i <= maxRetries; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		dbPool, err = newDBPool(ctx, databaseURL)
		cancel()
		if err == nil {
			utils.Logger.Infof("Connected to DB on attempt %d", i)
			return dbPool, nil
		}

		utils.Logger.WithError(err).Warnf(
			"Failed DB connect on attempt %d/%d. Retrying in %v...",
			i, maxRetries, backoff,
		)
		if i == maxRetries {
			break
		}
		time.Sleep(backoff)
		backoff *= 2
	}
	return nil, fmt.Errorf("unable to connect after %d attempts: %w", maxRetries, err)
}

func (a *App) Close() {
	if a.Cache != nil {
		a.Cache.Close()
	}
	if a.DB != nil {
		a.DB.Close()
		utils.Logger.Info("DB connection closed.")
	}
}

func newDBPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, err
	}
	cfg.MaxConnIdleTime = 2 * time.Minute
	cfg.HealthCheckPeriod = 30 * time.Second
	return pgxpool.ConnectConfig(ctx, cfg)
}

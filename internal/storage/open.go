package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/ggorockee/companyfinder/internal/config"
	"github.com/ggorockee/companyfinder/internal/database"
	"github.com/ggorockee/companyfinder/internal/logger"
)

// Open returns the store selected by CACHE_BACKEND. The postgres backend is
// migrated and its pool gauges are refreshed until ctx is done.
func Open(ctx context.Context, cfg *config.Config) (CompanyStore, error) {
	log := logger.GetLogger("storage")

	switch cfg.Cache.Backend {
	case config.CacheBackendBadger:
		store, err := OpenBadgerCompanyStore(cfg.Cache.BadgerPath)
		if err != nil {
			return nil, err
		}
		log.Infof("Using badger result cache at %s", cfg.Cache.BadgerPath)
		return store, nil

	case config.CacheBackendPostgres:
		db, err := database.Connect(cfg)
		if err != nil {
			return nil, err
		}
		if err := database.Migrate(db); err != nil {
			_ = db.Close()
			return nil, err
		}
		go database.StartConnectionPoolMetricsCollector(ctx, db.DB, 15*time.Second)
		log.Info("Using postgres result cache")
		return NewPostgresCompanyStore(db), nil

	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Cache.Backend)
	}
}

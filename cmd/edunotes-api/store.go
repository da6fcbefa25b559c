package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/noah-isme/edunotes-api/internal/handler"
	"github.com/noah-isme/edunotes-api/internal/store"
	"github.com/noah-isme/edunotes-api/pkg/cache"
	"github.com/noah-isme/edunotes-api/pkg/config"
	"github.com/noah-isme/edunotes-api/pkg/database"
)

// openStore builds the configured key-value backend wrapped with metrics and
// the key prefix. The returned check backs /ready.
func openStore(ctx context.Context, cfg *config.Config, logr *zap.Logger, observer store.Observer) (store.Store, handler.ReadinessCheck, error) {
	var (
		backend store.Store
		ready   handler.ReadinessCheck
	)

	switch cfg.Store.Driver {
	case config.StoreDriverMemory:
		backend = store.NewMemory()
	case config.StoreDriverFile, "":
		fileStore, err := store.NewFile(cfg.Store.FileDir)
		if err != nil {
			return nil, nil, fmt.Errorf("init file store: %w", err)
		}
		backend = fileStore
	case config.StoreDriverRedis:
		client, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		backend = store.NewRedis(client)
		ready = func(ctx context.Context) error { return client.Ping(ctx).Err() }
	case config.StoreDriverPostgres:
		db, err := database.NewPostgres(ctx, cfg.Database)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := database.Migrate(ctx, db); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		backend = store.NewPostgres(db)
		ready = db.PingContext
	case config.StoreDriverNone:
		logr.Warn("store disabled, data will not be persisted")
		backend = store.Unavailable{}
	default:
		return nil, nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.Store.Driver)
	}

	wrapped := store.NewInstrumented(store.WithPrefix(backend, cfg.Store.KeyPrefix), observer, logr)
	return wrapped, ready, nil
}

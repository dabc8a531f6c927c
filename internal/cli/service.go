package cli

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"lms-store-service/internal/app"
	"lms-store-service/internal/config"
	filestore "lms-store-service/internal/infra/file"
	pgstore "lms-store-service/internal/infra/postgres"
	redisstore "lms-store-service/internal/infra/redis"
	cloudsync "lms-store-service/internal/sync"
)

// buildService assembles the store backend, connector, and service per
// config. The returned cleanup closes any connections it opened.
func buildService(ctx context.Context, cfg config.Config, logger *zap.Logger) (*app.StoreService, func(), error) {
	cleanup := func() {}

	var store interface {
		app.Store
		app.SettingsStore
	}

	switch cfg.Store.Backend {
	case "", "file":
		dir := cfg.Store.Dir
		if dir == "" {
			dir = "data"
		}
		fs, err := filestore.NewStore(dir)
		if err != nil {
			return nil, nil, err
		}
		store = fs
	case "redis":
		if cfg.Redis.Addr == "" {
			return nil, nil, fmt.Errorf("redis backend selected but redis.addr is empty")
		}
		client := goredis.NewClient(&goredis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		cleanup = func() { _ = client.Close() }
		store = redisstore.NewStore(client)
	case "postgres":
		if cfg.Postgres.URL == "" {
			return nil, nil, fmt.Errorf("postgres backend selected but postgres.url is empty")
		}
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, nil, err
		}
		cleanup = pool.Close
		store = pgstore.NewStore(pool)
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}

	connector := cloudsync.NewConnector(nil, logger)
	defaults := app.SettingsDefaults{
		SheetURL: cfg.DefaultSettingsURL(),
		Enabled:  cfg.DefaultSettingsEnabled(),
	}
	service := app.NewStoreService(store, store, connector, app.GoDispatcher{}, logger, defaults)
	return service, cleanup, nil
}

package bootstrap

import (
	"context"
	"fmt"

	"github.com/Domenick1991/flightinfo/config"
	"github.com/Domenick1991/flightinfo/internal/cache"
	"github.com/Domenick1991/flightinfo/internal/flightjson"
	"github.com/Domenick1991/flightinfo/internal/repository"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewRepository builds the snapshot store selected by registry.store. The
// returned func releases its connections.
func NewRepository(ctx context.Context, cfg *config.Config, codec *flightjson.Codec) (repository.FlightRepository, func(), error) {
	switch cfg.Registry.Store {
	case config.StoreFile:
		return repository.NewFileFlightRepository(cfg.Registry.DataPath, codec), func() {}, nil

	case config.StoreRedis:
		store := cache.NewRedisSnapshotStore(cfg.Redis, cfg.Registry.RedisKey, codec)
		return store, func() { _ = store.Close() }, nil

	case config.StorePostgres:
		pool, err := pgxpool.New(ctx, cfg.Database.DSN())
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		repo := repository.NewFlightRepository(pool)
		if err := repo.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return repo, pool.Close, nil

	default:
		return nil, nil, fmt.Errorf("%w: %q", config.ErrUnknownStore, cfg.Registry.Store)
	}
}

package db

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/geocoder89/healthmate/internal/config"
	"github.com/geocoder89/healthmate/internal/observability"
	"github.com/geocoder89/healthmate/internal/repo/memory"
	"github.com/geocoder89/healthmate/internal/repo/mongodb"
	"github.com/geocoder89/healthmate/internal/repo/postgres"
	"github.com/geocoder89/healthmate/internal/service"
)

// Stores is the storage backend selected by STORE_DRIVER.
type Stores struct {
	Users service.UserStore
	Spots service.SpotStore
	Ping  func(ctx context.Context) error
	Close func()
}

func Open(ctx context.Context, cfg config.Config, prom *observability.Prom, log *slog.Logger) (Stores, error) {
	switch cfg.StoreDriver {
	case config.DriverMongo:
		store, err := mongodb.Connect(ctx, cfg.MongoURL, cfg.MongoDB, prom, log)
		if err != nil {
			return Stores{}, err
		}

		return Stores{
			Users: store.Users(),
			Spots: store.Spots(),
			Ping:  store.Ping,
			Close: func() {
				ctx, cancel := config.WithTimeout(defaultCloseTimeout)
				defer cancel()
				if err := store.Close(ctx); err != nil {
					log.Error("mongo disconnect failed", "err", err)
				}
			},
		}, nil

	case config.DriverPostgres:
		pool, err := NewPool(ctx, cfg.DBURL, PoolOptions{
			MaxConns:        cfg.DB.MaxConns,
			MinConns:        cfg.DB.MinConns,
			MaxConnIdleTime: cfg.DB.MaxConnIdleTime,
			ConnectAttempts: cfg.DB.ConnectAttempts,
		})
		if err != nil {
			return Stores{}, fmt.Errorf("postgres connect: %w", err)
		}

		if err := Migrate(ctx, pool); err != nil {
			pool.Close()
			return Stores{}, err
		}

		return Stores{
			Users: postgres.NewUsersRepo(pool, prom),
			Spots: postgres.NewSpotsRepo(pool, prom),
			Ping:  pool.Ping,
			Close: pool.Close,
		}, nil

	case config.DriverMemory:
		log.Warn("using in-memory store; data is lost on restart")
		mem := memory.NewDB()

		return Stores{
			Users: mem.Users(),
			Spots: mem.Spots(),
			Ping:  func(context.Context) error { return nil },
			Close: func() {},
		}, nil
	}

	return Stores{}, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}

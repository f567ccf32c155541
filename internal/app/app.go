// Package app wires configuration into stores, services and their
// collaborators for the binaries under cmd/
package app

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/ArowuTest/poolgame-backend/internal/cache"
	"github.com/ArowuTest/poolgame-backend/internal/config"
	"github.com/ArowuTest/poolgame-backend/internal/events"
	"github.com/ArowuTest/poolgame-backend/internal/repositories"
	"github.com/ArowuTest/poolgame-backend/internal/repositories/memory"
	mongorepo "github.com/ArowuTest/poolgame-backend/internal/repositories/mongodb"
	pgrepo "github.com/ArowuTest/poolgame-backend/internal/repositories/postgres"
	"github.com/ArowuTest/poolgame-backend/internal/services"
	"github.com/ArowuTest/poolgame-backend/pkg/mongodb"
	"github.com/ArowuTest/poolgame-backend/pkg/postgres"
)

// App holds the wired dependencies of a process
type App struct {
	Store       *repositories.Store
	Draws       *services.DrawServiceImpl
	Settlements *services.SettlementServiceImpl
	Rounds      *services.RoundServiceImpl

	closers []func(ctx context.Context) error
}

// New connects the configured backends and builds the services
func New(ctx context.Context, cfg *config.Config, logger log.FieldLogger) (*App, error) {
	a := &App{}

	store, err := OpenStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	a.Store = store
	a.closers = append(a.closers, store.Close)

	var publisher events.Publisher = events.NoopPublisher{}
	if cfg.NATS.Enabled {
		p, err := events.Connect(cfg.NATS.URL, cfg.NATS.Token, cfg.NATS.SubjectPrefix)
		if err != nil {
			_ = a.Close(ctx)
			return nil, fmt.Errorf("connect nats: %w", err)
		}
		publisher = p
		logger.WithField("url", cfg.NATS.URL).Info("publishing events to NATS")
	}
	a.closers = append(a.closers, func(context.Context) error {
		publisher.Close()
		return nil
	})

	var resultCache cache.ResultCache = cache.NoopResultCache{}
	if cfg.Redis.Enabled {
		rdb, err := cache.NewRedis(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			_ = a.Close(ctx)
			return nil, err
		}
		resultCache = cache.NewRedisResultCache(rdb, cfg.Redis.TTL)
		a.closers = append(a.closers, func(context.Context) error { return rdb.Close() })
		logger.WithField("addr", cfg.Redis.Addr).Info("caching settlement results in redis")
	}

	a.Draws = services.NewDrawService(store.Rounds, store.Draws, publisher, logger, nil)
	a.Settlements = services.NewSettlementService(store, resultCache, publisher, logger, cfg.Settlement.Lease, nil)
	a.Rounds = services.NewRoundService(store.Rounds, publisher, logger, nil)
	return a, nil
}

// OpenStore connects the repository backend named by cfg.Store.Driver
func OpenStore(ctx context.Context, cfg *config.Config, logger log.FieldLogger) (*repositories.Store, error) {
	switch cfg.Store.Driver {
	case config.DriverMongo:
		client, err := mongodb.NewClient(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout)
		if err != nil {
			return nil, fmt.Errorf("connect mongodb: %w", err)
		}
		db := client.Database(cfg.MongoDB.Database)
		if err := mongorepo.EnsureIndexes(ctx, db); err != nil {
			_ = client.Disconnect(ctx)
			return nil, fmt.Errorf("ensure mongodb indexes: %w", err)
		}
		logger.WithField("database", cfg.MongoDB.Database).Info("using mongodb store")
		return mongorepo.NewStore(db, client.Disconnect), nil

	case config.DriverPostgres:
		pool, err := postgres.Connect(ctx, cfg.Postgres.DSN, cfg.Postgres.MaxConns, cfg.Postgres.Timeout)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		if cfg.Postgres.EnsureSchema {
			if err := pgrepo.EnsureSchema(ctx, pool); err != nil {
				pool.Close()
				return nil, fmt.Errorf("ensure postgres schema: %w", err)
			}
		}
		logger.Info("using postgres store")
		return pgrepo.NewStore(pool), nil

	case config.DriverMemory:
		logger.Warn("using in-memory store, data is lost on exit")
		return memory.NewStore().Repositories(), nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
}

// Close releases every connection in reverse order of creation
func (a *App) Close(ctx context.Context) error {
	var first error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil && first == nil {
			first = err
		}
	}
	a.closers = nil
	return first
}

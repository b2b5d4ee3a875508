// Package app is the composition root shared by the API server and the CLI.
package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/matchdex/internal/config"
	"github.com/kailas-cloud/matchdex/internal/db"
	"github.com/kailas-cloud/matchdex/internal/db/elastic"
	dbRedis "github.com/kailas-cloud/matchdex/internal/db/redis"
	dbSQLite "github.com/kailas-cloud/matchdex/internal/db/sqlite"
	"github.com/kailas-cloud/matchdex/internal/domain/search/filter"
	"github.com/kailas-cloud/matchdex/internal/metrics"
	"github.com/kailas-cloud/matchdex/internal/repository/languages"
	placerepo "github.com/kailas-cloud/matchdex/internal/repository/place"
	userrepo "github.com/kailas-cloud/matchdex/internal/repository/user"
	healthuc "github.com/kailas-cloud/matchdex/internal/usecase/health"
	searchuc "github.com/kailas-cloud/matchdex/internal/usecase/search"
)

// App holds the wired services.
type App struct {
	Store    db.Store
	Index    *elastic.Client
	Users    *userrepo.Repo
	Places   *placerepo.Repo
	Repairer *searchuc.Repairer
	Search   *searchuc.Service
	Health   *healthuc.Service
}

// New connects the record store and the search index and wires the services.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	store, err := NewStore(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("create record store: %w", err)
	}
	if err := store.WaitForReady(ctx, seconds(cfg.Database.ReadinessTimeout)); err != nil {
		store.Close()
		return nil, fmt.Errorf("record store not ready: %w", err)
	}
	logger.Info("Connected to record store", zap.String("driver", cfg.Database.Driver))

	index, err := elastic.NewClient(elastic.Config{
		Addresses:  cfg.Index.Addresses,
		Username:   cfg.Index.Username,
		Password:   cfg.Index.Password,
		APIKey:     cfg.Index.APIKey,
		Index:      cfg.Index.Name,
		MaxRetries: cfg.Index.MaxRetries,
	})
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("create index client: %w", err)
	}
	if err := index.WaitForReady(ctx, seconds(cfg.Index.ReadinessTimeout)); err != nil {
		store.Close()
		return nil, fmt.Errorf("index not ready: %w", err)
	}
	logger.Info("Connected to search index", zap.String("index", index.Index()))

	// Explicit registration, no init().
	metrics.RegisterSearchMetrics()

	users := userrepo.New(store)
	places := placerepo.New(store)
	dispatcher := filter.NewDispatcher(languages.New(), filter.WithLegacyLocales(cfg.Search.LegacyLocales...))

	repairer := searchuc.NewRepairer(index, searchuc.RepairConfig{
		QueueSize:  cfg.Repair.QueueSize,
		RatePerSec: cfg.Repair.RatePerSec,
		Timeout:    seconds(cfg.Repair.TimeoutSec),
	}, logger)

	searchSvc := searchuc.New(index, users, places, dispatcher, repairer, searchuc.Config{
		Index:              index.Index(),
		ClusterThreshold:   cfg.Search.ClusterThreshold,
		FallbackDistanceKm: cfg.Search.FallbackDistanceKm,
		RecencyDays:        cfg.Search.RecencyDays,
	})

	return &App{
		Store:    store,
		Index:    index,
		Users:    users,
		Places:   places,
		Repairer: repairer,
		Search:   searchSvc,
		Health:   healthuc.New(index, store),
	}, nil
}

// Close drains the repair queue and closes the record store.
func (a *App) Close() {
	a.Repairer.Close()
	a.Store.Close()
}

// NewStore creates the record store for the configured driver.
func NewStore(ctx context.Context, cfg config.DatabaseConfig) (db.Store, error) {
	switch cfg.Driver {
	case config.DriverRedis:
		return dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Addrs,
			Password: cfg.Password,
			DB:       cfg.DB,
		})
	case config.DriverSQLite:
		return dbSQLite.NewStore(ctx, dbSQLite.Config{Path: cfg.Path})
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}

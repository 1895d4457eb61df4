package server

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/gophfarm/internal/catalog"
	"github.com/dmitrijs2005/gophfarm/internal/config"
	"github.com/dmitrijs2005/gophfarm/internal/dbx"
	"github.com/dmitrijs2005/gophfarm/internal/logging"
	"github.com/dmitrijs2005/gophfarm/internal/repositories/repomanager"
	"github.com/dmitrijs2005/gophfarm/internal/services"
	"github.com/dmitrijs2005/gophfarm/internal/store"
)

// Engine is an open farm database brought to the current schema, with every
// service bound to it. The daemon and the CLI both start from one.
type Engine struct {
	DB       *sql.DB
	Runner   *dbx.Runner
	Repos    repomanager.RepositoryManager
	Services *services.Suite
	Catalog  *catalog.Catalog

	// Changed lists the tables reconciliation had to touch.
	Changed []string
}

// OpenEngine opens the store, reconciles every table, applies the index
// migrations and wires the services. Any failure closes the store.
func OpenEngine(ctx context.Context, cfg *config.Config, logger logging.Logger) (*Engine, error) {
	db, err := store.Open(ctx, cfg.DatabaseDSN, store.Options{BusyTimeout: cfg.BusyTimeout})
	if err != nil {
		return nil, err
	}

	e, err := newEngine(ctx, db, cfg, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return e, nil
}

func newEngine(ctx context.Context, db *sql.DB, cfg *config.Config, logger logging.Logger) (*Engine, error) {
	runner := dbx.NewRunner(db)
	rm := repomanager.NewSQLiteRepositoryManager(logger)

	changed, err := rm.Reconcile(ctx, runner)
	if err != nil {
		return nil, fmt.Errorf("schema reconciliation failed: %w", err)
	}
	if err := rm.RunMigrations(ctx, db); err != nil {
		return nil, err
	}

	cat, found, err := catalog.LoadOptional(cfg.CatalogPath)
	if err != nil {
		return nil, err
	}
	if !found {
		logger.Warn(ctx, "plant catalog not found, sowing is disabled", "path", cfg.CatalogPath)
	}
	for _, reason := range cat.Skipped() {
		logger.Warn(ctx, "plant catalog entry skipped", "path", cfg.CatalogPath, "reason", reason)
	}

	return &Engine{
		DB:       db,
		Runner:   runner,
		Repos:    rm,
		Services: services.NewSuite(runner, rm, cat, services.SystemClock{}, cfg.PlotsPerUser, logger),
		Catalog:  cat,
		Changed:  changed,
	}, nil
}

func (e *Engine) Close() error {
	return e.DB.Close()
}

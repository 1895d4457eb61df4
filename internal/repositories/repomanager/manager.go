// Package repomanager vends SQLite repositories bound to either the store
// handle or a transaction, and owns the startup steps that shape the
// database: table reconciliation and goose index migrations.
package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/gophfarm/internal/dbx"
	"github.com/dmitrijs2005/gophfarm/internal/logging"
	"github.com/dmitrijs2005/gophfarm/internal/migrations"
	"github.com/dmitrijs2005/gophfarm/internal/repositories/inventory"
	"github.com/dmitrijs2005/gophfarm/internal/repositories/plots"
	"github.com/dmitrijs2005/gophfarm/internal/repositories/signins"
	"github.com/dmitrijs2005/gophfarm/internal/repositories/thefts"
	"github.com/dmitrijs2005/gophfarm/internal/repositories/users"
	"github.com/dmitrijs2005/gophfarm/internal/schema"
	"github.com/pressly/goose/v3"
)

type RepositoryManager interface {
	Reconcile(ctx context.Context, runner *dbx.Runner) ([]string, error)
	RunMigrations(ctx context.Context, db *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Plots(db dbx.DBTX) plots.Repository
	Inventory(db dbx.DBTX, kind inventory.Kind) inventory.Repository
	Thefts(db dbx.DBTX) thefts.Repository
	SignIns(db dbx.DBTX) signins.Repository
}

// SQLiteRepositoryManager is the RepositoryManager used by the daemon and
// the CLI.
type SQLiteRepositoryManager struct {
	log logging.Logger
}

func NewSQLiteRepositoryManager(log logging.Logger) *SQLiteRepositoryManager {
	return &SQLiteRepositoryManager{log: log}
}

func (m *SQLiteRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewSQLiteRepository(db)
}

func (m *SQLiteRepositoryManager) Plots(db dbx.DBTX) plots.Repository {
	return plots.NewSQLiteRepository(db)
}

func (m *SQLiteRepositoryManager) Inventory(db dbx.DBTX, kind inventory.Kind) inventory.Repository {
	return inventory.NewSQLiteRepository(db, kind)
}

func (m *SQLiteRepositoryManager) Thefts(db dbx.DBTX) thefts.Repository {
	return thefts.NewSQLiteRepository(db)
}

func (m *SQLiteRepositoryManager) SignIns(db dbx.DBTX) signins.Repository {
	return signins.NewSQLiteRepository(db)
}

// Reconcile brings every farm table to its declared shape and returns the
// names of the tables that changed. Any error is fatal for startup.
func (m *SQLiteRepositoryManager) Reconcile(ctx context.Context, runner *dbx.Runner) ([]string, error) {
	changed, err := schema.NewManager(runner, m.log).ReconcileAll(ctx, schema.All()...)
	if err != nil {
		return changed, err
	}
	m.log.Info(ctx, "schema reconciled", "changed", changed)
	return changed, nil
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations applies the embedded index migrations. Tables must exist,
// so it runs after Reconcile.
func (m *SQLiteRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	if err := gooseUpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

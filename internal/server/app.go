// Package server runs the farm daemon: it brings the database to the
// current schema, optionally migrates the legacy soil table and serves gRPC
// health until it is signalled to stop.
package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/gophfarm/internal/config"
	"github.com/dmitrijs2005/gophfarm/internal/logging"
	"github.com/google/uuid"

	gs "github.com/dmitrijs2005/gophfarm/internal/server/grpc"
)

type App struct {
	config *config.Config
	logger logging.Logger
	health *gs.GRPCServer
}

// NewApp tags every log line of this run with a fresh run id.
func NewApp(c *config.Config, logger logging.Logger) *App {
	logger = logger.With("run_id", uuid.NewString())
	return &App{
		config: c,
		logger: logger,
		health: gs.NewGRPCServer(c.GRPCAddr, logger),
	}
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run blocks until ctx is cancelled, a signal arrives or startup fails. The
// health endpoint answers NOT_SERVING until the schema is in place.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting farm daemon...")
	app.initSignalHandler(cancelFunc)

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- app.health.Run(ctx)
	}()

	engine, err := OpenEngine(ctx, app.config, app.logger)
	if err != nil {
		app.logger.Error(ctx, "startup failed", "error", err)
		cancelFunc()
		<-serveErr
		return err
	}
	defer func() {
		if err := engine.Close(); err != nil {
			app.logger.Error(ctx, "failed to close store", "error", err)
		}
	}()

	if app.config.MigrateLegacy {
		migrated, err := engine.Services.Plots.MigrateLegacy(ctx)
		if err != nil {
			app.logger.Error(ctx, "legacy migration failed", "error", err)
			cancelFunc()
			<-serveErr
			return err
		}
		if migrated {
			app.logger.Info(ctx, "legacy soil table migrated")
		}
	}

	app.health.SetServing(true)
	app.logger.Info(ctx, "farm daemon ready", "changed_tables", engine.Changed)

	err = <-serveErr
	app.health.SetServing(false)
	app.logger.Info(ctx, "farm daemon stopped")
	return err
}

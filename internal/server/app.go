// Package server wires the key-value backend: it opens the configured
// storage, serves the HTTP API and shuts down gracefully on signals.
package server

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/drawersync/internal/logging"
	"github.com/dmitrijs2005/drawersync/internal/server/config"
	"github.com/dmitrijs2005/drawersync/internal/server/httpapi"
	"github.com/dmitrijs2005/drawersync/internal/server/repositories/repomanager"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	manager *repomanager.RepositoryManager
	server  *httpapi.Server
}

func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	m, err := repomanager.Open(ctx, c)
	if err != nil {
		return nil, err
	}

	s := httpapi.NewServer(c.HTTPAddr, logger, m.KV(),
		httpapi.WithSecret(c.SecretKey),
		httpapi.WithCORSOrigins(c.CORSAllowedOrigins),
	)

	return &App{config: c, logger: logger, manager: m, server: s}, nil
}

func (app *App) initSignalHandler(ctx context.Context, cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		defer signal.Stop(sigs)
		select {
		case sig := <-sigs:
			app.logger.Info(ctx, "Received signal", "signal", sig.String())
			cancelFunc()
		case <-ctx.Done():
		}
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.server.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves until ctx is cancelled or a termination signal arrives.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "storage", app.manager.Kind(), "auth", app.config.SecretKey != "")

	app.initSignalHandler(ctx, cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.manager.Close(); err != nil {
		app.logger.Error(ctx, "failed to close storage", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
}

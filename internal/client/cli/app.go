package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/dmitrijs2005/drawersync/internal/client/client"
	"github.com/dmitrijs2005/drawersync/internal/client/config"
	"github.com/dmitrijs2005/drawersync/internal/client/services"
	"github.com/dmitrijs2005/drawersync/internal/client/store"
	"github.com/dmitrijs2005/drawersync/internal/client/syncer"
	"github.com/dmitrijs2005/drawersync/internal/cryptox"
	"github.com/dmitrijs2005/drawersync/internal/filex"
	"github.com/dmitrijs2005/drawersync/internal/logging"
)

type App struct {
	config   *config.Config
	logger   logging.Logger
	store    *store.Local
	syncer   *syncer.Syncer
	pinger   *syncer.PingWatcher
	watcher  *syncer.StoreWatcher
	profiles services.ProfileService
	days     services.DayService
	stdin    io.Reader
}

func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	policy, err := syncer.ParsePolicy(c.SyncPolicy)
	if err != nil {
		return nil, err
	}

	dbPath, err := filex.EnsureParentDir(c.DatabasePath)
	if err != nil {
		return nil, err
	}

	st, err := store.Open(ctx, dbPath)
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}

	clientOpts := []client.Option{
		client.WithToken(c.Token),
		client.WithClientID(c.ClientID),
		client.WithTimeout(c.RequestTimeout),
	}
	if c.Passphrase != "" {
		clientOpts = append(clientOpts, client.WithSealer(cryptox.NewSealer(c.Passphrase)))
	}
	remote := client.NewHTTPClient(c.ServerURL, clientOpts...)

	pinger := syncer.NewPingWatcher(remote, c.OnlineCheckInterval, logger)

	syncOpts := []syncer.Option{
		syncer.WithPolicy(policy),
		syncer.WithPushDelay(c.PushDelay),
		syncer.WithResyncInterval(c.ResyncInterval),
		syncer.WithConnectivity(pinger),
	}

	watcher, err := syncer.NewStoreWatcher(st.Path(), logger)
	if err != nil {
		logger.Warn(ctx, "store watcher disabled", "error", err)
	} else {
		syncOpts = append(syncOpts, syncer.WithStoreChanges(watcher.Events()))
	}

	s := syncer.New(st, remote, logger, syncOpts...)

	return &App{
		config:   c,
		logger:   logger.With("module", "cli"),
		store:    st,
		syncer:   s,
		pinger:   pinger,
		watcher:  watcher,
		profiles: services.NewProfileService(st, s, nil),
		days:     services.NewDayService(st, s, nil),
		stdin:    os.Stdin,
	}, nil
}

// Run starts background synchronization and the REPL. It returns when the
// user exits or ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		a.pinger.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		if err := a.syncer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			a.logger.Error(ctx, "syncer stopped", "error", err)
		}
	}()
	if a.watcher != nil {
		a.watcher.Start(ctx)
	}

	a.Root(ctx)

	cancel()
	wg.Wait()

	// One last attempt so edits made just before exit reach the server.
	flushCtx, flushCancel := context.WithTimeout(context.Background(), a.config.RequestTimeout)
	a.syncer.SyncAllKeys(flushCtx)
	flushCancel()

	return a.Close()
}

func (a *App) Close() error {
	var errs []error
	if a.watcher != nil {
		errs = append(errs, a.watcher.Close())
	}
	errs = append(errs, a.store.Close())
	return errors.Join(errs...)
}

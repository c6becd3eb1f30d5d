package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/MKhiriev/go-task-sync/internal/adapter"
	"github.com/MKhiriev/go-task-sync/internal/config"
	"github.com/MKhiriev/go-task-sync/internal/crypto"
	"github.com/MKhiriev/go-task-sync/internal/handler"
	"github.com/MKhiriev/go-task-sync/internal/logger"
	"github.com/MKhiriev/go-task-sync/internal/server"
	"github.com/MKhiriev/go-task-sync/internal/service"
	"github.com/MKhiriev/go-task-sync/internal/store"
	"github.com/MKhiriev/go-task-sync/models"
)

type App struct {
	cfg      *config.ClientConfig
	storages *store.ClientStorages
	sync     *service.SyncService
	server   server.Server
	build    models.BuildInfo

	out    io.Writer
	logger *logger.Logger
}

// NewApp opens the local database and wires the sync service. The control
// API is created only when an address is configured.
func NewApp(ctx context.Context, cfg *config.ClientConfig, build models.BuildInfo, log *logger.Logger) (*App, error) {
	storages, err := store.NewClientStorages(ctx, cfg.Storage, log)
	if err != nil {
		return nil, fmt.Errorf("create local storage: %w", err)
	}

	serverAdapter, err := adapter.NewHTTPServerAdapter(cfg.Adapter, cfg.App, log)
	if err != nil {
		_ = storages.Close()
		return nil, fmt.Errorf("create server adapter: %w", err)
	}

	syncService := service.NewSyncService(storages, serverAdapter, crypto.NewEncryptor(), *cfg, log)

	app := &App{
		cfg:      cfg,
		storages: storages,
		sync:     syncService,
		build:    build,
		out:      os.Stdout,
		logger:   log,
	}

	if cfg.App.SyncOnce {
		return app, nil
	}

	handlers, err := handler.NewHandlers(syncService, syncService.Tasks(), cfg.Server, log)
	switch {
	case errors.Is(err, handler.ErrNoHandlersAreCreated):
		log.Info().Msg("control API disabled")
	case err != nil:
		_ = storages.Close()
		return nil, fmt.Errorf("create handlers: %w", err)
	default:
		if app.server, err = server.NewServer(handlers, cfg.Server, log); err != nil {
			_ = storages.Close()
			return nil, fmt.Errorf("create server: %w", err)
		}
	}

	return app, nil
}

// Run blocks until SIGTERM, SIGINT or SIGQUIT, or returns after a single
// sync in one-shot mode.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGTERM,
		syscall.SIGINT,
		syscall.SIGQUIT,
	)
	defer stop()

	return a.run(ctx)
}

func (a *App) run(ctx context.Context) error {
	defer func() {
		if err := a.storages.Close(); err != nil {
			a.logger.Err(err).Msg("close local storage")
		}
	}()

	if a.cfg.App.SyncOnce {
		return a.syncOnce(ctx)
	}

	if err := a.sync.Start(ctx); err != nil {
		return fmt.Errorf("start sync service: %w", err)
	}
	defer a.sync.Stop()

	a.logger.Info().
		Str("version", a.build.Version).
		Str("commit", a.build.Commit).
		Msg("sync daemon started")

	if a.server == nil {
		<-ctx.Done()
	} else if err := a.server.RunServer(ctx); err != nil {
		return fmt.Errorf("control API: %w", err)
	}

	a.logger.Info().Msg("sync daemon stopped")
	return nil
}

// syncOnce runs one user-priority sync, prints the report and returns an
// error when the sync did not succeed.
func (a *App) syncOnce(ctx context.Context) error {
	if _, err := a.sync.Restore(ctx); err != nil {
		return err
	}

	result := a.sync.RequestSync(ctx, models.SyncPriorityUser)
	status, err := a.sync.Status(ctx)
	if err != nil {
		a.logger.Err(err).Msg("read sync status")
	}

	fmt.Fprintln(a.out, renderReport(result, status))

	if result.Status != models.SyncStatusSuccess {
		return fmt.Errorf("%w: %s", ErrSyncFailed, reportMessage(result))
	}
	return nil
}

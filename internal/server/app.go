// Package server initializes and runs the API server: database, migrations,
// services, the watch hub, and the HTTP endpoint, with graceful shutdown on
// OS signals.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrijs2005/modtoolkit/internal/logging"
	"github.com/dmitrijs2005/modtoolkit/internal/server/config"
	"github.com/dmitrijs2005/modtoolkit/internal/server/httpserver"
	"github.com/dmitrijs2005/modtoolkit/internal/server/httpserver/handlers"
	"github.com/dmitrijs2005/modtoolkit/internal/server/models"
	"github.com/dmitrijs2005/modtoolkit/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/modtoolkit/internal/server/services"
	"github.com/dmitrijs2005/modtoolkit/internal/server/watch"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	config     *config.Config
	logger     logging.Logger
	db         *sql.DB
	httpServer *httpserver.Server
	hub        *watch.Hub
	bridge     *watch.RedisBridge
	syncLogs   func()
}

func NewApp(cfg *config.Config) (*App, error) {
	logger, syncLogs, err := logging.NewZapProduction(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()

	db, err := repomanager.OpenDB(context.Background(), cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	if err := rm.RunMigrations(context.Background(), db); err != nil {
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	hub := watch.NewHub(logger)
	loader := func(ctx context.Context, ownerID string) ([]*models.Tool, error) {
		return rm.Tools(db).ListByOwner(ctx, ownerID)
	}

	var notifier watch.Notifier
	var bridge *watch.RedisBridge
	if cfg.RedisAddr != "" {
		// Multi-instance mode: publish change notifications through Redis
		// so every instance re-publishes to its local subscribers.
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		notifier = watch.NewRedisNotifier(client, logger)
		bridge = watch.NewRedisBridge(client, hub, loader, logger)
	} else {
		notifier = &watch.LocalNotifier{Hub: hub, Loader: loader}
	}

	userService := services.NewUserService(db, rm, cfg)
	toolService := services.NewToolService(db, rm, notifier)
	avatarService := services.NewAvatarService(cfg)

	h := handlers.New(userService, toolService, avatarService, hub, logger)
	httpServer := httpserver.New(cfg, logger, h, []byte(cfg.SecretKey))

	return &App{
		config:     cfg,
		logger:     logger,
		db:         db,
		httpServer: httpServer,
		hub:        hub,
		bridge:     bridge,
		syncLogs:   syncLogs,
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()
	defer app.syncLogs()
	defer app.db.Close()

	app.logger.Info(ctx, "starting app", "addr", app.config.EndpointAddrHTTP)

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	if app.bridge != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.bridge.Run(ctx)
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.httpServer.Start(); err != nil {
			app.logger.Error(ctx, "http server error", "error", err)
			cancelFunc()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := app.httpServer.Stop(shutdownCtx); err != nil {
		app.logger.Error(shutdownCtx, "shutdown error", "error", err)
	}

	wg.Wait()
}

// Package main is the entry point for the FX rate resolution service.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"fxresolver/internal/config"
	"fxresolver/internal/provider"
	"fxresolver/internal/repository"
	"fxresolver/internal/service"
	"fxresolver/internal/worker"
)

// App holds all application dependencies and manages their lifecycle.
type App struct {
	cfg         *config.Config
	logger      *zap.SugaredLogger
	db          *sql.DB
	rdbCache    *redis.Client
	rdbAsynq    *redis.Client
	asynqClient *asynq.Client
	asynqServer *asynq.Server
	asynqMux    *asynq.ServeMux
	httpServer  *http.Server
}

// NewApp initializes all dependencies and returns a ready-to-run App.
func NewApp(cfg *config.Config, logger *zap.SugaredLogger) (*App, error) {
	app := &App{
		cfg:    cfg,
		logger: logger,
	}

	if err := app.initStorage(); err != nil {
		_ = app.close()
		return nil, err
	}

	if err := app.initServices(); err != nil {
		_ = app.close()
		return nil, err
	}

	return app, nil
}

// close releases database and Redis connections
func (app *App) close() error {
	var errs []error
	if app.asynqClient != nil {
		if err := app.asynqClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("asynq client close: %w", err))
		}
	}
	if app.rdbAsynq != nil {
		if err := app.rdbAsynq.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis asynq close: %w", err))
		}
	}
	if app.rdbCache != nil {
		if err := app.rdbCache.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis cache close: %w", err))
		}
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("db close: %w", err))
		}
	}
	return errors.Join(errs...)
}

func (app *App) initStorage() error {
	db, err := repository.NewPostgresDB(&app.cfg.Database)
	if err != nil {
		return fmt.Errorf("connect to Postgres: %w", err)
	}
	app.db = db

	if err := repository.RunMigrations(app.db, app.logger); err != nil {
		return fmt.Errorf("run DB migrations: %w", err)
	}

	app.rdbCache = redis.NewClient(&redis.Options{
		Addr: app.cfg.Redis.CacheAddr,
	})
	if err := app.rdbCache.Ping(context.Background()).Err(); err != nil {
		return fmt.Errorf("connect to Redis (cache, %s): %w", app.cfg.Redis.CacheAddr, err)
	}
	app.logger.Infow("Connected to Redis cache", "addr", app.cfg.Redis.CacheAddr)

	return nil
}

func (app *App) initServices() error {
	redisOpt := asynq.RedisClientOpt{Addr: app.cfg.Redis.AsynqAddr}

	app.rdbAsynq = redis.NewClient(&redis.Options{Addr: app.cfg.Redis.AsynqAddr})
	app.asynqClient = asynq.NewClient(redisOpt)
	app.asynqServer = asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency:              app.cfg.Worker.Concurrency,
			DelayedTaskCheckInterval: time.Duration(app.cfg.Worker.CheckIntervalSec) * time.Second,
			TaskCheckInterval:        time.Duration(app.cfg.Worker.CheckIntervalSec) * time.Second,
		},
	)
	app.logger.Infow("Asynq configured", "addr", app.cfg.Redis.AsynqAddr)

	providers, err := newTableProviders(app.cfg, app.rdbCache)
	if err != nil {
		return err
	}
	rateRepo := repository.NewPostgresRateRepository(app.db)
	refreshRepo := repository.NewPostgresRefreshRepository(app.db)
	asynqEnqueuer := worker.NewAsynqEnqueuer(
		app.asynqClient,
		app.cfg.Worker.MaxRetry,
		time.Duration(app.cfg.Worker.TimeoutSec)*time.Second,
	)
	rateService := service.NewRateService(
		rateRepo,
		refreshRepo,
		providers,
		asynqEnqueuer,
		app.rdbCache,
		app.logger,
		app.cfg.Resolver,
		app.cfg.Cache)

	app.asynqMux = asynq.NewServeMux()
	app.asynqMux.HandleFunc(service.TaskTypeRefreshRates, worker.NewRefreshHandler(rateService, app.logger))

	app.initHTTP(rateService)
	return nil
}

// newTableProviders builds the provider registry keyed by source name. Each
// provider is wrapped with a Redis window cache. Banxico stays unregistered
// without an API token.
func newTableProviders(cfg *config.Config, cache *redis.Client) (map[string]provider.TableProvider, error) {
	ttl := time.Duration(cfg.Cache.ProviderWindowTTLSec) * time.Second

	providers := make(map[string]provider.TableProvider)

	if cfg.ECB.BaseURL != "" {
		p := provider.NewECBDailyProvider(cfg.ECB.BaseURL, cfg.ECB.Timeout)
		providers["ecb"] = provider.NewCachedTableProvider(p, cache, ttl, "ecb")
	}

	if cfg.Banxico.BaseURL != "" && cfg.Banxico.Token != "" {
		p := provider.NewBanxicoMonthlyProvider(cfg.Banxico.BaseURL, cfg.Banxico.Token, cfg.Banxico.Series, cfg.Banxico.Timeout)
		providers["banxico"] = provider.NewCachedTableProvider(p, cache, ttl, "banxico")
	}

	if len(providers) == 0 {
		return nil, fmt.Errorf("no rate providers are correctly configured: " +
			"ecb requires base_url, banxico requires base_url and token")
	}

	if _, ok := providers[cfg.Resolver.Source]; !ok {
		return nil, fmt.Errorf("active source %q has no configured provider", cfg.Resolver.Source)
	}

	return providers, nil
}

// Run starts the HTTP server and Asynq worker, blocking until the context is canceled.
func (app *App) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		app.logger.Infow("Starting Asynq worker server")
		if err := app.asynqServer.Start(app.asynqMux); err != nil {
			return fmt.Errorf("asynq worker failed to start: %w", err)
		}

		<-ctx.Done()
		return nil
	})

	g.Go(func() error {
		app.logger.Infow("HTTP server listening", "port", app.cfg.Server.Port)
		if err := app.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown: triggered by context cancellation (signal or component failure).
	g.Go(func() error {
		<-ctx.Done()
		return app.shutdown()
	})

	return g.Wait()
}

// shutdown performs ordered teardown: HTTP server -> Asynq worker -> connections.
// This ensures in-flight tasks finish before the DB and Redis connections close.
func (app *App) shutdown() error {
	app.logger.Infow("Shutting down server...")

	var errs []error

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// 1. Stop accepting new HTTP requests, drain in-flight
	if err := app.httpServer.Shutdown(shutdownCtx); err != nil {
		app.logger.Errorw("HTTP server shutdown error", "error", err)
		errs = append(errs, fmt.Errorf("http shutdown: %w", err))
	}

	// 2. Drain in-flight Asynq tasks
	app.asynqServer.Shutdown()

	// 3. Close connections (asynq client, Redis, database)
	if err := app.close(); err != nil {
		app.logger.Errorw("Connection cleanup errors", "error", err)
		errs = append(errs, err)
	}

	app.logger.Infow("Shutdown complete")
	return errors.Join(errs...)
}

// Package server assembles the blog server: configuration, logging, the
// lazily opened database, services and the HTTP and gRPC endpoints.
package server

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/miniblog/internal/dbx"
	"github.com/dmitrijs2005/miniblog/internal/logging"
	"github.com/dmitrijs2005/miniblog/internal/server/auth"
	"github.com/dmitrijs2005/miniblog/internal/server/config"
	"github.com/dmitrijs2005/miniblog/internal/server/httpapi"
	"github.com/dmitrijs2005/miniblog/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/miniblog/internal/server/services"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	gs "github.com/dmitrijs2005/miniblog/internal/server/grpc"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *dbx.Lazy
	http   *httpapi.Server
	health *gs.HealthServer
}

// NewStore returns the process-wide lazy database handle and the repository
// manager that goes with it. Nothing touches the network until the first Get.
func NewStore(c *config.Config) (*dbx.Lazy, *repomanager.PostgresRepositoryManager) {
	rm := repomanager.NewPostgresRepositoryManager()
	return dbx.NewLazy(rm.Opener(c.DatabaseDSN)), rm
}

func NewApp(c *config.Config, logOut io.Writer) (*App, error) {
	logger, err := logging.NewJSON(logOut, c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}

	db, rm := NewStore(c)

	tokens := auth.NewTokenCodec([]byte(c.SecretKey), c.TokenValidityDuration)
	cookies := auth.NewCookieManager(c.TokenValidityDuration, c.IsProduction())
	hasher := auth.NewBcryptHasher(c.BcryptCost)

	us := services.NewUserService(db, rm, hasher, tokens, logger.With("module", "users"))
	as := services.NewArticleService(db, rm, services.Guard{StrictOwnership: c.StrictOwnership}, logger.With("module", "articles"))
	ms := services.NewMediaService(c, logger.With("module", "media"))

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	hs := httpapi.NewServer(httpapi.Options{
		Address:     c.EndpointAddrHTTP,
		Users:       us,
		Articles:    as,
		Media:       ms,
		Cookies:     cookies,
		Tokens:      tokens,
		DB:          db,
		Metrics:     httpapi.NewMetrics(registry),
		Logger:      logger,
		SeedEnabled: c.SeedEnabled,
	})

	var health *gs.HealthServer
	if c.EndpointAddrGRPC != "" {
		health = gs.NewHealthServer(c.EndpointAddrGRPC, logger, db, gs.DefaultProbeInterval)
	}

	return &App{config: c, logger: logger, db: db, http: hs, health: health}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run serves until a signal arrives or one of the servers fails, then
// stops both and closes the database.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "environment", app.config.Environment)

	app.initSignalHandler(cancelFunc)

	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)
	fail := func(err error) {
		app.logger.Error(ctx, err.Error())
		errOnce.Do(func() { firstErr = err })
		cancelFunc()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.http.Run(ctx); err != nil {
			fail(fmt.Errorf("http server: %w", err))
		}
	}()

	if app.health != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := app.health.Run(ctx); err != nil {
				fail(fmt.Errorf("grpc server: %w", err))
			}
		}()
	}

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Warn(ctx, "closing database", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
	return firstErr
}

// Package server wires the users service together and runs it: config,
// logging, the shared database handle and its startup initializer, event
// publishing and the HTTP API, with graceful shutdown on OS signals.
package server

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/usersvc/internal/logging"
	"github.com/dmitrijs2005/usersvc/internal/server/config"
	"github.com/dmitrijs2005/usersvc/internal/server/database"
	"github.com/dmitrijs2005/usersvc/internal/server/events"
	"github.com/dmitrijs2005/usersvc/internal/server/httpapi"
	"github.com/dmitrijs2005/usersvc/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/usersvc/internal/server/services"
	"github.com/dmitrijs2005/usersvc/internal/telemetry"
	"github.com/jmoiron/sqlx"
)

type App struct {
	config        *config.Config
	logger        logging.Logger
	provider      *database.Provider
	repomanager   repomanager.RepositoryManager
	publisher     events.Publisher
	userService   *services.UserService
	healthService *services.HealthService
	telemetry     telemetry.ShutdownFunc
}

func NewApp(c *config.Config) (*App, error) {

	logger := logging.NewJSON(os.Stdout, c.LogLevel)

	shutdownTelemetry, err := telemetry.Setup(c.OTelExporter, os.Stdout)
	if err != nil {
		return nil, fmt.Errorf("telemetry init error: %w", err)
	}

	dsn := database.DSN(c)
	provider := database.NewProvider(func(ctx context.Context) (*sqlx.DB, error) {
		return database.Connect(ctx, dsn)
	}, logger)

	rm := repomanager.NewPostgresRepositoryManager()

	publisher := newPublisher(c, logger)

	us := services.NewUserService(provider, rm, publisher, logger)
	hs := services.NewHealthService(provider, logger)

	return &App{
		config:        c,
		logger:        logger,
		provider:      provider,
		repomanager:   rm,
		publisher:     publisher,
		userService:   us,
		healthService: hs,
		telemetry:     shutdownTelemetry,
	}, nil
}

// newPublisher connects to NATS when configured. Events are optional, so an
// unreachable broker only disables them.
func newPublisher(c *config.Config, l logging.Logger) events.Publisher {
	if c.NATSURL == "" {
		return events.NopPublisher{}
	}

	p, err := events.NewNATSPublisher(c.NATSURL, c.NATSSubjectPrefix)
	if err != nil {
		l.Warn(context.Background(), "user events disabled", "error", err)
		return events.NopPublisher{}
	}
	return p
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

// startInitializer connects and creates the schema in the background. It
// never stops the app: requests connect lazily if it gives up.
func (app *App) startInitializer(ctx context.Context) {

	policy := database.RetryPolicy{
		Base:        app.config.DBRetryBase,
		Cap:         app.config.DBRetryCap,
		MaxAttempts: app.config.DBRetryMax,
	}

	initializer := database.NewInitializer(app.provider, app.repomanager.RunMigrations, policy, app.logger)

	if err := initializer.Run(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		app.logger.Error(ctx, err.Error())
	}
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {

	h := httpapi.NewHandler(app.userService, app.healthService, app.logger)
	router := httpapi.NewRouter(h, httpapi.RouterOptions{
		RateLimitRPS:   app.config.RateLimitRPS,
		RateLimitBurst: app.config.RateLimitBurst,
	}, app.logger)

	s := httpapi.NewHTTPServer(app.config.HTTPAddr, router, app.logger, app.config.ShutdownTimeout)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "config", app.config.String())

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startInitializer(ctx)
	}()
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.publisher.Close(); err != nil {
		app.logger.Error(ctx, "error closing event publisher", "error", err)
	}
	if err := app.provider.Close(); err != nil {
		app.logger.Error(ctx, "error closing database", "error", err)
	}

	flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), app.config.ShutdownTimeout)
	defer cancel()
	if err := app.telemetry(flushCtx); err != nil {
		app.logger.Error(ctx, "error flushing telemetry", "error", err)
	}

	app.logger.Info(ctx, "App stopped")
}

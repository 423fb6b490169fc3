package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/aussiebroadwan/caronte/internal/http"
	"github.com/aussiebroadwan/caronte/internal/service"
	"github.com/aussiebroadwan/caronte/internal/store"
	"github.com/aussiebroadwan/caronte/internal/store/drivers/sqlite"
	"github.com/aussiebroadwan/caronte/pkg/authsdk"
	"github.com/aussiebroadwan/caronte/pkg/caronte"
	"github.com/aussiebroadwan/caronte/pkg/credstore"
	"github.com/aussiebroadwan/caronte/pkg/credstore/filestore"
	"github.com/aussiebroadwan/caronte/pkg/credstore/redisstore"
	"github.com/aussiebroadwan/caronte/pkg/httpx"
	"github.com/aussiebroadwan/caronte/pkg/jwtx"
	"github.com/aussiebroadwan/caronte/pkg/slogx"
)

// BuildVersion is overridden at build time via ldflags.
var BuildVersion = "v0.1.0"

// Application wires the Caronte client with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db       store.Store // nil unless sqlite sessions or user sync are on
	sessions credstore.Backend
	closers  []io.Closer
	client   *authsdk.SDKClient

	// Services
	validator           *caronte.Validator
	userSync            *service.UserSyncService
	housekeepingService *service.HousekeepingService // sqlite sessions only
	housekeeping        bool                          // set once Start has run

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "caronte",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if cfg.needsDatabase() {
		if err := app.initDatabase(); err != nil {
			return nil, err
		}
	}

	if err := app.initSessions(); err != nil {
		app.close()
		return nil, err
	}

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Handler returns the application's HTTP handler.
func (app *Application) Handler() http.Handler {
	return app.router
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	if app.housekeepingService != nil {
		app.housekeepingService.Start()
		app.housekeeping = true
	}

	app.logger.Info("caronte client starting",
		"port", app.cfg.Port,
		"version", BuildVersion,
		"session_driver", app.cfg.SessionDriver,
	)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.close()
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down caronte client...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	if err := app.close(); err != nil {
		return err
	}

	app.logger.Info("caronte client stopped")
	return nil
}

// close stops background work and releases storage.
func (app *Application) close() error {
	if app.housekeeping {
		app.housekeepingService.Stop()
		app.housekeeping = false
	}

	var errs []error
	for _, c := range app.closers {
		if err := c.Close(); err != nil {
			app.logger.Error("error closing session backend", "error", err)
			errs = append(errs, err)
		}
	}
	app.closers = nil

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database", "error", err)
			errs = append(errs, err)
		}
		app.db = nil
	}
	return errors.Join(errs...)
}

// initDatabase opens the sqlite store and applies migrations.
func (app *Application) initDatabase() error {
	db, err := sqlite.NewStore(sqlite.DSN(app.cfg.DatabaseFile))
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}
	app.db = db

	app.logger.Info("database migrations applied successfully", "file", app.cfg.DatabaseFile)
	return nil
}

// initSessions picks the backend browser sessions are kept in.
func (app *Application) initSessions() error {
	switch app.cfg.SessionDriver {
	case DriverRedis:
		rs, err := redisstore.NewFromURL(app.cfg.RedisURL, app.cfg.SessionMaxAge)
		if err != nil {
			return fmt.Errorf("failed to initialize redis sessions: %w", err)
		}
		app.sessions = rs
		app.closers = append(app.closers, rs)
	case DriverSQLite:
		app.sessions = store.NewSessionBackend(app.db)
	default:
		fs, err := filestore.New(app.cfg.SessionPath)
		if err != nil {
			return fmt.Errorf("failed to initialize file sessions: %w", err)
		}
		app.sessions = fs
	}
	return nil
}

// initServices builds the identity client, the validator and the
// optional local services.
func (app *Application) initServices() {
	app.client = newClient(app.cfg)

	var observer caronte.UserObserver
	if app.cfg.UpdateLocalUser {
		app.userSync = &service.UserSyncService{Store: app.db, Scope: app.cfg.AppID}
		observer = app.userSync
	}

	app.validator = caronte.NewValidator(caronte.ValidatorConfig{
		Verifier: jwtx.NewVerifierHS256([]byte(app.cfg.SigningKey()), jwtx.VerifyOptions{
			Issuer:        app.cfg.IssuerID,
			EnforceIssuer: app.cfg.EnforceIssuer,
		}),
		Exchanger: app.client,
		Observer:  observer,
	})

	if app.cfg.SessionDriver == DriverSQLite {
		app.housekeepingService = service.NewHousekeepingService(
			app.db,
			app.logger,
			app.cfg.HousekeepingInterval,
			app.cfg.SessionMaxAge,
		)
	}
}

// initHTTP initializes the HTTP router and server.
func (app *Application) initHTTP() {
	auth := &httpx.SessionAuth{
		Validator:   app.validator,
		Permissions: caronte.NewPermissionEvaluator(app.cfg.AppID),
		Store: credstore.New(app.sessions, credstore.Options{
			Secure: app.cfg.SecureCookies(),
			IsAPI:  httpx.IsAPI,
		}),
		LoginURL: app.cfg.LoginURL,
	}

	router := httpapi.NewRouter(
		auth,
		app.client,
		httpapi.Settings{
			AppURL:     app.cfg.AppURL,
			AppName:    app.cfg.AppName,
			SuccessURL: app.cfg.SuccessURL,
			LoginURL:   app.cfg.LoginURL,
			TwoFactor:  app.cfg.TwoFactor,
			AdminRole:  app.cfg.AdminRole,
		},
		BuildVersion,
		app.logger,
	)
	if app.userSync != nil {
		router.Users = app.userSync
	}
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}

func newClient(cfg Config) *authsdk.SDKClient {
	return authsdk.NewSDKClient(cfg.URL,
		authsdk.WithVersion(cfg.Version),
		authsdk.WithApplication(cfg.AppID, cfg.AppSecret),
		authsdk.WithTimeout(cfg.ExchangeTimeout),
		authsdk.WithInsecureTLS(cfg.AllowHTTPRequests),
	)
}

// NotifyClientConfiguration declares the application URL and the roles
// file to the identity server and returns its answer.
func NotifyClientConfiguration(ctx context.Context, cfg Config) (string, error) {
	if cfg.URL == "" {
		return "", errors.New("CARONTE_URL is required")
	}
	svc := &service.ClientConfigService{
		Client:         newClient(cfg),
		ApplicationURL: cfg.AppURL,
		RolesFile:      cfg.RolesFile,
	}
	return svc.Notify(ctx)
}

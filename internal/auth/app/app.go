package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/aakar745/form-registration/internal/auth/http"
	"github.com/aakar745/form-registration/internal/auth/service"
	"github.com/aakar745/form-registration/internal/auth/store"
	"github.com/aakar745/form-registration/internal/auth/store/drivers/sqlite"
	"github.com/aakar745/form-registration/pkg/jwtx"
	"github.com/aakar745/form-registration/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application encapsulates the auth service with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db    store.Store
	codec *jwtx.HS256

	authService *service.AuthService
	mfaService  *service.MFAService
	userService *service.UserService

	server *http.Server
	router *httpapi.Router
}

// New creates an Application with all dependencies initialized. It fails
// hard on a missing signing secret: tokens signed with an accidental
// empty key would be forgeable.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "auth-service",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	codec, err := jwtx.NewHS256([]byte(cfg.JWTSecret), cfg.Issuer)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token signer: %w", err)
	}
	app.codec = codec

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.logger.Info("auth service starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
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
	app.logger.Info("shutting down auth service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("auth service stopped")
	return nil
}

func (app *Application) initDatabase() error {
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(dsn)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

func (app *Application) initServices() {
	app.authService = &service.AuthService{
		Store:      app.db,
		Signer:     app.codec,
		Verifier:   app.codec,
		Issuer:     app.cfg.Issuer,
		SessionTTL: app.cfg.SessionTTL,
		PendingTTL: app.cfg.PendingTTL,
		Policy:     service.DefaultPasswordPolicy(),
	}
	app.mfaService = &service.MFAService{
		Store:  app.db,
		Issuer: app.cfg.TOTPIssuer,
	}
	app.userService = &service.UserService{Store: app.db}
}

func (app *Application) initHTTP() {
	router := httpapi.NewRouter(app.codec, BuildVersion, app.db, app.logger)

	router.AuthService = app.authService
	router.MFAService = app.mfaService
	router.UserService = app.userService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}

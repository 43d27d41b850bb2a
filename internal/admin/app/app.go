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

	"github.com/meridiantours/meridian/internal/admin/audit"
	httpapi "github.com/meridiantours/meridian/internal/admin/http"
	"github.com/meridiantours/meridian/internal/admin/obs"
	"github.com/meridiantours/meridian/internal/admin/service"
	"github.com/meridiantours/meridian/internal/admin/store"
	"github.com/meridiantours/meridian/internal/admin/store/drivers/postgres"
	"github.com/meridiantours/meridian/internal/admin/store/drivers/sqlite"
	"github.com/meridiantours/meridian/pkg/cryptox"
	"github.com/meridiantours/meridian/pkg/jwtx"
	"github.com/meridiantours/meridian/pkg/slogx"
)

// Build metadata, overridden at build time via ldflags.
var (
	BuildVersion = "v0.1.0"
	BuildCommit  = "dev"
)

// Application encapsulates the admin service with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db         store.Store
	keyManager *jwtx.KeyManager
	audit      *audit.Recorder

	// Services
	tokenService        *service.TokenService
	mfaService          *service.MFAService
	bootstrapService    *service.BootstrapService
	adminService        *service.AdminService
	clientsService      *service.ClientsService
	applicationsService *service.ApplicationsService
	contentService      *service.ContentService
	ordersService       *service.OrdersService
	productsService     *service.ProductsService
	dashboardService    *service.DashboardService
	keyRotationService  *service.KeyRotationService
	housekeepingService *service.HousekeepingService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates an Application with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "admin-service",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	// Set pepper path for password hashing
	cryptox.SetPepperPath(app.cfg.PepperFile)

	// Register prometheus collectors before the first request can land
	obs.Init()
	obs.SetBuildInfo(BuildVersion, BuildCommit)

	// Initialize database first (required for persistent keys)
	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	// Initialize JWT key manager (after database for persistent mode)
	ctx := context.Background()
	keyManager, err := InitSigningKeys(ctx, app.cfg, app.db, app.logger)
	if err != nil {
		_ = app.db.Close()
		return nil, fmt.Errorf("failed to initialize JWT keys: %w", err)
	}
	app.keyManager = keyManager

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("admin service starting",
		"port", app.cfg.Port,
		"db_driver", app.cfg.DBDriver,
		"version", BuildVersion,
	)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a shutdown signal or server error
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
	app.logger.Info("shutting down admin service...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("admin service stopped")
	return nil
}

// initDatabase opens the configured store and applies migrations.
func (app *Application) initDatabase() error {
	switch app.cfg.DBDriver {
	case "postgres":
		if app.cfg.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when DB_DRIVER is postgres")
		}
		db, err := postgres.NewStore(app.cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		app.db = db

	case "sqlite":
		fallthrough
	default:
		db, err := sqlite.NewStore(sqlite.DSN(app.cfg.DatabaseFile))
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		app.db = db
	}

	if err := app.db.ApplyMigrations(); err != nil {
		_ = app.db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied", "driver", app.cfg.DBDriver)
	return nil
}

// initServices initializes all business logic services.
func (app *Application) initServices() {
	app.audit = &audit.Recorder{Store: app.db}

	accessTTL := app.cfg.AccessTokenTTL
	if accessTTL <= 0 {
		accessTTL = jwtx.DefaultAccessTokenTTL
	}
	refreshTTL := app.cfg.RefreshTokenTTL
	if refreshTTL <= 0 {
		refreshTTL = jwtx.DefaultRefreshTokenTTL
	}

	app.tokenService = &service.TokenService{
		KeyManager: app.keyManager,
		Store:      app.db,
		Issuer:     app.cfg.Issuer,
		AccessTTL:  accessTTL,
		RefreshTTL: refreshTTL,
	}

	app.mfaService = &service.MFAService{
		Store:  app.db,
		Issuer: app.cfg.Issuer,
	}

	app.bootstrapService = &service.BootstrapService{
		Store: app.db,
		Audit: app.audit,
		Token: app.cfg.BootstrapToken,
	}

	app.adminService = &service.AdminService{Store: app.db, Audit: app.audit}
	app.clientsService = &service.ClientsService{Store: app.db, Audit: app.audit}
	app.applicationsService = &service.ApplicationsService{Store: app.db, Audit: app.audit}
	app.contentService = &service.ContentService{Store: app.db, Audit: app.audit}
	app.ordersService = &service.OrdersService{Store: app.db, Audit: app.audit}
	app.productsService = &service.ProductsService{Store: app.db, Audit: app.audit}
	app.dashboardService = &service.DashboardService{Store: app.db}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
	)

	if app.cfg.KeyStorageMode == "persistent" {
		app.keyRotationService = &service.KeyRotationService{
			Store:       app.db,
			Audit:       app.audit,
			KeyManager:  app.keyManager,
			Algorithm:   app.cfg.Algorithm,
			RSABits:     app.cfg.RSABits,
			GracePeriod: app.cfg.KeyGracePeriod,
		}
		app.logger.Info("key rotation service enabled (persistent mode)")
	} else {
		// Ephemeral mode still allows runtime rotation, just no database persistence
		app.keyRotationService = &service.KeyRotationService{
			Store:      nil,
			Audit:      app.audit,
			KeyManager: app.keyManager,
			Algorithm:  app.cfg.Algorithm,
			RSABits:    app.cfg.RSABits,
		}
		app.logger.Info("key rotation service enabled (ephemeral mode)")
	}
}

// initHTTP initializes the HTTP router and server.
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.keyManager.KeySet,
		app.keyManager.Verifier,
		app.cfg.Issuer,
		BuildVersion,
		app.db,
		app.logger,
	)

	// Wire services to router
	router.Audit = app.audit
	router.TokenService = app.tokenService
	router.MFAService = app.mfaService
	router.BootstrapService = app.bootstrapService
	router.AdminService = app.adminService
	router.ClientsService = app.clientsService
	router.ApplicationsService = app.applicationsService
	router.ContentService = app.contentService
	router.OrdersService = app.ordersService
	router.ProductsService = app.productsService
	router.DashboardService = app.dashboardService
	router.KeyRotationService = app.keyRotationService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}

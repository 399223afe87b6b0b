package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	migrate "github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"

	portssvc "github.com/smallbooks/smallbooks_backend/internal/core/ports/services"
	"github.com/smallbooks/smallbooks_backend/internal/core/services"
	"github.com/smallbooks/smallbooks_backend/internal/handlers"
	"github.com/smallbooks/smallbooks_backend/internal/middleware"
	"github.com/smallbooks/smallbooks_backend/internal/repositories/database/pgsql"
	"github.com/smallbooks/smallbooks_backend/pkg/config"
	"github.com/smallbooks/smallbooks_backend/pkg/database"
)

// @title Smallbooks Backend API
// @version 1.0
// @description Double-entry bookkeeping backend for small service businesses.

// @host localhost:8080
// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @security BearerAuth
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	dbPool, err := database.NewPgxPool(context.Background(), cfg.DatabaseURL, cfg.EnableDBCheck)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer dbPool.Close()
	logger.Info("Database connection pool established.")

	if err := runMigrations(logger, cfg.DatabaseURL); err != nil {
		logger.Error("Failed to apply migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.AllowedOrigins
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	r.Use(cors.New(corsConfig))

	rate, err := limiter.NewRateFromFormatted(cfg.RateLimit)
	if err != nil {
		logger.Error("Invalid rate limit", slog.String("rate", cfg.RateLimit), slog.String("error", err.Error()))
		os.Exit(1)
	}
	r.Use(middleware.RateLimit(limiter.New(memory.NewStore(), rate)))

	serviceContainer := buildServices(cfg, pgsql.NewRepositoryProvider(dbPool))
	handlers.RegisterRoutes(r, cfg, serviceContainer)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		logger.Info("Server starting", slog.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed to run", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutdown signal received, draining connections...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Forced shutdown", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("Server stopped cleanly.")
}

// buildServices wires every repository into its service and bundles them for the
// handler layer.
func buildServices(cfg *config.Config, repos pgsql.RepositoryProvider) *portssvc.ServiceContainer {
	return &portssvc.ServiceContainer{
		Account: services.NewAccountService(repos.AccountRepo, repos.AuditRepo),
		Ledger: services.NewLedgerService(
			repos.JournalRepo,
			repos.AccountRepo,
			repos.ReconciliationRepo,
			repos.StagingRepo,
			repos.AuditRepo,
		),
		Adjustment: services.NewAdjustmentService(
			repos.JournalRepo,
			repos.AccountRepo,
			repos.ReconciliationRepo,
			repos.StagingRepo,
			repos.AuditRepo,
			repos.TxManager,
		),
		Reconciliation: services.NewReconciliationService(
			repos.ReconciliationRepo,
			repos.JournalRepo,
			repos.AccountRepo,
			repos.AuditRepo,
		),
		Staging: services.NewStagingService(
			repos.StagingRepo,
			repos.JournalRepo,
			repos.AccountRepo,
			repos.ReconciliationRepo,
		),
		Reporting: services.NewReportingService(
			repos.JournalRepo,
			repos.AccountRepo,
			repos.InvoiceRepo,
			repos.StagingRepo,
			repos.ReconciliationRepo,
		),
		Invoice: services.NewInvoiceService(repos.InvoiceRepo),
		User:    services.NewUserService(repos.UserRepo, cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTExpiryDuration),
	}
}

// runMigrations applies all pending up migrations over a temporary database/sql
// connection. The pgx stdlib driver keeps it compatible with the main pool.
func runMigrations(logger *slog.Logger, databaseURL string) error {
	logger.Info("Running database migrations...")

	migrationDB, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return err
	}
	if err := migrationDB.Ping(); err != nil {
		migrationDB.Close()
		return err
	}

	driver, err := postgres.WithInstance(migrationDB, &postgres.Config{})
	if err != nil {
		migrationDB.Close()
		return err
	}

	m, err := migrate.NewWithDatabaseInstance("file://migrations", "postgres", driver)
	if err != nil {
		migrationDB.Close()
		return err
	}

	upErr := m.Up()
	sourceErr, dbErr := m.Close()
	if upErr != nil && upErr != migrate.ErrNoChange {
		return upErr
	}
	if sourceErr != nil {
		return sourceErr
	}
	if dbErr != nil {
		return dbErr
	}

	if upErr == migrate.ErrNoChange {
		logger.Info("No new migrations to apply.")
	} else {
		logger.Info("Database migrations applied successfully.")
	}
	return nil
}

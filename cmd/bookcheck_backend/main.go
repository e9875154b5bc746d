package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	migrate "github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/bookcheck-dev/bookcheck/internal/adapters/database/pgsql"
	"github.com/bookcheck-dev/bookcheck/internal/core/services"
	"github.com/bookcheck-dev/bookcheck/internal/handlers"
	"github.com/bookcheck-dev/bookcheck/internal/middleware"
	"github.com/bookcheck-dev/bookcheck/pkg/config"
	"github.com/bookcheck-dev/bookcheck/pkg/database"

	portssvc "github.com/bookcheck-dev/bookcheck/internal/core/ports/services"
)

func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	dbPool, err := database.NewPgxPool(context.Background(), cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer database.ClosePgxPool(dbPool)
	logger.Info("Database connection pool established.")

	if err := runMigrations(cfg.DatabaseURL, logger); err != nil {
		logger.Error("Failed to apply migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(cors.Default(), middleware.StructuredLoggingMiddleware(logger), gin.Recovery())

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	handlers.RegisterValidators()

	r.GET("/health", func(c *gin.Context) {
		if err := dbPool.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	svc := buildServices(cfg, dbPool)
	v1 := r.Group("/api/v1")
	handlers.Register(v1, svc)

	logger.Info("Server starting", slog.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Error("Server failed to run", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// runMigrations applies all pending schema migrations through a temporary
// database/sql connection, keeping the pgx pool untouched.
func runMigrations(databaseURL string, logger *slog.Logger) error {
	logger.Info("Running database migrations...")

	migrationDB, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := migrationDB.Close(); cerr != nil {
			logger.Error("Error closing migration DB connection", slog.String("error", cerr.Error()))
		}
	}()
	if err := migrationDB.Ping(); err != nil {
		return err
	}

	driver, err := postgres.WithInstance(migrationDB, &postgres.Config{})
	if err != nil {
		return err
	}

	m, err := migrate.NewWithDatabaseInstance("file://migrations", "postgres", driver)
	if err != nil {
		return err
	}

	upErr := m.Up()
	if upErr != nil && upErr != migrate.ErrNoChange {
		return upErr
	}

	sourceErr, dbErr := m.Close()
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

func buildServices(cfg *config.Config, dbPool *pgxpool.Pool) *portssvc.ServiceContainer {
	accountRepo := pgsql.NewAccountRepository(dbPool)
	journalRepo := pgsql.NewJournalRepository(dbPool)
	findingRepo := pgsql.NewFindingRepository(dbPool)

	tuning := services.DetectionTuning{
		StdDevMultiplier:    cfg.StdDevMultiplier,
		DuplicateWindowDays: cfg.DuplicateWindowDays,
		HistoryWindowDays:   cfg.HistoryWindowDays,
		MinBaselinePoints:   cfg.MinBaselineDataPoint,
	}

	statsSvc := services.NewStatisticsService(journalRepo, tuning.HistoryWindowDays, tuning.MinBaselinePoints)

	return &portssvc.ServiceContainer{
		Account:    services.NewAccountService(accountRepo),
		Journal:    services.NewJournalService(journalRepo),
		Statistics: statsSvc,
		Detection:  services.NewDetectionService(accountRepo, journalRepo, findingRepo, statsSvc, tuning),
		Suggestion: services.NewSuggestionService(accountRepo),
		Finding:    services.NewFindingService(findingRepo),
	}
}

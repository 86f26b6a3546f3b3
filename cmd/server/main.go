package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	httpapi "rentalreturn-backend/internal/api/http"
	"rentalreturn-backend/internal/config"
	"rentalreturn-backend/internal/domain"
	"rentalreturn-backend/internal/logger"
	"rentalreturn-backend/internal/repository"
	"rentalreturn-backend/internal/repository/memory"
	"rentalreturn-backend/internal/repository/postgres"
	"rentalreturn-backend/internal/service"
	"rentalreturn-backend/internal/storage"
)

// repositories is the set of repositories both storage drivers provide.
type repositories struct {
	repository.TransactionRepository
	repository.InventoryUnitRepository
	repository.StockLevelRepository
	repository.RentalReturnRepository
	repository.InspectionRepository
	repository.DepositRepository
	repository.Transactor
}

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Rental Return Backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress())

	repos, closeStore, err := openStore(cfg)
	if err != nil {
		logger.Error("Failed to initialize storage", "error", err)
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	defer closeStore()

	// Initialize photo storage
	logger.Info("Using local photo storage", "dir", cfg.Storage.Dir, "base_url", cfg.Storage.BaseURL)
	photos, err := storage.NewLocalPhotoStore(cfg.Storage.BaseURL, cfg.Storage.Dir, cfg.Storage.SigningSecret)
	if err != nil {
		logger.Error("Failed to initialize photo storage", "error", err)
		log.Fatalf("Failed to initialize photo storage: %v", err)
	}

	// Initialize Services
	fees := service.FeeSettings{
		LateFeeRatePercent:         cfg.Fees.LateFeeRatePercent,
		FallbackDailyRate:          domain.MoneyFromDecimal(cfg.Fees.FallbackDailyRate),
		DefaultCleaningFee:         domain.MoneyFromDecimal(cfg.Fees.DefaultCleaningFee),
		MaintenanceDamageThreshold: domain.MoneyFromDecimal(cfg.Fees.MaintenanceDamageThreshold),
	}
	returnSvc := service.NewReturnService(
		repos.TransactionRepository,
		repos.InventoryUnitRepository,
		repos.StockLevelRepository,
		repos.RentalReturnRepository,
		repos.Transactor,
		fees,
	)
	inspectionSvc := service.NewInspectionService(
		repos.RentalReturnRepository,
		repos.InspectionRepository,
		repos.Transactor,
		photos,
		cfg.Storage.URLExpiry(),
		fees,
	)
	depositSvc := service.NewDepositService(
		repos.TransactionRepository,
		repos.RentalReturnRepository,
		repos.DepositRepository,
		repos.Transactor,
		service.NewSimulatedPaymentGateway(),
	)

	router := httpapi.NewRouter(returnSvc, inspectionSvc, depositSvc, photos)
	srv := &http.Server{
		Addr:              cfg.GetServerAddress(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("HTTP server listening", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server error", "error", err)
			log.Fatalf("Failed to serve: %v", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down HTTP server...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Graceful shutdown failed", "error", err)
	}
	logger.Info("HTTP server stopped. Goodbye!")
}

// openStore connects the configured storage driver.
func openStore(cfg *config.Config) (*repositories, func(), error) {
	if cfg.Database.Driver == "memory" {
		logger.Warn("Using in-memory storage, data is lost on restart")
		s := memory.NewStore()
		return &repositories{
			TransactionRepository:   s.TransactionRepository,
			InventoryUnitRepository: s.InventoryUnitRepository,
			StockLevelRepository:    s.StockLevelRepository,
			RentalReturnRepository:  s.RentalReturnRepository,
			InspectionRepository:    s.InspectionRepository,
			DepositRepository:       s.DepositRepository,
			Transactor:              s.Transactor,
		}, func() {}, nil
	}

	logger.Debug("Connecting to database...", "connection_string", fmt.Sprintf("%s@%s:%d/%s", cfg.Database.User, cfg.Database.Host, cfg.Database.Port, cfg.Database.Database))
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to ping database: %w", err)
	}
	logger.Info("Database connection established")

	if cfg.Database.AutoMigrate {
		if err := postgres.Migrate(context.Background(), db); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("failed to migrate database: %w", err)
		}
		logger.Info("Database schema applied")
	}

	s := postgres.NewStore(db)
	return &repositories{
		TransactionRepository:   s.TransactionRepository,
		InventoryUnitRepository: s.InventoryUnitRepository,
		StockLevelRepository:    s.StockLevelRepository,
		RentalReturnRepository:  s.RentalReturnRepository,
		InspectionRepository:    s.InspectionRepository,
		DepositRepository:       s.DepositRepository,
		Transactor:              s.Transactor,
	}, func() { db.Close() }, nil
}

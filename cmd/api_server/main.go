package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spendwise-platform/internal/api_server"
	"github.com/spendwise-platform/internal/api_server/service"
	"github.com/spendwise-platform/internal/config"
	"github.com/spendwise-platform/internal/data/mongo"
	"github.com/spendwise-platform/internal/data/postgres"
	"github.com/spendwise-platform/internal/extraction"
	"github.com/spendwise-platform/internal/ledger"
	"github.com/spendwise-platform/internal/logger"
	"github.com/spendwise-platform/internal/platform/admission"
	"github.com/spendwise-platform/internal/platform/identity"
	"github.com/spendwise-platform/internal/platform/messaging/producers"
	"github.com/spendwise-platform/internal/platform/persistence"
	"github.com/spendwise-platform/internal/platform/view"
)

func main() {
	// Create base context with cancellation
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	// Initialize configuration
	cfg, err := config.LoadConfig("api_server")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewLogger(cfg)

	// Initialize databases with app context
	postgresDB, err := persistence.NewPostgresDB(appCtx, log, &cfg.Postgres)
	if err != nil {
		log.Error("Failed to initialize PostgreSQL", "error", err)
		os.Exit(1)
	}

	mongoDB, err := persistence.NewMongoDB(appCtx, log, &cfg.MongoDB)
	if err != nil {
		log.Error("Failed to initialize MongoDB", "error", err)
		os.Exit(1)
	}

	// Initialize Kafka producer for the notification side channel
	notificationProducer, err := producers.NewNotificationProducer(appCtx, log, &cfg.Kafka)
	if err != nil {
		log.Error("Failed to initialize notification producer", "error", err)
		os.Exit(1)
	}

	// Initialize the receipt extraction adapter
	extractor, err := extraction.NewExtractor(appCtx, log, &cfg.Gemini)
	if err != nil {
		log.Error("Failed to initialize receipt extractor", "error", err)
		os.Exit(1)
	}

	// Initialize repositories
	userRepo := postgres.NewUserRepository(log, postgresDB)
	accountRepo := postgres.NewAccountRepository(log, postgresDB)
	transactionRepo := postgres.NewTransactionRepository(log, postgresDB)
	scanAuditRepo := mongo.NewScanAuditRepository(log, mongoDB.Database())

	// Initialize capabilities
	provider := identity.NewHeaderProvider()
	limiter := admission.NewTokenBucketLimiter(&cfg.RateLimit)
	invalidator := view.NewLogInvalidator(log)
	applier := ledger.New(log)

	// Initialize services
	accountService := service.NewAccountService(log, userRepo, accountRepo, transactionRepo)
	transactionService := service.NewTransactionService(log, userRepo, accountRepo, transactionRepo, postgresDB, applier, limiter, invalidator, notificationProducer)
	receiptService := service.NewReceiptService(log, userRepo, extractor, scanAuditRepo)

	// Initialize REST server
	server := api_server.NewServer(log, cfg, provider, accountService, transactionService, receiptService)
	log.Info("REST server initialized")

	// Create error channel for server errors
	errChan := make(chan error, 1)

	// Start server in goroutine
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Server.Port)
		if err := server.Start(); err != nil {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// Set up signal handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	// Wait for a shutdown signal or error
	var serverErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case err := <-errChan:
		log.Error("Server error occurred", "error", err)
		serverErr = err
	}

	// Cancel the application context
	cancelAppCtx()

	// Create a shutdown context with timeout
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	// Graceful shutdown sequence
	log.Info("Starting graceful shutdown...")

	// Shutdown HTTP server first so in-flight requests drain before the
	// stores go away
	if err = server.Stop(shutdownCtx); err != nil {
		log.Error("Error during server shutdown", "error", err)
	}

	if err = notificationProducer.Close(); err != nil {
		log.Error("Error closing notification producer", "error", err)
	}

	postgresDB.Close()

	if err = mongoDB.Close(shutdownCtx); err != nil {
		log.Error("Error closing MongoDB connection", "error", err)
	}

	// Final status
	if serverErr != nil {
		log.Error("HTTP server shutdown with errors", "error", serverErr)
	}
	if err != nil {
		log.Error("Server shutdown completed with errors")
	} else {
		log.Info("Server shutdown completed successfully")
	}
}

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/natserract/forcekit/contactsync/schema/postgres"
	"github.com/natserract/forcekit/contactsync/services"
	"github.com/natserract/forcekit/pkg/config"
	"github.com/natserract/forcekit/pkg/entity"
	"github.com/natserract/forcekit/pkg/force"
	"go.uber.org/zap"
)

func main() {
	// Initialize logger
	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("Failed to load config", zap.Error(err))
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize database connection
	dbCfg := postgres.NewConfig()
	db, err := postgres.New(dbCfg, logger)
	if err != nil {
		logger.Error("Failed to connect to database", zap.Error(err))
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()
	logger.Info("Database connection established")

	ctx := context.Background()
	if err := db.InitSchema(ctx); err != nil {
		logger.Error("Failed to initialize schema", zap.Error(err))
		fmt.Fprintf(os.Stderr, "Failed to initialize schema: %v\n", err)
		os.Exit(1)
	}

	// Negotiate the platform session
	session, err := force.NewSessionWithLogger(cfg, logger)
	if err != nil {
		logger.Error("Failed to create session", zap.Error(err))
		fmt.Fprintf(os.Stderr, "Failed to create session: %v\n", err)
		os.Exit(1)
	}
	if err := session.Login(ctx); err != nil {
		logger.Error("Failed to log in", zap.Error(err))
		fmt.Fprintf(os.Stderr, "Failed to log in: %v\n", err)
		os.Exit(1)
	}

	// Define the Contact entity type
	contacts := entity.DefineWithLogger(session, "Contact", services.ContactFields, "", logger)

	// Create services
	contactSvc := services.NewContactService(db, logger)
	syncSvc := services.NewSyncService(contacts, contactSvc, db, logger)

	// Run the sync
	metrics, err := syncSvc.SyncAll(ctx)
	if err != nil {
		logger.Error("Failed to sync contacts", zap.Error(err))
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	succeeded, failed := metrics.Totals()
	fmt.Println("Successfully completed contact sync")
	fmt.Printf("Sync Metrics:\n")
	fmt.Printf("  Run ID: %s\n", metrics.RunID)
	fmt.Printf("  Contacts: %d succeeded, %d failed\n", succeeded, failed)
}

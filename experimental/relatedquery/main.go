package main

import (
	"context"
	"fmt"
	"os"

	"github.com/natserract/forcekit/pkg/config"
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

	// Create and negotiate the session
	session, err := force.NewSessionWithLogger(cfg, logger)
	if err != nil {
		logger.Error("Failed to create session", zap.Error(err))
		fmt.Fprintf(os.Stderr, "Failed to create session: %v\n", err)
		os.Exit(1)
	}
	ctx := context.Background()
	if err := session.Login(ctx); err != nil {
		logger.Error("Failed to log in", zap.Error(err))
		fmt.Fprintf(os.Stderr, "Failed to log in: %v\n", err)
		os.Exit(1)
	}

	// Parent-to-child relationship query
	accountsWithContacts(ctx, session)
}

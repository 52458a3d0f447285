package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/netgee-k/mt5-v2/internal/broker"
	"github.com/netgee-k/mt5-v2/internal/config"
	"github.com/netgee-k/mt5-v2/internal/database"
	"github.com/netgee-k/mt5-v2/internal/journal"
	"github.com/netgee-k/mt5-v2/internal/logger"
	"go.uber.org/zap"
)

// One-shot history sync against the broker terminal, for cron jobs and
// first-time backfills.
func main() {
	userID := flag.Uint("user", 0, "journal user id to sync trades into")
	days := flag.Int("days", 0, "history window in days (default from config)")
	flag.Parse()

	// Load application configuration
	cfg, err := config.LoadConfig("./configs")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewLogger(cfg.Logger.Level, cfg.Logger.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if *userID == 0 {
		log.Fatal("A user id is required (-user)")
	}
	if *days <= 0 {
		*days = cfg.Journal.SyncDays
	}

	// Initialize database
	db, err := database.NewDatabase(cfg.Database.DSN)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	log.Info("Database connection successful and schema migrated.")

	// Setup context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		sigchan := make(chan os.Signal, 1)
		signal.Notify(sigchan, syscall.SIGINT, syscall.SIGTERM)
		<-sigchan
		log.Info("Shutdown signal received, cancelling sync...")
		cancel()
	}()

	// Connect to the broker terminal
	bridge := broker.NewBridgeClient(&cfg.Broker, log)
	if err := bridge.Ping(ctx); err != nil {
		log.Fatal("Failed to reach broker terminal", zap.Error(err))
	}
	if err := bridge.Login(ctx); err != nil {
		log.Fatal("Failed to log in to broker terminal", zap.Error(err))
	}

	syncer := journal.NewSyncer(log, db, bridge, cfg.Journal.PipMultiplier)
	count, err := syncer.Sync(ctx, *userID, *days)
	if err != nil {
		log.Fatal("Sync failed", zap.Error(err))
	}

	log.Info("Sync finished",
		zap.Uint("user_id", *userID),
		zap.Int("days", *days),
		zap.Int("trades", count))
}

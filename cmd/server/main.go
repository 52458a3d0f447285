package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/netgee-k/mt5-v2/internal/ai"
	"github.com/netgee-k/mt5-v2/internal/auth"
	"github.com/netgee-k/mt5-v2/internal/broker"
	"github.com/netgee-k/mt5-v2/internal/config"
	"github.com/netgee-k/mt5-v2/internal/database"
	"github.com/netgee-k/mt5-v2/internal/journal"
	"github.com/netgee-k/mt5-v2/internal/logger"
	"github.com/netgee-k/mt5-v2/internal/mail"
	"github.com/netgee-k/mt5-v2/internal/market"
	"github.com/netgee-k/mt5-v2/internal/server"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
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
	log.Info("Configuration loaded")

	// Connect to the database
	db, err := database.NewDatabase(cfg.Database.DSN)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	log.Info("Database connection successful and schema migrated.")

	// Auth service
	authSvc := auth.NewService(
		cfg.Auth.SecretKey,
		time.Duration(cfg.Auth.AccessTokenTTLMin)*time.Minute,
		time.Duration(cfg.Auth.RefreshTokenTTLMin)*time.Minute,
		time.Duration(cfg.Auth.VerifyTokenTTLHrs)*time.Hour,
		cfg.Auth.PasswordMinLength,
	)

	// External clients
	bridge := broker.NewBridgeClient(&cfg.Broker, log)
	marketClient := market.NewClient(&cfg.Finnhub, log)
	llm := ai.NewOpenAIClient(&cfg.OpenAI, log)
	analyzer := ai.NewAnalyzer(llm, marketClient, log)

	var mailer *mail.Sender
	if cfg.SMTP.Host != "" {
		mailer, err = mail.NewSender(&cfg.SMTP, log)
		if err != nil {
			log.Fatal("Failed to initialize mail sender", zap.Error(err))
		}
	} else {
		log.Warn("SMTP not configured; verification and reset mails are disabled")
	}

	syncer := journal.NewSyncer(log, db, bridge, cfg.Journal.PipMultiplier)

	srv := server.New(log, db, &cfg, authSvc, syncer, analyzer, marketClient, mailer)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Info("Starting web server", zap.String("address", addr))

	if err := http.ListenAndServe(addr, srv.Router()); err != nil {
		log.Fatal("Web server failed", zap.Error(err))
	}
}

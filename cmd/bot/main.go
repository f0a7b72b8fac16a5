package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"balance-ledger-bot/config"
	pgStorage "balance-ledger-bot/internal/adapter/storage/postgres"
	"balance-ledger-bot/internal/adapter/telegram"
	"balance-ledger-bot/internal/service"
	"balance-ledger-bot/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	log.Info().Msg("Starting Balance Ledger Bot")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Run schema migrations before opening the pool
	if err := pgStorage.Migrate(cfg.Database.DSN()); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}
	log.Info().Msg("Migrations applied")

	// Initialize PostgreSQL pool
	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()
	log.Info().Msg("PostgreSQL connected")

	// Initialize repositories
	accountRepo := pgStorage.NewAccountRepo(pool)
	opRepo := pgStorage.NewOperationRepo(pool)
	auditRepo := pgStorage.NewAuditRepo(pool)
	transactor := pgStorage.NewTransactor(pool)

	// Initialize core services
	encSvc, err := service.NewAESEncryptionService(cfg.AES.Key)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize encryption service")
	}
	auditSvc := service.NewAuditService(auditRepo, log)
	ledgerSvc := service.NewLedgerService(accountRepo, opRepo, encSvc, transactor, auditSvc, log)

	// Initialize Telegram transport
	bot, err := telegram.NewBot(cfg.Telegram, ledgerSvc, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize telegram bot")
	}

	log.Info().Int("poll_timeout", cfg.Telegram.PollTimeout).Msg("Polling for updates")

	if err := bot.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("Polling loop failed")
	}

	log.Info().Msg("Bot exited")
}

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"cardledger/internal/cardnumber"
	"cardledger/internal/config"
	"cardledger/internal/db"
	"cardledger/internal/handlers"
	"cardledger/internal/lock"
	"cardledger/internal/services"
	"cardledger/internal/store"
	"cardledger/internal/websocket"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger := newLogger(cfg)
	slog.SetDefault(logger)

	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect database", "error", err)
		os.Exit(1)
	}
	defer database.Close()

	customers := store.NewCustomerStore(database)
	cards := store.NewCardStore(database)
	transactions := store.NewTransactionStore(database)
	audit := store.NewAuditStore(database)
	txRunner := db.NewTxRunner(database)
	hub := websocket.NewHub()

	customerService := services.NewCustomerService(txRunner, customers, cards, transactions, audit, logger)
	cardService := services.NewCardService(txRunner, customers, cards, audit, cardnumber.NewGenerator(cfg.Cards.NumberMaxAttempts), services.CardPolicyFromConfig(cfg.Cards), logger)
	postingService := services.NewPostingService(txRunner, cards, transactions, audit, hub, lock.NewKeyed(), cfg.Cards.DailyResetEnabled, logger)
	authService := services.NewAuthService(customers, customerService, cfg.JWTSecret, cfg.TokenTTL, logger)

	handler := handlers.New(cfg, customerService, cardService, postingService, authService, audit, hub, logger)
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler.Routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("card ledger API listening", "addr", server.Addr, "env", cfg.AppEnv, "daily_reset", cfg.Cards.DailyResetEnabled)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
	<-shutdown

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}

func newLogger(cfg config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)}
	if cfg.IsProduction() {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

func parseLevel(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

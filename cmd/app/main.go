package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/murasakijyuutann/transport-payment/internal/auth"
	"github.com/murasakijyuutann/transport-payment/internal/card"
	"github.com/murasakijyuutann/transport-payment/internal/config"
	"github.com/murasakijyuutann/transport-payment/internal/db"
	"github.com/murasakijyuutann/transport-payment/internal/fare"
	"github.com/murasakijyuutann/transport-payment/internal/journey"
	"github.com/murasakijyuutann/transport-payment/internal/ledger"
	"github.com/murasakijyuutann/transport-payment/internal/logger"
	"github.com/murasakijyuutann/transport-payment/internal/notify"
	"github.com/murasakijyuutann/transport-payment/internal/server"
	"github.com/murasakijyuutann/transport-payment/internal/station"
	"github.com/murasakijyuutann/transport-payment/internal/user"
)

func main() {
	logger.Init()
	logger.Info("Starting transit payment service")

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	logger.Info("Connecting to database...")
	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()
	logger.Info("Database connected")

	if err := db.RunMigrations(database, cfg.MigrationsPath); err != nil {
		logger.Fatalf("Failed to run migrations: %v", err)
	}
	logger.Info("Migrations completed")

	tx := db.NewTxRunner(database)

	ledgerRepo := ledger.NewRepository(cfg.Journey.Location)
	cardRepo := card.NewRepository()
	stationRepo := station.NewRepository()

	tokens, err := auth.NewIssuer(cfg.JWTSecret)
	if err != nil {
		logger.Fatalf("Failed to configure tokens: %v", err)
	}

	userService := user.NewService(tx, user.NewRepository(), ledgerRepo, tokens)
	ledgerService := ledger.NewService(tx, ledgerRepo)

	notifier := notify.New(notify.Config{
		From:     cfg.EmailFrom,
		FromName: cfg.EmailFromName,
		SMTPHost: cfg.SMTPHost,
		SMTPPort: cfg.SMTPPort,
		SMTPUser: cfg.SMTPUser,
		SMTPPass: cfg.SMTPPass,
	}, notify.NewRedisClient(cfg.RedisAddr), notify.RecipientFunc(func(ctx context.Context, userID int64) (notify.Recipient, error) {
		u, err := userService.GetByID(ctx, userID)
		if err != nil {
			return notify.Recipient{}, err
		}
		return notify.Recipient{Email: u.Email, Name: u.Name}, nil
	}))
	defer notifier.Close()
	logger.Info("Notification service initialized")

	journeyService := journey.NewService(journey.Deps{
		Tx:       tx,
		Journeys: journey.NewRepository(),
		Cards:    cardRepo,
		Stations: stationRepo,
		Ledger:   ledgerRepo,
		Calculator: fare.NewCalculator(fare.Config{
			BaseFare:          cfg.Fare.BaseFare,
			PerZoneCharge:     cfg.Fare.PerZoneCharge,
			DailyCapAmount:    cfg.Fare.DailyCapAmount,
			IncompletePenalty: cfg.Fare.IncompletePenalty,
		}),
		Notifier: notifier,
	}, journey.Config{
		MaxDuration: time.Duration(cfg.Journey.MaxDurationHours) * time.Hour,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go notifier.Start(ctx)
	go journey.NewSweeper(journeyService, cfg.Journey.SweepInterval).Start(ctx)

	srv := server.New(cfg, tokens, server.Handlers{
		Users:    user.NewHandler(userService),
		Cards:    card.NewHandler(cardRepo, database),
		Stations: station.NewHandler(stationRepo, database),
		Wallet:   ledger.NewHandler(ledgerService, cfg.Fare.DailyCapAmount, cfg.Journey.Location),
		Journeys: journey.NewHandler(journeyService),
	}, server.HealthChecks{
		Database: database.PingContext,
		Queue:    notifier.Ping,
	})

	serverErrChan := make(chan error, 1)
	go func() {
		logger.Infof("Server starting on port %s", cfg.Port)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Infof("Received signal: %v", sig)
	case err := <-serverErrChan:
		logger.Errorf("Server error: %v", err)
	}

	logger.Info("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Error during server shutdown: %v", err)
	}

	logger.Info("Server stopped")
}

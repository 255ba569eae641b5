package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/NgigiN/aureliya/internal/automation"
	"github.com/NgigiN/aureliya/internal/booking"
	"github.com/NgigiN/aureliya/internal/chat"
	"github.com/NgigiN/aureliya/internal/config"
	"github.com/NgigiN/aureliya/internal/discord"
	"github.com/NgigiN/aureliya/internal/httpapi"
	"github.com/NgigiN/aureliya/internal/ledger"
	"github.com/NgigiN/aureliya/internal/mailer"
	"github.com/NgigiN/aureliya/internal/notify"
	"github.com/NgigiN/aureliya/internal/payments"
	"github.com/NgigiN/aureliya/internal/storage"
)

func main() {
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration %v\n", err)
		os.Exit(1)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if envErr != nil {
		logger.Info("No .env file loaded", zap.Error(envErr))
	}

	if err := run(cfg, logger); err != nil {
		logger.Fatal("Service stopped with error", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx := context.Background()

	db, err := storage.NewDatabase(cfg.Storage.SQLitePath)
	if err != nil {
		return fmt.Errorf("failed to initialize the database: %w", err)
	}
	defer db.Close()

	var slots storage.Slots = db
	switch cfg.Storage.Driver {
	case "redis":
		rs := storage.NewRedisSlots(cfg.Storage.RedisAddr, cfg.Storage.RedisPassword, cfg.Storage.RedisDB, "aureliya")
		defer rs.Close()
		if err := rs.Ping(ctx); err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		slots = rs
	case "memory":
		slots = storage.NewMemorySlots()
	}
	logger.Info("Ledger storage ready", zap.String("driver", cfg.Storage.Driver))

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	engine := automation.New(logger.Named("automation"))
	sinks := ledger.Acknowledgers{automation.DepositSink{Engine: engine}}
	if cfg.WebhookURL != "" {
		sinks = append(sinks, notify.NewWebhook(cfg.WebhookURL))
	}

	store := ledger.NewStore(slots, logger.Named("ledger"), ledger.WithSlot(cfg.Storage.Slot))
	dashboard := ledger.NewDashboard(store, loc)
	intake := ledger.NewIntake(store, sinks, ledger.AmountPolicy(cfg.Ledger.AmountPolicy), logger.Named("intake"))
	defer intake.Wait()
	withdrawal := ledger.NewWithdrawal(store, dashboard, logger.Named("withdrawal"))
	chatBot := chat.Bot{Delay: cfg.ChatReplyDelay}

	smtpMailer := &mailer.SMTP{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.User,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
	}
	agent := booking.NewAgent(payments.NewStripe(cfg.StripeSecretKey), smtpMailer, db, cfg.SMTP.OwnerEmail, logger.Named("booking"))

	srv := &httpapi.Server{
		Intake:            intake,
		Dashboard:         dashboard,
		Withdrawal:        withdrawal,
		Engine:            engine,
		Chat:              chatBot,
		Booking:           agent,
		DashboardPassword: cfg.DashboardPassword,
		StorageDriver:     cfg.Storage.Driver,
		Log:               logger.Named("http"),
	}

	if cfg.Discord.BotToken != "" {
		bot, err := discord.NewBot(cfg.Discord.BotToken, cfg.Discord.ChannelID, cfg.Discord.PromptTimeout, discord.Services{
			Intake:     intake,
			Dashboard:  dashboard,
			Withdrawal: withdrawal,
			Chat:       chatBot,
		}, logger.Named("discord"))
		if err != nil {
			return fmt.Errorf("failed to initialize the discord bot: %w", err)
		}
		if err := bot.Start(); err != nil {
			return fmt.Errorf("failed to start bot: %w", err)
		}
		defer bot.Stop()
		srv.DiscordConnected = bot.Connected
	} else {
		logger.Info("DISCORD_BOT_TOKEN not set, Discord bot disabled")
	}

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", zap.String("addr", cfg.HTTPAddr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	select {
	case sig := <-sc:
		logger.Info("Shutting down", zap.String("signal", sig.String()))
	case err := <-errCh:
		return fmt.Errorf("http server failed: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP server shutdown incomplete", zap.Error(err))
	}
	return nil
}

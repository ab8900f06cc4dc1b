package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"thumblytic-backend-go/internal/config"
	"thumblytic-backend-go/internal/events"
	"thumblytic-backend-go/pkg/mailer"
	"thumblytic-backend-go/pkg/messagequeue"
)

func main() {
	// --- 1. Load Configuration ---
	cfg, err := config.LoadNotifierConfig()
	if err != nil {
		log.Fatalf("CRITICAL_ERROR: Failed to load notifier configuration: %v", err)
	}

	// --- 2. Initialize Logger ---
	var zapLogger *zap.Logger
	if cfg.IsRelease() {
		zapLogger, err = zap.NewProduction()
	} else {
		zapLogger, err = zap.NewDevelopment()
	}
	if err != nil {
		log.Fatalf("CRITICAL_ERROR: Failed to initialize Zap logger: %v", err)
	}
	defer zapLogger.Sync()

	// --- 3. SMTP and Broker ---
	m, err := mailer.New(mailer.Config{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
	})
	if err != nil {
		zapLogger.Fatal("Invalid SMTP configuration", zap.Error(err))
	}
	mq, err := messagequeue.NewRabbitMQService(messagequeue.NewRabbitMQServiceConfig{URL: cfg.AMQPURL, Logger: zapLogger})
	if err != nil {
		zapLogger.Fatal("Failed to connect to RabbitMQ", zap.Error(err))
	}
	defer mq.Close()

	// --- 4. Consume until SIGINT/SIGTERM ---
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	notifier := events.NewNotifier(m, cfg.AdminEmail, cfg.ClientURL, zapLogger)
	zapLogger.Info("Notifier consuming", zap.String("queue", cfg.EventsQueue))
	if err := mq.Consume(ctx, cfg.EventsQueue, notifier.Handle); err != nil && !errors.Is(err, context.Canceled) {
		zapLogger.Fatal("Consumer stopped", zap.Error(err))
	}
	zapLogger.Info("Notifier exiting.")
}

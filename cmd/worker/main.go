package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/swiftparcel/courierdesk-backend/internal/invoices"
	"github.com/swiftparcel/courierdesk-backend/internal/shipments"
	"github.com/swiftparcel/courierdesk-backend/pkg/config"
	"github.com/swiftparcel/courierdesk-backend/pkg/db"
	"github.com/swiftparcel/courierdesk-backend/pkg/logger"
	"github.com/swiftparcel/courierdesk-backend/pkg/metrics"
	"github.com/swiftparcel/courierdesk-backend/pkg/migrate"
	"github.com/swiftparcel/courierdesk-backend/pkg/outbox/idempotency"
	"github.com/swiftparcel/courierdesk-backend/pkg/pubsub"
	"github.com/swiftparcel/courierdesk-backend/pkg/redis"
)

const consumedEventTTL = 24 * time.Hour

func main() {
	logg := logger.New(logger.Options{ServiceName: "worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "worker"

	logg = logger.New(logger.Options{
		ServiceName: "worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	pubsubClient, err := pubsub.NewClient(context.Background(), cfg.GCP, cfg.PubSub, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap pubsub", err)
		os.Exit(1)
	}
	defer func() {
		if err := pubsubClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing pubsub client", err)
		}
	}()

	manager, err := idempotency.NewManager(redisClient, consumedEventTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create idempotency manager", err)
		os.Exit(1)
	}

	renderer, err := invoices.NewTemplateRenderer()
	if err != nil {
		logg.Error(context.Background(), "failed to build invoice renderer", err)
		os.Exit(1)
	}

	var senders []invoices.Sender
	if cfg.Dispatch.SMTPAddr != "" && cfg.Dispatch.EmailTo != "" {
		emailSender, err := invoices.NewEmailSender(cfg.Dispatch.SMTPAddr, cfg.Dispatch.EmailFrom, cfg.Dispatch.EmailTo)
		if err != nil {
			logg.Error(context.Background(), "failed to build email sender", err)
			os.Exit(1)
		}
		senders = append(senders, emailSender)
	}
	if cfg.Dispatch.WhatsAppURL != "" {
		waSender, err := invoices.NewWhatsAppSender(cfg.Dispatch.WhatsAppURL)
		if err != nil {
			logg.Error(context.Background(), "failed to build whatsapp sender", err)
			os.Exit(1)
		}
		senders = append(senders, waSender)
	}
	if len(senders) == 0 {
		logg.Warn(context.Background(), "no invoice delivery channels configured, invoices will only be logged")
	}

	consumer, err := invoices.NewConsumer(
		shipments.NewRepository(dbClient.DB()),
		renderer,
		senders,
		pubsubClient.InvoiceSubscription(),
		manager,
		metrics.NewDispatchMetrics(prometheus.DefaultRegisterer),
		cfg.Dispatch.Timeout,
		logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create invoice consumer", err)
		os.Exit(1)
	}

	service, err := NewService(ServiceParams{
		Config:          cfg,
		Logger:          logg,
		DB:              dbClient,
		Redis:           redisClient,
		PubSub:          pubsubClient,
		InvoiceConsumer: consumer,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create worker service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": "worker",
	})
	logg.Info(ctx, "starting invoice dispatch worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "worker shutting down gracefully")
}

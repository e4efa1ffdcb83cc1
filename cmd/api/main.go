package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/swiftparcel/courierdesk-backend/api/routes"
	"github.com/swiftparcel/courierdesk-backend/internal/payments"
	"github.com/swiftparcel/courierdesk-backend/internal/pricing"
	"github.com/swiftparcel/courierdesk-backend/internal/reprice"
	"github.com/swiftparcel/courierdesk-backend/internal/shipments"
	"github.com/swiftparcel/courierdesk-backend/pkg/config"
	"github.com/swiftparcel/courierdesk-backend/pkg/db"
	"github.com/swiftparcel/courierdesk-backend/pkg/logger"
	"github.com/swiftparcel/courierdesk-backend/pkg/metrics"
	"github.com/swiftparcel/courierdesk-backend/pkg/migrate"
	"github.com/swiftparcel/courierdesk-backend/pkg/outbox"
	"github.com/swiftparcel/courierdesk-backend/pkg/redis"
)

const shutdownGrace = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "api"

	logg = logger.New(logger.Options{
		ServiceName: "api",
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

	emitter := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)
	ledgerMetrics := metrics.NewLedgerMetrics(prometheus.DefaultRegisterer)

	shipmentRepo := shipments.NewRepository(dbClient.DB())
	paymentRepo := payments.NewRepository(dbClient.DB())
	pricingRepo := pricing.NewRepository(dbClient.DB())

	pricingService, err := pricing.NewService(pricingRepo, dbClient, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create pricing service", err)
		os.Exit(1)
	}
	shipmentService, err := shipments.NewService(shipmentRepo, pricingService, dbClient, emitter, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create shipment service", err)
		os.Exit(1)
	}
	paymentService, err := payments.NewService(paymentRepo, shipmentRepo, dbClient, emitter, ledgerMetrics, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create payment service", err)
		os.Exit(1)
	}
	repriceService, err := reprice.NewService(shipmentRepo, paymentRepo, pricingService, dbClient, emitter, ledgerMetrics, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create reprice service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(cfg, logg, dbClient, redisClient, shipmentService, pricingService, paymentService, repriceService),
		ReadHeaderTimeout: 10 * time.Second,
	}

	notifyCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-notifyCtx.Done():
		logg.Info(ctx, "shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
			os.Exit(1)
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	}

	logg.Info(ctx, "api server shut down gracefully")
}

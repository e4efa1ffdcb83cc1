package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/swiftparcel/courierdesk-backend/api/controllers"
	"github.com/swiftparcel/courierdesk-backend/api/middleware"
	"github.com/swiftparcel/courierdesk-backend/internal/payments"
	"github.com/swiftparcel/courierdesk-backend/internal/pricing"
	"github.com/swiftparcel/courierdesk-backend/internal/reprice"
	"github.com/swiftparcel/courierdesk-backend/internal/shipments"
	"github.com/swiftparcel/courierdesk-backend/pkg/config"
	"github.com/swiftparcel/courierdesk-backend/pkg/logger"
	"github.com/swiftparcel/courierdesk-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP controllers.Pinger,
	redisClient *redis.Client,
	shipmentService shipments.Service,
	pricingService pricing.Service,
	paymentService payments.Service,
	repriceService reprice.Service,
) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	writePolicy := middleware.NewRateLimitPolicy(
		"writes",
		cfg.RateLimit.WriteWindow,
		cfg.RateLimit.WriteIPLimit,
		cfg.RateLimit.WriteUserLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		var cacheP controllers.Pinger
		if redisClient != nil {
			cacheP = redisClient
		}
		r.Get("/ready", controllers.HealthReady(cfg, dbP, cacheP, logg))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		if redisClient != nil {
			r.Use(middleware.Idempotency(redisClient, logg))
			r.Use(middleware.RateLimit(writePolicy, redisClient, logg))
		}

		r.Route("/v1/shipments", func(r chi.Router) {
			r.Post("/", controllers.CreateShipment(shipmentService, logg))
			r.Get("/", controllers.ListShipments(shipmentService, logg))
			r.Get("/tracking/{trackingNumber}", controllers.GetShipmentByTracking(shipmentService, logg))

			r.Route("/{shipmentId}", func(r chi.Router) {
				r.Get("/", controllers.GetShipment(shipmentService, logg))
				r.Post("/status", controllers.UpdateShipmentStatus(shipmentService, logg))
				r.Post("/cancel", controllers.CancelShipment(shipmentService, logg))

				r.Get("/reprice", controllers.PreviewReprice(repriceService, logg))
				r.With(middleware.RequireElevated(logg)).Post("/reprice", controllers.ApplyReprice(repriceService, logg))

				r.Route("/payments", func(r chi.Router) {
					r.Get("/", controllers.GetLedger(paymentService, logg))
					r.Post("/", controllers.AddPayment(paymentService, logg))
					r.Post("/settle", controllers.SettleBalance(paymentService, logg))
					r.Patch("/method", controllers.ChangePaymentMethod(paymentService, logg))
					r.Post("/{entryId}/void", controllers.VoidPayment(paymentService, logg))
				})
			})
		})

		r.Route("/admin/v1/pricing", func(r chi.Router) {
			r.Use(middleware.RequireElevated(logg))
			r.Post("/", controllers.CreatePricingConfiguration(pricingService, logg))
			r.Get("/", controllers.ListPricingConfigurations(pricingService, logg))
			r.Post("/{configId}/activate", controllers.ActivatePricingConfiguration(pricingService, logg))
			r.Post("/{configId}/archive", controllers.ArchivePricingConfiguration(pricingService, logg))
		})
	})

	return r
}

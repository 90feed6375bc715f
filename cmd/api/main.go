package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/wayfarerhq/wayfarer-backend/api/routes"
	"github.com/wayfarerhq/wayfarer-backend/internal/ancillary"
	"github.com/wayfarerhq/wayfarer-backend/internal/booking"
	"github.com/wayfarerhq/wayfarer-backend/internal/cart"
	checkoutsvc "github.com/wayfarerhq/wayfarer-backend/internal/checkout"
	stripewebhook "github.com/wayfarerhq/wayfarer-backend/internal/webhooks/stripe"
	"github.com/wayfarerhq/wayfarer-backend/pkg/config"
	"github.com/wayfarerhq/wayfarer-backend/pkg/db"
	"github.com/wayfarerhq/wayfarer-backend/pkg/duffel"
	"github.com/wayfarerhq/wayfarer-backend/pkg/instance"
	"github.com/wayfarerhq/wayfarer-backend/pkg/logger"
	"github.com/wayfarerhq/wayfarer-backend/pkg/metrics"
	"github.com/wayfarerhq/wayfarer-backend/pkg/migrate"
	"github.com/wayfarerhq/wayfarer-backend/pkg/redis"
	"github.com/wayfarerhq/wayfarer-backend/pkg/stripe"
)

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

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, cfg.FeatureFlags, logg)
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

	duffelClient, err := duffel.NewClient(cfg.Duffel.APIKey,
		duffel.WithBaseURL(cfg.Duffel.BaseURL),
		duffel.WithHTTPClient(&http.Client{Timeout: cfg.Duffel.Timeout}),
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create duffel client", err)
		os.Exit(1)
	}

	stripeClient, err := stripe.NewClient(context.Background(), cfg.Stripe, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create stripe client", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	bookingMetrics := metrics.NewBookingMetrics(registry)

	cartService, err := cart.NewService(cart.NewRepository(dbClient.DB()), dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}

	ancillaryService, err := ancillary.NewService(duffelClient, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create ancillary service", err)
		os.Exit(1)
	}

	checkoutService, err := checkoutsvc.NewService(stripeClient, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}

	statusService, err := booking.NewStatusService(redisClient, logg, cfg.Booking.StatusTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create status service", err)
		os.Exit(1)
	}

	bookingPoller, err := booking.NewPoller(statusService, logg, cfg.Booking)
	if err != nil {
		logg.Error(context.Background(), "failed to create booking poller", err)
		os.Exit(1)
	}

	webhookService, err := stripewebhook.NewService(stripewebhook.ServiceParams{
		Supplier:      duffelClient,
		StatusService: statusService,
		Metrics:       bookingMetrics,
		Logger:        logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create webhook service", err)
		os.Exit(1)
	}

	webhookGuard, err := stripewebhook.NewIdempotencyGuard(redisClient, 24*time.Hour, "stripe-webhook")
	if err != nil {
		logg.Error(context.Background(), "failed to create webhook guard", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": instance.GetID(),
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.RouterParams{
			Config:               cfg,
			Logger:               logg,
			DB:                   dbClient,
			Redis:                redisClient,
			CartService:          cartService,
			AncillaryService:     ancillaryService,
			CheckoutService:      checkoutService,
			StatusService:        statusService,
			BookingPoller:        bookingPoller,
			StripeClient:         stripeClient,
			StripeWebhookService: webhookService,
			StripeWebhookGuard:   webhookGuard,
			MetricsRegistry:      registry,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

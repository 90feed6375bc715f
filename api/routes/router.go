package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wayfarerhq/wayfarer-backend/api/controllers"
	webhookcontrollers "github.com/wayfarerhq/wayfarer-backend/api/controllers/webhooks"
	"github.com/wayfarerhq/wayfarer-backend/api/middleware"
	"github.com/wayfarerhq/wayfarer-backend/internal/ancillary"
	"github.com/wayfarerhq/wayfarer-backend/internal/booking"
	"github.com/wayfarerhq/wayfarer-backend/internal/cart"
	checkoutsvc "github.com/wayfarerhq/wayfarer-backend/internal/checkout"
	stripewebhook "github.com/wayfarerhq/wayfarer-backend/internal/webhooks/stripe"
	"github.com/wayfarerhq/wayfarer-backend/pkg/config"
	"github.com/wayfarerhq/wayfarer-backend/pkg/db"
	"github.com/wayfarerhq/wayfarer-backend/pkg/logger"
	"github.com/wayfarerhq/wayfarer-backend/pkg/redis"
	"github.com/wayfarerhq/wayfarer-backend/pkg/stripe"
)

// RouterParams carries everything the HTTP surface depends on.
type RouterParams struct {
	Config               *config.Config
	Logger               *logger.Logger
	DB                   db.Pinger
	Redis                redis.Pinger
	CartService          cart.Service
	AncillaryService     ancillary.Service
	CheckoutService      checkoutsvc.Service
	StatusService        booking.StatusService
	BookingPoller        *booking.Poller
	StripeClient         *stripe.Client
	StripeWebhookService *stripewebhook.Service
	StripeWebhookGuard   *stripewebhook.IdempotencyGuard
	MetricsRegistry      *prometheus.Registry
}

func NewRouter(p RouterParams) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.Recoverer(p.Logger),
		middleware.RequestID(p.Logger),
		middleware.Logging(p.Logger),
		middleware.CORS(p.Config.App.CORSOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(p.Config))
		r.Get("/ready", controllers.HealthReady(p.Config, p.Logger, p.DB, p.Redis))
	})

	if p.MetricsRegistry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(p.MetricsRegistry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.Post("/stripe", webhookcontrollers.StripeWebhook(p.StripeWebhookService, p.StripeClient, p.StripeWebhookGuard, p.Logger))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/carts", func(r chi.Router) {
			r.Post("/", controllers.CreateCart(p.CartService, p.Logger))
			r.Route("/{cartID}", func(r chi.Router) {
				r.Get("/", controllers.GetCart(p.CartService, p.Logger))
				r.Delete("/offers", controllers.ClearCart(p.CartService, p.Logger))
				r.Post("/offers", controllers.AddCartOffer(p.CartService, p.Logger))
				r.Put("/offers/{offerID}/services", controllers.SetCartServices(p.CartService, p.Logger))
				r.Delete("/offers/{offerID}", controllers.RemoveCartOffer(p.CartService, p.Logger))
			})
		})

		r.Route("/offers", func(r chi.Router) {
			r.Post("/passengers", controllers.OfferPassengers(p.AncillaryService, p.Logger))
			r.Post("/seat-maps", controllers.OfferSeatMaps(p.AncillaryService, p.Logger))
		})

		r.Post("/checkout", controllers.InitiateCheckout(p.CheckoutService, p.Logger))
		r.Post("/bookings/status", controllers.BookingStatus(p.StatusService, p.BookingPoller, p.Logger))
	})

	return r
}

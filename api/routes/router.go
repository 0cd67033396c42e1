package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wirebazaar/wirebazaar-backend/api/controllers"
	"github.com/wirebazaar/wirebazaar-backend/api/middleware"
	"github.com/wirebazaar/wirebazaar-backend/internal/auth"
	"github.com/wirebazaar/wirebazaar-backend/internal/cart"
	"github.com/wirebazaar/wirebazaar-backend/internal/catalog"
	"github.com/wirebazaar/wirebazaar-backend/internal/inquiries"
	"github.com/wirebazaar/wirebazaar-backend/internal/orders"
	"github.com/wirebazaar/wirebazaar-backend/internal/users"
	"github.com/wirebazaar/wirebazaar-backend/pkg/auth/session"
	"github.com/wirebazaar/wirebazaar-backend/pkg/config"
	"github.com/wirebazaar/wirebazaar-backend/pkg/enums"
	"github.com/wirebazaar/wirebazaar-backend/pkg/logger"
)

// Dependencies carries everything the HTTP surface is wired to. Pingers that
// are nil are skipped by the readiness probe; a nil RateLimiter disables auth
// throttling.
type Dependencies struct {
	Pingers     map[string]controllers.Pinger
	RateLimiter middleware.RateLimiterStore
	Sessions    session.AccessSessionChecker
	Events      controllers.EventSource
	Gatherer    prometheus.Gatherer
	Heartbeat   time.Duration

	Auth      auth.Service
	Users     users.Service
	Catalog   catalog.Service
	Cart      cart.Service
	Orders    orders.Service
	Inquiries inquiries.Service
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS.AllowedOrigins),
	)

	otpPolicy := middleware.NewAuthRateLimitPolicy(
		"otp",
		cfg.AuthRateLimit.OTPWindow,
		cfg.AuthRateLimit.OTPIPLimit,
		cfg.AuthRateLimit.OTPContactLimit,
	)
	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	requireAuth := middleware.Auth(cfg.JWT, deps.Sessions, logg)
	optionalAuth := middleware.OptionalAuth(cfg.JWT, deps.Sessions, logg)
	clientKey := middleware.ClientKey(logg)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.Pingers))
	})

	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ProductsList(deps.Catalog, logg))
			r.Get("/facets", controllers.ProductFacets(deps.Catalog, logg))
			r.Get("/{productId}", controllers.ProductDetail(deps.Catalog, logg))
		})

		r.Route("/cart", func(r chi.Router) {
			r.Use(clientKey)
			r.Get("/", controllers.CartFetch(deps.Cart, logg))
			r.Delete("/", controllers.CartClear(deps.Cart, logg))
			r.Post("/items", controllers.CartAddLine(deps.Cart, logg))
			r.Patch("/items/{lineId}", controllers.CartSetQuantity(deps.Cart, logg))
			r.Delete("/items/{lineId}", controllers.CartRemoveLine(deps.Cart, logg))
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Use(clientKey, requireAuth)
			r.Get("/quote", controllers.CheckoutQuote(deps.Orders, logg))
			r.Post("/", controllers.CheckoutPlace(deps.Orders, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/", controllers.OrdersMine(deps.Orders, logg))
			r.Get("/{orderId}", controllers.OrderDetail(deps.Orders, logg))
		})

		r.Route("/auth", func(r chi.Router) {
			r.With(middleware.AuthRateLimit(otpPolicy, deps.RateLimiter, logg)).Post("/otp", controllers.AuthRequestOTP(deps.Auth, logg))
			r.With(middleware.AuthRateLimit(loginPolicy, deps.RateLimiter, logg)).Post("/verify", controllers.AuthVerifyOTP(deps.Auth, logg))
			r.With(requireAuth).Get("/me", controllers.AuthMe(deps.Auth, logg))
			r.With(requireAuth).Post("/logout", controllers.AuthLogout(deps.Auth, logg))
		})

		r.Route("/profile", func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/", controllers.ProfileGet(deps.Users, logg))
			r.Put("/", controllers.ProfileSave(deps.Users, logg))
		})

		r.Route("/inquiries", func(r chi.Router) {
			r.With(optionalAuth).Post("/", controllers.InquirySubmit(deps.Inquiries, logg))
			r.With(requireAuth).Get("/mine", controllers.InquiriesMine(deps.Inquiries, logg))
		})

		r.With(clientKey).Get("/events", controllers.EventsStream(deps.Events, deps.Heartbeat, logg))
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, deps.RateLimiter, logg)).Post("/auth/login", controllers.OwnerLogin(deps.Auth, logg))

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Use(middleware.RequireRole(string(enums.ActorRoleOwner), logg))

			r.Get("/dashboard", controllers.AdminDashboard(deps.Orders, deps.Catalog, deps.Inquiries, logg))

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", controllers.AdminOrdersList(deps.Orders, logg))
				r.Get("/stats", controllers.AdminOrderStats(deps.Orders, logg))
				r.Get("/{orderId}", controllers.AdminOrderDetail(deps.Orders, logg))
				r.Patch("/{orderId}/status", controllers.AdminOrderUpdateStatus(deps.Orders, logg))
			})

			r.Route("/products", func(r chi.Router) {
				r.Get("/", controllers.AdminProductsList(deps.Catalog, logg))
				r.Post("/", controllers.AdminProductCreate(deps.Catalog, logg))
				r.Get("/export", controllers.AdminProductsExport(deps.Catalog, logg))
				r.Post("/import", controllers.AdminProductsImport(deps.Catalog, logg))
				r.Put("/{productId}", controllers.AdminProductUpdate(deps.Catalog, logg))
				r.Post("/{productId}/toggle", controllers.AdminProductToggle(deps.Catalog, logg))
				r.Delete("/{productId}", controllers.AdminProductDelete(deps.Catalog, logg))
			})

			r.Route("/inquiries", func(r chi.Router) {
				r.Get("/", controllers.AdminInquiriesList(deps.Inquiries, logg))
				r.Delete("/", controllers.AdminInquiriesClear(deps.Inquiries, logg))
				r.Get("/stats", controllers.AdminInquiryStats(deps.Inquiries, logg))
				r.Patch("/{inquiryId}/status", controllers.AdminInquiryUpdateStatus(deps.Inquiries, logg))
				r.Delete("/{inquiryId}", controllers.AdminInquiryDelete(deps.Inquiries, logg))
			})
		})
	})

	return r
}

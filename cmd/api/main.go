package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/wirebazaar/wirebazaar-backend/api/controllers"
	"github.com/wirebazaar/wirebazaar-backend/api/routes"
	"github.com/wirebazaar/wirebazaar-backend/internal/auth"
	"github.com/wirebazaar/wirebazaar-backend/internal/cart"
	"github.com/wirebazaar/wirebazaar-backend/internal/catalog"
	"github.com/wirebazaar/wirebazaar-backend/internal/inquiries"
	"github.com/wirebazaar/wirebazaar-backend/internal/orders"
	"github.com/wirebazaar/wirebazaar-backend/internal/users"
	"github.com/wirebazaar/wirebazaar-backend/internal/verification"
	"github.com/wirebazaar/wirebazaar-backend/pkg/auth/session"
	"github.com/wirebazaar/wirebazaar-backend/pkg/config"
	"github.com/wirebazaar/wirebazaar-backend/pkg/env"
	"github.com/wirebazaar/wirebazaar-backend/pkg/events"
	"github.com/wirebazaar/wirebazaar-backend/pkg/instance"
	"github.com/wirebazaar/wirebazaar-backend/pkg/logger"
	"github.com/wirebazaar/wirebazaar-backend/pkg/mail"
	"github.com/wirebazaar/wirebazaar-backend/pkg/metrics"
)

const shutdownTimeout = 15 * time.Second

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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	storage, err := openInfra(ctx, cfg, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap storage", err)
		os.Exit(1)
	}
	defer func() {
		if err := storage.Close(); err != nil {
			logg.Error(context.Background(), "error closing storage", err)
		}
	}()

	bus := events.NewBus(16)
	var publisher events.Publisher = bus
	if storage.redis != nil {
		bridge := events.NewRedisBridge(bus, storage.redis, cfg.Redis.EventChannel, instance.GetID(), logg)
		publisher = bridge
		go func() {
			if err := bridge.Run(ctx, storage.redis); err != nil {
				logg.Error(ctx, "event relay stopped", err)
			}
		}()
	}

	storefrontMetrics := metrics.NewStorefrontMetrics(prometheus.DefaultRegisterer)

	mailer, err := mail.FromConfig(cfg.Sendgrid, logg)
	if err != nil {
		logg.Error(ctx, "failed to create mail sender", err)
		os.Exit(1)
	}

	catalogService, err := catalog.NewService(storage.catalogRepo, publisher)
	if err != nil {
		logg.Error(ctx, "failed to create catalog service", err)
		os.Exit(1)
	}

	cartService, err := cart.NewService(cart.ServiceParams{
		Store:     storage.store,
		Keys:      storage.keys,
		Products:  catalogService,
		Publisher: publisher,
	})
	if err != nil {
		logg.Error(ctx, "failed to create cart service", err)
		os.Exit(1)
	}

	pricing, err := orders.PricingFromConfig(cfg.Shipping)
	if err != nil {
		logg.Error(ctx, "invalid shipping config", err)
		os.Exit(1)
	}
	var notifier orders.Notifier
	if cfg.FeatureFlags.OrderConfirmationMail {
		notifier = orders.NewMailNotifier(mailer)
	}
	orderService, err := orders.NewService(orders.ServiceParams{
		Repo:     storage.ordersRepo,
		Cart:     cartService,
		Pricing:  pricing,
		Payment:  orders.PaymentTargetFromConfig(cfg.UPI),
		Metrics:  storefrontMetrics,
		Notifier: notifier,
		Logger:   logg,
	})
	if err != nil {
		logg.Error(ctx, "failed to create orders service", err)
		os.Exit(1)
	}

	inquiryService, err := inquiries.NewService(storage.inquiriesRepo, storefrontMetrics, logg)
	if err != nil {
		logg.Error(ctx, "failed to create inquiries service", err)
		os.Exit(1)
	}

	userService, err := users.NewService(storage.usersRepo)
	if err != nil {
		logg.Error(ctx, "failed to create users service", err)
		os.Exit(1)
	}

	verifier, err := verification.NewService(verification.ServiceParams{
		Store: storage.store,
		Keys:  storage.keys,
		Sender: verification.Router{
			Email: verification.NewMailSender(mailer),
			Phone: verification.NewLogSender(logg, cfg.OTP.LogCodes),
		},
		TTL:         cfg.OTP.TTL,
		MaxAttempts: cfg.OTP.MaxAttempts,
		Metrics:     storefrontMetrics,
		Logger:      logg,
	})
	if err != nil {
		logg.Error(ctx, "failed to create verification service", err)
		os.Exit(1)
	}

	sessionManager, err := session.NewManager(storage.store, storage.keys, cfg.Session.TTL)
	if err != nil {
		logg.Error(ctx, "failed to create session manager", err)
		os.Exit(1)
	}

	authService, err := auth.NewService(auth.ServiceParams{
		Verifier:       verifier,
		Users:          userService,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
		OwnerConfig:    cfg.Owner,
		PasswordConfig: cfg.Password,
		Logger:         logg,
	})
	if err != nil {
		logg.Error(ctx, "failed to create auth service", err)
		os.Exit(1)
	}

	deps := routes.Dependencies{
		Pingers:   map[string]controllers.Pinger{},
		Sessions:  sessionManager,
		Events:    bus,
		Auth:      authService,
		Users:     userService,
		Catalog:   catalogService,
		Cart:      cartService,
		Orders:    orderService,
		Inquiries: inquiryService,
	}
	if storage.db != nil {
		deps.Pingers["db"] = storage.db
	}
	if storage.redis != nil {
		deps.Pingers["redis"] = storage.redis
		deps.RateLimiter = storage.redis
	}

	addr := ":" + env.First(cfg.App.Port, "PORT")
	ctx = logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"backend":  cfg.Storage.Backend,
		"instance": instance.GetID(),
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(cfg, logg, deps),
		ReadHeaderTimeout: 10 * time.Second,
	}
	// Shutdown waits for handlers; event streams only return once the bus closes.
	server.RegisterOnShutdown(bus.Close)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
		logg.Info(ctx, "api server shut down")
	}
}

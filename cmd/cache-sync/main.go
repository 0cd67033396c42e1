package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wirebazaar/wirebazaar-backend/internal/cron"
	"github.com/wirebazaar/wirebazaar-backend/internal/inquiries"
	"github.com/wirebazaar/wirebazaar-backend/internal/orders"
	"github.com/wirebazaar/wirebazaar-backend/pkg/config"
	"github.com/wirebazaar/wirebazaar-backend/pkg/db"
	"github.com/wirebazaar/wirebazaar-backend/pkg/kvstore"
	"github.com/wirebazaar/wirebazaar-backend/pkg/logger"
	"github.com/wirebazaar/wirebazaar-backend/pkg/metrics"
	"github.com/wirebazaar/wirebazaar-backend/pkg/redis"
)

const lockName = "cache-sync"

func main() {
	once := flag.Bool("once", false, "run a single sync cycle and exit")
	metricsAddr := flag.String("metrics-addr", "", "serve /metrics on this address while running")
	jobNames := flag.String("job", "", "comma-separated job names to run (default: all)")
	flag.Parse()

	logg := logger.New(logger.Options{ServiceName: "cache-sync"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "cache-sync"

	logg = logger.New(logger.Options{
		ServiceName: "cache-sync",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	if !cfg.Storage.IsRemote() {
		logg.Error(context.Background(), "cache sync only applies to the remote backend", fmt.Errorf("storage backend is %q", cfg.Storage.Backend))
		os.Exit(1)
	}
	if !cfg.Redis.Enabled() {
		logg.Error(context.Background(), "cache sync requires redis", errors.New("redis not configured"))
		os.Exit(1)
	}

	dbClient, err := db.New(context.Background(), cfg.DB, cfg.FeatureFlags.UseSQLite, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

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

	metricsCollector := metrics.NewCronJobMetrics(prometheus.DefaultRegisterer)
	lock, err := cron.NewRedisLock(redisClient, redisClient.LockKey(lockName), cfg.CacheSync.LockTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create cron lock", err)
		os.Exit(1)
	}

	store := kvstore.NewRedisStore(redisClient)
	ordersJob, err := cron.NewOrdersSyncJob(cron.OrdersSyncJobParams{
		Logger:   logg,
		Source:   orders.NewGormRepository(dbClient.DB()),
		Cache:    orders.NewBlobRepository(store, redisClient),
		Metrics:  metricsCollector,
		PageSize: cfg.CacheSync.PageSize,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create orders sync job", err)
		os.Exit(1)
	}
	inquiriesJob, err := cron.NewInquiriesSyncJob(cron.InquiriesSyncJobParams{
		Logger:  logg,
		Source:  inquiries.NewGormRepository(dbClient.DB()),
		Cache:   inquiries.NewBlobRepository(store, redisClient),
		Metrics: metricsCollector,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create inquiries sync job", err)
		os.Exit(1)
	}

	registry, err := cron.NewRegistry(ordersJob, inquiriesJob).Only(splitNames(*jobNames)...)
	if err != nil {
		logg.Error(context.Background(), "invalid -job selection", err)
		os.Exit(1)
	}

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: registry,
		Lock:     lock,
		Metrics:  metricsCollector,
		Interval: cfg.CacheSync.Interval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cron service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
		"jobs":        registry.Names(),
	})

	if *once {
		if err := service.RunOnce(ctx); err != nil {
			logg.Error(ctx, "cache sync failed", err)
			os.Exit(1)
		}
		logg.Info(ctx, "cache sync completed")
		return
	}

	if *metricsAddr != "" {
		server := &http.Server{Addr: *metricsAddr, Handler: promhttp.Handler(), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logg.Error(ctx, "metrics server stopped", err)
			}
		}()
		defer server.Close()
	}

	logg.Info(ctx, "starting cache sync worker")
	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cache sync worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "cache sync worker shutting down gracefully")
}

func splitNames(raw string) []string {
	var names []string
	for _, name := range strings.Split(raw, ",") {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}
	return names
}

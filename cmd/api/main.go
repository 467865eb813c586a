package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/rahulverma/medibill-gateway/api/routes"
	"github.com/rahulverma/medibill-gateway/internal/billing"
	"github.com/rahulverma/medibill-gateway/internal/counters"
	"github.com/rahulverma/medibill-gateway/internal/search"
	"github.com/rahulverma/medibill-gateway/pkg/config"
	"github.com/rahulverma/medibill-gateway/pkg/logger"
	"github.com/rahulverma/medibill-gateway/pkg/metrics"
	"github.com/rahulverma/medibill-gateway/pkg/pharmacy"
	"github.com/rahulverma/medibill-gateway/pkg/redis"
	"github.com/rahulverma/medibill-gateway/pkg/session"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "gateway"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "gateway",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.Session)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	pharmacyClient, err := pharmacy.NewClient(cfg.Upstream, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create pharmacy client", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	serviceMetrics := metrics.NewServiceMetrics(registry)

	counterStore, err := counters.NewStore(cfg.Counters)
	if err != nil {
		logg.Error(context.Background(), "failed to create counter store", err)
		os.Exit(1)
	}

	searchService, err := search.NewService(pharmacyClient, cfg.Search, serviceMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create search service", err)
		os.Exit(1)
	}

	billingService, err := billing.NewService(counterStore, pharmacyClient, serviceMetrics, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create billing service", err)
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
	logg.Info(ctx, "starting gateway server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			redisClient,
			pharmacyClient,
			sessionManager,
			counterStore,
			searchService,
			billingService,
			serviceMetrics,
			registry,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "gateway server stopped unexpectedly", err)
		os.Exit(1)
	}
}

package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/vehicle-pricing/internal/api/http"
	"github.com/spec-kit/vehicle-pricing/internal/api/http/handlers"
	"github.com/spec-kit/vehicle-pricing/internal/auth"
	"github.com/spec-kit/vehicle-pricing/internal/commerce"
	"github.com/spec-kit/vehicle-pricing/internal/config"
	"github.com/spec-kit/vehicle-pricing/internal/events"
	"github.com/spec-kit/vehicle-pricing/internal/fipe"
	"github.com/spec-kit/vehicle-pricing/internal/observability"
	"github.com/spec-kit/vehicle-pricing/internal/persistence"
	"github.com/spec-kit/vehicle-pricing/internal/repository"
	"github.com/spec-kit/vehicle-pricing/internal/service"
	"github.com/spec-kit/vehicle-pricing/internal/techsheet"
	"github.com/spec-kit/vehicle-pricing/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if missing := cfg.Commerce.Missing(); len(missing) > 0 {
		logger.Warn("commerce settings incomplete; purchase checks will fail", zap.Strings("missing", missing))
	}
	if cfg.Auth.UsesDefaultSecret() {
		logger.Warn("AUTH_JWT_SECRET not set; access passes are signed with the development secret")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewMetrics(registry)

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	dispatcher := events.NewInMemoryDispatcher()
	worker.StartAuditWorker(service.NewAuditService(dispatcher, logger))

	httpClient := &http.Client{}
	commerceClient := commerce.NewClient(cfg.Commerce, httpClient, logger, metrics)
	entitlements := service.NewEntitlementService(*cfg, service.EntitlementDependencies{
		Gateway:    commerceClient,
		Dispatcher: dispatcher,
		Logger:     logger,
		Metrics:    metrics,
	})
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessPassTTL())

	var catalogCache fipe.Cache
	if redis.Enabled() {
		catalogCache = redis
	}
	fipeClient := fipe.NewClient(cfg.Fipe, httpClient, catalogCache, logger, metrics)

	generator, err := techsheet.NewGeminiGenerator(ctx, cfg.Gemini, logger, metrics)
	if err != nil {
		logger.Fatal("failed to init generative model client", zap.Error(err))
	}
	var sheetRepo techsheet.Repository
	if pg.Enabled() {
		sheetRepo = repository.NewTechSheetRepository(pg.PoolHandle())
	}
	sheets := techsheet.NewService(generator, sheetRepo, dispatcher, logger, cfg.Gemini.Model)

	rateLimiter := httptransport.NewIPRateLimiter(cfg.RateLimit)
	defer rateLimiter.Stop()

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ErrorHandler: httptransport.ErrorHandler,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.CORS, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, map[string]handlers.Pinger{
			"postgres": pg,
			"redis":    redis,
		}),
		Entitlement: handlers.NewEntitlementHandler(entitlements, tokens),
		Pricing:     handlers.NewPricingHandler(),
		Fipe:        handlers.NewFipeHandler(fipeClient),
		Generative:  handlers.NewGenerativeHandler(generator, sheets),
		AccessPass:  auth.NewAccessPassMiddleware(tokens, cfg.Auth.RequireAccessPassForAI),
		RateLimiter: rateLimiter,
		Gatherer:    registry,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}

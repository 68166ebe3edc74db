package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/spec-kit/vehicle-pricing/internal/api/http/handlers"
	"github.com/spec-kit/vehicle-pricing/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health      *handlers.HealthHandler
	Entitlement *handlers.EntitlementHandler
	Pricing     *handlers.PricingHandler
	Fipe        *handlers.FipeHandler
	Generative  *handlers.GenerativeHandler
	AccessPass  *auth.AccessPassMiddleware
	RateLimiter *IPRateLimiter
	Gatherer    prometheus.Gatherer
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})))
	}

	api := app.Group("/api")

	api.Post("/validate-email", cfg.RateLimiter.Handle, cfg.Entitlement.Validate)
	api.Post("/validar-email", cfg.RateLimiter.Handle, cfg.Entitlement.Validate)

	api.Post("/quote", cfg.Pricing.Quote)
	api.Get("/ipva/rates", cfg.Pricing.IPVARates)

	catalog := api.Group("/fipe/:type")
	catalog.Get("/marcas", cfg.Fipe.Brands)
	catalog.Get("/marcas/:brand/modelos", cfg.Fipe.Models)
	catalog.Get("/marcas/:brand/modelos/:model/anos", cfg.Fipe.Years)
	catalog.Get("/marcas/:brand/modelos/:model/anos/:year", cfg.Fipe.Vehicle)

	api.Post("/gemini", cfg.AccessPass.Handle, cfg.Generative.Generate)
	api.Post("/tech-sheet", cfg.AccessPass.Handle, cfg.Generative.TechSheet)
}

package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/spec-kit/offering-registry/internal/api/http/handlers"
	"github.com/spec-kit/offering-registry/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health    *handlers.HealthHandler
	Offerings *handlers.OfferingsHandler
	Catalog   *handlers.CatalogHandler
	AdminPage *handlers.AdminPageHandler
	Metrics   *observability.Metrics
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	if registry := cfg.Metrics.Registry(); registry != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
	}

	app.Get("/", func(c *fiber.Ctx) error {
		return c.Redirect("/admin/offerings")
	})

	admin := app.Group("/admin")
	admin.Get("/offerings", cfg.AdminPage.Show)
	admin.Post("/offerings", cfg.AdminPage.Submit)

	api := app.Group("/api")
	api.Get("/catalog", cfg.Catalog.Catalog)
	api.Get("/departments", cfg.Catalog.Departments)
	api.Get("/programs", cfg.Catalog.Programs)
	api.Get("/courses", cfg.Catalog.Courses)
	api.Get("/courses/resolve", cfg.Catalog.ResolveCourse)
	api.Get("/baskets", cfg.Catalog.Baskets)
	api.Get("/offerings", cfg.Offerings.ListByCourse)
	api.Post("/offerings", cfg.Offerings.Register)
}

package router

import (
	"github.com/attendcast/attendcast/internal/config"
	"github.com/attendcast/attendcast/internal/datastore"
	"github.com/attendcast/attendcast/internal/handlers"
	"github.com/attendcast/attendcast/internal/logging"
	"github.com/attendcast/attendcast/internal/middleware"
	"github.com/attendcast/attendcast/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// Setup configures all routes and middlewares
func Setup(app *fiber.App, logger *logging.Logger, cfg *config.Config, svc *services.ForecastService, sink datastore.Sink) *handlers.Handler {
	h := handlers.New(logger, cfg.Forecast, svc, sink)

	// Global middlewares
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization,X-API-Key,X-Request-ID",
	}))
	app.Use(logging.FiberMiddleware(logger, logging.DefaultMiddlewareConfig()))

	// Health check (no auth required)
	app.Get("/health", h.Health)

	v1 := app.Group("/v1", middleware.APIKeyAuth(logger, cfg.Auth))
	v1.Get("/models", h.ListModels)
	v1.Post("/forecasts", h.RunForecast)

	// 404 handler
	app.Use(h.NotFound)

	return h
}

// New creates a new Fiber app with configuration
func New(logger *logging.Logger, cfg *config.Config, svc *services.ForecastService, sink datastore.Sink) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "attendcast",
		BodyLimit:             cfg.Server.BodyLimit,
		DisableStartupMessage: true,
		ErrorHandler:          middleware.ErrorHandler(logger),
	})

	Setup(app, logger, cfg, svc, sink)

	return app
}

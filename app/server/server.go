package server

import (
	"context"
	"log/slog"

	"sales-inventory/app/middleware"
	"sales-inventory/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/healthcheck"
	"github.com/gofiber/fiber/v2/middleware/recover"
	slogfiber "github.com/samber/slog-fiber"
)

// New builds the fiber app shared by both services. ready backs /ready.
func New(service string, ready func() bool) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               service,
		DisableStartupMessage: true,
	})
	app.Use(healthcheck.New(healthcheck.Config{
		LivenessProbe: func(c *fiber.Ctx) bool {
			return true
		},
		LivenessEndpoint: "/live",
		ReadinessProbe: func(c *fiber.Ctx) bool {
			return ready()
		},
		ReadinessEndpoint: "/ready",
	}))
	app.Use(slogfiber.New(slog.New(logger.NewHandler(service))))
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
	}))
	app.Use(middleware.RequestIDMiddleware())
	return app
}

// Serve listens on port until ctx is done, then shuts the app down.
func Serve(ctx context.Context, app *fiber.App, port string) {
	go func() {
		if err := app.Listen(":" + port); err != nil {
			slog.Error("Failed to listen", "port", port, "error", err)
		}
	}()

	<-ctx.Done()
	slog.Info("Gracefully shutdown")
	if err := app.Shutdown(); err != nil {
		slog.Warn("Unfortunately the shutdown wasn't smooth", "err", err)
	}
}

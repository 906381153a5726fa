package handler

import (
	"sales-inventory/app/middleware"
	"sales-inventory/config"

	"github.com/gofiber/fiber/v2"
)

const RoleSeller = "seller"

// SetupInventoryRouter exposes the catalogue publicly; only sellers create
// products.
func SetupInventoryRouter(app *fiber.App, productHandler *ProductHandler, cfg *config.Config) {
	api := app.Group("/inventory-service")

	api.Get("/products", productHandler.GetList)
	api.Get("/products/:id", productHandler.GetByID)
	api.Get("/products/:id/availability", productHandler.Availability)
	api.Post("/products", middleware.Auth(cfg.Jwt.SecretKey), middleware.RequireRole(RoleSeller), productHandler.Create)
}

// SetupSalesRouter requires a valid token on every order route.
func SetupSalesRouter(app *fiber.App, orderHandler *OrderHandler, cfg *config.Config) {
	api := app.Group("/sales-service").Use(middleware.Auth(cfg.Jwt.SecretKey))

	api.Post("/orders", middleware.RequireRole(RoleSeller), orderHandler.Create)
	api.Get("/orders/:id", orderHandler.GetByID)
	api.Get("/orders", orderHandler.GetList)
}

package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/compresso/storefront/pkg/httpx"
)

// Pinger reports whether the durable store is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

func SetupRoutes(app *fiber.App, cart *CartHandler, checkout *CheckoutHandler, order *OrderHandler, db Pinger) {
	api := app.Group("/api/v1")

	api.Get("/health", healthCheck(db))

	// Registered before the authed group so admin traffic is gated by role,
	// not by the customer identity middleware.
	admin := api.Group("/admin", RequireAdmin())
	admin.Patch("/orders/:id/status", order.UpdateStatus)

	authed := api.Group("/", RequireUser())

	authed.Get("/cart", cart.GetCart)
	authed.Post("/cart/items", cart.AddItem)
	authed.Put("/cart/items/:variantID", cart.UpdateItem)
	authed.Delete("/cart/items/:variantID", cart.RemoveItem)
	authed.Delete("/cart", cart.EmptyCart)

	authed.Post("/checkout", checkout.Checkout)

	authed.Get("/orders", order.ListOrders)
	authed.Get("/orders/:id", order.GetOrder)
	authed.Get("/orders/:id/invoice", order.GetInvoice)
	authed.Post("/orders/:id/cancel", order.CancelOrder)

	app.Use("*", func(c *fiber.Ctx) error {
		return httpx.NotFoundResponse(c, "Route not found")
	})
}

func healthCheck(db Pinger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		status := "ok"
		if db != nil {
			ctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
			defer cancel()
			if err := db.PingContext(ctx); err != nil {
				return httpx.InternalServerErrorResponse(c, "Database unreachable")
			}
		}
		return httpx.SuccessResponse(c, "Service healthy", map[string]interface{}{
			"status": status,
			"time":   time.Now(),
		})
	}
}

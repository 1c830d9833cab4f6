package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/compresso/storefront/internal/service"
	"github.com/compresso/storefront/pkg/httpx"
)

type CheckoutHandler struct {
	checkout *service.CheckoutService
}

func NewCheckoutHandler(checkout *service.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{checkout: checkout}
}

func (h *CheckoutHandler) Checkout(c *fiber.Ctx) error {
	userID, ok := userIDFrom(c)
	if !ok {
		return httpx.UnauthorizedResponse(c, "Missing user identity")
	}

	var request CheckoutRequest
	if err := c.BodyParser(&request); err != nil {
		return httpx.BadRequestResponse(c, "Invalid request body", map[string]interface{}{
			"parse_error": err.Error(),
		})
	}

	result, err := h.checkout.Checkout(c.Context(), userID, service.CheckoutDetails{
		Shipping: request.ShippingAddress,
		Payment:  request.Payment,
	})
	if err != nil {
		return respondError(c, err)
	}

	return httpx.CreatedResponse(c, "Order placed successfully", CheckoutResponse{
		OrderID:         result.OrderID,
		TotalPrice:      result.TotalPrice,
		DeliveryAddress: request.ShippingAddress,
	})
}

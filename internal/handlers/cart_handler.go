package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/compresso/storefront/internal/service"
	"github.com/compresso/storefront/pkg/httpx"
)

type CartHandler struct {
	carts *service.CartService
}

func NewCartHandler(carts *service.CartService) *CartHandler {
	return &CartHandler{carts: carts}
}

func (h *CartHandler) GetCart(c *fiber.Ctx) error {
	userID, ok := userIDFrom(c)
	if !ok {
		return httpx.UnauthorizedResponse(c, "Missing user identity")
	}

	view, err := h.carts.GetCart(c.Context(), userID)
	if err != nil {
		return respondError(c, err)
	}

	return httpx.SuccessResponse(c, "Cart retrieved successfully", mapCart(view.Lines))
}

func (h *CartHandler) AddItem(c *fiber.Ctx) error {
	userID, ok := userIDFrom(c)
	if !ok {
		return httpx.UnauthorizedResponse(c, "Missing user identity")
	}

	var request AddItemRequest
	if err := c.BodyParser(&request); err != nil {
		return httpx.BadRequestResponse(c, "Invalid request body", map[string]interface{}{
			"parse_error": err.Error(),
		})
	}

	if request.VariantID == uuid.Nil {
		return httpx.BadRequestResponse(c, "Variant ID is required", nil)
	}
	if request.Quantity <= 0 {
		return httpx.BadRequestResponse(c, "Quantity must be positive", map[string]interface{}{
			"quantity": request.Quantity,
		})
	}

	if err := h.carts.AddItem(c.Context(), userID, request.VariantID, request.Quantity); err != nil {
		return respondError(c, err)
	}

	return httpx.SuccessResponse(c, "Item added to cart", nil)
}

func (h *CartHandler) UpdateItem(c *fiber.Ctx) error {
	userID, ok := userIDFrom(c)
	if !ok {
		return httpx.UnauthorizedResponse(c, "Missing user identity")
	}

	variantID, err := uuid.Parse(c.Params("variantID"))
	if err != nil {
		return httpx.BadRequestResponse(c, "Invalid variant ID", nil)
	}

	var request UpdateItemRequest
	if err := c.BodyParser(&request); err != nil {
		return httpx.BadRequestResponse(c, "Invalid request body", map[string]interface{}{
			"parse_error": err.Error(),
		})
	}
	if request.Quantity == nil || *request.Quantity < 0 {
		return httpx.BadRequestResponse(c, "Quantity must be zero or positive", nil)
	}

	if err := h.carts.UpdateItem(c.Context(), userID, variantID, *request.Quantity); err != nil {
		return respondError(c, err)
	}

	return httpx.SuccessResponse(c, "Cart item updated", nil)
}

func (h *CartHandler) RemoveItem(c *fiber.Ctx) error {
	userID, ok := userIDFrom(c)
	if !ok {
		return httpx.UnauthorizedResponse(c, "Missing user identity")
	}

	variantID, err := uuid.Parse(c.Params("variantID"))
	if err != nil {
		return httpx.BadRequestResponse(c, "Invalid variant ID", nil)
	}

	if err := h.carts.RemoveItem(c.Context(), userID, variantID); err != nil {
		return respondError(c, err)
	}

	return httpx.SuccessResponse(c, "Item removed from cart", nil)
}

func (h *CartHandler) EmptyCart(c *fiber.Ctx) error {
	userID, ok := userIDFrom(c)
	if !ok {
		return httpx.UnauthorizedResponse(c, "Missing user identity")
	}

	if err := h.carts.Empty(c.Context(), userID); err != nil {
		return respondError(c, err)
	}

	return httpx.SuccessResponse(c, "Cart emptied", nil)
}

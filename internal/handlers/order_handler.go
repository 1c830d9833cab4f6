package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/compresso/storefront/internal/domain"
	"github.com/compresso/storefront/internal/service"
	"github.com/compresso/storefront/pkg/httpx"
)

type OrderHandler struct {
	orders *service.OrderService
}

func NewOrderHandler(orders *service.OrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

func (h *OrderHandler) ListOrders(c *fiber.Ctx) error {
	userID, ok := userIDFrom(c)
	if !ok {
		return httpx.UnauthorizedResponse(c, "Missing user identity")
	}

	orders, err := h.orders.ListOrders(c.Context(), userID)
	if err != nil {
		return respondError(c, err)
	}

	responses := make([]OrderResponse, len(orders))
	for i, order := range orders {
		responses[i] = mapOrder(order)
	}

	return httpx.SuccessResponse(c, "Orders retrieved successfully", responses)
}

func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	userID, ok := userIDFrom(c)
	if !ok {
		return httpx.UnauthorizedResponse(c, "Missing user identity")
	}

	orderID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return httpx.BadRequestResponse(c, "Invalid order ID", nil)
	}

	order, err := h.orders.GetOrder(c.Context(), orderID, userID)
	if err != nil {
		return respondError(c, err)
	}

	return httpx.SuccessResponse(c, "Order retrieved successfully", mapOrder(order))
}

func (h *OrderHandler) GetInvoice(c *fiber.Ctx) error {
	userID, ok := userIDFrom(c)
	if !ok {
		return httpx.UnauthorizedResponse(c, "Missing user identity")
	}

	orderID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return httpx.BadRequestResponse(c, "Invalid order ID", nil)
	}

	invoice, err := h.orders.GetInvoice(c.Context(), orderID, userID)
	if err != nil {
		return respondError(c, err)
	}

	c.Set(fiber.HeaderContentType, invoice.ContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=invoice_%s.txt", orderID))
	return c.Send(invoice.Document)
}

func (h *OrderHandler) CancelOrder(c *fiber.Ctx) error {
	userID, ok := userIDFrom(c)
	if !ok {
		return httpx.UnauthorizedResponse(c, "Missing user identity")
	}

	orderID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return httpx.BadRequestResponse(c, "Invalid order ID", nil)
	}

	if err := h.orders.Cancel(c.Context(), orderID, userID); err != nil {
		return respondError(c, err)
	}

	return httpx.SuccessResponse(c, "Order canceled successfully", nil)
}

// UpdateStatus is the admin transition endpoint; the transition is validated
// against the status graph, not applied blindly.
func (h *OrderHandler) UpdateStatus(c *fiber.Ctx) error {
	orderID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return httpx.BadRequestResponse(c, "Invalid order ID", nil)
	}

	var request UpdateStatusRequest
	if err := c.BodyParser(&request); err != nil {
		return httpx.BadRequestResponse(c, "Invalid request body", map[string]interface{}{
			"parse_error": err.Error(),
		})
	}

	next := domain.OrderStatus(request.Status)
	if !next.Valid() {
		return httpx.BadRequestResponse(c, "Unknown order status", map[string]interface{}{
			"status": request.Status,
		})
	}

	if err := h.orders.UpdateStatus(c.Context(), orderID, next); err != nil {
		return respondError(c, err)
	}

	return httpx.SuccessResponse(c, "Order status updated successfully", nil)
}

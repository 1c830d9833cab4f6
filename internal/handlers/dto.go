package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/compresso/storefront/internal/domain"
	"github.com/compresso/storefront/pkg/httpx"
	"github.com/compresso/storefront/pkg/messaging"
)

type CartLineResponse struct {
	VariantID uuid.UUID       `json:"variant_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

type CartResponse struct {
	Items []CartLineResponse `json:"items"`
	Total decimal.Decimal    `json:"total"`
}

type AddItemRequest struct {
	VariantID uuid.UUID `json:"variant_id"`
	Quantity  int       `json:"quantity"`
}

type UpdateItemRequest struct {
	Quantity *int `json:"quantity"`
}

type CheckoutRequest struct {
	ShippingAddress messaging.ShippingDetails `json:"shipping_address"`
	Payment         json.RawMessage           `json:"payment,omitempty"`
}

type CheckoutResponse struct {
	OrderID         uuid.UUID                 `json:"order_id"`
	TotalPrice      decimal.Decimal           `json:"total_price"`
	DeliveryAddress messaging.ShippingDetails `json:"delivery_address"`
}

type OrderLineResponse struct {
	VariantID uuid.UUID       `json:"variant_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"price_at_purchase"`
}

type OrderResponse struct {
	ID         uuid.UUID           `json:"id"`
	TotalPrice decimal.Decimal     `json:"total_price"`
	Status     string              `json:"status"`
	Lines      []OrderLineResponse `json:"order_items"`
	CreatedAt  time.Time           `json:"created_at"`
	UpdatedAt  time.Time           `json:"updated_at"`
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

func mapCart(lines []domain.CartLine) CartResponse {
	items := make([]CartLineResponse, len(lines))
	for i, l := range lines {
		items[i] = CartLineResponse{
			VariantID: l.VariantID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			Subtotal:  l.Subtotal(),
		}
	}
	return CartResponse{Items: items, Total: domain.CartTotal(lines)}
}

func mapOrder(order *domain.Order) OrderResponse {
	lines := make([]OrderLineResponse, len(order.Lines))
	for i, l := range order.Lines {
		lines[i] = OrderLineResponse{
			VariantID: l.VariantID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
		}
	}
	return OrderResponse{
		ID:         order.ID,
		TotalPrice: order.TotalPrice,
		Status:     string(order.Status),
		Lines:      lines,
		CreatedAt:  order.CreatedAt,
		UpdatedAt:  order.UpdatedAt,
	}
}

// respondError translates the domain error taxonomy into the API envelope.
// Persistence failures stay opaque; everything else names its kind.
func respondError(c *fiber.Ctx, err error) error {
	var insufficient *domain.InsufficientStockError
	var invalid *domain.InvalidTransitionError
	var persistence *domain.PersistenceError

	switch {
	case errors.Is(err, domain.ErrNotFound):
		return httpx.NotFoundResponse(c, "Not found")
	case errors.Is(err, domain.ErrEmptyCart):
		return httpx.BadRequestResponse(c, "Cart is empty", nil)
	case errors.Is(err, domain.ErrAlreadyCanceled):
		return httpx.ConflictResponse(c, "Order is already canceled", nil)
	case errors.Is(err, domain.ErrForbidden):
		return httpx.ForbiddenResponse(c, "Forbidden")
	case errors.As(err, &insufficient):
		return httpx.ConflictResponse(c, "Insufficient stock", map[string]interface{}{
			"variant_id": insufficient.VariantID,
			"requested":  insufficient.Requested,
			"available":  insufficient.Available,
		})
	case errors.As(err, &invalid):
		return httpx.ConflictResponse(c, "Invalid order status transition", map[string]interface{}{
			"from": string(invalid.From),
			"to":   string(invalid.To),
		})
	case errors.As(err, &persistence):
		log.Printf("Persistence error: %v", err)
		return httpx.InternalServerErrorResponse(c, "Internal server error")
	default:
		log.Printf("Unhandled error: %v", err)
		return httpx.InternalServerErrorResponse(c, "Internal server error")
	}
}

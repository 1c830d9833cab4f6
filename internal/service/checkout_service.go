package service

import (
	"context"
	"encoding/json"
	"log"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/compresso/storefront/internal/domain"
	"github.com/compresso/storefront/pkg/messaging"
	"github.com/compresso/storefront/pkg/metrics"
)

const publishRetries = 3

// CheckoutService converts a cart into a durable order: reserve every line,
// commit the order, empty the cart, then hand the order to the invoice sink.
// It is the only component spanning all three stores, and every failure path
// compensates so the pipeline is all-or-nothing up to order commit.
type CheckoutService struct {
	carts     CartStore
	inventory InventoryLedger
	orders    OrderLedger
	publisher EventPublisher
	metrics   *metrics.Metrics
}

func NewCheckoutService(carts CartStore, inventory InventoryLedger, orders OrderLedger, publisher EventPublisher, m *metrics.Metrics) *CheckoutService {
	return &CheckoutService{
		carts:     carts,
		inventory: inventory,
		orders:    orders,
		publisher: publisher,
		metrics:   m,
	}
}

// CheckoutDetails carries the shipping and payment information from the
// request. The core passes both through to the invoice sink untouched.
type CheckoutDetails struct {
	Shipping messaging.ShippingDetails
	Payment  json.RawMessage
}

type CheckoutResult struct {
	OrderID    uuid.UUID
	TotalPrice decimal.Decimal
}

func (s *CheckoutService) Checkout(ctx context.Context, userID uuid.UUID, details CheckoutDetails) (*CheckoutResult, error) {
	lines, err := s.carts.GetCart(ctx, userID)
	if err != nil {
		s.metrics.Checkouts.WithLabelValues("error").Inc()
		return nil, err
	}
	if len(lines) == 0 {
		s.metrics.Checkouts.WithLabelValues("empty_cart").Inc()
		return nil, domain.ErrEmptyCart
	}

	// Reserve every line before anything durable happens. The first refusal
	// rolls back the reservations already granted in this pass.
	reserved := make([]domain.CartLine, 0, len(lines))
	for _, line := range lines {
		if err := s.inventory.Reserve(ctx, line.VariantID, line.Quantity); err != nil {
			s.releaseAll(ctx, reserved)
			s.metrics.Checkouts.WithLabelValues("insufficient_stock").Inc()
			s.metrics.ReservationRejected.Inc()
			return nil, err
		}
		reserved = append(reserved, line)
	}

	order := domain.NewOrderFromCart(userID, lines)
	if err := s.orders.Create(ctx, order); err != nil {
		// Reservations are durable by now; give the stock back so the user
		// can retry with the cart intact.
		s.releaseAll(ctx, reserved)
		s.metrics.Checkouts.WithLabelValues("error").Inc()
		return nil, err
	}

	if err := s.carts.EmptyCart(ctx, userID); err != nil {
		// The order and reservation stand. A non-empty cart after a committed
		// order is reconciled by retrying the empty, never by undoing the order.
		log.Printf("Cart empty failed after order commit: OrderID=%s UserID=%s: %v (reconciliation required)",
			order.ID, userID, err)
		s.metrics.ReconciliationNeeded.Inc()
	}

	log.Printf("Order created: OrderID=%s UserID=%s Total=%s Lines=%d",
		order.ID, userID, order.TotalPrice.StringFixed(2), len(order.Lines))
	s.metrics.Checkouts.WithLabelValues("success").Inc()

	s.publishOrderPlaced(order, details)

	return &CheckoutResult{OrderID: order.ID, TotalPrice: order.TotalPrice}, nil
}

func (s *CheckoutService) releaseAll(ctx context.Context, reserved []domain.CartLine) {
	for _, line := range reserved {
		if err := s.inventory.Release(ctx, line.VariantID, line.Quantity); err != nil {
			log.Printf("Stock release failed: VariantID=%s Qty=%d: %v (reconciliation required)",
				line.VariantID, line.Quantity, err)
			s.metrics.ReconciliationNeeded.Inc()
		}
	}
}

// publishOrderPlaced hands the finalized order to the invoice/notification
// sink without blocking the caller. Publish failure is logged and counted,
// never surfaced as a checkout failure.
func (s *CheckoutService) publishOrderPlaced(order *domain.Order, details CheckoutDetails) {
	payload := messaging.OrderPlacedPayload{
		Order:    snapshotOrder(order),
		Shipping: details.Shipping,
		Payment:  details.Payment,
	}

	event, err := messaging.NewEvent(messaging.OrderPlacedEvent, order.ID, "storefront", payload)
	if err != nil {
		log.Printf("Order placed event build error: OrderID=%s: %v", order.ID, err)
		return
	}

	go func() {
		if err := s.publisher.PublishWithRetry(event, publishRetries); err != nil {
			log.Printf("Order placed event publish error: OrderID=%s: %v", order.ID, err)
			s.metrics.InvoiceJobs.WithLabelValues("publish_failed").Inc()
		}
	}()
}

func snapshotOrder(order *domain.Order) messaging.OrderSnapshot {
	lines := make([]messaging.OrderLineSnapshot, len(order.Lines))
	for i, l := range order.Lines {
		lines[i] = messaging.OrderLineSnapshot{
			VariantID: l.VariantID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
		}
	}
	return messaging.OrderSnapshot{
		ID:         order.ID,
		UserID:     order.UserID,
		TotalPrice: order.TotalPrice,
		Status:     string(order.Status),
		Lines:      lines,
		CreatedAt:  order.CreatedAt,
	}
}

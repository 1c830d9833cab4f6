package service

import (
	"context"
	"log"

	"github.com/google/uuid"

	"github.com/compresso/storefront/internal/domain"
	"github.com/compresso/storefront/pkg/messaging"
	"github.com/compresso/storefront/pkg/metrics"
)

type OrderService struct {
	orders    OrderLedger
	inventory InventoryLedger
	invoices  InvoiceStore
	publisher EventPublisher
	metrics   *metrics.Metrics
}

func NewOrderService(orders OrderLedger, inventory InventoryLedger, invoices InvoiceStore, publisher EventPublisher, m *metrics.Metrics) *OrderService {
	return &OrderService{
		orders:    orders,
		inventory: inventory,
		invoices:  invoices,
		publisher: publisher,
		metrics:   m,
	}
}

// GetOrder returns the order only to its owner; someone else's order reads
// as not found.
func (s *OrderService) GetOrder(ctx context.Context, orderID, requesterID uuid.UUID) (*domain.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != requesterID {
		return nil, domain.ErrNotFound
	}
	return order, nil
}

func (s *OrderService) ListOrders(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error) {
	return s.orders.ListByUser(ctx, userID)
}

func (s *OrderService) GetInvoice(ctx context.Context, orderID, requesterID uuid.UUID) (*domain.Invoice, error) {
	return s.invoices.GetByOrder(ctx, orderID, requesterID)
}

// UpdateStatus applies an admin-driven transition, validated against the
// status graph.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID uuid.UUID, next domain.OrderStatus) error {
	if !next.Valid() {
		return &domain.InvalidTransitionError{To: next}
	}
	return s.orders.SetStatus(ctx, orderID, next)
}

// Cancel transitions a processing order to canceled and restores each
// reserved variant's stock. The ledger's conditional flip guarantees the
// restock happens exactly once; a failed release is left for reconciliation
// rather than retried inline.
func (s *OrderService) Cancel(ctx context.Context, orderID, requesterID uuid.UUID) error {
	order, err := s.orders.MarkCanceled(ctx, orderID, requesterID)
	if err != nil {
		return err
	}

	for _, line := range order.Lines {
		if err := s.inventory.Release(ctx, line.VariantID, line.Quantity); err != nil {
			log.Printf("Restock failed on cancel: OrderID=%s VariantID=%s Qty=%d: %v (reconciliation required)",
				order.ID, line.VariantID, line.Quantity, err)
			s.metrics.ReconciliationNeeded.Inc()
		}
	}

	log.Printf("Order canceled: OrderID=%s UserID=%s", order.ID, order.UserID)
	s.publishOrderCanceled(order)

	return nil
}

func (s *OrderService) publishOrderCanceled(order *domain.Order) {
	payload := messaging.OrderCanceledPayload{
		OrderID: order.ID,
		UserID:  order.UserID,
		Reason:  "canceled by customer",
	}

	event, err := messaging.NewEvent(messaging.OrderCanceledEvent, order.ID, "storefront", payload)
	if err != nil {
		log.Printf("Order canceled event build error: OrderID=%s: %v", order.ID, err)
		return
	}

	go func() {
		if err := s.publisher.PublishWithRetry(event, publishRetries); err != nil {
			log.Printf("Order canceled event publish error: OrderID=%s: %v", order.ID, err)
		}
	}()
}

package invoicing

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"

	"github.com/compresso/storefront/internal/domain"
	"github.com/compresso/storefront/internal/service"
	"github.com/compresso/storefront/pkg/messaging"
	"github.com/compresso/storefront/pkg/metrics"
)

const handleTimeout = 30 * time.Second

// Worker consumes order.placed events and materializes the invoice artifact:
// render, persist, mail, then report the outcome back on the exchange. It
// runs after checkout has already committed; nothing here can fail an order.
type Worker struct {
	store     service.InvoiceStore
	renderer  Renderer
	mailer    Mailer
	publisher service.EventPublisher
	metrics   *metrics.Metrics
}

func NewWorker(store service.InvoiceStore, renderer Renderer, mailer Mailer, publisher service.EventPublisher, m *metrics.Metrics) *Worker {
	return &Worker{
		store:     store,
		renderer:  renderer,
		mailer:    mailer,
		publisher: publisher,
		metrics:   m,
	}
}

func (w *Worker) Start(consumer *messaging.Consumer) error {
	return consumer.ConsumeEvents([]string{string(messaging.OrderPlacedEvent)}, w.HandleEvent)
}

func (w *Worker) HandleEvent(event messaging.Event) error {
	if event.EventType != messaging.OrderPlacedEvent {
		return nil
	}

	var payload messaging.OrderPlacedPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		w.reportFailure(event, fmt.Sprintf("payload decode error: %v", err))
		return fmt.Errorf("order placed payload decode error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), handleTimeout)
	defer cancel()

	document, contentType, err := w.renderer.Render(payload)
	if err != nil {
		w.reportFailure(event, fmt.Sprintf("render error: %v", err))
		return fmt.Errorf("invoice render error: %v", err)
	}

	invoice := &domain.Invoice{
		OrderID:     payload.Order.ID,
		UserID:      payload.Order.UserID,
		ContentType: contentType,
		Document:    document,
		CreatedAt:   time.Now(),
	}
	if err := w.store.Save(ctx, invoice); err != nil {
		w.reportFailure(event, fmt.Sprintf("store error: %v", err))
		return fmt.Errorf("invoice store error: %v", err)
	}

	// Mail delivery failure does not invalidate the stored artifact.
	if err := w.mailer.Send(ctx, payload.Order.UserID, payload.Order.ID, document, contentType); err != nil {
		log.Printf("Invoice mail error: OrderID=%s: %v", payload.Order.ID, err)
	}

	w.metrics.InvoiceJobs.WithLabelValues("generated").Inc()
	log.Printf("Invoice generated: OrderID=%s Size=%d", payload.Order.ID, len(document))

	w.publishResult(messaging.InvoiceGeneratedEvent, event, messaging.InvoiceGeneratedPayload{
		OrderID:     payload.Order.ID,
		ContentType: contentType,
		SizeBytes:   len(document),
	})
	return nil
}

func (w *Worker) reportFailure(event messaging.Event, reason string) {
	w.metrics.InvoiceJobs.WithLabelValues("failed").Inc()
	w.publishResult(messaging.InvoiceFailedEvent, event, messaging.InvoiceFailedPayload{
		OrderID: event.OrderID,
		Reason:  reason,
	})
}

func (w *Worker) publishResult(eventType messaging.EventType, source messaging.Event, payload any) {
	result, err := messaging.NewEvent(eventType, source.OrderID, "invoice-worker", payload)
	if err != nil {
		log.Printf("Invoice result event build error: OrderID=%s: %v", source.OrderID, err)
		return
	}
	if err := w.publisher.PublishWithRetry(result, 3); err != nil {
		log.Printf("Invoice result event publish error: OrderID=%s: %v", source.OrderID, err)
	}
}

func intToDecimal(n int) decimal.Decimal {
	return decimal.NewFromInt(int64(n))
}

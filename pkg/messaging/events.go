package messaging

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type EventType string

const (
	// Order events
	OrderPlacedEvent   EventType = "order.placed"
	OrderCanceledEvent EventType = "order.canceled"

	// Invoice events
	InvoiceGeneratedEvent EventType = "invoice.generated"
	InvoiceFailedEvent    EventType = "invoice.failed"
)

// Event is the envelope published on the storefront exchange. Payload is kept
// raw so consumers decode into the typed payload for their event type.
type Event struct {
	ID        uuid.UUID       `json:"id"`
	OrderID   uuid.UUID       `json:"order_id"`
	EventType EventType       `json:"event_type"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp time.Time       `json:"timestamp"`
	Service   string          `json:"service"`
}

func NewEvent(eventType EventType, orderID uuid.UUID, service string, payload any) (Event, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("payload serialization error: %v", err)
	}
	return Event{
		ID:        uuid.New(),
		OrderID:   orderID,
		EventType: eventType,
		Payload:   body,
		Timestamp: time.Now(),
		Service:   service,
	}, nil
}

type OrderSnapshot struct {
	ID         uuid.UUID           `json:"id"`
	UserID     uuid.UUID           `json:"user_id"`
	TotalPrice decimal.Decimal     `json:"total_price"`
	Status     string              `json:"status"`
	Lines      []OrderLineSnapshot `json:"lines"`
	CreatedAt  time.Time           `json:"created_at"`
}

type OrderLineSnapshot struct {
	VariantID uuid.UUID       `json:"variant_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// ShippingDetails travels with the order.placed event so the invoice sink can
// address the document. The core never interprets it beyond rendering.
type ShippingDetails struct {
	FullName    string `json:"full_name"`
	AddressLine string `json:"address_line"`
	City        string `json:"city"`
	PostalCode  string `json:"postal_code"`
	Country     string `json:"country"`
}

type OrderPlacedPayload struct {
	Order    OrderSnapshot   `json:"order"`
	Shipping ShippingDetails `json:"shipping"`
	// Payment details are passed through untouched from the checkout request.
	Payment json.RawMessage `json:"payment,omitempty"`
}

type OrderCanceledPayload struct {
	OrderID uuid.UUID `json:"order_id"`
	UserID  uuid.UUID `json:"user_id"`
	Reason  string    `json:"reason,omitempty"`
}

type InvoiceGeneratedPayload struct {
	OrderID     uuid.UUID `json:"order_id"`
	ContentType string    `json:"content_type"`
	SizeBytes   int       `json:"size_bytes"`
}

type InvoiceFailedPayload struct {
	OrderID uuid.UUID `json:"order_id"`
	Reason  string    `json:"reason"`
}

package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCanceled   OrderStatus = "canceled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered, OrderStatusCanceled:
		return true
	}
	return false
}

// Terminal reports whether no further transition is permitted.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCanceled
}

// CanTransitionTo encodes the status graph:
// processing -> shipped -> delivered, processing -> canceled.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	switch s {
	case OrderStatusProcessing:
		return next == OrderStatusShipped || next == OrderStatusCanceled
	case OrderStatusShipped:
		return next == OrderStatusDelivered
	}
	return false
}

// Order is the immutable record of a completed checkout. Only Status ever
// changes after creation; TotalPrice and Lines are fixed at commit time.
type Order struct {
	ID         uuid.UUID       `json:"id"`
	UserID     uuid.UUID       `json:"user_id"`
	TotalPrice decimal.Decimal `json:"total_price"`
	Status     OrderStatus     `json:"status"`
	Lines      []OrderLine     `json:"lines"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// OrderLine is the permanent snapshot of one purchased variant. UnitPrice is
// the price at purchase, independent of later catalog changes.
type OrderLine struct {
	OrderID   uuid.UUID       `json:"order_id"`
	VariantID uuid.UUID       `json:"variant_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

func (l OrderLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// NewOrderFromCart snapshots cart lines into a new processing order. The
// total is computed from the snapshot prices, never taken from client input.
func NewOrderFromCart(userID uuid.UUID, lines []CartLine) *Order {
	orderID := uuid.New()
	now := time.Now()

	orderLines := make([]OrderLine, len(lines))
	total := decimal.Zero
	for i, l := range lines {
		orderLines[i] = OrderLine{
			OrderID:   orderID,
			VariantID: l.VariantID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
		}
		total = total.Add(l.Subtotal())
	}

	return &Order{
		ID:         orderID,
		UserID:     userID,
		TotalPrice: total,
		Status:     OrderStatusProcessing,
		Lines:      orderLines,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

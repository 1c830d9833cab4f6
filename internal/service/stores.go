package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/compresso/storefront/internal/domain"
	"github.com/compresso/storefront/pkg/messaging"
)

// InventoryLedger owns per-variant stock counters. All stock mutation goes
// through Reserve/Release; Reserve is a single atomic check-and-decrement.
type InventoryLedger interface {
	GetVariant(ctx context.Context, variantID uuid.UUID) (*domain.Variant, error)
	CheckAvailable(ctx context.Context, variantID uuid.UUID, qty int) (domain.Availability, error)
	Reserve(ctx context.Context, variantID uuid.UUID, qty int) error
	Release(ctx context.Context, variantID uuid.UUID, qty int) error
}

// CartStore owns the mutable (user, variant, quantity) lines. It never
// validates stock; that is the caller's job via the inventory ledger.
type CartStore interface {
	GetCart(ctx context.Context, userID uuid.UUID) ([]domain.CartLine, error)
	AddLines(ctx context.Context, userID uuid.UUID, lines []domain.CartLine) error
	UpdateLine(ctx context.Context, line domain.CartLine) error
	RemoveLine(ctx context.Context, userID, variantID uuid.UUID) error
	EmptyCart(ctx context.Context, userID uuid.UUID) error
}

// OrderLedger owns immutable order headers and line snapshots. MarkCanceled
// performs the atomic processing -> canceled flip for an owner and returns
// the order with lines for restocking.
type OrderLedger interface {
	Create(ctx context.Context, order *domain.Order) error
	GetByID(ctx context.Context, orderID uuid.UUID) (*domain.Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error)
	SetStatus(ctx context.Context, orderID uuid.UUID, next domain.OrderStatus) error
	MarkCanceled(ctx context.Context, orderID, userID uuid.UUID) (*domain.Order, error)
}

// InvoiceStore holds rendered invoice artifacts keyed by order.
type InvoiceStore interface {
	Save(ctx context.Context, inv *domain.Invoice) error
	GetByOrder(ctx context.Context, orderID, userID uuid.UUID) (*domain.Invoice, error)
}

// EventPublisher hands finalized facts to the invoice/notification sink.
type EventPublisher interface {
	PublishWithRetry(event messaging.Event, maxRetries int) error
}

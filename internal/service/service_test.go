package service_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"

	"github.com/compresso/storefront/internal/domain"
	"github.com/compresso/storefront/internal/memstore"
	"github.com/compresso/storefront/internal/service"
	"github.com/compresso/storefront/pkg/messaging"
	"github.com/compresso/storefront/pkg/metrics"
)

var errStorage = errors.New("storage unavailable")

func newTestMetrics() *metrics.Metrics {
	return metrics.New(prometheus.NewRegistry())
}

// capturePublisher records published events so tests can assert on the sink
// side of the pipeline.
type capturePublisher struct {
	mu     sync.Mutex
	events []messaging.Event
	err    error
}

func (p *capturePublisher) PublishWithRetry(event messaging.Event, _ int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

func (p *capturePublisher) published() []messaging.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]messaging.Event, len(p.events))
	copy(out, p.events)
	return out
}

func (p *capturePublisher) byType(eventType messaging.EventType) []messaging.Event {
	var out []messaging.Event
	for _, e := range p.published() {
		if e.EventType == eventType {
			out = append(out, e)
		}
	}
	return out
}

// failingOrders wraps the in-memory ledger and fails Create on demand.
type failingOrders struct {
	*memstore.Orders
	failCreate bool
}

func (f *failingOrders) Create(ctx context.Context, order *domain.Order) error {
	if f.failCreate {
		return &domain.PersistenceError{Op: "order create", Err: errStorage}
	}
	return f.Orders.Create(ctx, order)
}

// failingCarts wraps the in-memory store and fails EmptyCart on demand.
type failingCarts struct {
	*memstore.Carts
	failEmpty bool
}

func (f *failingCarts) EmptyCart(ctx context.Context, userID uuid.UUID) error {
	if f.failEmpty {
		return &domain.PersistenceError{Op: "cart empty", Err: errStorage}
	}
	return f.Carts.EmptyCart(ctx, userID)
}

type fixture struct {
	inventory *memstore.Inventory
	carts     *failingCarts
	orders    *failingOrders
	invoices  *memstore.Invoices
	publisher *capturePublisher

	cart     *service.CartService
	checkout *service.CheckoutService
	order    *service.OrderService
}

func newFixture() *fixture {
	f := &fixture{
		inventory: memstore.NewInventory(),
		carts:     &failingCarts{Carts: memstore.NewCarts()},
		orders:    &failingOrders{Orders: memstore.NewOrders()},
		invoices:  memstore.NewInvoices(),
		publisher: &capturePublisher{},
	}
	m := newTestMetrics()
	f.cart = service.NewCartService(f.carts, f.inventory)
	f.checkout = service.NewCheckoutService(f.carts, f.inventory, f.orders, f.publisher, m)
	f.order = service.NewOrderService(f.orders, f.inventory, f.invoices, f.publisher, m)
	return f
}

func (f *fixture) seedVariant(stock int, price string) domain.Variant {
	v := domain.Variant{
		ID:          uuid.New(),
		ProductName: "Colombia Huila 500g",
		WeightGrams: 500,
		Price:       decimal.RequireFromString(price),
		Stock:       stock,
	}
	f.inventory.AddVariant(v)
	return v
}

func (f *fixture) stockOf(ctx context.Context, variantID uuid.UUID) int {
	v, err := f.inventory.GetVariant(ctx, variantID)
	if err != nil {
		return -1
	}
	return v.Stock
}

func shippingDetails() messaging.ShippingDetails {
	return messaging.ShippingDetails{
		FullName:    "Ada Lovelace",
		AddressLine: "12 Analytical Lane",
		City:        "London",
		PostalCode:  "N1 9GU",
		Country:     "GB",
	}
}

// waitFor polls cond until it returns true or the deadline passes. Used for
// the asynchronous publish path.
func waitFor(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}

package service_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/compresso/storefront/internal/domain"
	"github.com/compresso/storefront/internal/service"
	"github.com/compresso/storefront/pkg/messaging"
)

// placeOrder runs a full checkout so the order under test was built the same
// way production orders are.
func placeOrder(t *testing.T, f *fixture, userID uuid.UUID, v domain.Variant, qty int) uuid.UUID {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, f.cart.AddItem(ctx, userID, v.ID, qty))
	result, err := f.checkout.Checkout(ctx, userID, service.CheckoutDetails{Shipping: shippingDetails()})
	require.NoError(t, err)
	return result.OrderID
}

func TestCancelRestocksExactlyOnce(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	userID := uuid.New()
	v := f.seedVariant(10, "12.50")
	orderID := placeOrder(t, f, userID, v, 3)
	require.Equal(t, 7, f.stockOf(ctx, v.ID))

	require.NoError(t, f.order.Cancel(ctx, orderID, userID))
	assert.Equal(t, 10, f.stockOf(ctx, v.ID))

	order, err := f.orders.GetByID(ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusCanceled, order.Status)

	// Second cancel is refused and must not credit the stock again.
	err = f.order.Cancel(ctx, orderID, userID)
	assert.ErrorIs(t, err, domain.ErrAlreadyCanceled)
	assert.Equal(t, 10, f.stockOf(ctx, v.ID))

	require.True(t, waitFor(func() bool {
		return len(f.publisher.byType(messaging.OrderCanceledEvent)) >= 1
	}))
	assert.Len(t, f.publisher.byType(messaging.OrderCanceledEvent), 1)
}

// Concurrent cancels of the same order: one wins, and the stock is credited
// exactly once no matter the interleaving.
func TestConcurrentCancelSingleRestock(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	userID := uuid.New()
	v := f.seedVariant(10, "12.50")
	orderID := placeOrder(t, f, userID, v, 4)

	var successes int64
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := f.order.Cancel(ctx, orderID, userID); err == nil {
				atomic.AddInt64(&successes, 1)
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, successes)
	assert.Equal(t, 10, f.stockOf(ctx, v.ID))
}

func TestCancelAfterShipmentRefused(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	userID := uuid.New()
	v := f.seedVariant(10, "12.50")
	orderID := placeOrder(t, f, userID, v, 2)

	require.NoError(t, f.order.UpdateStatus(ctx, orderID, domain.OrderStatusShipped))

	var invalid *domain.InvalidTransitionError
	err := f.order.Cancel(ctx, orderID, userID)
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, domain.OrderStatusShipped, invalid.From)
	assert.Equal(t, 8, f.stockOf(ctx, v.ID), "refused cancel must not restock")
}

func TestCancelByNonOwner(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	userID := uuid.New()
	v := f.seedVariant(10, "12.50")
	orderID := placeOrder(t, f, userID, v, 2)

	err := f.order.Cancel(ctx, orderID, uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, 8, f.stockOf(ctx, v.ID))
}

func TestGetOrderOwnership(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	userID := uuid.New()
	v := f.seedVariant(10, "12.50")
	orderID := placeOrder(t, f, userID, v, 1)

	order, err := f.order.GetOrder(ctx, orderID, userID)
	require.NoError(t, err)
	assert.Equal(t, orderID, order.ID)

	_, err = f.order.GetOrder(ctx, orderID, uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.order.GetOrder(ctx, uuid.New(), userID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListOrders(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	userID := uuid.New()
	v := f.seedVariant(10, "12.50")
	placeOrder(t, f, userID, v, 1)
	placeOrder(t, f, userID, v, 2)
	placeOrder(t, f, uuid.New(), v, 1)

	orders, err := f.order.ListOrders(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, orders, 2)
}

func TestUpdateStatusValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	userID := uuid.New()
	v := f.seedVariant(10, "12.50")
	orderID := placeOrder(t, f, userID, v, 1)

	var invalid *domain.InvalidTransitionError
	err := f.order.UpdateStatus(ctx, orderID, domain.OrderStatus("refunded"))
	require.ErrorAs(t, err, &invalid)

	err = f.order.UpdateStatus(ctx, orderID, domain.OrderStatusDelivered)
	require.ErrorAs(t, err, &invalid, "processing cannot jump to delivered")

	require.NoError(t, f.order.UpdateStatus(ctx, orderID, domain.OrderStatusShipped))
	require.NoError(t, f.order.UpdateStatus(ctx, orderID, domain.OrderStatusDelivered))

	order, err := f.orders.GetByID(ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusDelivered, order.Status)
}

func TestGetInvoice(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	userID := uuid.New()
	v := f.seedVariant(10, "12.50")
	orderID := placeOrder(t, f, userID, v, 1)

	_, err := f.order.GetInvoice(ctx, orderID, userID)
	assert.ErrorIs(t, err, domain.ErrNotFound, "no invoice rendered yet")

	require.NoError(t, f.invoices.Save(ctx, &domain.Invoice{
		OrderID:     orderID,
		UserID:      userID,
		ContentType: "text/plain; charset=utf-8",
		Document:    []byte("INVOICE"),
	}))

	inv, err := f.order.GetInvoice(ctx, orderID, userID)
	require.NoError(t, err)
	assert.Equal(t, []byte("INVOICE"), inv.Document)

	_, err = f.order.GetInvoice(ctx, orderID, uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound, "invoices are owner-only")
}

package memstore_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/compresso/storefront/internal/domain"
	"github.com/compresso/storefront/internal/memstore"
)

func seedOrder(t *testing.T, orders *memstore.Orders, userID uuid.UUID) *domain.Order {
	t.Helper()
	order := domain.NewOrderFromCart(userID, []domain.CartLine{
		{UserID: userID, VariantID: uuid.New(), Quantity: 2, UnitPrice: decimal.RequireFromString("10.00")},
	})
	require.NoError(t, orders.Create(context.Background(), order))
	return order
}

func TestCreateAndGet(t *testing.T) {
	ctx := context.Background()
	orders := memstore.NewOrders()
	userID := uuid.New()
	order := seedOrder(t, orders, userID)

	got, err := orders.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)
	assert.Equal(t, domain.OrderStatusProcessing, got.Status)
	require.Len(t, got.Lines, 1)

	_, err = orders.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSetStatusFollowsGraph(t *testing.T) {
	ctx := context.Background()
	orders := memstore.NewOrders()
	order := seedOrder(t, orders, uuid.New())

	require.NoError(t, orders.SetStatus(ctx, order.ID, domain.OrderStatusShipped))
	require.NoError(t, orders.SetStatus(ctx, order.ID, domain.OrderStatusDelivered))

	var invalid *domain.InvalidTransitionError
	err := orders.SetStatus(ctx, order.ID, domain.OrderStatusShipped)
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, domain.OrderStatusDelivered, invalid.From)

	err = orders.SetStatus(ctx, uuid.New(), domain.OrderStatusShipped)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMarkCanceled(t *testing.T) {
	ctx := context.Background()
	orders := memstore.NewOrders()
	userID := uuid.New()
	order := seedOrder(t, orders, userID)

	canceled, err := orders.MarkCanceled(ctx, order.ID, userID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusCanceled, canceled.Status)
	require.Len(t, canceled.Lines, 1, "canceled order must carry its lines for restocking")

	// Second cancel is refused without another flip.
	_, err = orders.MarkCanceled(ctx, order.ID, userID)
	assert.ErrorIs(t, err, domain.ErrAlreadyCanceled)
}

func TestMarkCanceledOwnership(t *testing.T) {
	ctx := context.Background()
	orders := memstore.NewOrders()
	order := seedOrder(t, orders, uuid.New())

	_, err := orders.MarkCanceled(ctx, order.ID, uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound, "someone else's order reads as not found")
}

func TestMarkCanceledAfterShipment(t *testing.T) {
	ctx := context.Background()
	orders := memstore.NewOrders()
	userID := uuid.New()
	order := seedOrder(t, orders, userID)

	require.NoError(t, orders.SetStatus(ctx, order.ID, domain.OrderStatusShipped))

	var invalid *domain.InvalidTransitionError
	_, err := orders.MarkCanceled(ctx, order.ID, userID)
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, domain.OrderStatusShipped, invalid.From)
}

func TestListByUserNewestFirst(t *testing.T) {
	ctx := context.Background()
	orders := memstore.NewOrders()
	userID := uuid.New()

	first := seedOrder(t, orders, userID)
	second := seedOrder(t, orders, userID)
	second.CreatedAt = first.CreatedAt.Add(time.Minute)
	require.NoError(t, orders.Create(ctx, second))
	seedOrder(t, orders, uuid.New()) // someone else's order

	list, err := orders.ListByUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)
}

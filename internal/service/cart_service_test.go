package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/compresso/storefront/internal/domain"
)

func TestAddItemSnapshotsPrice(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	userID := uuid.New()
	v := f.seedVariant(10, "12.50")

	require.NoError(t, f.cart.AddItem(ctx, userID, v.ID, 2))

	view, err := f.cart.GetCart(ctx, userID)
	require.NoError(t, err)
	require.Len(t, view.Lines, 1)
	assert.True(t, view.Lines[0].UnitPrice.Equal(decimal.RequireFromString("12.50")))
	assert.True(t, view.Total.Equal(decimal.RequireFromString("25.00")))
}

func TestAddItemMergesSameVariant(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	userID := uuid.New()
	v := f.seedVariant(10, "12.50")

	require.NoError(t, f.cart.AddItem(ctx, userID, v.ID, 2))
	require.NoError(t, f.cart.AddItem(ctx, userID, v.ID, 3))

	view, err := f.cart.GetCart(ctx, userID)
	require.NoError(t, err)
	require.Len(t, view.Lines, 1)
	assert.Equal(t, 5, view.Lines[0].Quantity)
}

func TestAddItemRefusedOnShortStock(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	userID := uuid.New()
	v := f.seedVariant(3, "12.50")

	var insufficient *domain.InsufficientStockError
	err := f.cart.AddItem(ctx, userID, v.ID, 4)
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, 3, insufficient.Available)

	view, err := f.cart.GetCart(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, view.Lines)
	assert.Equal(t, 3, f.stockOf(ctx, v.ID), "a refused add never touches stock")
}

func TestAddItemUnknownVariant(t *testing.T) {
	f := newFixture()
	err := f.cart.AddItem(context.Background(), uuid.New(), uuid.New(), 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdateItemOverwritesQuantity(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	userID := uuid.New()
	v := f.seedVariant(10, "12.50")

	require.NoError(t, f.cart.AddItem(ctx, userID, v.ID, 2))
	require.NoError(t, f.cart.UpdateItem(ctx, userID, v.ID, 7))

	view, err := f.cart.GetCart(ctx, userID)
	require.NoError(t, err)
	require.Len(t, view.Lines, 1)
	assert.Equal(t, 7, view.Lines[0].Quantity)
}

func TestUpdateItemToZeroRemovesLine(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	userID := uuid.New()
	v := f.seedVariant(10, "12.50")

	require.NoError(t, f.cart.AddItem(ctx, userID, v.ID, 2))
	require.NoError(t, f.cart.UpdateItem(ctx, userID, v.ID, 0))

	view, err := f.cart.GetCart(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, view.Lines)
}

func TestUpdateItemRefusedBeyondStock(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	userID := uuid.New()
	v := f.seedVariant(3, "12.50")

	require.NoError(t, f.cart.AddItem(ctx, userID, v.ID, 2))

	var insufficient *domain.InsufficientStockError
	err := f.cart.UpdateItem(ctx, userID, v.ID, 9)
	require.ErrorAs(t, err, &insufficient)

	view, err := f.cart.GetCart(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 2, view.Lines[0].Quantity, "refused update leaves the line alone")
}

func TestRemoveItemAndEmpty(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	userID := uuid.New()
	v1 := f.seedVariant(10, "12.50")
	v2 := f.seedVariant(10, "8.00")

	require.NoError(t, f.cart.AddItem(ctx, userID, v1.ID, 1))
	require.NoError(t, f.cart.AddItem(ctx, userID, v2.ID, 1))

	require.NoError(t, f.cart.RemoveItem(ctx, userID, v1.ID))
	view, err := f.cart.GetCart(ctx, userID)
	require.NoError(t, err)
	require.Len(t, view.Lines, 1)
	assert.Equal(t, v2.ID, view.Lines[0].VariantID)

	require.NoError(t, f.cart.Empty(ctx, userID))
	view, err = f.cart.GetCart(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, view.Lines)
	assert.True(t, view.Total.Equal(decimal.Zero))
}

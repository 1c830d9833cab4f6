package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/compresso/storefront/internal/domain"
)

type CartService struct {
	carts     CartStore
	inventory InventoryLedger
}

func NewCartService(carts CartStore, inventory InventoryLedger) *CartService {
	return &CartService{
		carts:     carts,
		inventory: inventory,
	}
}

// CartView is the read model for a user's cart: lines in insertion order
// plus the computed total.
type CartView struct {
	Lines []domain.CartLine `json:"lines"`
	Total decimal.Decimal   `json:"total"`
}

func (s *CartService) GetCart(ctx context.Context, userID uuid.UUID) (*CartView, error) {
	lines, err := s.carts.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &CartView{Lines: lines, Total: domain.CartTotal(lines)}, nil
}

// AddItem read-checks current stock, snapshots the catalog price, and merges
// the line into the cart. The check is soft: stock may drop afterwards and
// the hard validation happens at checkout.
func (s *CartService) AddItem(ctx context.Context, userID, variantID uuid.UUID, qty int) error {
	variant, err := s.inventory.GetVariant(ctx, variantID)
	if err != nil {
		return err
	}

	if variant.Stock < qty {
		return &domain.InsufficientStockError{
			VariantID: variantID,
			Requested: qty,
			Available: variant.Stock,
		}
	}

	line := domain.CartLine{
		UserID:    userID,
		VariantID: variantID,
		Quantity:  qty,
		UnitPrice: variant.Price,
		AddedAt:   time.Now(),
	}
	return s.carts.AddLines(ctx, userID, []domain.CartLine{line})
}

// UpdateItem sets the line's quantity; zero removes it. A line absent from
// the cart is inserted when the quantity is positive.
func (s *CartService) UpdateItem(ctx context.Context, userID, variantID uuid.UUID, qty int) error {
	if qty == 0 {
		return s.carts.RemoveLine(ctx, userID, variantID)
	}

	variant, err := s.inventory.GetVariant(ctx, variantID)
	if err != nil {
		return err
	}

	avail, err := s.inventory.CheckAvailable(ctx, variantID, qty)
	if err != nil {
		return err
	}
	if !avail.Available {
		return &domain.InsufficientStockError{
			VariantID: variantID,
			Requested: qty,
			Available: avail.CurrentStock,
		}
	}

	return s.carts.UpdateLine(ctx, domain.CartLine{
		UserID:    userID,
		VariantID: variantID,
		Quantity:  qty,
		UnitPrice: variant.Price,
		AddedAt:   time.Now(),
	})
}

func (s *CartService) RemoveItem(ctx context.Context, userID, variantID uuid.UUID) error {
	return s.carts.RemoveLine(ctx, userID, variantID)
}

func (s *CartService) Empty(ctx context.Context, userID uuid.UUID) error {
	return s.carts.EmptyCart(ctx, userID)
}

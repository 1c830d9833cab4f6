// Package memstore provides in-memory implementations of the storefront's
// stores. They back the test suite and local development; the production
// wiring uses the Postgres repositories.
package memstore

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/compresso/storefront/internal/domain"
)

type Inventory struct {
	mu       sync.Mutex
	variants map[uuid.UUID]*domain.Variant
}

func NewInventory() *Inventory {
	return &Inventory{variants: make(map[uuid.UUID]*domain.Variant)}
}

func (s *Inventory) AddVariant(v domain.Variant) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := v
	s.variants[v.ID] = &cp
}

func (s *Inventory) GetVariant(_ context.Context, variantID uuid.UUID) (*domain.Variant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.variants[variantID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *v
	return &cp, nil
}

func (s *Inventory) CheckAvailable(_ context.Context, variantID uuid.UUID, qty int) (domain.Availability, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.variants[variantID]
	if !ok {
		return domain.Availability{}, domain.ErrNotFound
	}
	return domain.Availability{Available: v.Stock >= qty, CurrentStock: v.Stock}, nil
}

// Reserve is the atomic check-and-decrement: the check and the mutation
// happen under one lock, so concurrent reservations serialize.
func (s *Inventory) Reserve(_ context.Context, variantID uuid.UUID, qty int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.variants[variantID]
	if !ok {
		return domain.ErrNotFound
	}
	if v.Stock < qty {
		return &domain.InsufficientStockError{
			VariantID: variantID,
			Requested: qty,
			Available: v.Stock,
		}
	}
	v.Stock -= qty
	return nil
}

func (s *Inventory) Release(_ context.Context, variantID uuid.UUID, qty int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.variants[variantID]
	if !ok {
		return domain.ErrNotFound
	}
	v.Stock += qty
	return nil
}

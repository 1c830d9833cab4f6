package memstore

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/compresso/storefront/internal/domain"
)

type Carts struct {
	mu    sync.Mutex
	lines map[uuid.UUID][]domain.CartLine
}

func NewCarts() *Carts {
	return &Carts{lines: make(map[uuid.UUID][]domain.CartLine)}
}

func (s *Carts) GetCart(_ context.Context, userID uuid.UUID) ([]domain.CartLine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lines := s.lines[userID]
	out := make([]domain.CartLine, len(lines))
	copy(out, lines)
	return out, nil
}

func (s *Carts) AddLines(_ context.Context, userID uuid.UUID, lines []domain.CartLine) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart := s.lines[userID]
	for _, l := range lines {
		l.UserID = userID
		cart = domain.MergeLine(cart, l)
	}
	s.lines[userID] = cart
	return nil
}

func (s *Carts) UpdateLine(_ context.Context, line domain.CartLine) error {
	if line.Quantity == 0 {
		return s.RemoveLine(context.Background(), line.UserID, line.VariantID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cart := s.lines[line.UserID]
	for i := range cart {
		if cart[i].VariantID == line.VariantID {
			cart[i].Quantity = line.Quantity
			return nil
		}
	}
	s.lines[line.UserID] = append(cart, line)
	return nil
}

func (s *Carts) RemoveLine(_ context.Context, userID, variantID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart := s.lines[userID]
	for i := range cart {
		if cart[i].VariantID == variantID {
			s.lines[userID] = append(cart[:i], cart[i+1:]...)
			return nil
		}
	}
	return nil
}

func (s *Carts) EmptyCart(_ context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.lines, userID)
	return nil
}

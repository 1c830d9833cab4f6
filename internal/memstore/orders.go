package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/compresso/storefront/internal/domain"
)

type Orders struct {
	mu     sync.Mutex
	orders map[uuid.UUID]*domain.Order
}

func NewOrders() *Orders {
	return &Orders{orders: make(map[uuid.UUID]*domain.Order)}
}

func (s *Orders) Create(_ context.Context, order *domain.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.orders[order.ID] = cloneOrder(order)
	return nil
}

func (s *Orders) GetByID(_ context.Context, orderID uuid.UUID) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.orders[orderID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneOrder(order), nil
}

func (s *Orders) ListByUser(_ context.Context, userID uuid.UUID) ([]*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*domain.Order
	for _, order := range s.orders {
		if order.UserID == userID {
			out = append(out, cloneOrder(order))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Orders) SetStatus(_ context.Context, orderID uuid.UUID, next domain.OrderStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.orders[orderID]
	if !ok {
		return domain.ErrNotFound
	}
	if !order.Status.CanTransitionTo(next) {
		return &domain.InvalidTransitionError{From: order.Status, To: next}
	}
	order.Status = next
	order.UpdatedAt = time.Now()
	return nil
}

func (s *Orders) MarkCanceled(_ context.Context, orderID, userID uuid.UUID) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.orders[orderID]
	if !ok || order.UserID != userID {
		return nil, domain.ErrNotFound
	}

	switch {
	case order.Status == domain.OrderStatusCanceled:
		return nil, domain.ErrAlreadyCanceled
	case order.Status != domain.OrderStatusProcessing:
		return nil, &domain.InvalidTransitionError{From: order.Status, To: domain.OrderStatusCanceled}
	}

	order.Status = domain.OrderStatusCanceled
	order.UpdatedAt = time.Now()
	return cloneOrder(order), nil
}

func cloneOrder(order *domain.Order) *domain.Order {
	cp := *order
	cp.Lines = make([]domain.OrderLine, len(order.Lines))
	copy(cp.Lines, order.Lines)
	return &cp
}

package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/compresso/storefront/internal/domain"
)

type Invoices struct {
	mu       sync.Mutex
	invoices map[uuid.UUID]*domain.Invoice
}

func NewInvoices() *Invoices {
	return &Invoices{invoices: make(map[uuid.UUID]*domain.Invoice)}
}

func (s *Invoices) Save(_ context.Context, inv *domain.Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Created once; replays leave the stored artifact alone.
	if _, ok := s.invoices[inv.OrderID]; ok {
		return nil
	}

	cp := *inv
	cp.Document = append([]byte(nil), inv.Document...)
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now()
	}
	s.invoices[inv.OrderID] = &cp
	return nil
}

func (s *Invoices) GetByOrder(_ context.Context, orderID, userID uuid.UUID) (*domain.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	inv, ok := s.invoices[orderID]
	if !ok || inv.UserID != userID {
		return nil, domain.ErrNotFound
	}

	cp := *inv
	cp.Document = append([]byte(nil), inv.Document...)
	return &cp, nil
}

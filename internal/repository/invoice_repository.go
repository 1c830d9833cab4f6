package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/compresso/storefront/internal/domain"
)

type InvoiceRepository struct {
	db *sql.DB
}

func NewInvoiceRepository(db *sql.DB) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

// Save stores the artifact once. A replayed invoice event finds the row
// already present and leaves it alone.
func (r *InvoiceRepository) Save(ctx context.Context, inv *domain.Invoice) error {
	createdAt := inv.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO invoices (order_id, user_id, content_type, document, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (order_id) DO NOTHING`,
		inv.OrderID, inv.UserID, inv.ContentType, inv.Document, createdAt,
	)
	if err != nil {
		return &domain.PersistenceError{Op: "invoice.save", Err: err}
	}
	return nil
}

// GetByOrder returns the artifact only to its owner; absent and not-owned
// both read as not found.
func (r *InvoiceRepository) GetByOrder(ctx context.Context, orderID, userID uuid.UUID) (*domain.Invoice, error) {
	inv := &domain.Invoice{}
	err := r.db.QueryRowContext(ctx, `
		SELECT order_id, user_id, content_type, document, created_at
		FROM invoices WHERE order_id = $1 AND user_id = $2`,
		orderID, userID,
	).Scan(&inv.OrderID, &inv.UserID, &inv.ContentType, &inv.Document, &inv.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, &domain.PersistenceError{Op: "invoice.get", Err: err}
	}

	return inv, nil
}

package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"github.com/compresso/storefront/internal/domain"
)

type InventoryRepository struct {
	db *sql.DB
}

func NewInventoryRepository(db *sql.DB) *InventoryRepository {
	return &InventoryRepository{db: db}
}

func (r *InventoryRepository) GetVariant(ctx context.Context, variantID uuid.UUID) (*domain.Variant, error) {
	query := `
		SELECT id, product_name, weight_grams, price, stock
		FROM variants
		WHERE id = $1
	`

	v := &domain.Variant{}
	err := r.db.QueryRowContext(ctx, query, variantID).Scan(
		&v.ID,
		&v.ProductName,
		&v.WeightGrams,
		&v.Price,
		&v.Stock,
	)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, &domain.PersistenceError{Op: "inventory.get", Err: err}
	}

	return v, nil
}

func (r *InventoryRepository) CheckAvailable(ctx context.Context, variantID uuid.UUID, qty int) (domain.Availability, error) {
	var stock int
	err := r.db.QueryRowContext(ctx, `SELECT stock FROM variants WHERE id = $1`, variantID).Scan(&stock)
	if err == sql.ErrNoRows {
		return domain.Availability{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Availability{}, &domain.PersistenceError{Op: "inventory.check", Err: err}
	}

	return domain.Availability{Available: stock >= qty, CurrentStock: stock}, nil
}

// Reserve decrements stock only if enough remains. The conditional UPDATE is
// the whole check-and-decrement; concurrent reservations against the same
// variant serialize on the row, so stock can never be jointly overdrawn.
func (r *InventoryRepository) Reserve(ctx context.Context, variantID uuid.UUID, qty int) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE variants SET stock = stock - $2 WHERE id = $1 AND stock >= $2`,
		variantID, qty,
	)
	if err != nil {
		return &domain.PersistenceError{Op: "inventory.reserve", Err: err}
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return &domain.PersistenceError{Op: "inventory.reserve", Err: err}
	}
	if affected > 0 {
		return nil
	}

	// Zero rows: either the variant is missing or stock was short. The
	// follow-up read only names the refusal; the reservation already failed.
	avail, err := r.CheckAvailable(ctx, variantID, qty)
	if err != nil {
		return err
	}
	return &domain.InsufficientStockError{
		VariantID: variantID,
		Requested: qty,
		Available: avail.CurrentStock,
	}
}

func (r *InventoryRepository) Release(ctx context.Context, variantID uuid.UUID, qty int) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE variants SET stock = stock + $2 WHERE id = $1`,
		variantID, qty,
	)
	if err != nil {
		return &domain.PersistenceError{Op: "inventory.release", Err: err}
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return &domain.PersistenceError{Op: "inventory.release", Err: err}
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

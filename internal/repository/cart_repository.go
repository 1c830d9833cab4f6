package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/compresso/storefront/internal/domain"
)

type CartRepository struct {
	db *sql.DB
}

func NewCartRepository(db *sql.DB) *CartRepository {
	return &CartRepository{db: db}
}

// GetCart returns the user's lines in insertion order. An empty cart is an
// empty slice, not an error.
func (r *CartRepository) GetCart(ctx context.Context, userID uuid.UUID) ([]domain.CartLine, error) {
	query := `
		SELECT user_id, variant_id, quantity, unit_price, added_at
		FROM cart_lines
		WHERE user_id = $1
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "cart.get", Err: err}
	}
	defer rows.Close()

	var lines []domain.CartLine
	for rows.Next() {
		var l domain.CartLine
		if err := rows.Scan(&l.UserID, &l.VariantID, &l.Quantity, &l.UnitPrice, &l.AddedAt); err != nil {
			return nil, &domain.PersistenceError{Op: "cart.get", Err: err}
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, &domain.PersistenceError{Op: "cart.get", Err: err}
	}

	return lines, nil
}

// AddLines merges each incoming line into the cart: an existing
// (user, variant) line gains the incoming quantity, anything else is
// inserted. The unique constraint plus the upsert keeps concurrent adds from
// ever duplicating a line.
func (r *CartRepository) AddLines(ctx context.Context, userID uuid.UUID, lines []domain.CartLine) error {
	query := `
		INSERT INTO cart_lines (user_id, variant_id, quantity, unit_price, added_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, variant_id)
		DO UPDATE SET quantity = cart_lines.quantity + EXCLUDED.quantity
	`

	for _, l := range lines {
		addedAt := l.AddedAt
		if addedAt.IsZero() {
			addedAt = time.Now()
		}
		if _, err := r.db.ExecContext(ctx, query, userID, l.VariantID, l.Quantity, l.UnitPrice, addedAt); err != nil {
			return &domain.PersistenceError{Op: "cart.add", Err: err}
		}
	}
	return nil
}

// UpdateLine has upsert semantics: quantity zero removes the line, anything
// else sets it, inserting the line if it was absent.
func (r *CartRepository) UpdateLine(ctx context.Context, line domain.CartLine) error {
	if line.Quantity == 0 {
		return r.RemoveLine(ctx, line.UserID, line.VariantID)
	}

	query := `
		INSERT INTO cart_lines (user_id, variant_id, quantity, unit_price, added_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, variant_id)
		DO UPDATE SET quantity = EXCLUDED.quantity
	`

	addedAt := line.AddedAt
	if addedAt.IsZero() {
		addedAt = time.Now()
	}
	if _, err := r.db.ExecContext(ctx, query, line.UserID, line.VariantID, line.Quantity, line.UnitPrice, addedAt); err != nil {
		return &domain.PersistenceError{Op: "cart.update", Err: err}
	}
	return nil
}

func (r *CartRepository) RemoveLine(ctx context.Context, userID, variantID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM cart_lines WHERE user_id = $1 AND variant_id = $2`,
		userID, variantID,
	)
	if err != nil {
		return &domain.PersistenceError{Op: "cart.remove", Err: err}
	}
	return nil
}

func (r *CartRepository) EmptyCart(ctx context.Context, userID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM cart_lines WHERE user_id = $1`, userID)
	if err != nil {
		return &domain.PersistenceError{Op: "cart.empty", Err: err}
	}
	return nil
}

package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/compresso/storefront/internal/domain"
)

type OrderRepository struct {
	db *sql.DB
}

func NewOrderRepository(db *sql.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// Create writes the order header and its lines in one transaction. Either
// both halves commit or neither is visible.
func (r *OrderRepository) Create(ctx context.Context, order *domain.Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return &domain.PersistenceError{Op: "order.create", Err: err}
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (id, user_id, total_price, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		order.ID, order.UserID, order.TotalPrice, order.Status, order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		return &domain.PersistenceError{Op: "order.create", Err: err}
	}

	for _, l := range order.Lines {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_lines (order_id, variant_id, quantity, unit_price)
			VALUES ($1, $2, $3, $4)`,
			l.OrderID, l.VariantID, l.Quantity, l.UnitPrice,
		)
		if err != nil {
			return &domain.PersistenceError{Op: "order.create", Err: err}
		}
	}

	if err := tx.Commit(); err != nil {
		return &domain.PersistenceError{Op: "order.create", Err: err}
	}
	return nil
}

func (r *OrderRepository) GetByID(ctx context.Context, orderID uuid.UUID) (*domain.Order, error) {
	order, err := scanOrderHeader(r.db.QueryRowContext(ctx, `
		SELECT id, user_id, total_price, status, created_at, updated_at
		FROM orders WHERE id = $1`, orderID))
	if err != nil {
		return nil, err
	}

	lines, err := r.linesFor(ctx, r.db, orderID)
	if err != nil {
		return nil, err
	}
	order.Lines = lines

	return order, nil
}

func (r *OrderRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error) {
	query := `
		SELECT o.id, o.user_id, o.total_price, o.status, o.created_at, o.updated_at,
			   ol.variant_id, ol.quantity, ol.unit_price
		FROM orders o
		JOIN order_lines ol ON ol.order_id = o.id
		WHERE o.user_id = $1
		ORDER BY o.created_at DESC, o.id, ol.variant_id
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "order.list", Err: err}
	}
	defer rows.Close()

	var orders []*domain.Order
	byID := make(map[uuid.UUID]*domain.Order)

	for rows.Next() {
		o := &domain.Order{}
		var line domain.OrderLine
		err := rows.Scan(
			&o.ID, &o.UserID, &o.TotalPrice, &o.Status, &o.CreatedAt, &o.UpdatedAt,
			&line.VariantID, &line.Quantity, &line.UnitPrice,
		)
		if err != nil {
			return nil, &domain.PersistenceError{Op: "order.list", Err: err}
		}

		existing, ok := byID[o.ID]
		if !ok {
			byID[o.ID] = o
			orders = append(orders, o)
			existing = o
		}
		line.OrderID = existing.ID
		existing.Lines = append(existing.Lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, &domain.PersistenceError{Op: "order.list", Err: err}
	}

	return orders, nil
}

// SetStatus applies a validated status transition. The row lock makes the
// read-validate-write sequence atomic against concurrent transitions.
func (r *OrderRepository) SetStatus(ctx context.Context, orderID uuid.UUID, next domain.OrderStatus) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return &domain.PersistenceError{Op: "order.status", Err: err}
	}
	defer tx.Rollback()

	var current domain.OrderStatus
	err = tx.QueryRowContext(ctx,
		`SELECT status FROM orders WHERE id = $1 FOR UPDATE`, orderID,
	).Scan(&current)
	if err == sql.ErrNoRows {
		return domain.ErrNotFound
	}
	if err != nil {
		return &domain.PersistenceError{Op: "order.status", Err: err}
	}

	if !current.CanTransitionTo(next) {
		return &domain.InvalidTransitionError{From: current, To: next}
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE orders SET status = $2, updated_at = $3 WHERE id = $1`,
		orderID, next, time.Now(),
	)
	if err != nil {
		return &domain.PersistenceError{Op: "order.status", Err: err}
	}

	if err := tx.Commit(); err != nil {
		return &domain.PersistenceError{Op: "order.status", Err: err}
	}
	return nil
}

// MarkCanceled flips a processing order owned by userID to canceled and
// returns it with its lines so the caller can restock. The conditional flip
// under the row lock is what makes the later stock release fire exactly once:
// a second cancel finds the order already canceled.
func (r *OrderRepository) MarkCanceled(ctx context.Context, orderID, userID uuid.UUID) (*domain.Order, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "order.cancel", Err: err}
	}
	defer tx.Rollback()

	order, err := scanOrderHeader(tx.QueryRowContext(ctx, `
		SELECT id, user_id, total_price, status, created_at, updated_at
		FROM orders WHERE id = $1 AND user_id = $2 FOR UPDATE`, orderID, userID))
	if err != nil {
		return nil, err
	}

	switch {
	case order.Status == domain.OrderStatusCanceled:
		return nil, domain.ErrAlreadyCanceled
	case order.Status != domain.OrderStatusProcessing:
		return nil, &domain.InvalidTransitionError{From: order.Status, To: domain.OrderStatusCanceled}
	}

	now := time.Now()
	_, err = tx.ExecContext(ctx,
		`UPDATE orders SET status = $2, updated_at = $3 WHERE id = $1`,
		orderID, domain.OrderStatusCanceled, now,
	)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "order.cancel", Err: err}
	}

	lines, err := r.linesFor(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, &domain.PersistenceError{Op: "order.cancel", Err: err}
	}

	order.Status = domain.OrderStatusCanceled
	order.UpdatedAt = now
	order.Lines = lines
	return order, nil
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (r *OrderRepository) linesFor(ctx context.Context, q querier, orderID uuid.UUID) ([]domain.OrderLine, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT order_id, variant_id, quantity, unit_price
		FROM order_lines WHERE order_id = $1
		ORDER BY variant_id`, orderID)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "order.lines", Err: err}
	}
	defer rows.Close()

	var lines []domain.OrderLine
	for rows.Next() {
		var l domain.OrderLine
		if err := rows.Scan(&l.OrderID, &l.VariantID, &l.Quantity, &l.UnitPrice); err != nil {
			return nil, &domain.PersistenceError{Op: "order.lines", Err: err}
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, &domain.PersistenceError{Op: "order.lines", Err: err}
	}

	return lines, nil
}

func scanOrderHeader(row *sql.Row) (*domain.Order, error) {
	o := &domain.Order{}
	err := row.Scan(&o.ID, &o.UserID, &o.TotalPrice, &o.Status, &o.CreatedAt, &o.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, &domain.PersistenceError{Op: "order.get", Err: err}
	}
	return o, nil
}

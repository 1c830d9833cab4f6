package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartLine is one (user, variant, quantity) entry in an in-progress cart.
// UnitPrice is the price snapshot taken when the line was first added.
type CartLine struct {
	UserID    uuid.UUID       `json:"user_id"`
	VariantID uuid.UUID       `json:"variant_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	AddedAt   time.Time       `json:"added_at"`
}

func (l CartLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

func CartTotal(lines []CartLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

// MergeLine folds a new line into an existing slice, summing quantities when
// the variant is already present. The cart never holds two lines for the same
// (user, variant) pair.
func MergeLine(lines []CartLine, incoming CartLine) []CartLine {
	for i := range lines {
		if lines[i].VariantID == incoming.VariantID {
			lines[i].Quantity += incoming.Quantity
			return lines
		}
	}
	return append(lines, incoming)
}

package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Variant is a sellable unit of a product (a specific weight/grind).
// Stock is mutated only through the inventory ledger.
type Variant struct {
	ID          uuid.UUID       `json:"id"`
	ProductName string          `json:"product_name"`
	WeightGrams int             `json:"weight_grams"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
}

// Availability is the result of a stock read-check.
type Availability struct {
	Available    bool `json:"available"`
	CurrentStock int  `json:"current_stock"`
}

package domain

import (
	"time"

	"github.com/google/uuid"
)

// Invoice is the rendered artifact for a committed order. It is created once,
// asynchronously, and its absence never blocks order creation.
type Invoice struct {
	OrderID     uuid.UUID `json:"order_id"`
	UserID      uuid.UUID `json:"user_id"`
	ContentType string    `json:"content_type"`
	Document    []byte    `json:"-"`
	CreatedAt   time.Time `json:"created_at"`
}

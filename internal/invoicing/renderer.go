package invoicing

import (
	"bytes"
	"fmt"

	"github.com/compresso/storefront/pkg/messaging"
)

// Renderer materializes an invoice document for a placed order. The real PDF
// pipeline lives outside the core; TextRenderer is the built-in fallback.
type Renderer interface {
	Render(payload messaging.OrderPlacedPayload) (document []byte, contentType string, err error)
}

type TextRenderer struct{}

func NewTextRenderer() *TextRenderer {
	return &TextRenderer{}
}

func (r *TextRenderer) Render(payload messaging.OrderPlacedPayload) ([]byte, string, error) {
	order := payload.Order

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "INVOICE\n")
	fmt.Fprintf(&buf, "Order ID: %s\n", order.ID)
	if payload.Shipping.FullName != "" {
		fmt.Fprintf(&buf, "Full Name: %s\n", payload.Shipping.FullName)
		fmt.Fprintf(&buf, "Address: %s, %s %s, %s\n",
			payload.Shipping.AddressLine, payload.Shipping.City,
			payload.Shipping.PostalCode, payload.Shipping.Country)
	}
	fmt.Fprintf(&buf, "\n%-38s %8s %10s %10s\n", "Item", "Qty", "Price", "Total")

	for _, line := range order.Lines {
		subtotal := line.UnitPrice.Mul(intToDecimal(line.Quantity))
		fmt.Fprintf(&buf, "%-38s %8d %10s %10s\n",
			line.VariantID, line.Quantity,
			line.UnitPrice.StringFixed(2), subtotal.StringFixed(2))
	}

	fmt.Fprintf(&buf, "\nTotal: %s\n", order.TotalPrice.StringFixed(2))

	return buf.Bytes(), "text/plain; charset=utf-8", nil
}

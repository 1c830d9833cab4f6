package invoicing

import (
	"context"
	"log"

	"github.com/google/uuid"
)

// Mailer delivers a rendered invoice to the customer. Actual SMTP delivery
// belongs to the external notification collaborator.
type Mailer interface {
	Send(ctx context.Context, userID, orderID uuid.UUID, document []byte, contentType string) error
}

// LogMailer records the delivery instead of sending it.
type LogMailer struct{}

func NewLogMailer() *LogMailer {
	return &LogMailer{}
}

func (m *LogMailer) Send(_ context.Context, userID, orderID uuid.UUID, document []byte, contentType string) error {
	log.Printf("Invoice mail queued: UserID=%s OrderID=%s Size=%d Type=%s",
		userID, orderID, len(document), contentType)
	return nil
}

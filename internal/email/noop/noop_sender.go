package noop

import (
	"context"
	"log"
	"time"

	"github.com/shopspring/decimal"

	"cadesk/internal/port"
)

type noopSender struct{}

// NewNoopSender creates an EmailSender that logs instead of sending. Used in
// development and tests.
func NewNoopSender() port.EmailSender {
	return &noopSender{}
}

func (s *noopSender) SendInvoiceIssuedEmail(_ context.Context, toEmail, _, invoiceNumber string, total decimal.Decimal, dueDate time.Time) error {
	log.Printf("noop email: invoice %s issued to %s (total %s, due %s)",
		invoiceNumber, toEmail, total.StringFixed(2), dueDate.Format("2006-01-02"))
	return nil
}

func (s *noopSender) SendPaymentReceiptEmail(_ context.Context, toEmail, _, invoiceNumber string, amount, balance decimal.Decimal) error {
	log.Printf("noop email: receipt for invoice %s to %s (received %s, balance %s)",
		invoiceNumber, toEmail, amount.StringFixed(2), balance.StringFixed(2))
	return nil
}

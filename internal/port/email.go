package port

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// EmailSender defines the contract for sending billing notifications.
// Delivery is best-effort; callers log failures and never surface them.
type EmailSender interface {
	SendInvoiceIssuedEmail(ctx context.Context, toEmail, toName, invoiceNumber string, total decimal.Decimal, dueDate time.Time) error
	SendPaymentReceiptEmail(ctx context.Context, toEmail, toName, invoiceNumber string, amount, balance decimal.Decimal) error
}

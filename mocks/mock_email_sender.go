package mocks

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockEmailSender is a mock implementation of port.EmailSender.
type MockEmailSender struct {
	mock.Mock
}

func (m *MockEmailSender) SendInvoiceIssuedEmail(ctx context.Context, toEmail, toName, invoiceNumber string, total decimal.Decimal, dueDate time.Time) error {
	args := m.Called(ctx, toEmail, toName, invoiceNumber, total, dueDate)
	return args.Error(0)
}

func (m *MockEmailSender) SendPaymentReceiptEmail(ctx context.Context, toEmail, toName, invoiceNumber string, amount, balance decimal.Decimal) error {
	args := m.Called(ctx, toEmail, toName, invoiceNumber, amount, balance)
	return args.Error(0)
}

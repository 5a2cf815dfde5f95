package port

import (
	"context"

	"github.com/google/uuid"

	"cadesk/internal/domain"
)

// InvoiceFilter narrows invoice listings. A nil ClientID means all clients.
type InvoiceFilter struct {
	ClientID *uuid.UUID
	Status   *domain.InvoiceStatus
}

// InvoiceRepository persists invoices with their line items and payments.
//
// AddPayment and RemovePayment mutate the payment list and rederive the
// invoice's monetary columns inside a single transaction holding a row lock
// on the invoice, so concurrent payment writes serialize instead of losing
// updates.
type InvoiceRepository interface {
	Create(ctx context.Context, inv *domain.Invoice) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Invoice, error)
	List(ctx context.Context, filter InvoiceFilter, offset, limit int) ([]domain.Invoice, int, error)
	ListByClient(ctx context.Context, clientID uuid.UUID) ([]domain.Invoice, error)
	Update(ctx context.Context, inv *domain.Invoice) error
	SetStatus(ctx context.Context, id uuid.UUID, status domain.InvoiceStatus) (*domain.Invoice, error)
	AddPayment(ctx context.Context, invoiceID uuid.UUID, p *domain.Payment) (*domain.Invoice, error)
	RemovePayment(ctx context.Context, invoiceID, paymentID uuid.UUID) (*domain.Invoice, error)
	Delete(ctx context.Context, id uuid.UUID) error
	RederiveAll(ctx context.Context) (int, error)
}

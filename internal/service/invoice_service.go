package service

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"cadesk/internal/domain"
	"cadesk/internal/export"
	"cadesk/internal/port"
)

// InvoiceItemInput is one line item in a create/update request.
type InvoiceItemInput struct {
	Name      string          `json:"name" binding:"required"`
	Quantity  decimal.Decimal `json:"quantity" binding:"required"`
	UnitPrice decimal.Decimal `json:"unit_price" binding:"required"`
}

// CreateInvoiceInput is the DTO for invoice creation.
type CreateInvoiceInput struct {
	ClientID      uuid.UUID          `json:"client_id" binding:"required"`
	InvoiceNumber string             `json:"invoice_number"`
	Items         []InvoiceItemInput `json:"items" binding:"required"`
	Tax           decimal.Decimal    `json:"tax"`
	IssueDate     *time.Time         `json:"issue_date"`
	DueDate       time.Time          `json:"due_date" binding:"required"`
	Notes         string             `json:"notes"`
	CreatedBy     uuid.UUID          `json:"-"`
}

// UpdateInvoiceInput is the DTO for invoice updates. Nil fields are left
// unchanged; payments are never touched by this operation.
type UpdateInvoiceInput struct {
	ClientID      *uuid.UUID          `json:"client_id"`
	InvoiceNumber *string             `json:"invoice_number"`
	Items         *[]InvoiceItemInput `json:"items"`
	Tax           *decimal.Decimal    `json:"tax"`
	IssueDate     *time.Time          `json:"issue_date"`
	DueDate       *time.Time          `json:"due_date"`
	Notes         *string             `json:"notes"`
}

// PaymentInput is the DTO for recording a payment.
type PaymentInput struct {
	Amount         decimal.Decimal      `json:"amount" binding:"required"`
	Method         domain.PaymentMethod `json:"method" binding:"required"`
	PaidAt         *time.Time           `json:"paid_at"`
	TransactionRef string               `json:"transaction_ref"`
	Note           string               `json:"note"`
	RecordedBy     uuid.UUID            `json:"-"`
}

// InvoiceService owns the invoice ledger: lifecycle, payments, and the
// derived totals/status.
type InvoiceService interface {
	Create(ctx context.Context, input CreateInvoiceInput) (*domain.Invoice, error)
	Get(ctx context.Context, principal domain.Principal, id uuid.UUID) (*domain.Invoice, error)
	List(ctx context.Context, principal domain.Principal, clientID *uuid.UUID, offset, limit int) ([]domain.Invoice, int, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInvoiceInput) (*domain.Invoice, error)
	SetStatus(ctx context.Context, id uuid.UUID, status domain.InvoiceStatus) (*domain.Invoice, error)
	AddPayment(ctx context.Context, invoiceID uuid.UUID, input PaymentInput) (*domain.Invoice, error)
	RemovePayment(ctx context.Context, invoiceID, paymentID uuid.UUID) (*domain.Invoice, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ExportRegister(ctx context.Context, w io.Writer) error
}

type invoiceService struct {
	invoiceRepo port.InvoiceRepository
	clientRepo  port.ClientRepository
	email       port.EmailSender
}

// NewInvoiceService creates a new InvoiceService implementation.
func NewInvoiceService(
	invoiceRepo port.InvoiceRepository,
	clientRepo port.ClientRepository,
	email port.EmailSender,
) InvoiceService {
	return &invoiceService{
		invoiceRepo: invoiceRepo,
		clientRepo:  clientRepo,
		email:       email,
	}
}

func (s *invoiceService) Create(ctx context.Context, input CreateInvoiceInput) (*domain.Invoice, error) {
	items, err := buildItems(input.Items)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: invoice requires at least one line item", domain.ErrValidation)
	}
	if input.Tax.IsNegative() {
		return nil, fmt.Errorf("%w: tax must not be negative", domain.ErrValidation)
	}

	client, err := s.clientRepo.GetByID(ctx, input.ClientID)
	if err != nil {
		return nil, err
	}

	number := input.InvoiceNumber
	if number == "" {
		number = fmt.Sprintf("INV-%d", time.Now().UnixMilli())
	}

	issueDate := time.Now().UTC()
	if input.IssueDate != nil {
		issueDate = *input.IssueDate
	}

	totals := domain.DeriveTotals(items, input.Tax, nil, domain.InvoiceStatusPending)
	inv := &domain.Invoice{
		ID:            uuid.New(),
		ClientID:      input.ClientID,
		InvoiceNumber: number,
		Subtotal:      totals.Subtotal,
		Tax:           input.Tax,
		Total:         totals.Total,
		Paid:          totals.Paid,
		Balance:       totals.Balance,
		Status:        totals.Status,
		IssueDate:     issueDate,
		DueDate:       input.DueDate,
		Notes:         input.Notes,
		CreatedBy:     input.CreatedBy,
		Items:         items,
	}

	if err := s.invoiceRepo.Create(ctx, inv); err != nil {
		return nil, err
	}

	log.Printf("invoiceService.Create: invoice %s for client %s, total %s",
		inv.InvoiceNumber, client.Name, inv.Total.StringFixed(2))

	// Best-effort notification; never fails the operation.
	if client.ContactEmail != "" {
		if err := s.email.SendInvoiceIssuedEmail(ctx, client.ContactEmail, client.Name,
			inv.InvoiceNumber, inv.Total, inv.DueDate); err != nil {
			log.Printf("invoiceService.Create: invoice email failed for %s: %v", inv.InvoiceNumber, err)
		}
	}

	return inv, nil
}

func (s *invoiceService) Get(ctx context.Context, principal domain.Principal, id uuid.UUID) (*domain.Invoice, error) {
	inv, err := s.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	// Clients may only read their own invoices.
	if principal.Role == domain.RoleClient && inv.ClientID != principal.OwnClient() {
		return nil, domain.ErrForbidden
	}
	return inv, nil
}

// List returns invoices newest-created first. For CLIENT principals the
// client filter is forced to their own client id regardless of the requested
// filter.
func (s *invoiceService) List(ctx context.Context, principal domain.Principal, clientID *uuid.UUID, offset, limit int) ([]domain.Invoice, int, error) {
	filter := port.InvoiceFilter{ClientID: clientID}
	if principal.Role == domain.RoleClient {
		own := principal.OwnClient()
		filter.ClientID = &own
	}
	return s.invoiceRepo.List(ctx, filter, offset, limit)
}

func (s *invoiceService) Update(ctx context.Context, id uuid.UUID, input UpdateInvoiceInput) (*domain.Invoice, error) {
	inv, err := s.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.ClientID != nil {
		if _, err := s.clientRepo.GetByID(ctx, *input.ClientID); err != nil {
			return nil, err
		}
		inv.ClientID = *input.ClientID
	}
	if input.InvoiceNumber != nil {
		if *input.InvoiceNumber == "" {
			return nil, fmt.Errorf("%w: invoice number must not be empty", domain.ErrValidation)
		}
		inv.InvoiceNumber = *input.InvoiceNumber
	}
	if input.Items != nil {
		items, err := buildItems(*input.Items)
		if err != nil {
			return nil, err
		}
		if len(items) == 0 {
			return nil, fmt.Errorf("%w: invoice requires at least one line item", domain.ErrValidation)
		}
		inv.Items = items
	}
	if input.Tax != nil {
		if input.Tax.IsNegative() {
			return nil, fmt.Errorf("%w: tax must not be negative", domain.ErrValidation)
		}
		inv.Tax = *input.Tax
	}
	if input.IssueDate != nil {
		inv.IssueDate = *input.IssueDate
	}
	if input.DueDate != nil {
		inv.DueDate = *input.DueDate
	}
	if input.Notes != nil {
		inv.Notes = *input.Notes
	}

	// The repository rederives totals against the stored payments under a
	// row lock, so an edit racing a payment write cannot lose either side.
	if err := s.invoiceRepo.Update(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

func (s *invoiceService) SetStatus(ctx context.Context, id uuid.UUID, status domain.InvoiceStatus) (*domain.Invoice, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrValidation, status)
	}
	return s.invoiceRepo.SetStatus(ctx, id, status)
}

func (s *invoiceService) AddPayment(ctx context.Context, invoiceID uuid.UUID, input PaymentInput) (*domain.Invoice, error) {
	if !input.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: payment amount must be positive", domain.ErrValidation)
	}
	if !input.Method.Valid() {
		return nil, fmt.Errorf("%w: unknown payment method %q", domain.ErrValidation, input.Method)
	}

	paidAt := time.Now().UTC()
	if input.PaidAt != nil {
		paidAt = *input.PaidAt
	}

	payment := &domain.Payment{
		ID:             uuid.New(),
		Amount:         input.Amount,
		Method:         input.Method,
		PaidAt:         paidAt,
		TransactionRef: input.TransactionRef,
		Note:           input.Note,
		RecordedBy:     input.RecordedBy,
	}

	inv, err := s.invoiceRepo.AddPayment(ctx, invoiceID, payment)
	if err != nil {
		return nil, err
	}

	log.Printf("invoiceService.AddPayment: %s against invoice %s, balance %s",
		payment.Amount.StringFixed(2), inv.InvoiceNumber, inv.Balance.StringFixed(2))

	if client, err := s.clientRepo.GetByID(ctx, inv.ClientID); err == nil && client.ContactEmail != "" {
		if err := s.email.SendPaymentReceiptEmail(ctx, client.ContactEmail, client.Name,
			inv.InvoiceNumber, payment.Amount, inv.Balance); err != nil {
			log.Printf("invoiceService.AddPayment: receipt email failed for %s: %v", inv.InvoiceNumber, err)
		}
	}

	return inv, nil
}

func (s *invoiceService) RemovePayment(ctx context.Context, invoiceID, paymentID uuid.UUID) (*domain.Invoice, error) {
	return s.invoiceRepo.RemovePayment(ctx, invoiceID, paymentID)
}

func (s *invoiceService) Delete(ctx context.Context, id uuid.UUID) error {
	log.Printf("invoiceService.Delete: deleting invoice %s", id)
	return s.invoiceRepo.Delete(ctx, id)
}

// ExportRegister writes the full invoice register as an .xlsx workbook.
func (s *invoiceService) ExportRegister(ctx context.Context, w io.Writer) error {
	var all []domain.Invoice
	offset := 0
	const page = 500
	for {
		batch, _, err := s.invoiceRepo.List(ctx, port.InvoiceFilter{}, offset, page)
		if err != nil {
			return err
		}
		all = append(all, batch...)
		if len(batch) < page {
			break
		}
		offset += page
	}

	names := map[string]string{}
	clients, _, err := s.clientRepo.List(ctx, 0, 10000)
	if err != nil {
		return err
	}
	for _, c := range clients {
		names[c.ID.String()] = c.Name
	}

	return export.WriteRegister(w, all, names)
}

// buildItems validates item inputs and computes per-line amounts.
func buildItems(inputs []InvoiceItemInput) ([]domain.InvoiceItem, error) {
	items := make([]domain.InvoiceItem, 0, len(inputs))
	for i, in := range inputs {
		if in.Name == "" {
			return nil, fmt.Errorf("%w: item %d is missing a name", domain.ErrValidation, i+1)
		}
		if in.Quantity.IsNegative() || in.UnitPrice.IsNegative() {
			return nil, fmt.Errorf("%w: item %d has a negative quantity or price", domain.ErrValidation, i+1)
		}
		items = append(items, domain.InvoiceItem{
			ID:        uuid.New(),
			Position:  i,
			Name:      in.Name,
			Quantity:  in.Quantity,
			UnitPrice: in.UnitPrice,
			Amount:    domain.ItemAmount(in.Quantity, in.UnitPrice),
		})
	}
	return items, nil
}

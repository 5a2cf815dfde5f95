package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"cadesk/internal/domain"
	"cadesk/internal/port"
	"cadesk/internal/service"
	"cadesk/mocks"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func newInvoiceService(t *testing.T) (service.InvoiceService, *mocks.MockInvoiceRepo, *mocks.MockClientRepo, *mocks.MockEmailSender) {
	t.Helper()
	invoiceRepo := new(mocks.MockInvoiceRepo)
	clientRepo := new(mocks.MockClientRepo)
	email := new(mocks.MockEmailSender)
	return service.NewInvoiceService(invoiceRepo, clientRepo, email), invoiceRepo, clientRepo, email
}

func staffPrincipal() domain.Principal {
	return domain.Principal{UserID: uuid.New(), Role: domain.RoleStaff}
}

func clientPrincipal(clientID uuid.UUID) domain.Principal {
	return domain.Principal{UserID: uuid.New(), Role: domain.RoleClient, ClientID: &clientID}
}

func TestInvoiceCreate_DerivesTotalsAndPendingStatus(t *testing.T) {
	svc, invoiceRepo, clientRepo, email := newInvoiceService(t)
	clientID := uuid.New()

	clientRepo.On("GetByID", mock.Anything, clientID).
		Return(&domain.Client{ID: clientID, Name: "Acme", ContactEmail: "a@acme.in"}, nil)
	invoiceRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Invoice")).Return(nil)
	email.On("SendInvoiceIssuedEmail", mock.Anything, "a@acme.in", "Acme",
		mock.AnythingOfType("string"), mock.Anything, mock.Anything).Return(nil)

	inv, err := svc.Create(context.Background(), service.CreateInvoiceInput{
		ClientID: clientID,
		Items: []service.InvoiceItemInput{
			{Name: "ITR filing", Quantity: dec("1"), UnitPrice: dec("1000")},
		},
		Tax:     decimal.Zero,
		DueDate: time.Now().AddDate(0, 1, 0),
	})
	require.NoError(t, err)

	assert.True(t, dec("1000").Equal(inv.Subtotal))
	assert.True(t, dec("1000").Equal(inv.Total))
	assert.True(t, decimal.Zero.Equal(inv.Paid))
	assert.True(t, dec("1000").Equal(inv.Balance))
	assert.Equal(t, domain.InvoiceStatusPending, inv.Status)
	assert.Regexp(t, `^INV-\d+$`, inv.InvoiceNumber)
	invoiceRepo.AssertExpectations(t)
}

func TestInvoiceCreate_KeepsProvidedInvoiceNumber(t *testing.T) {
	svc, invoiceRepo, clientRepo, _ := newInvoiceService(t)
	clientID := uuid.New()

	clientRepo.On("GetByID", mock.Anything, clientID).
		Return(&domain.Client{ID: clientID, Name: "Acme"}, nil)
	invoiceRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Invoice")).Return(nil)

	inv, err := svc.Create(context.Background(), service.CreateInvoiceInput{
		ClientID:      clientID,
		InvoiceNumber: "FY26-042",
		Items: []service.InvoiceItemInput{
			{Name: "GST return", Quantity: dec("1"), UnitPrice: dec("500")},
		},
		DueDate: time.Now().AddDate(0, 1, 0),
	})
	require.NoError(t, err)
	assert.Equal(t, "FY26-042", inv.InvoiceNumber)
}

func TestInvoiceCreate_RejectsEmptyItems(t *testing.T) {
	svc, _, _, _ := newInvoiceService(t)

	_, err := svc.Create(context.Background(), service.CreateInvoiceInput{
		ClientID: uuid.New(),
		Items:    []service.InvoiceItemInput{},
		DueDate:  time.Now(),
	})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestInvoiceCreate_RejectsNegativeValues(t *testing.T) {
	svc, _, _, _ := newInvoiceService(t)

	_, err := svc.Create(context.Background(), service.CreateInvoiceInput{
		ClientID: uuid.New(),
		Items: []service.InvoiceItemInput{
			{Name: "Audit", Quantity: dec("-1"), UnitPrice: dec("100")},
		},
		DueDate: time.Now(),
	})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.Create(context.Background(), service.CreateInvoiceInput{
		ClientID: uuid.New(),
		Items: []service.InvoiceItemInput{
			{Name: "Audit", Quantity: dec("1"), UnitPrice: dec("100")},
		},
		Tax:     dec("-10"),
		DueDate: time.Now(),
	})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestInvoiceCreate_EmailFailureDoesNotFailCreate(t *testing.T) {
	svc, invoiceRepo, clientRepo, email := newInvoiceService(t)
	clientID := uuid.New()

	clientRepo.On("GetByID", mock.Anything, clientID).
		Return(&domain.Client{ID: clientID, Name: "Acme", ContactEmail: "a@acme.in"}, nil)
	invoiceRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Invoice")).Return(nil)
	email.On("SendInvoiceIssuedEmail", mock.Anything, mock.Anything, mock.Anything,
		mock.Anything, mock.Anything, mock.Anything).Return(errors.New("ses down"))

	_, err := svc.Create(context.Background(), service.CreateInvoiceInput{
		ClientID: clientID,
		Items: []service.InvoiceItemInput{
			{Name: "ITR filing", Quantity: dec("1"), UnitPrice: dec("1000")},
		},
		DueDate: time.Now().AddDate(0, 1, 0),
	})
	assert.NoError(t, err)
}

func TestInvoiceGet_ClientCannotReadOthersInvoice(t *testing.T) {
	svc, invoiceRepo, _, _ := newInvoiceService(t)
	ownClient := uuid.New()
	otherClient := uuid.New()
	invoiceID := uuid.New()

	invoiceRepo.On("GetByID", mock.Anything, invoiceID).
		Return(&domain.Invoice{ID: invoiceID, ClientID: otherClient}, nil)

	_, err := svc.Get(context.Background(), clientPrincipal(ownClient), invoiceID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestInvoiceList_ClientFilterForcedToOwnClient(t *testing.T) {
	svc, invoiceRepo, _, _ := newInvoiceService(t)
	ownClient := uuid.New()
	otherClient := uuid.New()

	invoiceRepo.On("List", mock.Anything, mock.MatchedBy(func(f port.InvoiceFilter) bool {
		return f.ClientID != nil && *f.ClientID == ownClient
	}), 0, 20).Return([]domain.Invoice{}, 0, nil)

	// The client asks for someone else's invoices; the filter is overridden.
	_, _, err := svc.List(context.Background(), clientPrincipal(ownClient), &otherClient, 0, 20)
	require.NoError(t, err)
	invoiceRepo.AssertExpectations(t)
}

func TestInvoiceAddPayment_RejectsNonPositiveAmount(t *testing.T) {
	svc, _, _, _ := newInvoiceService(t)

	_, err := svc.AddPayment(context.Background(), uuid.New(), service.PaymentInput{
		Amount: decimal.Zero,
		Method: domain.PaymentMethodUPI,
	})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.AddPayment(context.Background(), uuid.New(), service.PaymentInput{
		Amount: dec("-50"),
		Method: domain.PaymentMethodCash,
	})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestInvoiceAddPayment_RejectsUnknownMethod(t *testing.T) {
	svc, _, _, _ := newInvoiceService(t)

	_, err := svc.AddPayment(context.Background(), uuid.New(), service.PaymentInput{
		Amount: dec("100"),
		Method: domain.PaymentMethod("crypto"),
	})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestInvoiceAddPayment_SendsReceipt(t *testing.T) {
	svc, invoiceRepo, clientRepo, email := newInvoiceService(t)
	invoiceID := uuid.New()
	clientID := uuid.New()

	updated := &domain.Invoice{
		ID:            invoiceID,
		ClientID:      clientID,
		InvoiceNumber: "INV-1",
		Paid:          dec("400"),
		Balance:       dec("600"),
		Status:        domain.InvoiceStatusPartial,
	}
	invoiceRepo.On("AddPayment", mock.Anything, invoiceID, mock.AnythingOfType("*domain.Payment")).
		Return(updated, nil)
	clientRepo.On("GetByID", mock.Anything, clientID).
		Return(&domain.Client{ID: clientID, Name: "Acme", ContactEmail: "a@acme.in"}, nil)
	email.On("SendPaymentReceiptEmail", mock.Anything, "a@acme.in", "Acme", "INV-1",
		mock.Anything, mock.Anything).Return(nil)

	inv, err := svc.AddPayment(context.Background(), invoiceID, service.PaymentInput{
		Amount: dec("400"),
		Method: domain.PaymentMethodBankTransfer,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatusPartial, inv.Status)
	email.AssertExpectations(t)
}

func TestInvoiceSetStatus_RejectsUnknownStatus(t *testing.T) {
	svc, _, _, _ := newInvoiceService(t)

	_, err := svc.SetStatus(context.Background(), uuid.New(), domain.InvoiceStatus("archived"))
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestInvoiceUpdate_ValidatesReplacementItems(t *testing.T) {
	svc, invoiceRepo, _, _ := newInvoiceService(t)
	invoiceID := uuid.New()

	invoiceRepo.On("GetByID", mock.Anything, invoiceID).
		Return(&domain.Invoice{ID: invoiceID, ClientID: uuid.New()}, nil)

	empty := []service.InvoiceItemInput{}
	_, err := svc.Update(context.Background(), invoiceID, service.UpdateInvoiceInput{Items: &empty})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestInvoiceRemovePayment_PropagatesNotFound(t *testing.T) {
	svc, invoiceRepo, _, _ := newInvoiceService(t)
	invoiceID := uuid.New()
	paymentID := uuid.New()

	invoiceRepo.On("RemovePayment", mock.Anything, invoiceID, paymentID).
		Return(nil, domain.ErrPaymentNotFound)

	_, err := svc.RemovePayment(context.Background(), invoiceID, paymentID)
	assert.ErrorIs(t, err, domain.ErrPaymentNotFound)
}

package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"cadesk/internal/domain"
	"cadesk/internal/service"
	"cadesk/mocks"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestCheckAccess_DeniesClientWithOverdueInvoice(t *testing.T) {
	now := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	clientID := uuid.New()
	invoiceRepo := new(mocks.MockInvoiceRepo)
	svc := service.NewAccessServiceAt(invoiceRepo, fixedClock(now))

	invoiceRepo.On("ListByClient", mock.Anything, clientID).Return([]domain.Invoice{
		{
			InvoiceNumber: "INV-1",
			Status:        domain.InvoiceStatusPartial,
			DueDate:       now.AddDate(0, 0, -1),
			Balance:       dec("600"),
		},
	}, nil)

	d, err := svc.CheckAccess(context.Background(), clientPrincipal(clientID), clientID)
	require.NoError(t, err)

	assert.False(t, d.Allowed)
	assert.Equal(t, 1, d.OverdueCount)
	assert.True(t, dec("600").Equal(d.TotalOutstanding))
}

func TestCheckAccess_GrantsBeforeDueDate(t *testing.T) {
	now := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	clientID := uuid.New()
	invoiceRepo := new(mocks.MockInvoiceRepo)
	svc := service.NewAccessServiceAt(invoiceRepo, fixedClock(now))

	invoiceRepo.On("ListByClient", mock.Anything, clientID).Return([]domain.Invoice{
		{
			InvoiceNumber: "INV-1",
			Status:        domain.InvoiceStatusPartial,
			DueDate:       now.AddDate(0, 0, 7),
			Balance:       dec("600"),
		},
	}, nil)

	d, err := svc.CheckAccess(context.Background(), clientPrincipal(clientID), clientID)
	require.NoError(t, err)

	assert.True(t, d.Allowed)
	assert.Equal(t, 1, d.UnpaidCount)
}

func TestCheckAccess_GrantsWithNoInvoices(t *testing.T) {
	clientID := uuid.New()
	invoiceRepo := new(mocks.MockInvoiceRepo)
	svc := service.NewAccessService(invoiceRepo)

	invoiceRepo.On("ListByClient", mock.Anything, clientID).Return([]domain.Invoice{}, nil)

	d, err := svc.CheckAccess(context.Background(), clientPrincipal(clientID), clientID)
	require.NoError(t, err)

	assert.True(t, d.Allowed)
	assert.Equal(t, 0, d.InvoiceCount)
}

func TestCheckAccess_ClientCannotQueryOtherClient(t *testing.T) {
	invoiceRepo := new(mocks.MockInvoiceRepo)
	svc := service.NewAccessService(invoiceRepo)

	_, err := svc.CheckAccess(context.Background(), clientPrincipal(uuid.New()), uuid.New())
	assert.ErrorIs(t, err, domain.ErrForbidden)
	invoiceRepo.AssertNotCalled(t, "ListByClient")
}

func TestCheckAccess_StaffAlwaysAllowedWithDiagnostics(t *testing.T) {
	now := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	clientID := uuid.New()
	invoiceRepo := new(mocks.MockInvoiceRepo)
	svc := service.NewAccessServiceAt(invoiceRepo, fixedClock(now))

	invoiceRepo.On("ListByClient", mock.Anything, clientID).Return([]domain.Invoice{
		{
			InvoiceNumber: "INV-1",
			Status:        domain.InvoiceStatusPending,
			DueDate:       now.AddDate(0, -1, 0),
			Balance:       dec("5000"),
		},
	}, nil)

	d, err := svc.CheckAccess(context.Background(), staffPrincipal(), clientID)
	require.NoError(t, err)

	// Staff pass the gate but still see the client's overdue exposure.
	assert.True(t, d.Allowed)
	assert.Equal(t, 1, d.OverdueCount)
	assert.True(t, dec("5000").Equal(d.TotalOutstanding))
}

func TestCheckAccess_Idempotent(t *testing.T) {
	now := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	clientID := uuid.New()
	invoiceRepo := new(mocks.MockInvoiceRepo)
	svc := service.NewAccessServiceAt(invoiceRepo, fixedClock(now))

	invoices := []domain.Invoice{
		{
			InvoiceNumber: "INV-1",
			Status:        domain.InvoiceStatusPending,
			DueDate:       now.AddDate(0, 0, -3),
			Balance:       dec("900"),
		},
	}
	invoiceRepo.On("ListByClient", mock.Anything, clientID).Return(invoices, nil)

	first, err := svc.CheckAccess(context.Background(), clientPrincipal(clientID), clientID)
	require.NoError(t, err)
	second, err := svc.CheckAccess(context.Background(), clientPrincipal(clientID), clientID)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

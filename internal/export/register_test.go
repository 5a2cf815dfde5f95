package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"cadesk/internal/domain"
)

func TestWriteRegister(t *testing.T) {
	clientID := uuid.New()
	invoices := []domain.Invoice{
		{
			InvoiceNumber: "INV-1700000000000",
			ClientID:      clientID,
			IssueDate:     time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC),
			DueDate:       time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC),
			Subtotal:      decimal.RequireFromString("1000"),
			Tax:           decimal.RequireFromString("180"),
			Total:         decimal.RequireFromString("1180"),
			Paid:          decimal.RequireFromString("400"),
			Balance:       decimal.RequireFromString("780"),
			Status:        domain.InvoiceStatusPartial,
			Notes:         "ITR FY25-26",
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteRegister(&buf, invoices, map[string]string{clientID.String(): "Acme Pvt Ltd"}))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(Sheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "Invoice Number", rows[0][0])
	assert.Equal(t, "Balance", rows[0][8])

	assert.Equal(t, "INV-1700000000000", rows[1][0])
	assert.Equal(t, "Acme Pvt Ltd", rows[1][1])
	assert.Equal(t, "2026-02-10", rows[1][3])
	assert.Equal(t, "780.00", rows[1][8])
	assert.Equal(t, "partial", rows[1][9])
}

func TestWriteRegister_UnknownClientFallsBackToID(t *testing.T) {
	clientID := uuid.New()
	invoices := []domain.Invoice{{InvoiceNumber: "INV-1", ClientID: clientID}}

	var buf bytes.Buffer
	require.NoError(t, WriteRegister(&buf, invoices, nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(Sheet)
	require.NoError(t, err)
	assert.Equal(t, clientID.String(), rows[1][1])
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "Invoice_Register_2026", SanitizeFilename("Invoice Register / 2026!!"))
	assert.Equal(t, "report", SanitizeFilename("__report__"))
}

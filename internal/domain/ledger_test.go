package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func item(qty, price string) InvoiceItem {
	return InvoiceItem{Quantity: dec(qty), UnitPrice: dec(price)}
}

func payment(amount string) Payment {
	return Payment{Amount: dec(amount)}
}

func TestItemAmount(t *testing.T) {
	assert.True(t, dec("250").Equal(ItemAmount(dec("2.5"), dec("100"))))
	assert.True(t, decimal.Zero.Equal(ItemAmount(dec("0"), dec("100"))))
}

func TestDeriveTotals_NoPayments(t *testing.T) {
	// total=1000, tax=0, no payments
	got := DeriveTotals([]InvoiceItem{item("1", "1000")}, decimal.Zero, nil, InvoiceStatusPending)

	assert.True(t, dec("1000").Equal(got.Subtotal))
	assert.True(t, dec("1000").Equal(got.Total))
	assert.True(t, decimal.Zero.Equal(got.Paid))
	assert.True(t, dec("1000").Equal(got.Balance))
	assert.Equal(t, InvoiceStatusPending, got.Status)
}

func TestDeriveTotals_PartialPayment(t *testing.T) {
	got := DeriveTotals([]InvoiceItem{item("1", "1000")}, decimal.Zero,
		[]Payment{payment("400")}, InvoiceStatusPending)

	assert.True(t, dec("400").Equal(got.Paid))
	assert.True(t, dec("600").Equal(got.Balance))
	assert.Equal(t, InvoiceStatusPartial, got.Status)
}

func TestDeriveTotals_FullPayment(t *testing.T) {
	got := DeriveTotals([]InvoiceItem{item("1", "1000")}, decimal.Zero,
		[]Payment{payment("400"), payment("600")}, InvoiceStatusPartial)

	assert.True(t, dec("1000").Equal(got.Paid))
	assert.True(t, decimal.Zero.Equal(got.Balance))
	assert.Equal(t, InvoiceStatusPaid, got.Status)
}

func TestDeriveTotals_TaxAddedFlat(t *testing.T) {
	got := DeriveTotals([]InvoiceItem{item("2", "500")}, dec("180"), nil, InvoiceStatusPending)

	assert.True(t, dec("1000").Equal(got.Subtotal))
	assert.True(t, dec("1180").Equal(got.Total))
	assert.True(t, dec("1180").Equal(got.Balance))
}

func TestDeriveTotals_OverpaymentClampsBalance(t *testing.T) {
	got := DeriveTotals([]InvoiceItem{item("1", "1000")}, decimal.Zero,
		[]Payment{payment("1500")}, InvoiceStatusPending)

	assert.True(t, dec("1500").Equal(got.Paid))
	assert.True(t, decimal.Zero.Equal(got.Balance))
	assert.Equal(t, InvoiceStatusPaid, got.Status)
}

func TestDeriveTotals_PaidIsAlwaysSumOfPayments(t *testing.T) {
	payments := []Payment{payment("100"), payment("250.50"), payment("0.50")}
	got := DeriveTotals([]InvoiceItem{item("1", "1000")}, decimal.Zero, payments, InvoiceStatusPartial)

	assert.True(t, dec("351").Equal(got.Paid))
}

func TestDeriveTotals_CancelledIsSticky(t *testing.T) {
	// Payments keep accumulating but status stays CANCELLED until an explicit
	// override changes it.
	got := DeriveTotals([]InvoiceItem{item("1", "1000")}, decimal.Zero,
		[]Payment{payment("1000")}, InvoiceStatusCancelled)

	assert.Equal(t, InvoiceStatusCancelled, got.Status)
	assert.True(t, dec("1000").Equal(got.Paid))
	assert.True(t, decimal.Zero.Equal(got.Balance))
}

func TestDeriveTotals_UncancelRederives(t *testing.T) {
	// Once current status is no longer CANCELLED the normal derivation applies.
	got := DeriveTotals([]InvoiceItem{item("1", "1000")}, decimal.Zero,
		[]Payment{payment("400")}, InvoiceStatusPending)

	assert.Equal(t, InvoiceStatusPartial, got.Status)
}

func TestDeriveTotals_RemoveThenReAddRestoresState(t *testing.T) {
	items := []InvoiceItem{item("1", "1000")}
	payments := []Payment{payment("400"), payment("250")}

	before := DeriveTotals(items, decimal.Zero, payments, InvoiceStatusPartial)
	without := DeriveTotals(items, decimal.Zero, payments[:1], before.Status)
	after := DeriveTotals(items, decimal.Zero, payments, without.Status)

	assert.True(t, before.Paid.Equal(after.Paid))
	assert.True(t, before.Balance.Equal(after.Balance))
	assert.Equal(t, before.Status, after.Status)
}

func TestDeriveTotals_EmptyInvoice(t *testing.T) {
	got := DeriveTotals(nil, decimal.Zero, nil, InvoiceStatusPending)

	assert.True(t, decimal.Zero.Equal(got.Total))
	assert.Equal(t, InvoiceStatusPending, got.Status)
}

func overdueInvoice(number string, status InvoiceStatus, due time.Time, balance string) Invoice {
	return Invoice{
		InvoiceNumber: number,
		Status:        status,
		DueDate:       due,
		Balance:       dec(balance),
	}
}

func TestDecideAccess_DeniesOnOverdueUnpaid(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	yesterday := now.AddDate(0, 0, -1)

	d := DecideAccess([]Invoice{
		overdueInvoice("INV-1", InvoiceStatusPartial, yesterday, "600"),
	}, now)

	assert.False(t, d.Allowed)
	assert.Equal(t, 1, d.InvoiceCount)
	assert.Equal(t, 1, d.UnpaidCount)
	assert.Equal(t, 1, d.OverdueCount)
	assert.True(t, dec("600").Equal(d.TotalOutstanding))
	assert.Len(t, d.OverdueInvoices, 1)
	assert.Equal(t, "INV-1", d.OverdueInvoices[0].InvoiceNumber)
}

func TestDecideAccess_GrantsWhenNotYetDue(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	nextWeek := now.AddDate(0, 0, 7)

	d := DecideAccess([]Invoice{
		overdueInvoice("INV-1", InvoiceStatusPartial, nextWeek, "600"),
	}, now)

	assert.True(t, d.Allowed)
	assert.Equal(t, 1, d.UnpaidCount)
	assert.Equal(t, 0, d.OverdueCount)
}

func TestDecideAccess_GrantsWithNoInvoices(t *testing.T) {
	d := DecideAccess(nil, time.Now())

	assert.True(t, d.Allowed)
	assert.Equal(t, 0, d.InvoiceCount)
	assert.Equal(t, 0, d.OverdueCount)
}

func TestDecideAccess_IgnoresPaidAndCancelled(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	longOverdue := now.AddDate(0, -2, 0)

	d := DecideAccess([]Invoice{
		overdueInvoice("INV-1", InvoiceStatusPaid, longOverdue, "0"),
		overdueInvoice("INV-2", InvoiceStatusCancelled, longOverdue, "500"),
	}, now)

	assert.True(t, d.Allowed)
	assert.Equal(t, 2, d.InvoiceCount)
	assert.Equal(t, 0, d.UnpaidCount)
}

func TestDecideAccess_SumsOnlyOverdueBalances(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	d := DecideAccess([]Invoice{
		overdueInvoice("INV-1", InvoiceStatusPending, now.AddDate(0, 0, -10), "1000"),
		overdueInvoice("INV-2", InvoiceStatusPartial, now.AddDate(0, 0, -1), "250"),
		overdueInvoice("INV-3", InvoiceStatusPending, now.AddDate(0, 0, 5), "400"),
	}, now)

	assert.False(t, d.Allowed)
	assert.Equal(t, 3, d.UnpaidCount)
	assert.Equal(t, 2, d.OverdueCount)
	assert.True(t, dec("1250").Equal(d.TotalOutstanding))
}

func TestDecideAccess_Idempotent(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	invoices := []Invoice{
		overdueInvoice("INV-1", InvoiceStatusPending, now.AddDate(0, 0, -3), "900"),
	}

	first := DecideAccess(invoices, now)
	second := DecideAccess(invoices, now)

	assert.Equal(t, first, second)
}

package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Totals is the full derived monetary state of an invoice.
type Totals struct {
	Subtotal decimal.Decimal
	Total    decimal.Decimal
	Paid     decimal.Decimal
	Balance  decimal.Decimal
	Status   InvoiceStatus
}

// ItemAmount returns quantity × unit price for a line item.
func ItemAmount(quantity, unitPrice decimal.Decimal) decimal.Decimal {
	return quantity.Mul(unitPrice)
}

// DeriveTotals recomputes the derived state of an invoice from its items,
// flat tax, and full payment list. Every mutating operation calls this before
// persisting; there are no persistence-layer hooks.
//
// Invariants enforced:
//   - paid is always the sum of the payment amounts, never carried forward
//   - balance = total − paid, clamped to zero on overpayment
//   - paid == 0 → PENDING; 0 < paid < total → PARTIAL; paid >= total → PAID
//   - CANCELLED is sticky: when current is CANCELLED the derivation leaves
//     status untouched, and only an explicit status override resumes it
func DeriveTotals(items []InvoiceItem, tax decimal.Decimal, payments []Payment, current InvoiceStatus) Totals {
	subtotal := decimal.Zero
	for _, it := range items {
		subtotal = subtotal.Add(ItemAmount(it.Quantity, it.UnitPrice))
	}
	total := subtotal.Add(tax)

	paid := decimal.Zero
	for _, p := range payments {
		paid = paid.Add(p.Amount)
	}

	balance := total.Sub(paid)
	if balance.IsNegative() {
		balance = decimal.Zero
	}

	status := current
	if current != InvoiceStatusCancelled {
		switch {
		case paid.IsZero():
			status = InvoiceStatusPending
		case paid.LessThan(total):
			status = InvoiceStatusPartial
		default:
			status = InvoiceStatusPaid
		}
	}

	return Totals{
		Subtotal: subtotal,
		Total:    total,
		Paid:     paid,
		Balance:  balance,
		Status:   status,
	}
}

// DecideAccess computes the file-access gate decision for a client's full
// invoice set at the given instant. It is a pure function of its inputs;
// access is denied only when at least one invoice is both unpaid
// (PENDING/PARTIAL) and past its due date.
func DecideAccess(invoices []Invoice, now time.Time) AccessDecision {
	d := AccessDecision{
		Allowed:          true,
		InvoiceCount:     len(invoices),
		TotalOutstanding: decimal.Zero,
	}
	for _, inv := range invoices {
		if !inv.Status.IsOpen() {
			continue
		}
		d.UnpaidCount++
		if inv.DueDate.Before(now) {
			d.OverdueCount++
			d.TotalOutstanding = d.TotalOutstanding.Add(inv.Balance)
			d.OverdueInvoices = append(d.OverdueInvoices, OverdueInvoice{
				InvoiceNumber: inv.InvoiceNumber,
				DueDate:       inv.DueDate,
				Balance:       inv.Balance,
			})
		}
	}
	d.Allowed = d.OverdueCount == 0
	return d
}

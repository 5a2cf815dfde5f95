package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"

	"cadesk/internal/domain"
	"cadesk/internal/port"
)

const pgUniqueViolation = "23505"

type invoiceRepo struct {
	db *sqlx.DB
}

// NewInvoiceRepo creates a new PostgreSQL-backed InvoiceRepository.
func NewInvoiceRepo(db *sqlx.DB) port.InvoiceRepository {
	return &invoiceRepo{db: db}
}

// isUniqueViolation reports whether err is a Postgres unique-constraint error.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

func (r *invoiceRepo) Create(ctx context.Context, inv *domain.Invoice) error {
	now := time.Now().UTC()
	inv.CreatedAt = now
	inv.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("invoiceRepo.Create begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO invoices
		 (id, client_id, invoice_number, subtotal, tax, total, paid, balance, status,
		  issue_date, due_date, notes, created_by, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		inv.ID, inv.ClientID, inv.InvoiceNumber, inv.Subtotal, inv.Tax, inv.Total,
		inv.Paid, inv.Balance, inv.Status, inv.IssueDate, inv.DueDate, inv.Notes,
		inv.CreatedBy, inv.CreatedAt, inv.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateInvoiceNumber
		}
		return fmt.Errorf("invoiceRepo.Create: %w", err)
	}

	if err := insertItems(ctx, tx, inv.ID, inv.Items); err != nil {
		return fmt.Errorf("invoiceRepo.Create items: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("invoiceRepo.Create commit: %w", err)
	}
	return nil
}

func (r *invoiceRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Invoice, error) {
	var inv domain.Invoice
	err := r.db.GetContext(ctx, &inv, "SELECT * FROM invoices WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("invoiceRepo.GetByID: %w", err)
	}

	if err := r.db.SelectContext(ctx, &inv.Items,
		"SELECT * FROM invoice_items WHERE invoice_id = $1 ORDER BY position", id); err != nil {
		return nil, fmt.Errorf("invoiceRepo.GetByID items: %w", err)
	}
	if err := r.db.SelectContext(ctx, &inv.Payments,
		"SELECT * FROM invoice_payments WHERE invoice_id = $1 ORDER BY paid_at, created_at", id); err != nil {
		return nil, fmt.Errorf("invoiceRepo.GetByID payments: %w", err)
	}
	return &inv, nil
}

// List returns invoice rows (derived columns only, no items or payments),
// newest-created first.
func (r *invoiceRepo) List(ctx context.Context, filter port.InvoiceFilter, offset, limit int) ([]domain.Invoice, int, error) {
	where := "WHERE 1=1"
	args := []interface{}{}
	if filter.ClientID != nil {
		args = append(args, *filter.ClientID)
		where += fmt.Sprintf(" AND client_id = $%d", len(args))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		where += fmt.Sprintf(" AND status = $%d", len(args))
	}

	var total int
	if err := r.db.GetContext(ctx, &total,
		"SELECT COUNT(*) FROM invoices "+where, args...); err != nil {
		return nil, 0, fmt.Errorf("invoiceRepo.List count: %w", err)
	}

	args = append(args, limit, offset)
	query := fmt.Sprintf(
		"SELECT * FROM invoices %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		where, len(args)-1, len(args))

	var invoices []domain.Invoice
	if err := r.db.SelectContext(ctx, &invoices, query, args...); err != nil {
		return nil, 0, fmt.Errorf("invoiceRepo.List: %w", err)
	}
	return invoices, total, nil
}

// ListByClient returns every invoice row for a client, for the access gate.
func (r *invoiceRepo) ListByClient(ctx context.Context, clientID uuid.UUID) ([]domain.Invoice, error) {
	var invoices []domain.Invoice
	err := r.db.SelectContext(ctx, &invoices,
		"SELECT * FROM invoices WHERE client_id = $1 ORDER BY created_at DESC", clientID)
	if err != nil {
		return nil, fmt.Errorf("invoiceRepo.ListByClient: %w", err)
	}
	return invoices, nil
}

// Update replaces the invoice's editable fields and line items, then
// rederives the monetary columns against the stored payment list. The whole
// operation runs under a row lock so it cannot race a payment write.
func (r *invoiceRepo) Update(ctx context.Context, inv *domain.Invoice) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("invoiceRepo.Update begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var current domain.InvoiceStatus
	err = tx.GetContext(ctx, &current,
		"SELECT status FROM invoices WHERE id = $1 FOR UPDATE", inv.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrInvoiceNotFound
		}
		return fmt.Errorf("invoiceRepo.Update lock: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM invoice_items WHERE invoice_id = $1", inv.ID); err != nil {
		return fmt.Errorf("invoiceRepo.Update clear items: %w", err)
	}
	if err := insertItems(ctx, tx, inv.ID, inv.Items); err != nil {
		return fmt.Errorf("invoiceRepo.Update items: %w", err)
	}

	payments, err := selectPayments(ctx, tx, inv.ID)
	if err != nil {
		return fmt.Errorf("invoiceRepo.Update payments: %w", err)
	}

	totals := domain.DeriveTotals(inv.Items, inv.Tax, payments, current)
	inv.Subtotal = totals.Subtotal
	inv.Total = totals.Total
	inv.Paid = totals.Paid
	inv.Balance = totals.Balance
	inv.Status = totals.Status
	inv.Payments = payments
	inv.UpdatedAt = time.Now().UTC()

	_, err = tx.ExecContext(ctx,
		`UPDATE invoices SET client_id = $1, invoice_number = $2, subtotal = $3, tax = $4,
		 total = $5, paid = $6, balance = $7, status = $8, issue_date = $9, due_date = $10,
		 notes = $11, updated_at = $12 WHERE id = $13`,
		inv.ClientID, inv.InvoiceNumber, inv.Subtotal, inv.Tax, inv.Total, inv.Paid,
		inv.Balance, inv.Status, inv.IssueDate, inv.DueDate, inv.Notes, inv.UpdatedAt, inv.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateInvoiceNumber
		}
		return fmt.Errorf("invoiceRepo.Update: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("invoiceRepo.Update commit: %w", err)
	}
	return nil
}

// SetStatus overrides the invoice status. Setting CANCELLED suppresses the
// automatic derivation; setting anything else hands control back to it, which
// may immediately replace the requested status with the derived one.
func (r *invoiceRepo) SetStatus(ctx context.Context, id uuid.UUID, status domain.InvoiceStatus) (*domain.Invoice, error) {
	return r.withInvoiceTx(ctx, id, func(ctx context.Context, tx *sqlx.Tx, inv *domain.Invoice) error {
		totals := domain.DeriveTotals(inv.Items, inv.Tax, inv.Payments, status)
		return updateDerived(ctx, tx, inv, totals)
	})
}

// AddPayment appends a payment and rederives the invoice inside a single
// transaction. The row lock taken by withInvoiceTx serializes concurrent
// appends against the same invoice.
func (r *invoiceRepo) AddPayment(ctx context.Context, invoiceID uuid.UUID, p *domain.Payment) (*domain.Invoice, error) {
	return r.withInvoiceTx(ctx, invoiceID, func(ctx context.Context, tx *sqlx.Tx, inv *domain.Invoice) error {
		p.InvoiceID = invoiceID
		p.CreatedAt = time.Now().UTC()
		_, err := tx.ExecContext(ctx,
			`INSERT INTO invoice_payments
			 (id, invoice_id, amount, method, paid_at, transaction_ref, note, recorded_by, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			p.ID, p.InvoiceID, p.Amount, p.Method, p.PaidAt, p.TransactionRef,
			p.Note, p.RecordedBy, p.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert payment: %w", err)
		}
		inv.Payments = append(inv.Payments, *p)
		totals := domain.DeriveTotals(inv.Items, inv.Tax, inv.Payments, inv.Status)
		return updateDerived(ctx, tx, inv, totals)
	})
}

// RemovePayment deletes one payment and recomputes from the remaining set —
// a full rederivation, never a reverse-delta.
func (r *invoiceRepo) RemovePayment(ctx context.Context, invoiceID, paymentID uuid.UUID) (*domain.Invoice, error) {
	return r.withInvoiceTx(ctx, invoiceID, func(ctx context.Context, tx *sqlx.Tx, inv *domain.Invoice) error {
		res, err := tx.ExecContext(ctx,
			"DELETE FROM invoice_payments WHERE id = $1 AND invoice_id = $2", paymentID, invoiceID)
		if err != nil {
			return fmt.Errorf("delete payment: %w", err)
		}
		rows, _ := res.RowsAffected()
		if rows == 0 {
			return domain.ErrPaymentNotFound
		}

		remaining := inv.Payments[:0]
		for _, p := range inv.Payments {
			if p.ID != paymentID {
				remaining = append(remaining, p)
			}
		}
		inv.Payments = remaining
		totals := domain.DeriveTotals(inv.Items, inv.Tax, inv.Payments, inv.Status)
		return updateDerived(ctx, tx, inv, totals)
	})
}

func (r *invoiceRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM invoices WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("invoiceRepo.Delete: %w", err)
	}
	rows, _ := res.RowsAffected()
	if rows == 0 {
		return domain.ErrInvoiceNotFound
	}
	return nil
}

// RederiveAll recomputes the derived columns of every invoice. Used by the
// backfill command to repair drift in data written before the ledger owned
// the derivation.
func (r *invoiceRepo) RederiveAll(ctx context.Context) (int, error) {
	var ids []uuid.UUID
	if err := r.db.SelectContext(ctx, &ids, "SELECT id FROM invoices ORDER BY created_at"); err != nil {
		return 0, fmt.Errorf("invoiceRepo.RederiveAll list: %w", err)
	}

	count := 0
	for _, id := range ids {
		_, err := r.withInvoiceTx(ctx, id, func(ctx context.Context, tx *sqlx.Tx, inv *domain.Invoice) error {
			totals := domain.DeriveTotals(inv.Items, inv.Tax, inv.Payments, inv.Status)
			return updateDerived(ctx, tx, inv, totals)
		})
		if err != nil {
			return count, fmt.Errorf("invoiceRepo.RederiveAll %s: %w", id, err)
		}
		count++
	}
	return count, nil
}

// withInvoiceTx locks the invoice row, loads its items and payments, runs fn,
// and commits. fn mutates inv; the committed invoice is returned.
func (r *invoiceRepo) withInvoiceTx(ctx context.Context, id uuid.UUID, fn func(context.Context, *sqlx.Tx, *domain.Invoice) error) (*domain.Invoice, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("invoiceRepo tx begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var inv domain.Invoice
	err = tx.GetContext(ctx, &inv, "SELECT * FROM invoices WHERE id = $1 FOR UPDATE", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("invoiceRepo tx lock: %w", err)
	}

	if err := tx.SelectContext(ctx, &inv.Items,
		"SELECT * FROM invoice_items WHERE invoice_id = $1 ORDER BY position", id); err != nil {
		return nil, fmt.Errorf("invoiceRepo tx items: %w", err)
	}
	inv.Payments, err = selectPayments(ctx, tx, id)
	if err != nil {
		return nil, fmt.Errorf("invoiceRepo tx payments: %w", err)
	}

	if err := fn(ctx, tx, &inv); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("invoiceRepo tx commit: %w", err)
	}
	return &inv, nil
}

// updateDerived writes the derived monetary columns back to the locked row
// and mirrors them onto inv.
func updateDerived(ctx context.Context, tx *sqlx.Tx, inv *domain.Invoice, totals domain.Totals) error {
	inv.Subtotal = totals.Subtotal
	inv.Total = totals.Total
	inv.Paid = totals.Paid
	inv.Balance = totals.Balance
	inv.Status = totals.Status
	inv.UpdatedAt = time.Now().UTC()

	_, err := tx.ExecContext(ctx,
		`UPDATE invoices SET subtotal = $1, total = $2, paid = $3, balance = $4,
		 status = $5, updated_at = $6 WHERE id = $7`,
		inv.Subtotal, inv.Total, inv.Paid, inv.Balance, inv.Status, inv.UpdatedAt, inv.ID)
	if err != nil {
		return fmt.Errorf("update derived columns: %w", err)
	}
	return nil
}

func insertItems(ctx context.Context, tx *sqlx.Tx, invoiceID uuid.UUID, items []domain.InvoiceItem) error {
	for i := range items {
		it := &items[i]
		it.InvoiceID = invoiceID
		it.Position = i
		_, err := tx.ExecContext(ctx,
			`INSERT INTO invoice_items (id, invoice_id, position, name, quantity, unit_price, amount)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			it.ID, it.InvoiceID, it.Position, it.Name, it.Quantity, it.UnitPrice, it.Amount)
		if err != nil {
			return err
		}
	}
	return nil
}

func selectPayments(ctx context.Context, tx *sqlx.Tx, invoiceID uuid.UUID) ([]domain.Payment, error) {
	var payments []domain.Payment
	err := tx.SelectContext(ctx, &payments,
		"SELECT * FROM invoice_payments WHERE invoice_id = $1 ORDER BY paid_at, created_at", invoiceID)
	return payments, err
}

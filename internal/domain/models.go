package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Client represents a client of the office. Clients own documents and
// invoices; client-role users are linked to exactly one client.
type Client struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	ContactEmail string    `db:"contact_email" json:"contact_email"`
	ContactPhone string    `db:"contact_phone" json:"contact_phone"`
	GSTIN        string    `db:"gstin" json:"gstin"`
	PAN          string    `db:"pan" json:"pan"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// User represents an authenticated portal user. ClientID is set only for
// CLIENT-role users.
type User struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	ClientID     *uuid.UUID `db:"client_id" json:"client_id,omitempty"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	FullName     string     `db:"full_name" json:"full_name"`
	Role         UserRole   `db:"role" json:"role"`
	IsActive     bool       `db:"is_active" json:"is_active"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// Principal is the authenticated identity attached to every request.
type Principal struct {
	UserID   uuid.UUID  `json:"user_id"`
	Role     UserRole   `json:"role"`
	ClientID *uuid.UUID `json:"client_id,omitempty"`
}

// OwnClient returns the client id a CLIENT principal is bound to, or
// uuid.Nil for staff.
func (p Principal) OwnClient() uuid.UUID {
	if p.ClientID != nil {
		return *p.ClientID
	}
	return uuid.Nil
}

// Invoice represents a billable document issued to a client. The monetary
// columns subtotal/total/paid/balance and the status are derived; they are
// written only from DeriveTotals output, never set independently.
type Invoice struct {
	ID            uuid.UUID     `db:"id" json:"id"`
	ClientID      uuid.UUID     `db:"client_id" json:"client_id"`
	InvoiceNumber string        `db:"invoice_number" json:"invoice_number"`
	Subtotal      decimal.Decimal `db:"subtotal" json:"subtotal"`
	Tax           decimal.Decimal `db:"tax" json:"tax"`
	Total         decimal.Decimal `db:"total" json:"total"`
	Paid          decimal.Decimal `db:"paid" json:"paid"`
	Balance       decimal.Decimal `db:"balance" json:"balance"`
	Status        InvoiceStatus `db:"status" json:"status"`
	IssueDate     time.Time     `db:"issue_date" json:"issue_date"`
	DueDate       time.Time     `db:"due_date" json:"due_date"`
	Notes         string        `db:"notes" json:"notes"`
	CreatedBy     uuid.UUID     `db:"created_by" json:"created_by"`
	CreatedAt     time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time     `db:"updated_at" json:"updated_at"`

	Items    []InvoiceItem `db:"-" json:"items"`
	Payments []Payment     `db:"-" json:"payments"`
}

// InvoiceItem is one line of an invoice. Amount is always quantity × unit
// price, computed at write time.
type InvoiceItem struct {
	ID        uuid.UUID       `db:"id" json:"id"`
	InvoiceID uuid.UUID       `db:"invoice_id" json:"invoice_id"`
	Position  int             `db:"position" json:"position"`
	Name      string          `db:"name" json:"name"`
	Quantity  decimal.Decimal `db:"quantity" json:"quantity"`
	UnitPrice decimal.Decimal `db:"unit_price" json:"unit_price"`
	Amount    decimal.Decimal `db:"amount" json:"amount"`
}

// Payment is a payment recorded against an invoice.
type Payment struct {
	ID             uuid.UUID       `db:"id" json:"id"`
	InvoiceID      uuid.UUID       `db:"invoice_id" json:"invoice_id"`
	Amount         decimal.Decimal `db:"amount" json:"amount"`
	Method         PaymentMethod   `db:"method" json:"method"`
	PaidAt         time.Time       `db:"paid_at" json:"paid_at"`
	TransactionRef string          `db:"transaction_ref" json:"transaction_ref"`
	Note           string          `db:"note" json:"note"`
	RecordedBy     uuid.UUID       `db:"recorded_by" json:"recorded_by"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
}

// FileMeta stores metadata about an uploaded client document.
type FileMeta struct {
	ID           uuid.UUID    `db:"id" json:"id"`
	ClientID     uuid.UUID    `db:"client_id" json:"client_id"`
	UploadedBy   uuid.UUID    `db:"uploaded_by" json:"uploaded_by"`
	FileName     string       `db:"file_name" json:"file_name"`
	OriginalName string       `db:"original_name" json:"original_name"`
	FileType     FileType     `db:"file_type" json:"file_type"`
	FileSize     int64        `db:"file_size" json:"file_size"`
	S3Bucket     string       `db:"s3_bucket" json:"s3_bucket"`
	S3Key        string       `db:"s3_key" json:"s3_key"`
	ContentType  string       `db:"content_type" json:"content_type"`
	Category     FileCategory `db:"category" json:"category"`
	Starred      bool         `db:"starred" json:"starred"`
	Note         string       `db:"note" json:"note"`
	Status       FileStatus   `db:"status" json:"status"`
	CreatedAt    time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time    `db:"updated_at" json:"updated_at"`
}

// OverdueInvoice is one overdue entry inside an AccessDecision, shaped for
// display to the blocked client.
type OverdueInvoice struct {
	InvoiceNumber string          `json:"invoice_number"`
	DueDate       time.Time       `json:"due_date"`
	Balance       decimal.Decimal `json:"balance"`
}

// AccessDecision is the result of the file-access gate for one client. A
// denied decision is a normal negative result, not an error.
type AccessDecision struct {
	Allowed          bool             `json:"allowed"`
	InvoiceCount     int              `json:"invoice_count"`
	UnpaidCount      int              `json:"unpaid_count"`
	OverdueCount     int              `json:"overdue_count"`
	TotalOutstanding decimal.Decimal  `json:"total_outstanding"`
	OverdueInvoices  []OverdueInvoice `json:"overdue_invoices,omitempty"`
}

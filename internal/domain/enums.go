package domain

// UserRole defines the closed set of roles in the portal. Staff roles share
// office-wide access; CLIENT users are scoped to their own client record.
type UserRole string

const (
	RoleAdmin   UserRole = "admin"
	RoleManager UserRole = "manager"
	RoleStaff   UserRole = "staff"
	RoleIntern  UserRole = "intern"
	RoleClient  UserRole = "client"
)

// IsStaff reports whether the role is any of the office roles. This is the
// single staff predicate; role lists are never repeated at call sites.
func (r UserRole) IsStaff() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleStaff, RoleIntern:
		return true
	}
	return false
}

// Valid reports whether the role is a known role.
func (r UserRole) Valid() bool {
	return r.IsStaff() || r == RoleClient
}

// InvoiceStatus represents the lifecycle of an invoice.
type InvoiceStatus string

const (
	InvoiceStatusPending   InvoiceStatus = "pending"
	InvoiceStatusPartial   InvoiceStatus = "partial"
	InvoiceStatusPaid      InvoiceStatus = "paid"
	InvoiceStatusCancelled InvoiceStatus = "cancelled"
)

// IsOpen reports whether the invoice still carries an unpaid obligation.
// Cancelled and fully paid invoices are terminal for access-gating purposes.
func (s InvoiceStatus) IsOpen() bool {
	return s == InvoiceStatusPending || s == InvoiceStatusPartial
}

// Valid reports whether the status is a known status.
func (s InvoiceStatus) Valid() bool {
	switch s {
	case InvoiceStatusPending, InvoiceStatusPartial, InvoiceStatusPaid, InvoiceStatusCancelled:
		return true
	}
	return false
}

// PaymentMethod enumerates how a payment was received.
type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "cash"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
	PaymentMethodUPI          PaymentMethod = "upi"
	PaymentMethodCheque       PaymentMethod = "cheque"
	PaymentMethodOther        PaymentMethod = "other"
)

// Valid reports whether the method is a known payment method.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodBankTransfer, PaymentMethodUPI, PaymentMethodCheque, PaymentMethodOther:
		return true
	}
	return false
}

// FileType represents the allowed file types for upload.
type FileType string

const (
	FileTypePDF  FileType = "pdf"
	FileTypeJPG  FileType = "jpg"
	FileTypePNG  FileType = "png"
	FileTypeXLSX FileType = "xlsx"
)

// AllowedFileTypes maps FileType to its MIME content type.
var AllowedFileTypes = map[FileType]string{
	FileTypePDF:  "application/pdf",
	FileTypeJPG:  "image/jpeg",
	FileTypePNG:  "image/png",
	FileTypeXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

// AllowedContentTypes maps MIME content types back to FileType.
var AllowedContentTypes = map[string]FileType{
	"application/pdf": FileTypePDF,
	"image/jpeg":      FileTypeJPG,
	"image/png":       FileTypePNG,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": FileTypeXLSX,
	// xlsx files sniff as a generic zip under magic-byte detection
	"application/zip": FileTypeXLSX,
}

// AllowedExtensions maps file extensions (without dot) to FileType.
var AllowedExtensions = map[string]FileType{
	"pdf":  FileTypePDF,
	"jpg":  FileTypeJPG,
	"jpeg": FileTypeJPG,
	"png":  FileTypePNG,
	"xlsx": FileTypeXLSX,
}

// FileStatus represents the lifecycle of an uploaded file.
type FileStatus string

const (
	FileStatusPending  FileStatus = "pending"
	FileStatusUploaded FileStatus = "uploaded"
	FileStatusFailed   FileStatus = "failed"
	FileStatusDeleted  FileStatus = "deleted"
)

// FileCategory groups documents the way the office files them.
type FileCategory string

const (
	FileCategoryITR   FileCategory = "itr"
	FileCategoryGST   FileCategory = "gst"
	FileCategoryAudit FileCategory = "audit"
	FileCategoryOther FileCategory = "other"
)

// Valid reports whether the category is a known category.
func (c FileCategory) Valid() bool {
	switch c {
	case FileCategoryITR, FileCategoryGST, FileCategoryAudit, FileCategoryOther:
		return true
	}
	return false
}

package export

import (
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"cadesk/internal/domain"
)

// Sheet is the worksheet name of the invoice register workbook.
const Sheet = "Invoice Register"

var columns = []string{
	"Invoice Number",
	"Client",
	"Issue Date",
	"Due Date",
	"Subtotal",
	"Tax",
	"Total",
	"Paid",
	"Balance",
	"Status",
	"Notes",
}

// WriteRegister writes an .xlsx invoice register for the given invoices to w.
// clientNames maps client ids (as strings) to display names; unknown clients
// fall back to the raw id.
func WriteRegister(w io.Writer, invoices []domain.Invoice, clientNames map[string]string) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	index, err := f.NewSheet(Sheet)
	if err != nil {
		return fmt.Errorf("export: creating sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("export: removing default sheet: %w", err)
	}

	for col, name := range columns {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(Sheet, cell, name); err != nil {
			return fmt.Errorf("export: header: %w", err)
		}
	}

	for i, inv := range invoices {
		client := clientNames[inv.ClientID.String()]
		if client == "" {
			client = inv.ClientID.String()
		}
		row := []interface{}{
			inv.InvoiceNumber,
			client,
			inv.IssueDate.Format("2006-01-02"),
			inv.DueDate.Format("2006-01-02"),
			inv.Subtotal.StringFixed(2),
			inv.Tax.StringFixed(2),
			inv.Total.StringFixed(2),
			inv.Paid.StringFixed(2),
			inv.Balance.StringFixed(2),
			string(inv.Status),
			inv.Notes,
		}
		for col, val := range row {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			if err := f.SetCellValue(Sheet, cell, val); err != nil {
				return fmt.Errorf("export: row %d: %w", i+1, err)
			}
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("export: writing workbook: %w", err)
	}
	return nil
}

// nonAlphanumeric matches characters that are not alphanumeric, hyphen, or underscore.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename cleans a name for use in Content-Disposition. Replaces
// non-alphanumeric chars (except - _) with _, collapses consecutive
// underscores, and truncates to 100 chars.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}

// RegisterFilename returns a dated filename for the register download.
func RegisterFilename(prefix string) string {
	return fmt.Sprintf("%s_%s.xlsx", SanitizeFilename(prefix), time.Now().Format("2006-01-02"))
}

package workbook

import (
	"errors"
	"fmt"

	"github.com/rezonia/nfe-converter/internal/model"
)

var (
	errNilInvoice = errors.New("invoice is nil")
	errNoInvoices = errors.New("no valid invoices to export")
	errNoSheets   = errors.New("workbook has no sheets")
)

var accessKeyColumn = Column{Title: "Access Key", Width: 48}

// BuildConsolidated projects several invoices into one workbook. Each row
// of every sheet starts with the access key of the invoice it came from.
func BuildConsolidated(invoices []*model.Invoice) (*Workbook, error) {
	if len(invoices) == 0 {
		return nil, model.NewBuildError("workbook", errNoInvoices)
	}

	summary := Sheet{
		Name: SheetSummary,
		Columns: []Column{
			accessKeyColumn,
			{Title: "Number", Width: 12},
			{Title: "Series", Width: 8},
			{Title: "Issuer", Width: 36},
			{Title: "Issuer Tax ID", Width: 18},
			{Title: "Recipient", Width: 36},
			{Title: "Recipient Tax ID", Width: 18},
			{Title: "Issue Date", Width: 20},
			{Title: "Total Value", Width: 14, Format: FormatMoney},
			{Title: "Total ICMS", Width: 14, Format: FormatMoney},
		},
	}
	items := Sheet{Name: SheetItems, Columns: append([]Column{accessKeyColumn}, itemColumns...)}
	payments := Sheet{Name: SheetPayments, Columns: append([]Column{accessKeyColumn}, paymentColumns...)}

	for i, inv := range invoices {
		if inv == nil {
			return nil, model.NewBuildError("workbook", fmt.Errorf("invoice %d: %w", i, errNilInvoice))
		}

		summary.Rows = append(summary.Rows, []any{
			inv.AccessKey,
			inv.Number,
			inv.Series,
			inv.Issuer.Name,
			inv.Issuer.TaxID,
			inv.Recipient.Name,
			inv.Recipient.TaxID,
			inv.IssueDate,
			number(inv.TotalValue),
			number(inv.TotalTax),
		})
		for _, item := range inv.Items {
			items.Rows = append(items.Rows, append([]any{inv.AccessKey}, itemRow(item)...))
		}
		for _, p := range inv.Payments {
			payments.Rows = append(payments.Rows, append([]any{inv.AccessKey}, paymentRow(p)...))
		}
	}

	return &Workbook{Sheets: []Sheet{summary, items, payments}}, nil
}

// Package workbook projects extracted invoices into tabular sheets and
// writes them as xlsx files.
//
// Build is a pure function of its input: the same invoice always yields
// the same sheets, and the invoice is never modified.
package workbook

import (
	"github.com/shopspring/decimal"

	"github.com/rezonia/nfe-converter/internal/model"
)

// Sheet names, in workbook order
const (
	SheetSummary  = "Summary"
	SheetItems    = "Items"
	SheetPayments = "Payments"
)

// Format tells the xlsx writer how to render a column
type Format int

const (
	FormatText Format = iota
	FormatQuantity
	FormatMoney
)

// Column describes one sheet column
type Column struct {
	Title  string
	Width  float64
	Format Format
}

// Sheet is a flat table. Rows hold string or float64 values only, so
// numeric cells stay numeric in the spreadsheet.
type Sheet struct {
	Name    string
	Columns []Column
	Rows    [][]any
}

// Workbook is the ordered set of sheets produced for export
type Workbook struct {
	Sheets []Sheet
}

// Sheet returns the sheet with the given name, or nil
func (w *Workbook) Sheet(name string) *Sheet {
	for i := range w.Sheets {
		if w.Sheets[i].Name == name {
			return &w.Sheets[i]
		}
	}
	return nil
}

var itemColumns = []Column{
	{Title: "Item", Width: 8},
	{Title: "Code", Width: 16},
	{Title: "Description", Width: 40},
	{Title: "CFOP", Width: 8},
	{Title: "NCM", Width: 12},
	{Title: "Unit", Width: 8},
	{Title: "Quantity", Width: 12, Format: FormatQuantity},
	{Title: "Unit Value", Width: 14, Format: FormatMoney},
	{Title: "Line Total", Width: 14, Format: FormatMoney},
	{Title: "ICMS", Width: 12, Format: FormatMoney},
	{Title: "IPI", Width: 12, Format: FormatMoney},
}

var paymentColumns = []Column{
	{Title: "Method", Width: 20},
	{Title: "Amount", Width: 14, Format: FormatMoney},
}

// Build projects one invoice into the Summary, Items and Payments sheets.
// Sheets are always present, with zero data rows when the invoice has no
// items or payments.
func Build(inv *model.Invoice) (*Workbook, error) {
	if inv == nil {
		return nil, model.NewBuildError("workbook", errNilInvoice)
	}

	summary := Sheet{
		Name: SheetSummary,
		Columns: []Column{
			{Title: "Field", Width: 22},
			{Title: "Value", Width: 48, Format: FormatMoney},
		},
		Rows: [][]any{
			{"Access Key", inv.AccessKey},
			{"Number", inv.Number},
			{"Series", inv.Series},
			{"Issue Date", inv.IssueDate},
			{"Issuer", inv.Issuer.Name},
			{"Issuer Tax ID", inv.Issuer.TaxID},
			{"Recipient", inv.Recipient.Name},
			{"Recipient Tax ID", inv.Recipient.TaxID},
			{"Total Value", number(inv.TotalValue)},
			{"Total ICMS", number(inv.TotalTax)},
		},
	}

	items := Sheet{Name: SheetItems, Columns: itemColumns, Rows: make([][]any, 0, len(inv.Items))}
	for _, item := range inv.Items {
		items.Rows = append(items.Rows, itemRow(item))
	}

	payments := Sheet{Name: SheetPayments, Columns: paymentColumns, Rows: make([][]any, 0, len(inv.Payments))}
	for _, p := range inv.Payments {
		payments.Rows = append(payments.Rows, paymentRow(p))
	}

	return &Workbook{Sheets: []Sheet{summary, items, payments}}, nil
}

func itemRow(item model.Item) []any {
	return []any{
		item.Number,
		item.Code,
		item.Description,
		item.CFOP,
		item.NCM,
		item.Unit,
		number(item.Quantity),
		number(item.UnitValue),
		number(item.Total),
		number(item.ICMS),
		number(item.IPI),
	}
}

func paymentRow(p model.Payment) []any {
	return []any{p.Method, number(p.Amount)}
}

func number(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}

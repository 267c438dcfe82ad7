// Package preview projects an invoice into a display model and renders it
// as escaped HTML.
package preview

import (
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/rezonia/nfe-converter/internal/model"
)

// DefaultLimit is the number of items shown before truncation
const DefaultLimit = 12

// Placeholders shown instead of an empty table
const (
	NoSummary  = "No invoice data available."
	NoItems    = "No items found in this invoice."
	NoPayments = "No payments found in this invoice."
)

const currencySymbol = "R$"

var printer = message.NewPrinter(language.BrazilianPortuguese)

// Section is one table of the preview
type Section struct {
	Title       string
	Columns     []string
	Rows        [][]string
	Total       int
	Placeholder string
}

// Empty reports whether the section has no rows to show
func (s Section) Empty() bool {
	return len(s.Rows) == 0
}

// Truncated reports whether rows were dropped from the section
func (s Section) Truncated() bool {
	return s.Total > len(s.Rows)
}

// Indicator returns the "showing N of M" note for truncated sections
func (s Section) Indicator() string {
	if !s.Truncated() {
		return ""
	}
	return fmt.Sprintf("showing %d of %d", len(s.Rows), s.Total)
}

// Model is the display form of one invoice. All values are preformatted
// strings; escaping happens when the model is rendered.
type Model struct {
	Title    string
	Summary  Section
	Items    Section
	Payments Section
}

// Sections returns the three sections in display order
func (m *Model) Sections() []Section {
	return []Section{m.Summary, m.Items, m.Payments}
}

// Build projects inv into a preview model, keeping at most limit items.
// A limit of zero or less uses DefaultLimit.
func Build(inv *model.Invoice, limit int) *Model {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if inv == nil {
		inv = &model.Invoice{}
	}

	m := &Model{
		Title: "NF-e " + inv.Number,
		Summary: Section{
			Title:       "Summary",
			Columns:     []string{"Field", "Value"},
			Placeholder: NoSummary,
		},
		Items: Section{
			Title:       "Items",
			Columns:     []string{"Item", "Code", "Description", "CFOP", "NCM", "Unit", "Quantity", "Unit Value", "Line Total", "ICMS", "IPI"},
			Total:       len(inv.Items),
			Placeholder: NoItems,
		},
		Payments: Section{
			Title:       "Payments",
			Columns:     []string{"Method", "Amount"},
			Total:       len(inv.Payments),
			Placeholder: NoPayments,
		},
	}
	if inv.Number == "" {
		m.Title = "NF-e"
	}

	m.Summary.Rows = [][]string{
		{"Access Key", inv.AccessKey},
		{"Number", inv.Number},
		{"Series", inv.Series},
		{"Issue Date", inv.IssueDate},
		{"Issuer", inv.Issuer.Name},
		{"Issuer Tax ID", inv.Issuer.TaxID},
		{"Recipient", inv.Recipient.Name},
		{"Recipient Tax ID", inv.Recipient.TaxID},
		{"Total Value", Currency(inv.TotalValue)},
		{"Total ICMS", Currency(inv.TotalTax)},
	}
	m.Summary.Total = len(m.Summary.Rows)

	shown := inv.Items
	if len(shown) > limit {
		shown = shown[:limit]
	}
	m.Items.Rows = make([][]string, 0, len(shown))
	for _, item := range shown {
		m.Items.Rows = append(m.Items.Rows, []string{
			item.Number,
			item.Code,
			item.Description,
			item.CFOP,
			item.NCM,
			item.Unit,
			Quantity(item.Quantity),
			Currency(item.UnitValue),
			Currency(item.Total),
			Currency(item.ICMS),
			Currency(item.IPI),
		})
	}

	m.Payments.Rows = make([][]string, 0, len(inv.Payments))
	for _, p := range inv.Payments {
		m.Payments.Rows = append(m.Payments.Rows, []string{p.Method, Currency(p.Amount)})
	}

	return m
}

// Currency formats an amount as Brazilian reais, e.g. "R$ 1.234,56"
func Currency(d decimal.Decimal) string {
	v := number.Decimal(d.InexactFloat64(), number.MinFractionDigits(2), number.MaxFractionDigits(2))
	return currencySymbol + " " + printer.Sprint(v)
}

// Quantity formats a quantity with up to four decimal places
func Quantity(d decimal.Decimal) string {
	return printer.Sprint(number.Decimal(d.InexactFloat64(), number.MaxFractionDigits(4)))
}

package processor

import (
	"fmt"

	"github.com/rezonia/nfe-converter/internal/decimal"
	"github.com/rezonia/nfe-converter/internal/model"
)

const accessKeyDigits = 44

// Report holds the findings of validating one invoice
type Report struct {
	File     string                   `json:"file,omitempty"`
	Valid    bool                     `json:"valid"`
	Errors   []*model.ValidationError `json:"errors"`
	Warnings []*model.ValidationError `json:"warnings"`
}

func (r *Report) fail(field string, value interface{}, rule, msg string) {
	r.Valid = false
	r.Errors = append(r.Errors, model.NewValidationError(field, value, rule, msg))
}

func (r *Report) warn(field string, value interface{}, rule, msg string) {
	r.Warnings = append(r.Warnings, model.NewValidationError(field, value, rule, msg))
}

// Validate checks an extracted invoice for missing identifiers and
// inconsistent totals. In strict mode any warning also invalidates it.
func Validate(inv *model.Invoice, strict bool) *Report {
	r := &Report{
		Valid:    true,
		Errors:   []*model.ValidationError{},
		Warnings: []*model.ValidationError{},
	}
	if inv == nil {
		r.fail("invoice", nil, "required", "no invoice data extracted")
		return r
	}

	if inv.Number == "" {
		r.fail("number", nil, "required", "missing invoice number")
	}
	if inv.Issuer.TaxID == "" {
		r.fail("issuer.tax_id", nil, "required", "missing issuer tax ID")
	}

	if !isAccessKey(inv.AccessKey) {
		r.warn("access_key", inv.AccessKey, "format", "access key is not 44 digits")
	}
	if inv.IssueDate == "" {
		r.warn("issue_date", nil, "required", "missing issue date")
	}
	if !decimal.IsPositive(inv.TotalValue) {
		r.warn("total_value", nil, "positive", "total value is zero or missing")
	}

	if len(inv.Payments) > 0 {
		paid := inv.PaymentsTotal()
		if !decimal.WithinTolerance(paid, inv.TotalValue) {
			r.warn("payments", paid.StringFixed(2), "sum",
				fmt.Sprintf("payments sum %s but total value is %s", paid.StringFixed(2), inv.TotalValue.StringFixed(2)))
		}
	}

	items := inv.ItemsTotal()
	if items.GreaterThan(inv.TotalValue.Add(decimal.Tolerance)) {
		r.warn("items", items.StringFixed(2), "sum",
			fmt.Sprintf("item totals sum %s, above total value %s", items.StringFixed(2), inv.TotalValue.StringFixed(2)))
	}

	if strict && len(r.Warnings) > 0 {
		r.Valid = false
	}
	return r
}

func isAccessKey(key string) bool {
	if len(key) != accessKeyDigits {
		return false
	}
	for _, c := range key {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

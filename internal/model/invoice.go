package model

import (
	"github.com/shopspring/decimal"

	money "github.com/rezonia/nfe-converter/internal/decimal"
)

// Invoice is the normalized record extracted from one NF-e document.
// It is built once by the extractor and only read afterwards.
type Invoice struct {
	AccessKey string `json:"access_key"`
	Number    string `json:"number"`
	Series    string `json:"series"`
	IssueDate string `json:"issue_date"`

	Issuer    Party `json:"issuer"`
	Recipient Party `json:"recipient"`

	TotalValue decimal.Decimal `json:"total_value"`
	TotalTax   decimal.Decimal `json:"total_tax"`

	Items    []Item    `json:"items"`
	Payments []Payment `json:"payments"`

	Document DocumentInfo `json:"document"`
}

// Party identifies the issuer or the recipient of an invoice.
// TaxID holds the CNPJ when present, otherwise the CPF.
type Party struct {
	Name  string `json:"name"`
	TaxID string `json:"tax_id"`
}

// Item is one <det> line of the invoice.
type Item struct {
	Number      string          `json:"number"`
	Code        string          `json:"code"`
	Description string          `json:"description"`
	CFOP        string          `json:"cfop"`
	NCM         string          `json:"ncm"`
	Unit        string          `json:"unit"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitValue   decimal.Decimal `json:"unit_value"`
	Total       decimal.Decimal `json:"total"`
	ICMS        decimal.Decimal `json:"icms"`
	IPI         decimal.Decimal `json:"ipi"`
}

// Payment is one <detPag> entry with its method already decoded.
type Payment struct {
	Method string          `json:"method"`
	Amount decimal.Decimal `json:"amount"`
}

// DocumentInfo carries layout metadata that is not part of the tabular export.
type DocumentInfo struct {
	Version     string `json:"version,omitempty"`
	Model       string `json:"model,omitempty"`
	Environment string `json:"environment,omitempty"`
	Authorized  bool   `json:"authorized"`
}

// ModelName returns a label for the fiscal document model code.
func (d DocumentInfo) ModelName() string {
	switch d.Model {
	case "55":
		return "NF-e"
	case "65":
		return "NFC-e"
	case "":
		return ""
	default:
		return d.Model
	}
}

// EnvironmentName returns a label for the tpAmb code.
func (d DocumentInfo) EnvironmentName() string {
	switch d.Environment {
	case "1":
		return "production"
	case "2":
		return "homologation"
	default:
		return d.Environment
	}
}

// ItemsTotal sums the line totals of all items.
func (inv *Invoice) ItemsTotal() decimal.Decimal {
	totals := make([]decimal.Decimal, len(inv.Items))
	for i, item := range inv.Items {
		totals[i] = item.Total
	}
	return money.Sum(totals)
}

// PaymentsTotal sums the amounts of all payments.
func (inv *Invoice) PaymentsTotal() decimal.Decimal {
	amounts := make([]decimal.Decimal, len(inv.Payments))
	for i, p := range inv.Payments {
		amounts[i] = p.Amount
	}
	return money.Sum(amounts)
}

package xml

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/beevik/etree"

	"github.com/rezonia/nfe-converter/internal/decimal"
	"github.com/rezonia/nfe-converter/internal/model"
)

// accessKeyPrefix precedes the 44-digit key in the infNFe Id attribute
const accessKeyPrefix = "NFe"

const accessKeyLength = 44

// Display layouts for the issue date
const (
	DateTimeDisplay = "02/01/2006 15:04:05"
	DateDisplay     = "02/01/2006"
)

var protocolPath = etree.MustCompilePath("//protNFe")

// Options tunes field normalization during extraction
type Options struct {
	// Normalize reduces tax ids to digits and trims the access key to
	// at most 44 digits.
	Normalize bool
}

// Option configures an Extractor
type Option func(*Extractor)

// WithNormalize enables or disables field normalization
func WithNormalize(enabled bool) Option {
	return func(e *Extractor) {
		e.opts.Normalize = enabled
	}
}

// Extractor turns NF-e XML into a model.Invoice
type Extractor struct {
	opts Options
}

// NewExtractor creates a new NF-e extractor
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Options returns the extractor settings
func (e *Extractor) Options() Options {
	return e.opts
}

// Parse reads r fully and extracts one invoice
func (e *Extractor) Parse(ctx context.Context, r io.Reader) (*model.Invoice, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return e.ParseBytes(content)
}

// ParseBytes extracts one invoice from raw XML. It returns either a
// complete invoice or an error, never both.
func (e *Extractor) ParseBytes(content []byte) (*model.Invoice, error) {
	doc, err := ReadDocument(content)
	if err != nil {
		return nil, err
	}

	inf, err := LocateRootElement(doc)
	if err != nil {
		return nil, err
	}

	return e.convertInvoice(doc, inf), nil
}

func (e *Extractor) convertInvoice(doc *etree.Document, inf *etree.Element) *model.Invoice {
	ide := FirstChildByLocalName(inf, "ide")
	emit := FirstChildByLocalName(inf, "emit")
	dest := FirstChildByLocalName(inf, "dest")
	icmsTot := ElementAtPath(inf, "total", "ICMSTot")

	result := &model.Invoice{
		AccessKey:  e.accessKey(inf.SelectAttrValue("Id", "")),
		Number:     TextAtPath(ide, "nNF"),
		Series:     TextAtPath(ide, "serie"),
		IssueDate:  FormatIssueDate(issueDateText(ide)),
		Issuer:     e.convertParty(emit),
		Recipient:  e.convertParty(dest),
		TotalValue: decimal.ParseAmount(TextAtPath(icmsTot, "vNF")),
		TotalTax:   decimal.ParseAmount(TextAtPath(icmsTot, "vICMS")),
		Items:      []model.Item{},
		Payments:   []model.Payment{},
		Document: model.DocumentInfo{
			Version:     inf.SelectAttrValue("versao", ""),
			Model:       TextAtPath(ide, "mod"),
			Environment: TextAtPath(ide, "tpAmb"),
			Authorized:  doc.FindElementPath(protocolPath) != nil,
		},
	}

	for _, det := range ChildrenByLocalName(inf, "det") {
		result.Items = append(result.Items, convertItem(det))
	}

	for _, detPag := range ChildrenByLocalName(FirstChildByLocalName(inf, "pag"), "detPag") {
		result.Payments = append(result.Payments, model.Payment{
			Method: PaymentMethodLabel(TextAtPath(detPag, "tPag")),
			Amount: decimal.ParseAmount(TextAtPath(detPag, "vPag")),
		})
	}

	return result
}

func (e *Extractor) convertParty(el *etree.Element) model.Party {
	taxID := TextAtPath(el, "CNPJ")
	if taxID == "" {
		taxID = TextAtPath(el, "CPF")
	}
	if e.opts.Normalize {
		taxID = CleanDigits(taxID)
	}
	return model.Party{
		Name:  TextAtPath(el, "xNome"),
		TaxID: taxID,
	}
}

func (e *Extractor) accessKey(id string) string {
	key := strings.TrimPrefix(strings.TrimSpace(id), accessKeyPrefix)
	if !e.opts.Normalize {
		return key
	}
	key = CleanDigits(key)
	if len(key) > accessKeyLength {
		key = key[:accessKeyLength]
	}
	return key
}

func convertItem(det *etree.Element) model.Item {
	prod := FirstChildByLocalName(det, "prod")
	imposto := FirstChildByLocalName(det, "imposto")

	return model.Item{
		Number:      strings.TrimSpace(det.SelectAttrValue("nItem", "")),
		Code:        TextAtPath(prod, "cProd"),
		Description: TextAtPath(prod, "xProd"),
		CFOP:        TextAtPath(prod, "CFOP"),
		NCM:         TextAtPath(prod, "NCM"),
		Unit:        TextAtPath(prod, "uCom"),
		Quantity:    decimal.ParseAmount(TextAtPath(prod, "qCom")),
		UnitValue:   decimal.ParseAmount(TextAtPath(prod, "vUnCom")),
		Total:       decimal.ParseAmount(TextAtPath(prod, "vProd")),
		ICMS:        decimal.ParseAmount(icmsAmount(imposto)),
		IPI:         decimal.ParseAmount(TextAtPath(imposto, "IPI", "IPITrib", "vIPI")),
	}
}

// icmsAmount reads vICMS from the regime block under <ICMS> (ICMS00,
// ICMS20, ICMSSN101, ...) and then from <ICMS> itself. Regimes that carry
// no vICMS resolve to "".
func icmsAmount(imposto *etree.Element) string {
	icms := FirstChildByLocalName(imposto, "ICMS")
	if icms == nil {
		return ""
	}
	for _, regime := range icms.ChildElements() {
		if v := TextAtPath(regime, "vICMS"); v != "" {
			return v
		}
	}
	return TextAtPath(icms, "vICMS")
}

func issueDateText(ide *etree.Element) string {
	if v := TextAtPath(ide, "dhEmi"); v != "" {
		return v
	}
	return TextAtPath(ide, "dEmi")
}

// FormatIssueDate renders a raw dhEmi/dEmi value for display, keeping the
// wall-clock time of the source. Unparsable input yields "".
func FormatIssueDate(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format(DateTimeDisplay)
		}
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t.Format(DateDisplay)
	}
	return ""
}

// CleanDigits drops every non-digit character
func CleanDigits(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}

package invoicelib

import (
	"context"
	"io"

	"github.com/rezonia/nfe-converter/internal/model"
	"github.com/rezonia/nfe-converter/internal/processor"
)

// Parser extracts invoices from NF-e XML
type Parser interface {
	// Parse reads one NF-e document
	Parse(ctx context.Context, r io.Reader) (*model.Invoice, error)
}

// Exporter writes invoices as spreadsheets
type Exporter interface {
	// WriteXLSX encodes one invoice as a three-sheet workbook
	WriteXLSX(inv *model.Invoice, w io.Writer) error

	// FileName returns the export file name for an invoice
	FileName(inv *model.Invoice) string
}

// Severity and Status re-export the session status boundary
type (
	Severity   = processor.Severity
	Status     = processor.Status
	StatusSink = processor.StatusSink
	StatusFunc = processor.StatusFunc
	Session    = processor.Session
	Report     = processor.Report
)

const (
	SeverityInfo  = processor.SeverityInfo
	SeverityOK    = processor.SeverityOK
	SeverityError = processor.SeverityError
)

// Options configures a Converter
type Options struct {
	// Normalize reduces tax ids and access keys to digits
	Normalize bool

	// PreviewLimit caps the items shown in previews (default: 12)
	PreviewLimit int
}

// DefaultOptions returns options that keep values as written in the
// document.
func DefaultOptions() Options {
	return Options{
		Normalize:    false,
		PreviewLimit: 12,
	}
}

// Package invoicelib provides a public API for converting Brazilian NF-e
// invoices into spreadsheets.
//
// Example usage:
//
//	conv := invoicelib.NewConverter(invoicelib.DefaultOptions())
//	invoice, err := conv.Parse(ctx, reader)
//	if err != nil {
//	    log.Fatal(invoicelib.UserMessage(err))
//	}
//	err = conv.WriteXLSX(invoice, out)
package invoicelib

import "github.com/rezonia/nfe-converter/internal/model"

// Re-export core types for public API
type (
	Invoice      = model.Invoice
	Item         = model.Item
	Party        = model.Party
	Payment      = model.Payment
	DocumentInfo = model.DocumentInfo
)

// Re-export error types
type (
	MalformedXMLError      = model.MalformedXMLError
	StructureNotFoundError = model.StructureNotFoundError
	BuildError             = model.BuildError
	ValidationError        = model.ValidationError
)

// Re-export error kinds
const (
	KindMalformedXML      = model.KindMalformedXML
	KindStructureNotFound = model.KindStructureNotFound
	KindBuild             = model.KindBuild
	KindIO                = model.KindIO
)

// ErrorKind classifies an error returned by this package
func ErrorKind(err error) string {
	return model.Kind(err)
}

// UserMessage returns the human-readable message for an error
func UserMessage(err error) string {
	return model.UserMessage(err)
}

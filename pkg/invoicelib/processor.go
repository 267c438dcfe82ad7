package invoicelib

import (
	"context"
	"io"

	"github.com/rezonia/nfe-converter/internal/model"
	"github.com/rezonia/nfe-converter/internal/preview"
	"github.com/rezonia/nfe-converter/internal/processor"
	"github.com/rezonia/nfe-converter/internal/workbook"
)

// Converter implements Parser and Exporter over the internal pipeline
type Converter struct {
	pipeline *processor.Pipeline
	options  Options
}

var (
	_ Parser   = (*Converter)(nil)
	_ Exporter = (*Converter)(nil)
)

// NewConverter creates a converter with the given options
func NewConverter(opts Options) *Converter {
	return &Converter{
		pipeline: processor.NewPipeline(
			processor.WithNormalize(opts.Normalize),
			processor.WithPreviewLimit(opts.PreviewLimit),
		),
		options: opts,
	}
}

// NewDefaultConverter creates a converter with default options
func NewDefaultConverter() *Converter {
	return NewConverter(DefaultOptions())
}

// Parse reads one NF-e document
func (c *Converter) Parse(ctx context.Context, r io.Reader) (*model.Invoice, error) {
	result := c.pipeline.ProcessXML(ctx, r)
	if result.Error != nil {
		return nil, result.Error
	}
	return result.Invoice, nil
}

// Validate reports missing identifiers and inconsistent totals
func (c *Converter) Validate(inv *model.Invoice, strict bool) *Report {
	return processor.Validate(inv, strict)
}

// WriteXLSX encodes inv as a Summary/Items/Payments workbook
func (c *Converter) WriteXLSX(inv *model.Invoice, w io.Writer) error {
	wb, err := c.pipeline.BuildWorkbook(inv)
	if err != nil {
		return err
	}
	return wb.WriteXLSX(w)
}

// WriteConsolidatedXLSX encodes several invoices into one workbook
func (c *Converter) WriteConsolidatedXLSX(invoices []*model.Invoice, w io.Writer) error {
	wb, err := workbook.BuildConsolidated(invoices)
	if err != nil {
		return err
	}
	return wb.WriteXLSX(w)
}

// FileName returns the sanitized export file name for inv
func (c *Converter) FileName(inv *model.Invoice) string {
	return workbook.FileName(inv)
}

// WritePreview renders inv as an escaped HTML page
func (c *Converter) WritePreview(inv *model.Invoice, w io.Writer) error {
	return preview.Render(w, c.pipeline.Preview(inv))
}

// NewSession creates a stateful session reporting to sink
func (c *Converter) NewSession(sink StatusSink) *Session {
	return processor.NewSession(c.pipeline, sink)
}

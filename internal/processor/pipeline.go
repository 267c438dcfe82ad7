package processor

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/rezonia/nfe-converter/internal/model"
	xmlparser "github.com/rezonia/nfe-converter/internal/parser/xml"
	"github.com/rezonia/nfe-converter/internal/preview"
	"github.com/rezonia/nfe-converter/internal/workbook"
)

// ExtractionMethod identifies how an invoice was obtained
type ExtractionMethod string

const (
	MethodXML ExtractionMethod = "xml"
)

// Result is the outcome of running the pipeline on one document. Either
// Invoice is set or Error is, never both.
type Result struct {
	Invoice  *model.Invoice
	Method   ExtractionMethod
	Warnings []string
	Error    error
}

// Pipeline runs extraction and projection for NF-e documents
type Pipeline struct {
	extractor    *xmlparser.Extractor
	previewLimit int
	log          zerolog.Logger
}

// PipelineOption configures a Pipeline
type PipelineOption func(*Pipeline)

// WithNormalize enables tax id and access key normalization
func WithNormalize(enabled bool) PipelineOption {
	return func(p *Pipeline) {
		p.extractor = xmlparser.NewExtractor(xmlparser.WithNormalize(enabled))
	}
}

// WithPreviewLimit sets how many items previews show
func WithPreviewLimit(limit int) PipelineOption {
	return func(p *Pipeline) {
		p.previewLimit = limit
	}
}

// WithLogger sets the pipeline logger
func WithLogger(l zerolog.Logger) PipelineOption {
	return func(p *Pipeline) {
		p.log = l
	}
}

// NewPipeline creates a pipeline. Without options it extracts values as
// written in the document and logs nothing.
func NewPipeline(opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		extractor:    xmlparser.NewExtractor(),
		previewLimit: preview.DefaultLimit,
		log:          zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Normalize reports whether the pipeline normalizes identifiers
func (p *Pipeline) Normalize() bool {
	return p.extractor.Options().Normalize
}

// ProcessXML reads r fully and processes it
func (p *Pipeline) ProcessXML(ctx context.Context, r io.Reader) *Result {
	data, err := io.ReadAll(r)
	if err != nil {
		return &Result{Method: MethodXML, Error: fmt.Errorf("failed to read input: %w", err)}
	}
	return p.ProcessXMLBytes(ctx, data)
}

// ProcessXMLBytes extracts an invoice and attaches validation warnings
func (p *Pipeline) ProcessXMLBytes(ctx context.Context, data []byte) *Result {
	result := &Result{Method: MethodXML}

	if err := ctx.Err(); err != nil {
		result.Error = err
		return result
	}

	inv, err := p.extractor.ParseBytes(data)
	if err != nil {
		p.log.Debug().Err(err).Str("kind", model.Kind(err)).Msg("extraction failed")
		result.Error = err
		return result
	}

	report := Validate(inv, false)
	for _, w := range report.Warnings {
		result.Warnings = append(result.Warnings, w.Message)
	}

	p.log.Debug().
		Str("number", inv.Number).
		Int("items", len(inv.Items)).
		Int("payments", len(inv.Payments)).
		Msg("invoice extracted")

	result.Invoice = inv
	return result
}

// BuildWorkbook projects inv into a workbook. A panic inside the builder
// is reported as a BuildError.
func (p *Pipeline) BuildWorkbook(inv *model.Invoice) (wb *workbook.Workbook, err error) {
	defer func() {
		if r := recover(); r != nil {
			wb = nil
			err = model.NewBuildError("workbook", fmt.Errorf("panic: %v", r))
		}
	}()
	return workbook.Build(inv)
}

// Convert extracts an invoice and encodes it as an xlsx file
func (p *Pipeline) Convert(ctx context.Context, data []byte) (*model.Invoice, []byte, error) {
	result := p.ProcessXMLBytes(ctx, data)
	if result.Error != nil {
		return nil, nil, result.Error
	}

	wb, err := p.BuildWorkbook(result.Invoice)
	if err != nil {
		return result.Invoice, nil, err
	}

	var buf bytes.Buffer
	if err := wb.WriteXLSX(&buf); err != nil {
		return result.Invoice, nil, err
	}
	return result.Invoice, buf.Bytes(), nil
}

// Preview projects inv into a preview model using the configured limit
func (p *Pipeline) Preview(inv *model.Invoice) *preview.Model {
	return preview.Build(inv, p.previewLimit)
}

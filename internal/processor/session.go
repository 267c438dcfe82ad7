package processor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/rs/zerolog"

	"github.com/rezonia/nfe-converter/internal/model"
	"github.com/rezonia/nfe-converter/internal/preview"
	"github.com/rezonia/nfe-converter/internal/workbook"
)

// Severity tags a status message
type Severity string

const (
	SeverityInfo  Severity = "info"
	SeverityOK    Severity = "ok"
	SeverityError Severity = "error"
)

// Status is one human-readable message emitted after a stage transition
type Status struct {
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// StatusSink receives session status messages
type StatusSink interface {
	Status(Status)
}

// StatusFunc adapts a function to StatusSink
type StatusFunc func(Status)

func (f StatusFunc) Status(s Status) { f(s) }

// ErrNothingToExport is returned by Export before a workbook was built
var ErrNothingToExport = errors.New("no spreadsheet available for export")

// Session owns the last loaded invoice and the workbook built from it.
// Each Load replaces both slots; nothing is mutated in place.
type Session struct {
	pipeline *Pipeline
	sink     StatusSink
	log      zerolog.Logger

	mu       sync.Mutex
	invoice  *model.Invoice
	preview  *preview.Model
	workbook *workbook.Workbook
}

// NewSession creates a session reporting to sink. A nil sink discards
// status messages.
func NewSession(p *Pipeline, sink StatusSink) *Session {
	if p == nil {
		p = NewPipeline()
	}
	if sink == nil {
		sink = StatusFunc(func(Status) {})
	}
	return &Session{
		pipeline: p,
		sink:     sink,
		log:      p.log.With().Str("component", "session").Logger(),
	}
}

// Load runs the pipeline on one document. Extraction failures clear the
// session; build failures keep the invoice and preview but disable export.
// Exactly one error status is emitted for any failure.
func (s *Session) Load(ctx context.Context, name string, data []byte) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			s.reset()
			err = fmt.Errorf("unexpected failure: %v", r)
			s.log.Error().Str("file", name).Interface("panic", r).Msg("pipeline panicked")
			s.emit(SeverityError, model.UserMessage(err))
		}
	}()

	s.emit(SeverityInfo, fmt.Sprintf("Reading %s...", name))

	result := s.pipeline.ProcessXMLBytes(ctx, data)
	if result.Error != nil {
		s.reset()
		s.log.Error().Err(result.Error).Str("file", name).Msg("failed to load invoice")
		s.emit(SeverityError, model.UserMessage(result.Error))
		return result.Error
	}

	inv := result.Invoice
	s.invoice = inv
	s.preview = s.pipeline.Preview(inv)
	s.workbook = nil

	wb, err := s.pipeline.BuildWorkbook(inv)
	if err != nil {
		s.log.Error().Err(err).Str("file", name).Msg("failed to build workbook")
		s.emit(SeverityError, model.UserMessage(err))
		return err
	}
	s.workbook = wb

	s.emit(SeverityOK, fmt.Sprintf("Invoice %s loaded: %d item(s), %d payment(s).",
		inv.Number, len(inv.Items), len(inv.Payments)))
	return nil
}

// Export writes the last workbook as xlsx and returns its file name
func (s *Session) Export(w io.Writer) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.workbook == nil {
		s.emit(SeverityError, "No spreadsheet to export. Load a valid NF-e first.")
		return "", ErrNothingToExport
	}

	name := workbook.FileName(s.invoice)
	if err := s.workbook.WriteXLSX(w); err != nil {
		s.log.Error().Err(err).Str("file", name).Msg("failed to write workbook")
		s.emit(SeverityError, model.UserMessage(err))
		return "", err
	}

	s.emit(SeverityOK, fmt.Sprintf("Spreadsheet %s generated.", name))
	return name, nil
}

// Invoice returns the last successfully extracted invoice, or nil
func (s *Session) Invoice() *model.Invoice {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.invoice
}

// Preview returns the preview of the last invoice, or nil
func (s *Session) Preview() *preview.Model {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.preview
}

// CanExport reports whether a workbook is ready for export
func (s *Session) CanExport() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.workbook != nil
}

func (s *Session) reset() {
	s.invoice = nil
	s.preview = nil
	s.workbook = nil
}

func (s *Session) emit(sev Severity, msg string) {
	s.sink.Status(Status{Severity: sev, Message: msg})
}

package cmd

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonia/nfe-converter/internal/model"
	"github.com/rezonia/nfe-converter/internal/processor"
)

func sampleResults() []*InspectResult {
	return []*InspectResult{
		{
			File: "a.xml",
			Invoice: &model.Invoice{
				AccessKey:  "35240112345678000195550010000012341000012345",
				Number:     "1234",
				Series:     "1",
				IssueDate:  "2024-01-15",
				Issuer:     model.Party{Name: "Comercial, Exemplo", TaxID: "12345678000195"},
				TotalValue: decimal.RequireFromString("37.95"),
				Items:      []model.Item{{}, {}},
			},
			Method: "xml",
		},
		{File: "b.xml", Error: "NF-e structure not found"},
	}
}

func TestOutputTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, outputResults(&buf, "table", sampleResults()))

	out := buf.String()
	assert.Contains(t, out, "FILE")
	assert.Contains(t, out, "37.95")
	assert.Contains(t, out, "ERROR: NF-e structure not found")
}

func TestOutputCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, outputResults(&buf, "csv", sampleResults()))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, "file", records[0][0])
	assert.Equal(t, "Comercial, Exemplo", records[1][5])
	assert.Equal(t, "2", records[1][11])
	assert.Equal(t, "NF-e structure not found", records[2][len(records[2])-1])
}

func TestOutputJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, outputResults(&buf, "json", sampleResults()))
	assert.Contains(t, buf.String(), `"number": "1234"`)
}

func TestOutputResults_UnsupportedFormat(t *testing.T) {
	err := outputResults(&bytes.Buffer{}, "yaml", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported output format")
}

func TestPrintBatchSummary(t *testing.T) {
	var buf bytes.Buffer
	printBatchSummary(&buf, &processor.BatchResult{
		Invoices:   []*model.Invoice{{}, {}},
		Issues:     []string{"failed to process c.xml: XML is malformed"},
		OutputPath: "output/notas.xlsx",
		IssuesPath: "output/processing.log",
	})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, []string{
		"[OK] Invoices processed: 2",
		" - Spreadsheet: output/notas.xlsx",
		" - Issues log: output/processing.log",
		"Issues:",
		" - failed to process c.xml: XML is malformed",
	}, lines)
}

func TestPrintReports(t *testing.T) {
	var buf bytes.Buffer
	printReports(&buf, []*processor.Report{
		{File: "ok.xml", Valid: true},
		{
			File:     "bad.xml",
			Errors:   []*model.ValidationError{model.NewValidationError("number", nil, "required", "missing invoice number")},
			Warnings: []*model.ValidationError{model.NewValidationError("issue_date", nil, "required", "missing issue date")},
		},
	})

	out := buf.String()
	assert.Contains(t, out, "✓ ok.xml: VALID")
	assert.Contains(t, out, "✗ bad.xml: INVALID")
	assert.Contains(t, out, "  - missing invoice number")
	assert.Contains(t, out, "  ⚠ missing issue date")
}

func TestOrDash(t *testing.T) {
	assert.Equal(t, "-", orDash("  "))
	assert.Equal(t, "4.00", orDash("4.00"))
	assert.Equal(t, "yes", yesNo(true))
}

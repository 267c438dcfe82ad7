package cmd

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rezonia/nfe-converter/internal/model"
	"github.com/rezonia/nfe-converter/internal/processor"
)

var outputFile string

var inspectCmd = &cobra.Command{
	Use:   "inspect [files...]",
	Short: "Print the data extracted from NF-e files",
	Long: `Parse NF-e XMLs (files, folders or zip archives) and print the
extracted header fields without writing a workbook.

Examples:
  nfe-converter inspect nota.xml
  nfe-converter inspect notas/ -f csv -o notas.csv
  nfe-converter inspect notas.zip -f json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)

	inspectCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")
}

// InspectResult holds the result of parsing a single document
type InspectResult struct {
	File     string         `json:"file"`
	Invoice  *model.Invoice `json:"invoice,omitempty"`
	Method   string         `json:"method,omitempty"`
	Warnings []string       `json:"warnings,omitempty"`
	Error    string         `json:"error,omitempty"`
}

func runInspect(cmd *cobra.Command, args []string) error {
	docs, err := collectDocuments(args)
	if err != nil {
		return err
	}
	log.Debug().Int("documents", len(docs)).Msg("documents collected")

	pipeline := newPipeline()
	results := make([]*InspectResult, 0, len(docs))
	for _, doc := range docs {
		results = append(results, inspectDocument(cmd.Context(), pipeline, doc))
	}

	w := stdout(cmd)
	if outputFile != "" {
		f, err := os.Create(outputFile)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		w = f
	}
	return outputResults(w, outputFormat, results)
}

func inspectDocument(ctx context.Context, pipeline *processor.Pipeline, doc processor.Document) *InspectResult {
	result := &InspectResult{File: doc.Name}

	r := pipeline.ProcessXMLBytes(ctx, doc.Data)
	if r.Error != nil {
		log.Debug().Err(r.Error).Str("file", doc.Name).Msg("extraction failed")
		result.Error = model.UserMessage(r.Error)
		return result
	}

	result.Invoice = r.Invoice
	result.Method = string(r.Method)
	result.Warnings = r.Warnings
	return result
}

func outputResults(w io.Writer, format string, results []*InspectResult) error {
	switch format {
	case "json":
		return outputJSON(w, results)
	case "table":
		return outputTable(w, results)
	case "csv":
		return outputCSV(w, results)
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

func outputJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func outputTable(w io.Writer, results []*InspectResult) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "FILE\tNUMBER\tSERIES\tDATE\tISSUER\tTOTAL\tITEMS\tPAYMENTS")
	fmt.Fprintln(tw, "----\t------\t------\t----\t------\t-----\t-----\t--------")

	for _, r := range results {
		if r.Error != "" {
			fmt.Fprintf(tw, "%s\tERROR: %s\t\t\t\t\t\t\n", r.File, r.Error)
			continue
		}
		inv := r.Invoice
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%d\t%d\n",
			r.File,
			inv.Number,
			inv.Series,
			inv.IssueDate,
			inv.Issuer.Name,
			inv.TotalValue.StringFixed(2),
			len(inv.Items),
			len(inv.Payments),
		)
	}

	return tw.Flush()
}

func outputCSV(w io.Writer, results []*InspectResult) error {
	cw := csv.NewWriter(w)
	header := []string{
		"file", "access_key", "number", "series", "issue_date",
		"issuer_name", "issuer_tax_id", "recipient_name", "recipient_tax_id",
		"total_value", "total_tax", "items", "payments", "error",
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, r := range results {
		record := make([]string, len(header))
		record[0] = r.File
		if r.Error != "" {
			record[len(record)-1] = r.Error
		} else {
			inv := r.Invoice
			copy(record[1:], []string{
				inv.AccessKey,
				inv.Number,
				inv.Series,
				inv.IssueDate,
				inv.Issuer.Name,
				inv.Issuer.TaxID,
				inv.Recipient.Name,
				inv.Recipient.TaxID,
				inv.TotalValue.StringFixed(2),
				inv.TotalTax.StringFixed(2),
				fmt.Sprint(len(inv.Items)),
				fmt.Sprint(len(inv.Payments)),
			})
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

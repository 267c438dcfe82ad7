package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/rezonia/nfe-converter/internal/model"
	"github.com/rezonia/nfe-converter/internal/processor"
)

var strictValidation bool

var validateCmd = &cobra.Command{
	Use:   "validate [files...]",
	Short: "Validate NF-e files",
	Long: `Validate one or more NF-e XMLs for completeness and consistency.

Checks performed:
  - Invoice number and issuer tax id present
  - Access key has 44 digits
  - Issue date present and total value non-zero
  - Payments add up to the total value
  - Item totals do not exceed the total value

With --strict every warning also fails the file.

Examples:
  nfe-converter validate nota.xml
  nfe-converter validate notas/ --strict -f json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().BoolVar(&strictValidation, "strict", false, "Treat warnings as errors")
}

func runValidate(cmd *cobra.Command, args []string) error {
	docs, err := collectDocuments(args)
	if err != nil {
		return err
	}

	pipeline := newPipeline()
	reports := make([]*processor.Report, 0, len(docs))
	allValid := true

	for _, doc := range docs {
		report := validateDocument(cmd.Context(), pipeline, doc, strictValidation)
		reports = append(reports, report)
		if !report.Valid {
			allValid = false
		}
	}

	w := stdout(cmd)
	if outputFormat == "json" {
		if err := outputJSON(w, reports); err != nil {
			return err
		}
	} else {
		printReports(w, reports)
	}

	if !allValid {
		return fmt.Errorf("validation failed for some files")
	}
	return nil
}

func validateDocument(ctx context.Context, pipeline *processor.Pipeline, doc processor.Document, strict bool) *processor.Report {
	r := pipeline.ProcessXMLBytes(ctx, doc.Data)
	if r.Error != nil {
		report := &processor.Report{
			File:     doc.Name,
			Valid:    false,
			Errors:   []*model.ValidationError{model.NewValidationError("document", nil, "parse", model.UserMessage(r.Error))},
			Warnings: []*model.ValidationError{},
		}
		return report
	}

	report := processor.Validate(r.Invoice, strict)
	report.File = doc.Name
	return report
}

func printReports(w io.Writer, reports []*processor.Report) {
	for _, r := range reports {
		if r.Valid {
			fmt.Fprintf(w, "✓ %s: VALID\n", r.File)
		} else {
			fmt.Fprintf(w, "✗ %s: INVALID\n", r.File)
			for _, e := range r.Errors {
				fmt.Fprintf(w, "  - %s\n", e.Message)
			}
		}
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "  ⚠ %s\n", warn.Message)
		}
	}
}

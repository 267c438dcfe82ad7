package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rezonia/nfe-converter/internal/model"
	"github.com/rezonia/nfe-converter/internal/processor"
	"github.com/rezonia/nfe-converter/internal/workbook"
)

var (
	inputPath    string
	outputDir    string
	workbookName string
	dryRun       bool
	split        bool
)

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert NF-e XMLs into an xlsx workbook",
	Long: `Convert one NF-e XML, a folder of XMLs or a zip archive into a
consolidated workbook with Summary, Items and Payments sheets.

Documents that fail to parse are skipped and listed in processing.log
next to the workbook.

Examples:
  nfe-converter convert -i nota.xml
  nfe-converter convert -i notas/ -o output -a janeiro.xlsx
  nfe-converter convert -i notas.zip --dry-run
  nfe-converter convert -i notas/ --split`,
	Args: cobra.NoArgs,
	RunE: runConvert,
}

func init() {
	rootCmd.AddCommand(convertCmd)

	convertCmd.Flags().StringVarP(&inputPath, "input", "i", "", "XML file, folder or zip archive")
	convertCmd.Flags().StringVarP(&outputDir, "output", "o", "", "Output directory (env: NFE_OUTPUT_DIR)")
	convertCmd.Flags().StringVarP(&workbookName, "workbook", "a", "", "Consolidated workbook name (env: NFE_WORKBOOK_NAME)")
	convertCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Parse only, write nothing")
	convertCmd.Flags().BoolVar(&split, "split", false, "Write one workbook per invoice instead of a consolidated one")
	_ = convertCmd.MarkFlagRequired("input")
}

func runConvert(cmd *cobra.Command, args []string) error {
	docs, err := processor.CollectDocuments(inputPath, zipLimits())
	if err != nil {
		return err
	}
	log.Debug().Int("documents", len(docs)).Str("input", inputPath).Msg("documents collected")

	opts := processor.BatchOptions{
		DryRun:       dryRun,
		OutputDir:    cfg.Convert.OutputDir,
		WorkbookName: cfg.Convert.WorkbookName,
	}
	if outputDir != "" {
		opts.OutputDir = outputDir
	}
	if workbookName != "" {
		opts.WorkbookName = workbookName
	}

	pipeline := newPipeline()
	w := stdout(cmd)

	if split {
		// Per-invoice workbooks replace the consolidated one.
		opts.DryRun = true
		res, err := pipeline.Batch(cmd.Context(), docs, opts)
		if err != nil {
			return err
		}
		var written []string
		if !dryRun {
			dir := opts.OutputDir
			if dir == "" {
				dir = "."
			}
			if len(res.Issues) > 0 {
				if res.IssuesPath, err = processor.WriteIssues(dir, res.Issues); err != nil {
					return err
				}
			}
			written, err = writeSplit(pipeline, dir, res.Invoices)
			if err != nil {
				return err
			}
		}
		printSplitSummary(w, res, written)
		return nil
	}

	res, err := pipeline.Batch(cmd.Context(), docs, opts)
	if err != nil {
		if res != nil {
			printIssues(w, res.Issues)
		}
		return err
	}
	printBatchSummary(w, res)
	return nil
}

func writeSplit(pipeline *processor.Pipeline, dir string, invoices []*model.Invoice) ([]string, error) {
	if len(invoices) == 0 {
		return nil, fmt.Errorf("no valid invoices to export")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	namer := workbook.NewFileNamer()
	written := make([]string, 0, len(invoices))
	for _, inv := range invoices {
		wb, err := pipeline.BuildWorkbook(inv)
		if err != nil {
			return written, err
		}
		data, err := wb.Bytes()
		if err != nil {
			return written, err
		}
		path := filepath.Join(dir, namer.Next(inv))
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return written, fmt.Errorf("write %s: %w", path, err)
		}
		log.Debug().Str("path", path).Str("number", inv.Number).Msg("workbook written")
		written = append(written, path)
	}
	return written, nil
}

func printBatchSummary(w io.Writer, res *processor.BatchResult) {
	fmt.Fprintf(w, "[OK] Invoices processed: %d\n", len(res.Invoices))
	if res.OutputPath != "" {
		fmt.Fprintf(w, " - Spreadsheet: %s\n", res.OutputPath)
	}
	if res.IssuesPath != "" {
		fmt.Fprintf(w, " - Issues log: %s\n", res.IssuesPath)
	}
	printIssues(w, res.Issues)
}

func printSplitSummary(w io.Writer, res *processor.BatchResult, written []string) {
	fmt.Fprintf(w, "[OK] Invoices processed: %d\n", len(res.Invoices))
	for _, path := range written {
		fmt.Fprintf(w, " - Spreadsheet: %s\n", path)
	}
	if res.IssuesPath != "" {
		fmt.Fprintf(w, " - Issues log: %s\n", res.IssuesPath)
	}
	printIssues(w, res.Issues)
}

func printIssues(w io.Writer, issues []string) {
	if len(issues) == 0 {
		return
	}
	fmt.Fprintln(w, "Issues:")
	for _, issue := range issues {
		fmt.Fprintf(w, " - %s\n", issue)
	}
}

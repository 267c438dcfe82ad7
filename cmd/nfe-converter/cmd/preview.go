package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rezonia/nfe-converter/internal/model"
	"github.com/rezonia/nfe-converter/internal/preview"
)

var (
	previewOutput string
	previewLimit  int
)

var previewCmd = &cobra.Command{
	Use:   "preview [file]",
	Short: "Render an HTML preview of one NF-e",
	Long: `Render the summary, the first items and the payments of one NF-e
as an HTML page. Values use Brazilian formatting (R$ 1.234,56).

Examples:
  nfe-converter preview nota.xml > nota.html
  nfe-converter preview nota.xml -o nota.html --limit 20`,
	Args: cobra.ExactArgs(1),
	RunE: runPreview,
}

func init() {
	rootCmd.AddCommand(previewCmd)

	previewCmd.Flags().StringVarP(&previewOutput, "output", "o", "", "Output HTML file (default: stdout)")
	previewCmd.Flags().IntVar(&previewLimit, "limit", 0, "Maximum items shown (env: NFE_PREVIEW_LIMIT)")
}

func runPreview(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	if previewLimit > 0 {
		cfg.Convert.PreviewLimit = previewLimit
	}
	pipeline := newPipeline()

	r := pipeline.ProcessXMLBytes(cmd.Context(), data)
	if r.Error != nil {
		return errors.New(model.UserMessage(r.Error))
	}

	w := stdout(cmd)
	if previewOutput != "" {
		f, err := os.Create(previewOutput)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		w = f
	}
	return preview.Render(w, pipeline.Preview(r.Invoice))
}

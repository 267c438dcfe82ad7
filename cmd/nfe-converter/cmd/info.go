package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rezonia/nfe-converter/internal/model"
	"github.com/rezonia/nfe-converter/internal/processor"
)

var infoCmd = &cobra.Command{
	Use:   "info [files...]",
	Short: "Show document metadata of NF-e files",
	Long: `Display layout metadata of NF-e files without exporting them.

Shows:
  - Detected format and size
  - Layout version and document model (NF-e or NFC-e)
  - Environment (production or homologation)
  - Whether the authorization protocol is attached

Examples:
  nfe-converter info nota.xml
  nfe-converter info notas.zip`,
	Args: cobra.MinimumNArgs(1),
	RunE: runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	docs, err := collectDocuments(args)
	if err != nil {
		return err
	}

	pipeline := newPipeline()
	w := stdout(cmd)
	for _, doc := range docs {
		printDocumentInfo(cmd.Context(), w, pipeline, doc)
		fmt.Fprintln(w)
	}
	return nil
}

func printDocumentInfo(ctx context.Context, w io.Writer, pipeline *processor.Pipeline, doc processor.Document) {
	fmt.Fprintf(w, "File: %s\n", doc.Name)
	fmt.Fprintf(w, "  Size: %d bytes\n", len(doc.Data))
	fmt.Fprintf(w, "  Format: %s\n", processor.DetectFormat(doc.Data))

	r := pipeline.ProcessXMLBytes(ctx, doc.Data)
	if r.Error != nil {
		fmt.Fprintf(w, "  Error: %s\n", model.UserMessage(r.Error))
		return
	}

	inv := r.Invoice
	info := inv.Document
	fmt.Fprintf(w, "  Access key: %s\n", orDash(inv.AccessKey))
	fmt.Fprintf(w, "  Number: %s  Series: %s\n", orDash(inv.Number), orDash(inv.Series))
	fmt.Fprintf(w, "  Version: %s\n", orDash(info.Version))
	fmt.Fprintf(w, "  Model: %s\n", info.ModelName())
	fmt.Fprintf(w, "  Environment: %s\n", info.EnvironmentName())
	fmt.Fprintf(w, "  Authorized: %s\n", yesNo(info.Authorized))
	fmt.Fprintf(w, "  Items: %d  Payments: %d\n", len(inv.Items), len(inv.Payments))
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

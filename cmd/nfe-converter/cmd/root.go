package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rezonia/nfe-converter/internal/config"
	"github.com/rezonia/nfe-converter/internal/logger"
	"github.com/rezonia/nfe-converter/internal/processor"
)

var (
	version = "1.0.0"

	cfg       *config.Config
	log       = zerolog.Nop()
	logCloser io.Closer

	// Global flags
	verbose      bool
	outputFormat string
	logLevel     string
	logFormat    string
	normalize    bool
	noNormalize  bool
)

var rootCmd = &cobra.Command{
	Use:   "nfe-converter",
	Short: "Convert Brazilian NF-e XML invoices into spreadsheets",
	Long: `NF-e Converter reads Brazilian electronic invoices (NF-e, layout 4.00)
and exports their header, items and payments as an xlsx workbook.

Examples:
  # Convert a folder of XMLs into one workbook
  nfe-converter convert -i notas/ -o output

  # One workbook per invoice
  nfe-converter convert -i nota.xml --split

  # Print extracted data
  nfe-converter inspect nota.xml -f table

  # Render an HTML preview
  nfe-converter preview nota.xml -o nota.html

  # Check invoices for missing data
  nfe-converter validate notas.zip`,
	Version:           version,
	SilenceUsage:      true,
	PersistentPreRunE: setupLogging,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logCloser != nil {
			logCloser.Close()
		}
	},
}

// Execute runs the root command with c as the base configuration
func Execute(c *config.Config) error {
	cfg = c
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "format", "f", "table", "Output format (json, csv, table)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (env: NFE_LOG_LEVEL)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format: console or json (env: NFE_LOG_FORMAT)")
	rootCmd.PersistentFlags().BoolVar(&normalize, "normalize", true, "Reduce tax ids and access keys to digits (env: NFE_NORMALIZE)")
	rootCmd.PersistentFlags().BoolVar(&noNormalize, "no-normalize", false, "Keep tax ids and access keys as written")
}

// setupLogging applies flag overrides to the loaded configuration and
// installs the logger.
func setupLogging(cmd *cobra.Command, args []string) error {
	if cfg == nil {
		loaded, err := config.Load()
		if err != nil {
			return err
		}
		cfg = loaded
	}

	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if logFormat != "" {
		cfg.Log.Format = logFormat
	}
	if verbose {
		cfg.Log.Level = "debug"
	}
	if cmd.Flags().Changed("normalize") {
		cfg.Convert.Normalize = normalize
	}
	if noNormalize {
		cfg.Convert.Normalize = false
	}

	zl, closer, err := logger.Setup(cfg.Logger())
	if err != nil {
		return err
	}
	log = zl
	logCloser = closer
	return nil
}

func newPipeline() *processor.Pipeline {
	return processor.NewPipeline(
		processor.WithNormalize(cfg.Convert.Normalize),
		processor.WithPreviewLimit(cfg.Convert.PreviewLimit),
		processor.WithLogger(log.With().Str("component", "pipeline").Logger()),
	)
}

func zipLimits() processor.ZipLimits {
	return processor.ZipLimits{
		MaxEntryBytes: cfg.Convert.ZipMaxEntryBytes,
		MaxTotalBytes: cfg.Convert.ZipMaxTotalBytes,
	}
}

// collectDocuments gathers documents from every argument in order
func collectDocuments(args []string) ([]processor.Document, error) {
	var docs []processor.Document
	for _, arg := range args {
		found, err := processor.CollectDocuments(arg, zipLimits())
		if err != nil {
			return nil, err
		}
		docs = append(docs, found...)
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("no files found to process")
	}
	return docs, nil
}

func stdout(cmd *cobra.Command) io.Writer {
	if cmd != nil {
		return cmd.OutOrStdout()
	}
	return os.Stdout
}

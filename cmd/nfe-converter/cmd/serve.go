package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rezonia/nfe-converter/internal/server"
)

var (
	serverAddr   string
	serverDebug  bool
	readTimeout  time.Duration
	writeTimeout time.Duration
	maxBodyBytes int64
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start an HTTP API server for converting NF-e documents.

The API provides endpoints for:
  - POST /api/v1/parse     - Extract an NF-e as JSON
  - POST /api/v1/convert   - Convert an NF-e to xlsx
  - POST /api/v1/preview   - Render an HTML preview
  - POST /api/v1/validate  - Validate an NF-e (?strict=true)
  - POST /api/v1/info      - Show document metadata
  - POST /api/v1/batch     - Convert a zip of NF-e into one xlsx
  - GET  /health           - Health check

Examples:
  # Start server on the configured address
  nfe-converter serve

  # Start on a custom port in debug mode
  nfe-converter serve --address :9090 --debug`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serverAddr, "address", "", "Server listen address (env: NFE_HTTP_ADDRESS)")
	serveCmd.Flags().BoolVar(&serverDebug, "debug", false, "Enable debug mode")
	serveCmd.Flags().DurationVar(&readTimeout, "read-timeout", 0, "HTTP read timeout (env: NFE_HTTP_READ_TIMEOUT)")
	serveCmd.Flags().DurationVar(&writeTimeout, "write-timeout", 0, "HTTP write timeout (env: NFE_HTTP_WRITE_TIMEOUT)")
	serveCmd.Flags().Int64Var(&maxBodyBytes, "max-body", 0, "Maximum request body in bytes (env: NFE_HTTP_MAX_BODY)")
}

func runServe(cmd *cobra.Command, args []string) error {
	config := &server.Config{
		Address:      cfg.HTTP.Address,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		MaxBodyBytes: cfg.HTTP.MaxBodyBytes,
		ZipLimits:    zipLimits(),
		Normalize:    cfg.Convert.Normalize,
		PreviewLimit: cfg.Convert.PreviewLimit,
		Debug:        serverDebug,
		Logger:       log,
	}
	if serverAddr != "" {
		config.Address = serverAddr
	}
	if readTimeout > 0 {
		config.ReadTimeout = readTimeout
	}
	if writeTimeout > 0 {
		config.WriteTimeout = writeTimeout
	}
	if maxBodyBytes > 0 {
		config.MaxBodyBytes = maxBodyBytes
	}

	srv := server.NewServer(config)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(stdout(cmd), "Starting server on %s\n", config.Address)
	return srv.Run(ctx)
}

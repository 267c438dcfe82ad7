package server

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/rezonia/nfe-converter/internal/model"
	"github.com/rezonia/nfe-converter/internal/preview"
	"github.com/rezonia/nfe-converter/internal/processor"
	"github.com/rezonia/nfe-converter/internal/workbook"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Config holds server configuration
type Config struct {
	Address      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	MaxBodyBytes int64
	ZipLimits    processor.ZipLimits
	Normalize    bool
	PreviewLimit int
	Debug        bool
	Logger       zerolog.Logger
}

// Server represents the HTTP API server
type Server struct {
	config   *Config
	router   *gin.Engine
	pipeline *processor.Pipeline
	log      zerolog.Logger
}

// NewServer creates a new API server
func NewServer(config *Config) *Server {
	if !config.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	log := config.Logger.With().Str("component", "server").Logger()

	router := gin.New()
	router.Use(gin.Recovery(), requestID(), requestLogger(log))
	if config.MaxBodyBytes > 0 {
		router.Use(bodyLimit(config.MaxBodyBytes))
	}
	router.SetHTMLTemplate(preview.Template())

	pipeline := processor.NewPipeline(
		processor.WithNormalize(config.Normalize),
		processor.WithPreviewLimit(config.PreviewLimit),
		processor.WithLogger(log),
	)

	s := &Server{
		config:   config,
		router:   router,
		pipeline: pipeline,
		log:      log,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	// Health check
	s.router.GET("/health", s.handleHealth)

	// API v1
	v1 := s.router.Group("/api/v1")
	{
		v1.POST("/parse", s.handleParse)
		v1.POST("/convert", s.handleConvert)
		v1.POST("/preview", s.handlePreview)
		v1.POST("/validate", s.handleValidate)
		v1.POST("/info", s.handleInfo)
		v1.POST("/batch", s.handleBatch)
	}
}

// Run starts the HTTP server and shuts it down when ctx is done
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.config.Address,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("address", s.config.Address).Msg("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.log.Info().Msg("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

// Handler returns the http.Handler for use with custom servers
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// readBody returns the request body, or writes an error response and
// returns false.
func (s *Server) readBody(c *gin.Context) ([]byte, bool) {
	body, err := c.GetRawData()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{Error: "request body too large"})
			return nil, false
		}
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "failed to read request body"})
		return nil, false
	}

	if len(body) == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "empty request body"})
		return nil, false
	}
	return body, true
}

// extract runs the pipeline on the request body, writing an error
// response when it fails.
func (s *Server) extract(c *gin.Context) (*processor.Result, bool) {
	body, ok := s.readBody(c)
	if !ok {
		return nil, false
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	result := s.pipeline.ProcessXMLBytes(ctx, body)
	if result.Error != nil {
		s.pipelineError(c, result.Error)
		return nil, false
	}
	return result, true
}

func (s *Server) pipelineError(c *gin.Context, err error) {
	status := http.StatusUnprocessableEntity
	if model.Kind(err) == model.KindBuild {
		status = http.StatusInternalServerError
	}
	c.JSON(status, ErrorResponse{
		Error:   model.UserMessage(err),
		Kind:    model.Kind(err),
		Details: err.Error(),
	})
}

func (s *Server) handleParse(c *gin.Context) {
	result, ok := s.extract(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, ParseResponse{
		Invoice:  result.Invoice,
		Method:   string(result.Method),
		Warnings: result.Warnings,
	})
}

func (s *Server) handleConvert(c *gin.Context) {
	result, ok := s.extract(c)
	if !ok {
		return
	}

	wb, err := s.pipeline.BuildWorkbook(result.Invoice)
	if err != nil {
		s.pipelineError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := wb.WriteXLSX(&buf); err != nil {
		s.pipelineError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+workbook.FileName(result.Invoice)+`"`)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func (s *Server) handlePreview(c *gin.Context) {
	result, ok := s.extract(c)
	if !ok {
		return
	}

	c.HTML(http.StatusOK, preview.TemplateName, s.pipeline.Preview(result.Invoice))
}

func (s *Server) handleValidate(c *gin.Context) {
	body, ok := s.readBody(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	result := s.pipeline.ProcessXMLBytes(ctx, body)
	if result.Error != nil {
		c.JSON(http.StatusUnprocessableEntity, ValidationResponse{
			Valid:  false,
			Errors: []string{model.UserMessage(result.Error)},
		})
		return
	}

	strict := c.Query("strict") == "true"
	report := processor.Validate(result.Invoice, strict)

	c.JSON(http.StatusOK, ValidationResponse{
		Valid:    report.Valid,
		Errors:   messages(report.Errors),
		Warnings: messages(report.Warnings),
	})
}

func (s *Server) handleInfo(c *gin.Context) {
	result, ok := s.extract(c)
	if !ok {
		return
	}

	inv := result.Invoice
	c.JSON(http.StatusOK, InfoResponse{
		AccessKey:   inv.AccessKey,
		Number:      inv.Number,
		Version:     inv.Document.Version,
		Model:       inv.Document.ModelName(),
		Environment: inv.Document.EnvironmentName(),
		Authorized:  inv.Document.Authorized,
		Items:       len(inv.Items),
		Payments:    len(inv.Payments),
	})
}

// handleBatch accepts a zip archive of NF-e documents and answers with a
// consolidated workbook.
func (s *Server) handleBatch(c *gin.Context) {
	body, ok := s.readBody(c)
	if !ok {
		return
	}

	if processor.DetectFormat(body) != processor.FormatZip {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "expected a zip archive"})
		return
	}

	docs, err := processor.DocumentsFromZip(body, s.config.ZipLimits)
	if errors.Is(err, processor.ErrArchiveTooLarge) {
		c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{Error: "archive content too large", Details: err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid zip archive", Details: err.Error()})
		return
	}

	if len(docs) == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "no XML files in archive"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Minute)
	defer cancel()

	res, err := s.pipeline.Batch(ctx, docs, processor.BatchOptions{})
	if err != nil {
		// Every document failed to extract: the archive is at fault, not
		// the workbook builder.
		if res != nil && len(res.Invoices) == 0 && len(res.Issues) > 0 {
			c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
				Error:    "no valid NF-e documents in archive",
				Warnings: res.Issues,
			})
			return
		}
		s.pipelineError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := res.Workbook.WriteXLSX(&buf); err != nil {
		s.pipelineError(c, err)
		return
	}

	for _, issue := range res.Issues {
		c.Writer.Header().Add("X-Processing-Issue", issue)
	}
	c.Header("Content-Disposition", `attachment; filename="notas.xlsx"`)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func messages(findings []*model.ValidationError) []string {
	out := make([]string, 0, len(findings))
	for _, f := range findings {
		out = append(out, f.Message)
	}
	return out
}

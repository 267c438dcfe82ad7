package processor

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rezonia/nfe-converter/internal/model"
	"github.com/rezonia/nfe-converter/internal/workbook"
)

// IssuesFileName is written next to batch output when documents fail
const IssuesFileName = "processing.log"

// Default zip extraction limits
const (
	DefaultMaxEntryBytes int64 = 10 << 20
	DefaultMaxTotalBytes int64 = 100 << 20
)

// ErrArchiveTooLarge is returned when a zip entry or the sum of its XML
// entries decompresses past the configured limit.
var ErrArchiveTooLarge = errors.New("archive content exceeds the size limit")

// ZipLimits bounds the decompressed size of zip input. Non-positive fields
// fall back to the defaults.
type ZipLimits struct {
	MaxEntryBytes int64
	MaxTotalBytes int64
}

// DefaultZipLimits returns 10 MiB per entry and 100 MiB per archive
func DefaultZipLimits() ZipLimits {
	return ZipLimits{MaxEntryBytes: DefaultMaxEntryBytes, MaxTotalBytes: DefaultMaxTotalBytes}
}

func (l ZipLimits) withDefaults() ZipLimits {
	if l.MaxEntryBytes <= 0 {
		l.MaxEntryBytes = DefaultMaxEntryBytes
	}
	if l.MaxTotalBytes <= 0 {
		l.MaxTotalBytes = DefaultMaxTotalBytes
	}
	return l
}

// Document is one named input buffer
type Document struct {
	Name string
	Data []byte
}

// CollectDocuments gathers XML documents from a file, a directory
// (recursively, sorted by path) or a zip archive (in archive order, bounded
// by limits).
func CollectDocuments(path string, limits ZipLimits) ([]Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("input not found: %s", path)
	}

	var docs []Document
	switch {
	case info.IsDir():
		docs, err = collectDir(path)
	case hasExt(path, ".xml"):
		var data []byte
		data, err = os.ReadFile(path)
		docs = []Document{{Name: filepath.Base(path), Data: data}}
	case hasExt(path, ".zip"):
		docs, err = collectZip(path, limits)
	default:
		return nil, fmt.Errorf("unsupported input type: %s", filepath.Ext(path))
	}
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("no XML files found in %s", path)
	}
	return docs, nil
}

func collectDir(root string) ([]Document, error) {
	var paths []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && hasExt(p, ".xml") {
			paths = append(paths, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)

	docs := make([]Document, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, err
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			rel = filepath.Base(p)
		}
		docs = append(docs, Document{Name: filepath.ToSlash(rel), Data: data})
	}
	return docs, nil
}

func collectZip(path string, limits ZipLimits) ([]Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open zip: %w", err)
	}
	return DocumentsFromZip(data, limits)
}

// DocumentsFromZip returns the XML entries of an in-memory zip archive in
// archive order. Entries are read through a bounded reader, so a declared
// size that lies cannot push past limits.
func DocumentsFromZip(data []byte, limits ZipLimits) ([]Document, error) {
	limits = limits.withDefaults()

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open zip: %w", err)
	}

	var docs []Document
	var total int64
	for _, f := range zr.File {
		if f.FileInfo().IsDir() || !hasExt(f.Name, ".xml") {
			continue
		}

		budget := min(limits.MaxEntryBytes, limits.MaxTotalBytes-total)
		if f.UncompressedSize64 > uint64(budget) {
			return nil, fmt.Errorf("%s: %w", f.Name, ErrArchiveTooLarge)
		}

		content, err := readEntry(f, budget)
		if err != nil {
			return nil, err
		}
		total += int64(len(content))
		docs = append(docs, Document{Name: f.Name, Data: content})
	}
	return docs, nil
}

func readEntry(f *zip.File, budget int64) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer rc.Close()

	content, err := io.ReadAll(io.LimitReader(rc, budget+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.Name, err)
	}
	if int64(len(content)) > budget {
		return nil, fmt.Errorf("%s: %w", f.Name, ErrArchiveTooLarge)
	}
	return content, nil
}

func hasExt(name, ext string) bool {
	return strings.EqualFold(filepath.Ext(name), ext)
}

// BatchOptions controls a batch run
type BatchOptions struct {
	// DryRun parses documents without building or writing a workbook
	DryRun bool
	// OutputDir receives the workbook and the issues log. Empty means no
	// files are written.
	OutputDir    string
	WorkbookName string
}

// BatchResult summarizes a batch run
type BatchResult struct {
	Invoices   []*model.Invoice
	Issues     []string
	Workbook   *workbook.Workbook
	OutputPath string
	IssuesPath string
}

// Batch extracts every document and builds one consolidated workbook.
// A failing document is recorded as an issue and skipped.
func (p *Pipeline) Batch(ctx context.Context, docs []Document, opts BatchOptions) (*BatchResult, error) {
	res := &BatchResult{}

	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		r := p.ProcessXMLBytes(ctx, doc.Data)
		if r.Error != nil {
			issue := fmt.Sprintf("failed to process %s: %s", doc.Name, model.UserMessage(r.Error))
			res.Issues = append(res.Issues, issue)
			p.log.Warn().Err(r.Error).Str("file", doc.Name).Msg("skipping document")
			continue
		}
		res.Invoices = append(res.Invoices, r.Invoice)
	}

	p.log.Info().
		Int("documents", len(docs)).
		Int("invoices", len(res.Invoices)).
		Int("issues", len(res.Issues)).
		Bool("dry_run", opts.DryRun).
		Msg("batch processed")

	if opts.DryRun {
		return res, nil
	}

	if opts.OutputDir != "" && len(res.Issues) > 0 {
		path, err := WriteIssues(opts.OutputDir, res.Issues)
		if err != nil {
			return res, err
		}
		res.IssuesPath = path
	}

	wb, err := workbook.BuildConsolidated(res.Invoices)
	if err != nil {
		return res, err
	}
	res.Workbook = wb

	if opts.OutputDir == "" {
		return res, nil
	}

	name := opts.WorkbookName
	if name == "" {
		name = "notas" + workbook.Extension
	}
	out := filepath.Join(opts.OutputDir, name)
	if err := writeWorkbook(out, wb); err != nil {
		return res, err
	}
	res.OutputPath = out
	return res, nil
}

func writeWorkbook(path string, wb *workbook.Workbook) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	var buf bytes.Buffer
	if err := wb.WriteXLSX(&buf); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

// WriteIssues writes one issue per line to dir/processing.log
func WriteIssues(dir string, issues []string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}
	path := filepath.Join(dir, IssuesFileName)
	if err := os.WriteFile(path, []byte(strings.Join(issues, "\n")+"\n"), 0o644); err != nil {
		return "", fmt.Errorf("write issues log: %w", err)
	}
	return path, nil
}

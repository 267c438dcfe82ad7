package workbook

import (
	"fmt"
	"strings"

	"github.com/rezonia/nfe-converter/internal/model"
)

// FallbackStem names exports of invoices without a usable number
const FallbackStem = "nfe"

// Extension of exported workbooks
const Extension = ".xlsx"

// FileStem derives an export file stem from an invoice number. Every
// character outside [A-Za-z0-9_-] becomes an underscore.
func FileStem(number string) string {
	stem := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			return r
		default:
			return '_'
		}
	}, number)

	if stem == "" {
		return FallbackStem
	}
	return stem
}

// FileName returns the export file name for an invoice
func FileName(inv *model.Invoice) string {
	if inv == nil {
		return FallbackStem + Extension
	}
	return FileStem(inv.Number) + Extension
}

// FileNamer hands out export file names that are unique within one run.
// A taken name gets the access key appended, then a numeric suffix.
// Names are compared case-insensitively.
type FileNamer struct {
	used map[string]bool
}

// NewFileNamer creates an empty namer
func NewFileNamer() *FileNamer {
	return &FileNamer{used: make(map[string]bool)}
}

// Next returns an unused file name for inv and marks it as used
func (n *FileNamer) Next(inv *model.Invoice) string {
	stem := FallbackStem
	var candidates []string
	if inv != nil {
		stem = FileStem(inv.Number)
		candidates = append(candidates, stem)
		if inv.AccessKey != "" {
			candidates = append(candidates, stem+"_"+FileStem(inv.AccessKey))
		}
	} else {
		candidates = append(candidates, stem)
	}

	for _, c := range candidates {
		if n.claim(c + Extension) {
			return c + Extension
		}
	}
	for i := 2; ; i++ {
		name := fmt.Sprintf("%s-%d%s", stem, i, Extension)
		if n.claim(name) {
			return name
		}
	}
}

func (n *FileNamer) claim(name string) bool {
	key := strings.ToLower(name)
	if n.used[key] {
		return false
	}
	n.used[key] = true
	return true
}

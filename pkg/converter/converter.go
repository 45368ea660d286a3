// Package converter turns source documents into the RawDocument the
// extraction core consumes.
//
// Supported formats:
//   - .json  raw document already produced by an external converter
//   - .md    markdown export (tables via the GFM table extension)
//   - .html  HTML export, sanitised before parsing
//   - .pdf   text-only extraction with pdfcpu, one block per line
//   - .txt   plain text, blank lines split blocks, form feeds split pages
package converter

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/dtnitsch/llm-pdf-parser/models"
)

// Format identifies an input format.
type Format string

const (
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
	FormatPDF      Format = "pdf"
	FormatText     Format = "text"
)

// ErrUnsupportedFormat is returned for inputs no converter handles.
var ErrUnsupportedFormat = errors.New("unsupported format")

// Options tunes conversion.
type Options struct {
	Source      string // recorded in RawDocument.Source
	Readability bool   // HTML only: reduce the page to its main content first
	MaxPages    int    // PDF only: 0 converts every page
}

// Detect returns the format for a file path based on its extension.
func Detect(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".md", ".markdown":
		return FormatMarkdown, nil
	case ".html", ".htm":
		return FormatHTML, nil
	case ".pdf":
		return FormatPDF, nil
	case ".txt", ".text":
		return FormatText, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// Sniff guesses the format of an in-memory body, preferring an explicit
// content type and falling back to the leading bytes.
func Sniff(contentType string, data []byte) Format {
	ct := strings.ToLower(contentType)
	switch {
	case strings.Contains(ct, "json"):
		return FormatJSON
	case strings.Contains(ct, "markdown"):
		return FormatMarkdown
	case strings.Contains(ct, "html"):
		return FormatHTML
	case strings.Contains(ct, "pdf"):
		return FormatPDF
	}

	trimmed := strings.TrimSpace(string(data[:min(len(data), 512)]))
	switch {
	case strings.HasPrefix(trimmed, "{"):
		return FormatJSON
	case strings.HasPrefix(trimmed, "%PDF"):
		return FormatPDF
	}
	switch http.DetectContentType(data) {
	case "text/html; charset=utf-8":
		return FormatHTML
	case "application/pdf":
		return FormatPDF
	}
	return FormatMarkdown
}

// Convert parses data in the given format.
func Convert(ctx context.Context, format Format, data []byte, opts Options) (*models.RawDocument, error) {
	var (
		doc *models.RawDocument
		err error
	)
	switch format {
	case FormatJSON:
		doc, err = convertJSON(data)
	case FormatMarkdown:
		doc, err = convertMarkdown(data)
	case FormatHTML:
		doc, err = convertHTML(data, opts)
	case FormatPDF:
		doc, err = convertPDF(ctx, data, opts)
	case FormatText:
		doc, err = convertText(data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, err
	}
	if doc.Source == "" {
		doc.Source = opts.Source
	}
	return doc, nil
}

// builder accumulates blocks page by page.
type builder struct {
	pages []models.Page
}

func newBuilder() *builder {
	return &builder{pages: []models.Page{{Number: 1, Blocks: []models.Block{}}}}
}

func (b *builder) current() *models.Page {
	return &b.pages[len(b.pages)-1]
}

func (b *builder) text(content, label string) {
	content = strings.TrimSpace(content)
	if content == "" {
		return
	}
	p := b.current()
	p.Blocks = append(p.Blocks, models.Block{Type: models.BlockTypeText, Content: content, Label: label})
}

func (b *builder) table(rows [][]string) {
	rows = rectangular(rows)
	if len(rows) == 0 {
		return
	}
	p := b.current()
	p.Blocks = append(p.Blocks, models.Block{Type: models.BlockTypeTable, Rows: rows})
}

// pageBreak starts a new page unless the current one is still empty.
func (b *builder) pageBreak() {
	if len(b.current().Blocks) == 0 {
		return
	}
	b.pages = append(b.pages, models.Page{Number: len(b.pages) + 1, Blocks: []models.Block{}})
}

func (b *builder) document() *models.RawDocument {
	pages := b.pages
	if len(pages) == 1 && len(pages[0].Blocks) == 0 {
		pages = []models.Page{}
	}
	return &models.RawDocument{Pages: pages}
}

// rectangular pads every row to the widest row so the table passes
// structural validation. Rows with no content at all are dropped.
func rectangular(rows [][]string) [][]string {
	width := 0
	var kept [][]string
	for _, row := range rows {
		empty := true
		for _, c := range row {
			if strings.TrimSpace(c) != "" {
				empty = false
				break
			}
		}
		if empty {
			continue
		}
		kept = append(kept, row)
		width = max(width, len(row))
	}
	for i, row := range kept {
		if len(row) < width {
			padded := make([]string, width)
			copy(padded, row)
			kept[i] = padded
		}
	}
	return kept
}

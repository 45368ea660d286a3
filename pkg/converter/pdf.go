package converter

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"
	"unicode"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/dtnitsch/llm-pdf-parser/models"
)

// convertPDF reads the text operators of every page. Layout is not
// reconstructed, so a PDF never yields table blocks; use a converter that
// detects tables and feed its JSON instead.
func convertPDF(ctx context.Context, data []byte, opts Options) (*models.RawDocument, error) {
	conf := model.NewDefaultConfiguration()
	pctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), conf)
	if err != nil {
		return nil, fmt.Errorf("failed to read pdf: %w", err)
	}

	pageCount := pctx.PageCount
	if opts.MaxPages > 0 && opts.MaxPages < pageCount {
		pageCount = opts.MaxPages
	}

	doc := &models.RawDocument{Pages: make([]models.Page, 0, pageCount)}
	for pageNr := 1; pageNr <= pageCount; pageNr++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page := models.Page{Number: pageNr, Blocks: []models.Block{}}
		for _, line := range strings.Split(pageText(pctx, pageNr), "\n") {
			if line = cleanLine(line); line != "" {
				page.Blocks = append(page.Blocks, models.Block{Type: models.BlockTypeText, Content: line})
			}
		}
		doc.Pages = append(doc.Pages, page)
	}
	return doc, nil
}

func pageText(ctx *model.Context, pageNr int) string {
	r, err := pdfcpu.ExtractPageContent(ctx, pageNr)
	if err != nil || r == nil {
		return ""
	}
	data, err := io.ReadAll(r)
	if err != nil || len(data) == 0 {
		return ""
	}
	return textFromStream(data)
}

// pdfStringRe matches PDF string literals, escaped parentheses included.
var pdfStringRe = regexp.MustCompile(`\(((?:\\.|[^\\)])*)\)`)

// textFromStream walks content stream operators. Text showing operators
// append to the current line; positioning operators end it.
func textFromStream(data []byte) string {
	var sb strings.Builder
	newline := func() {
		if sb.Len() > 0 {
			sb.WriteByte('\n')
		}
	}

	for _, line := range bytes.Split(data, []byte{'\n'}) {
		line = bytes.TrimSpace(line)
		switch {
		case len(line) == 0:
		case bytes.HasSuffix(line, []byte("Tj")), bytes.HasSuffix(line, []byte("TJ")):
			for _, m := range pdfStringRe.FindAllSubmatch(line, -1) {
				sb.WriteString(decodePDFString(m[1]))
			}
		case bytes.HasSuffix(line, []byte("'")) && bytes.Contains(line, []byte("(")):
			newline()
			for _, m := range pdfStringRe.FindAllSubmatch(line, -1) {
				sb.WriteString(decodePDFString(m[1]))
			}
		case bytes.HasSuffix(line, []byte("Td")), bytes.HasSuffix(line, []byte("TD")),
			bytes.Equal(line, []byte("T*")), bytes.Equal(line, []byte("ET")):
			newline()
		}
	}
	return sb.String()
}

// decodePDFString resolves the escape sequences of a PDF literal string.
func decodePDFString(raw []byte) string {
	var sb strings.Builder
	for i := 0; i < len(raw); i++ {
		if raw[i] != '\\' || i+1 >= len(raw) {
			sb.WriteByte(raw[i])
			continue
		}
		i++
		switch c := raw[i]; c {
		case 'n':
			sb.WriteByte('\n')
		case 'r':
			sb.WriteByte('\r')
		case 't':
			sb.WriteByte('\t')
		case '\\', '(', ')':
			sb.WriteByte(c)
		default:
			if c < '0' || c > '7' {
				sb.WriteByte(c)
				continue
			}
			val := int(c - '0')
			for n := 0; n < 2 && i+1 < len(raw) && raw[i+1] >= '0' && raw[i+1] <= '7'; n++ {
				i++
				val = val*8 + int(raw[i]-'0')
			}
			sb.WriteByte(byte(val))
		}
	}
	return sb.String()
}

// cleanLine collapses whitespace and drops unprintable runes.
func cleanLine(s string) string {
	var sb strings.Builder
	space := false
	for _, r := range s {
		switch {
		case unicode.IsSpace(r):
			if !space && sb.Len() > 0 {
				sb.WriteByte(' ')
				space = true
			}
		case unicode.IsPrint(r):
			sb.WriteRune(r)
			space = false
		}
	}
	return strings.TrimSpace(sb.String())
}

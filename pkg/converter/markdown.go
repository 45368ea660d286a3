package converter

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"

	"github.com/dtnitsch/llm-pdf-parser/models"
)

// pageBreakMarker is the HTML comment docling writes between pages of a
// markdown export.
const pageBreakMarker = "<!-- page-break -->"

func convertMarkdown(data []byte) (*models.RawDocument, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	root := md.Parser().Parse(text.NewReader(data))

	w := &mdWalker{source: data, b: newBuilder()}
	for n := root.FirstChild(); n != nil; n = n.NextSibling() {
		w.block(n)
	}
	return w.b.document(), nil
}

type mdWalker struct {
	source []byte
	b      *builder
}

func (w *mdWalker) block(n ast.Node) {
	switch n := n.(type) {
	case *ast.Heading:
		label := "section_header"
		if n.Level == 1 {
			label = "title"
		}
		w.b.text(w.inline(n), label)
	case *ast.Paragraph, *ast.TextBlock:
		w.b.text(w.inline(n), "")
	case *ast.List:
		var items []string
		for item := n.FirstChild(); item != nil; item = item.NextSibling() {
			var parts []string
			for c := item.FirstChild(); c != nil; c = c.NextSibling() {
				if s := strings.TrimSpace(w.inline(c)); s != "" {
					parts = append(parts, s)
				}
			}
			if len(parts) > 0 {
				items = append(items, "- "+strings.Join(parts, " "))
			}
		}
		w.b.text(strings.Join(items, "\n"), "list")
	case *ast.FencedCodeBlock, *ast.CodeBlock:
		w.b.text(w.lines(n), "code")
	case *ast.Blockquote:
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			w.block(c)
		}
	case *ast.HTMLBlock:
		if strings.Contains(w.lines(n), pageBreakMarker) {
			w.b.pageBreak()
		}
	case *extast.Table:
		w.b.table(w.table(n))
	}
}

// inline collects the visible text of n, keeping hard and soft line breaks.
func (w *mdWalker) inline(n ast.Node) string {
	var sb strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch c := c.(type) {
		case *ast.Text:
			sb.Write(c.Segment.Value(w.source))
			if c.SoftLineBreak() || c.HardLineBreak() {
				sb.WriteByte('\n')
			}
		case *ast.String:
			sb.Write(c.Value)
		case *ast.AutoLink:
			sb.Write(c.Label(w.source))
			return ast.WalkSkipChildren, nil
		case *ast.RawHTML:
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return sb.String()
}

func (w *mdWalker) lines(n ast.Node) string {
	var sb strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		sb.Write(seg.Value(w.source))
	}
	return sb.String()
}

func (w *mdWalker) table(n *extast.Table) [][]string {
	var rows [][]string
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch c.(type) {
		case *extast.TableHeader, *extast.TableRow:
			var row []string
			for cell := c.FirstChild(); cell != nil; cell = cell.NextSibling() {
				if _, ok := cell.(*extast.TableCell); ok {
					row = append(row, strings.TrimSpace(w.inline(cell)))
				}
			}
			rows = append(rows, row)
		}
	}
	return rows
}

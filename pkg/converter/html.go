package converter

import (
	"bufio"
	"bytes"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
	"github.com/microcosm-cc/bluemonday"

	"github.com/dtnitsch/llm-pdf-parser/models"
)

const pageBreakClass = "page-break"

// htmlPolicy keeps structure (headings, lists, tables) and the page-break
// class, and drops scripts, styles and event handlers.
var htmlPolicy = func() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class").Matching(regexp.MustCompile(`^` + pageBreakClass + `$`)).Globally()
	return p
}()

var htmlLabels = map[string]string{
	"h1": "title",
	"h2": "section_header",
	"h3": "section_header",
	"h4": "section_header",
	"h5": "section_header",
	"h6": "section_header",
	"li": "list",
	"pre": "code",
}

func convertHTML(data []byte, opts Options) (*models.RawDocument, error) {
	raw := string(data)
	if opts.Readability {
		base, _ := url.Parse("file:///" + opts.Source)
		parser := readability.NewParser()
		article, err := parser.Parse(strings.NewReader(raw), base)
		if err != nil {
			return nil, fmt.Errorf("failed to extract main content: %w", err)
		}
		raw = article.Content
	}

	clean := htmlPolicy.SanitizeBytes([]byte(raw))
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(clean))
	if err != nil {
		return nil, fmt.Errorf("failed to parse html: %w", err)
	}

	b := newBuilder()
	doc.Find("h1,h2,h3,h4,h5,h6,p,li,pre,table,." + pageBreakClass).Each(func(_ int, s *goquery.Selection) {
		if s.HasClass(pageBreakClass) {
			b.pageBreak()
			return
		}
		// Content nested in a table or list item is emitted by its container.
		if s.ParentsFiltered("table").Length() > 0 {
			return
		}
		tag := goquery.NodeName(s)
		if tag != "li" && s.ParentsFiltered("li").Length() > 0 {
			return
		}

		switch tag {
		case "table":
			b.table(htmlTable(s))
		case "pre":
			b.text(s.Text(), htmlLabels[tag])
		default:
			b.text(normalizeText(s.Text()), htmlLabels[tag])
		}
	})
	return b.document(), nil
}

// normalizeText joins the non-empty trimmed lines of input with single spaces.
func normalizeText(input string) string {
	var b strings.Builder
	b.Grow(len(input))
	scanner := bufio.NewScanner(strings.NewReader(input))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			b.WriteString(line)
			b.WriteString(" ")
		}
	}
	return strings.TrimSpace(b.String())
}

// htmlTable reads every row of a table, header cells included, in order.
func htmlTable(s *goquery.Selection) [][]string {
	var rows [][]string
	s.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		if !tr.ParentsFiltered("table").First().IsSelection(s) {
			return
		}
		var row []string
		tr.ChildrenFiltered("th,td").Each(func(_ int, cell *goquery.Selection) {
			row = append(row, normalizeText(cell.Text()))
		})
		rows = append(rows, row)
	})
	return rows
}

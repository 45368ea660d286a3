// Package separator routes converter blocks into a narrative stream and a
// table stream. A block is a table only if the converter typed it as one;
// tabular layout is never re-detected from plain text.
package separator

import (
	"fmt"

	"github.com/dtnitsch/llm-pdf-parser/models"
)

// Streams is the partition of a RawDocument, both sides in document order.
type Streams struct {
	Text   []models.TextBlock
	Tables []models.TableBlock
}

// ConversionInputError reports a structurally invalid RawDocument. Extraction of the
// document is aborted.
type ConversionInputError struct {
	Page   int
	Index  int
	Reason string
}

func (e *ConversionInputError) Error() string {
	return fmt.Sprintf("invalid document input at page %d block %d: %s", e.Page, e.Index, e.Reason)
}

// Separate partitions doc. A nil or empty document yields two empty streams.
func Separate(doc *models.RawDocument) (Streams, error) {
	var s Streams
	if doc == nil {
		return s, nil
	}

	seq := 0
	for pi, page := range doc.Pages {
		pageNum := page.PageNumber(pi)
		for bi, block := range page.Blocks {
			pos := models.Position{
				Page:  pageNum,
				Index: bi,
				Seq:   seq,
				BBox:  block.BBox,
			}

			switch block.Type {
			case models.BlockTypeTable:
				if err := validateTable(block); err != nil {
					return Streams{}, &ConversionInputError{Page: pageNum, Index: bi, Reason: err.Error()}
				}
				s.Tables = append(s.Tables, models.TableBlock{
					Rows:     block.Rows,
					Position: pos,
				})
			case models.BlockTypeText:
				if len(block.Rows) > 0 {
					return Streams{}, &ConversionInputError{Page: pageNum, Index: bi, Reason: "text block carries table rows"}
				}
				s.Text = append(s.Text, models.TextBlock{
					Content:  block.Content,
					Label:    block.Label,
					Position: pos,
				})
			default:
				return Streams{}, &ConversionInputError{Page: pageNum, Index: bi, Reason: fmt.Sprintf("unknown block type %q", block.Type)}
			}
			seq++
		}
	}

	return s, nil
}

// validateTable rejects ragged tables and tables with stray text content.
// An empty table (zero rows) is valid.
func validateTable(block models.Block) error {
	if block.Content != "" {
		return fmt.Errorf("table block carries text content")
	}
	if len(block.Rows) == 0 {
		return nil
	}
	width := len(block.Rows[0])
	for i, row := range block.Rows[1:] {
		if len(row) != width {
			return fmt.Errorf("inconsistent row length: row %d has %d cells, header has %d", i+1, len(row), width)
		}
	}
	return nil
}

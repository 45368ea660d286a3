// Package models defines the data structures shared by the converters, the
// extraction core and the service layer.
package models

// BlockType tags a converter block as narrative text or table payload.
type BlockType string

const (
	BlockTypeText  BlockType = "text"
	BlockTypeTable BlockType = "table"
)

// BBox is an optional bounding box reported by the converter: [x0, y0, x1, y1].
type BBox [4]float64

// RawDocument is the ordered output of the external document converter.
type RawDocument struct {
	Source string `json:"source,omitempty"`
	Pages  []Page `json:"pages"`
}

// Page holds the blocks of a single page in reading order.
type Page struct {
	Number int     `json:"number"` // 1-based; 0 means "use the page ordinal"
	Blocks []Block `json:"blocks"`
}

// Block is the tagged variant produced by the converter. Text blocks carry
// Content (and optionally a Label such as "section_header"), table blocks
// carry Rows with row 0 as the header.
type Block struct {
	Type    BlockType  `json:"type"`
	Content string     `json:"content,omitempty"`
	Label   string     `json:"label,omitempty"`
	Rows    [][]string `json:"rows,omitempty"`
	BBox    *BBox      `json:"bbox,omitempty"`
}

// Position locates a block inside its RawDocument.
type Position struct {
	Page  int   `json:"page"`
	Index int   `json:"index"` // index within the page
	Seq   int   `json:"seq"`   // global document order
	BBox  *BBox `json:"bbox,omitempty"`
}

// TextBlock is a narrative block routed by the separator.
type TextBlock struct {
	Content  string
	Label    string
	Position Position
}

// TableBlock is a table routed by the separator.
type TableBlock struct {
	Rows     [][]string
	Position Position
}

// Header returns the first row of the table, or nil for an empty table.
func (t TableBlock) Header() []string {
	if len(t.Rows) == 0 {
		return nil
	}
	return t.Rows[0]
}

// Data returns all rows after the header.
func (t TableBlock) Data() [][]string {
	if len(t.Rows) < 2 {
		return nil
	}
	return t.Rows[1:]
}

// PageNumber resolves the effective page number of the page at ordinal i.
func (p Page) PageNumber(i int) int {
	if p.Number > 0 {
		return p.Number
	}
	return i + 1
}

// BlockCount returns the total number of blocks in the document.
func (d *RawDocument) BlockCount() int {
	if d == nil {
		return 0
	}
	n := 0
	for _, p := range d.Pages {
		n += len(p.Blocks)
	}
	return n
}

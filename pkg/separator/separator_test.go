package separator

import (
	"errors"
	"testing"

	"github.com/dtnitsch/llm-pdf-parser/models"
)

func TestSeparate_Empty(t *testing.T) {
	tests := []struct {
		name string
		doc  *models.RawDocument
	}{
		{name: "nil document", doc: nil},
		{name: "zero pages", doc: &models.RawDocument{}},
		{name: "pages with zero blocks", doc: &models.RawDocument{Pages: []models.Page{{Number: 1}, {Number: 2}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Separate(tt.doc)
			if err != nil {
				t.Fatalf("Separate() error = %v", err)
			}
			if len(s.Text) != 0 || len(s.Tables) != 0 {
				t.Errorf("Separate() = %d text, %d tables, want 0 and 0", len(s.Text), len(s.Tables))
			}
		})
	}
}

func TestSeparate_PartitionAndOrder(t *testing.T) {
	doc := &models.RawDocument{Pages: []models.Page{
		{Number: 1, Blocks: []models.Block{
			{Type: models.BlockTypeText, Content: "Intro"},
			{Type: models.BlockTypeTable, Rows: [][]string{{"Room", "Rate"}, {"Villa", "500"}}},
		}},
		{Number: 0, Blocks: []models.Block{
			{Type: models.BlockTypeText, Content: "Terms"},
			{Type: models.BlockTypeTable},
		}},
	}}

	s, err := Separate(doc)
	if err != nil {
		t.Fatalf("Separate() error = %v", err)
	}
	if len(s.Text) != 2 || len(s.Tables) != 2 {
		t.Fatalf("Separate() = %d text, %d tables, want 2 and 2", len(s.Text), len(s.Tables))
	}

	seen := map[int]bool{}
	for _, b := range s.Text {
		seen[b.Position.Seq] = true
	}
	for _, b := range s.Tables {
		if seen[b.Position.Seq] {
			t.Errorf("seq %d routed to both streams", b.Position.Seq)
		}
		seen[b.Position.Seq] = true
	}
	if len(seen) != doc.BlockCount() {
		t.Errorf("accounted for %d blocks, want %d", len(seen), doc.BlockCount())
	}

	if s.Text[0].Content != "Intro" || s.Text[1].Content != "Terms" {
		t.Errorf("text order = %q, %q", s.Text[0].Content, s.Text[1].Content)
	}
	if s.Text[1].Position.Page != 2 {
		t.Errorf("page ordinal fallback = %d, want 2", s.Text[1].Position.Page)
	}
	if s.Tables[0].Position.Seq != 1 || s.Tables[1].Position.Seq != 3 {
		t.Errorf("table seqs = %d, %d, want 1, 3", s.Tables[0].Position.Seq, s.Tables[1].Position.Seq)
	}
}

func TestSeparate_InvalidInput(t *testing.T) {
	tests := []struct {
		name  string
		block models.Block
	}{
		{name: "ragged table", block: models.Block{Type: models.BlockTypeTable, Rows: [][]string{{"a", "b"}, {"c"}}}},
		{name: "table with content", block: models.Block{Type: models.BlockTypeTable, Content: "x", Rows: [][]string{{"a"}}}},
		{name: "text with rows", block: models.Block{Type: models.BlockTypeText, Content: "x", Rows: [][]string{{"a"}}}},
		{name: "unknown type", block: models.Block{Type: "figure"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := &models.RawDocument{Pages: []models.Page{{Number: 3, Blocks: []models.Block{
				{Type: models.BlockTypeText, Content: "ok"},
				tt.block,
			}}}}
			_, err := Separate(doc)
			var inputErr *ConversionInputError
			if !errors.As(err, &inputErr) {
				t.Fatalf("Separate() error = %v, want *ConversionInputError", err)
			}
			if inputErr.Page != 3 || inputErr.Index != 1 {
				t.Errorf("ConversionInputError at page %d block %d, want page 3 block 1", inputErr.Page, inputErr.Index)
			}
		})
	}
}

// Package assembler combines the outputs of the extraction stages into the
// final ExtractionResult and checks that every input block is accounted for
// exactly once.
package assembler

import (
	"fmt"
	"math"
	"strings"

	"github.com/dtnitsch/llm-pdf-parser/models"
)

// Parts are the stage outputs of one document.
type Parts struct {
	Tables         []models.ClassifiedTable // document order
	KeyInformation models.KeyInformation
	Sections       []models.DocumentSection
	Warnings       []models.Warning
	BlockCount     int // blocks in the source document, 0 skips the count check
}

// Assemble builds the result. It fails when the parts do not partition the
// document: a block claimed twice, an unknown category, or a block count
// that does not add up.
func Assemble(p Parts) (*models.ExtractionResult, error) {
	claimed := make(map[int]string, p.BlockCount)
	claim := func(seq int, owner string) error {
		if prev, ok := claimed[seq]; ok {
			return fmt.Errorf("block %d claimed by both %s and %s", seq, prev, owner)
		}
		claimed[seq] = owner
		return nil
	}

	byType := make(map[models.Category][]models.ClassifiedTable)
	for _, t := range p.Tables {
		if !t.Category.IsValid() {
			return nil, fmt.Errorf("table %d has unknown category %q", t.ID, t.Category)
		}
		if err := claim(t.Position.Seq, fmt.Sprintf("table %d", t.ID)); err != nil {
			return nil, err
		}
		byType[t.Category] = append(byType[t.Category], t)
	}

	sections := make([]models.DocumentSection, len(p.Sections))
	copy(sections, p.Sections)
	var bodies []string
	for i := range sections {
		for _, seq := range sections[i].Blocks {
			if err := claim(seq, fmt.Sprintf("section %d", i)); err != nil {
				return nil, err
			}
		}
		sections[i].HasTables = hasTables(sections, i, p.Tables)
		if b := strings.TrimSpace(sections[i].Body); b != "" {
			bodies = append(bodies, sections[i].Body)
		}
	}

	if p.BlockCount > 0 && len(claimed) != p.BlockCount {
		return nil, fmt.Errorf("accounted for %d of %d blocks", len(claimed), p.BlockCount)
	}

	return &models.ExtractionResult{
		KeyInformation:   p.KeyInformation,
		TablesByType:     byType,
		NarrativeText:    strings.Join(bodies, "\n\n"),
		DocumentSections: sections,
		Warnings:         p.Warnings,
	}, nil
}

// hasTables reports whether a table falls between the first block of
// section i and the first block of the next section.
func hasTables(sections []models.DocumentSection, i int, tables []models.ClassifiedTable) bool {
	if len(sections[i].Blocks) == 0 {
		return false
	}
	lo, hi := sections[i].Blocks[0], math.MaxInt
	if i+1 < len(sections) && len(sections[i+1].Blocks) > 0 {
		hi = sections[i+1].Blocks[0]
	}
	for _, t := range tables {
		if t.Position.Seq > lo && t.Position.Seq < hi {
			return true
		}
	}
	return false
}

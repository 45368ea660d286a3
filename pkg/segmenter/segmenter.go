// Package segmenter groups the narrative stream into titled sections.
//
// A section starts at every heading block and whenever the page number
// jumps by at least the configured gap. The first text block always opens
// section 0, so a document that starts with plain text gets an untitled
// first section.
package segmenter

import (
	"strings"

	"github.com/dtnitsch/llm-pdf-parser/models"
	"github.com/dtnitsch/llm-pdf-parser/pkg/classifier"
)

// DefaultPageGap is the page advance that forces a new section.
const DefaultPageGap = 2

// Config configures a Segmenter. A nil PageGap selects DefaultPageGap and
// zero disables page-gap splitting; zero thresholds select the defaults.
type Config struct {
	PageGap         *int
	FormatText      bool
	MaxHeadingRunes int
	MaxHeadingWords int
}

// Segmenter is immutable after New and safe for concurrent use.
type Segmenter struct {
	pageGap  int
	format   bool
	maxRunes int
	maxWords int
}

// New builds a Segmenter.
func New(cfg Config) *Segmenter {
	s := &Segmenter{
		pageGap:  DefaultPageGap,
		format:   cfg.FormatText,
		maxRunes: cfg.MaxHeadingRunes,
		maxWords: cfg.MaxHeadingWords,
	}
	if cfg.PageGap != nil {
		s.pageGap = *cfg.PageGap
	}
	if s.maxRunes <= 0 {
		s.maxRunes = DefaultMaxHeadingRunes
	}
	if s.maxWords <= 0 {
		s.maxWords = DefaultMaxHeadingWords
	}
	return s
}

type draft struct {
	title    *string
	lines    []string
	first    int
	last     int
	blocks   []int
	lastPage int
}

// Segment splits blocks, which must be in document order, into sections.
// Every block lands in exactly one section.
func (s *Segmenter) Segment(blocks []models.TextBlock) []models.DocumentSection {
	sections := []models.DocumentSection{}
	var cur *draft

	flush := func() {
		if cur != nil {
			sections = append(sections, s.finish(cur))
		}
	}
	open := func(b models.TextBlock, title *string) {
		flush()
		cur = &draft{
			title:    title,
			first:    b.Position.Page,
			last:     b.Position.Page,
			lastPage: b.Position.Page,
		}
	}

	for _, b := range blocks {
		content := strings.ToValidUTF8(b.Content, "�")
		page := b.Position.Page

		title, rest, isHeading := s.heading(content, b.Label)
		switch {
		case isHeading:
			t := title
			open(b, &t)
		case cur == nil:
			open(b, nil)
		case s.pageGap > 0 && page-cur.lastPage >= s.pageGap:
			open(b, nil)
		}

		if isHeading {
			content = rest
		}
		if c := strings.TrimSpace(content); c != "" {
			cur.lines = append(cur.lines, c)
		}
		cur.blocks = append(cur.blocks, b.Position.Seq)
		cur.lastPage = page
		if page < cur.first {
			cur.first = page
		}
		if page > cur.last {
			cur.last = page
		}
	}
	flush()

	return sections
}

func (s *Segmenter) finish(d *draft) models.DocumentSection {
	body := strings.Join(d.lines, "\n")
	if s.format {
		body = FormatText(body)
	}
	typ := classifier.SectionGeneral
	if d.title != nil {
		typ = classifier.SectionType(*d.title)
	}
	return models.DocumentSection{
		Title:     d.title,
		Type:      typ,
		Body:      body,
		PageRange: models.PageRange{d.first, d.last},
		Blocks:    d.blocks,
	}
}

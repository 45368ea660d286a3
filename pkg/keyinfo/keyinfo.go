// Package keyinfo pulls resort name, validity period, currency and special
// offers out of the narrative text and table headers using ordered,
// declarative regex patterns.
package keyinfo

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/dtnitsch/llm-pdf-parser/models"
	"github.com/dtnitsch/llm-pdf-parser/pkg/classifier"
)

// Input is everything the extractor may look at. Tables are only used for
// the derived counts and flags; field patterns see Text and Headers.
type Input struct {
	Text    []models.TextBlock
	Headers [][]string
	Tables  []models.ClassifiedTable
}

// Config configures an Extractor. Windows overrides the rune window of a
// field by name; a nil Fields selects DefaultFields.
type Config struct {
	Fields  []FieldSpec
	Windows map[string]int
}

// Extractor is immutable after New and safe for concurrent use.
type Extractor struct {
	fields []FieldSpec
}

// New builds an Extractor.
func New(cfg Config) *Extractor {
	fields := cfg.Fields
	if fields == nil {
		fields = DefaultFields()
	}
	own := make([]FieldSpec, len(fields))
	copy(own, fields)
	for i := range own {
		if w, ok := cfg.Windows[own[i].Name]; ok {
			own[i].Window = w
		}
	}
	return &Extractor{fields: own}
}

// Extract scans in. A scalar field is set by the first pattern that matches
// in the first source that has a match, narrative before headers; a field
// that never matches stays nil. Text blocks that are not valid UTF-8 are
// skipped with a warning.
func (e *Extractor) Extract(in Input) (models.KeyInformation, []models.Warning) {
	info := models.KeyInformation{
		SpecialOffers:      []string{},
		MealPlansAvailable: []string{},
	}

	narrative, warnings := narrativeSource(in.Text)
	sources := []string{narrative, headerSource(in.Headers)}

	for _, f := range e.fields {
		if f.Cumulative {
			values := collect(f, sources)
			if f.Name == FieldSpecialOffers {
				info.SpecialOffers = values
			}
			continue
		}
		v, ok := first(f, sources)
		if !ok {
			continue
		}
		switch f.Name {
		case FieldResortName:
			info.ResortName = &v
		case FieldValidityPeriod:
			info.ValidityPeriod = &v
		case FieldCurrency:
			info.Currency = &v
		}
	}

	full := strings.ToLower(strings.Join(append(sources, cellSource(in.Tables)), "\n"))
	for _, plan := range mealPlans {
		if strings.Contains(full, strings.ToLower(plan)) {
			info.MealPlansAvailable = append(info.MealPlansAvailable, plan)
		}
	}
	info.HasChristmasSupplement = strings.Contains(full, "christmas") && strings.Contains(full, "supplement")
	info.HasTransferIncluded = strings.Contains(full, "transfer") &&
		(strings.Contains(full, "included") || strings.Contains(full, "inclusive"))

	rooms, found := 0, false
	for _, t := range in.Tables {
		if t.Category == models.CategoryRoomRates {
			rooms += t.RowCount
			found = true
		}
	}
	if found {
		info.RoomCount = &rooms
	}

	return info, warnings
}

func narrativeSource(blocks []models.TextBlock) (string, []models.Warning) {
	var (
		parts    []string
		warnings []models.Warning
	)
	for _, b := range blocks {
		if !utf8.ValidString(b.Content) {
			warnings = append(warnings, models.Warning{
				Kind:    models.WarningExtractionSkipped,
				Seq:     b.Position.Seq,
				Page:    b.Position.Page,
				Message: fmt.Sprintf("text block %d is not valid UTF-8, skipped for key information", b.Position.Seq),
			})
			continue
		}
		if c := strings.TrimSpace(b.Content); c != "" {
			parts = append(parts, c)
		}
	}
	return norm.NFKC.String(strings.Join(parts, "\n")), warnings
}

func headerSource(headers [][]string) string {
	lines := make([]string, 0, len(headers))
	for _, h := range headers {
		var cells []string
		for _, c := range h {
			if c = strings.TrimSpace(c); c != "" && utf8.ValidString(c) {
				cells = append(cells, c)
			}
		}
		if len(cells) > 0 {
			lines = append(lines, strings.Join(cells, " | "))
		}
	}
	return norm.NFKC.String(strings.Join(lines, "\n"))
}

func cellSource(tables []models.ClassifiedTable) string {
	var sb strings.Builder
	for _, t := range tables {
		for _, row := range t.Rows {
			sb.WriteString(strings.Join(row, " "))
			sb.WriteByte('\n')
		}
	}
	return strings.ToValidUTF8(sb.String(), "")
}

func first(f FieldSpec, sources []string) (string, bool) {
	for _, src := range sources {
		src = window(src, f.Window)
		for _, re := range f.Patterns {
			for _, m := range re.FindAllStringSubmatchIndex(src, -1) {
				if v, ok := f.accept(re, src, m); ok {
					return v, true
				}
			}
		}
	}
	return "", false
}

func collect(f FieldSpec, sources []string) []string {
	out := []string{}
	seen := make(map[string]bool)
	for _, src := range sources {
		src = window(src, f.Window)
		for _, re := range f.Patterns {
			for _, m := range re.FindAllStringSubmatchIndex(src, -1) {
				v, ok := f.accept(re, src, m)
				if !ok {
					continue
				}
				key := classifier.Normalize(v)
				if seen[key] {
					continue
				}
				seen[key] = true
				out = append(out, v)
			}
		}
	}
	return out
}

// accept extracts the value of match m and applies the reject list and
// normalisation. Empty values are never accepted.
func (f FieldSpec) accept(re *regexp.Regexp, src string, m []int) (string, bool) {
	v := src[m[0]:m[1]]
	if i := re.SubexpIndex(valueGroup); i > 0 && m[2*i] >= 0 {
		v = src[m[2*i]:m[2*i+1]]
	}
	v = strings.Join(strings.Fields(v), " ")
	if v == "" {
		return "", false
	}
	for _, r := range f.Reject {
		if strings.Contains(v, r) {
			return "", false
		}
	}
	if f.Normalize != nil {
		v = f.Normalize(v)
	}
	return v, v != ""
}

// window truncates s to its first n runes; n <= 0 keeps everything.
func window(s string, n int) string {
	if n <= 0 {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

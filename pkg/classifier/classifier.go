// Package classifier assigns a semantic category to extracted tables by
// matching their header and leading rows against ordered keyword signatures.
//
// Precedence is declaration order: a table containing both "usd" and
// "breakfast" is room_rates with the default signatures because room_rates
// is declared before meal_plans.
package classifier

import (
	"fmt"
	"strings"

	"github.com/dtnitsch/llm-pdf-parser/models"
)

// DefaultLeadingRows is how many data rows after the header feed the search string.
const DefaultLeadingRows = 3

// DefaultSignatures returns the built-in table signatures in precedence order.
func DefaultSignatures() []Signature {
	return []Signature{
		{
			Name: string(models.CategoryRoomRates),
			Keywords: []string{
				"rate", "price", "tariff", "usd", "eur", "us$", "per night", "per room",
				"sgl", "dbl", "single", "double", "accommodation", "room type", "room category",
			},
		},
		{
			Name: string(models.CategoryMealPlans),
			Keywords: []string{
				"breakfast", "half board", "full board", "all inclusive", "meal", "board",
				"dinner", "lunch",
			},
		},
		{
			Name: string(models.CategoryTransport),
			Keywords: []string{
				"transfer", "airport", "speedboat", "seaplane", "domestic flight", "transport", "boat",
			},
		},
	}
}

// Config configures a Classifier. Zero values select the defaults.
type Config struct {
	Signatures  []Signature
	LeadingRows int
}

// Classifier is immutable after New and safe for concurrent use.
type Classifier struct {
	signatures  []Signature
	leadingRows int
}

// New builds a Classifier.
func New(cfg Config) *Classifier {
	sigs := cfg.Signatures
	if len(sigs) == 0 {
		sigs = DefaultSignatures()
	}
	rows := cfg.LeadingRows
	if rows <= 0 {
		rows = DefaultLeadingRows
	}

	// Copy so callers cannot reorder precedence after construction.
	own := make([]Signature, len(sigs))
	for i, s := range sigs {
		own[i] = Signature{Name: s.Name, Keywords: append([]string(nil), s.Keywords...)}
	}
	return &Classifier{signatures: own, leadingRows: rows}
}

// Classify tags table with a category. Problems are contained to the table:
// a table with no usable text falls back to other, and a table matching more
// than one signature keeps the first and records an ambiguity warning.
func (c *Classifier) Classify(id int, table models.TableBlock) (models.ClassifiedTable, []models.Warning) {
	ct := models.ClassifiedTable{
		ID:       id,
		Category: models.CategoryOther,
		Headers:  table.Header(),
		Rows:     table.Data(),
		RowCount: len(table.Data()),
		Position: table.Position,
	}
	if ct.Headers == nil {
		ct.Headers = []string{}
	}
	if ct.Rows == nil {
		ct.Rows = [][]string{}
	}

	search := c.searchText(table)
	if search == "" {
		return ct, []models.Warning{{
			Kind:    models.WarningClassificationFallback,
			Seq:     table.Position.Seq,
			Page:    table.Position.Page,
			Message: fmt.Sprintf("table %d has no text to classify", id),
		}}
	}

	matches := MatchAll(c.signatures, search)
	if len(matches) == 0 {
		return ct, nil
	}

	ct.Category = models.Category(matches[0].Name)
	ct.MatchedKeyword = matches[0].Keyword

	var warnings []models.Warning
	if len(matches) > 1 {
		names := make([]string, 0, len(matches)-1)
		for _, m := range matches[1:] {
			ct.AlsoMatched = append(ct.AlsoMatched, models.Category(m.Name))
			names = append(names, m.Name)
		}
		warnings = append(warnings, models.Warning{
			Kind: models.WarningClassificationAmbiguity,
			Seq:  table.Position.Seq,
			Page: table.Position.Page,
			Message: fmt.Sprintf("table %d classified as %s by %q, also matched %s",
				id, ct.Category, ct.MatchedKeyword, strings.Join(names, ", ")),
		})
	}
	return ct, warnings
}

// searchText joins the header and the first leading rows into one normalised string.
func (c *Classifier) searchText(table models.TableBlock) string {
	limit := 1 + c.leadingRows
	if limit > len(table.Rows) {
		limit = len(table.Rows)
	}
	var parts []string
	for _, row := range table.Rows[:limit] {
		for _, cell := range row {
			if cell = strings.TrimSpace(cell); cell != "" {
				parts = append(parts, cell)
			}
		}
	}
	return Normalize(strings.Join(parts, " "))
}

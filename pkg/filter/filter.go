// Package filter narrows an extraction result for output. It never changes
// what was extracted, only what is shown.
package filter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dtnitsch/llm-pdf-parser/models"
)

// Strategy is a parsed filter expression. A nil Strategy keeps everything.
type Strategy struct {
	Categories   map[models.Category]struct{}
	MinRows      int
	SectionTypes map[string]struct{}
}

// ParseStrategy parses "type:room_rates|meal_plans,rows:>=2,section:rates|terms".
// An empty string yields a nil strategy.
func ParseStrategy(strategyStr string) (*Strategy, error) {
	if strings.TrimSpace(strategyStr) == "" {
		return nil, nil
	}

	strategy := &Strategy{}

	for _, part := range strings.Split(strategyStr, ",") {
		kv := strings.SplitN(part, ":", 2)
		if len(kv) != 2 {
			return nil, fmt.Errorf("invalid filter part: %s", part)
		}
		key := strings.TrimSpace(kv[0])
		value := strings.TrimSpace(kv[1])

		switch key {
		case "type":
			strategy.Categories = make(map[models.Category]struct{})
			for _, t := range strings.Split(value, "|") {
				c := models.Category(strings.TrimSpace(t))
				if !c.IsValid() {
					return nil, fmt.Errorf("unknown table type: %s", t)
				}
				strategy.Categories[c] = struct{}{}
			}
		case "rows":
			if !strings.HasPrefix(value, ">=") {
				return nil, fmt.Errorf("unsupported rows operator in: %s", value)
			}
			n, err := strconv.Atoi(strings.TrimSpace(value[2:]))
			if err != nil || n < 0 {
				return nil, fmt.Errorf("invalid rows value: %s", value)
			}
			strategy.MinRows = n
		case "section":
			strategy.SectionTypes = make(map[string]struct{})
			for _, t := range strings.Split(value, "|") {
				strategy.SectionTypes[strings.TrimSpace(t)] = struct{}{}
			}
		default:
			return nil, fmt.Errorf("unknown filter key: %s", key)
		}
	}

	return strategy, nil
}

// Apply returns a filtered copy of result. Key information is kept as is;
// narrative_text is rebuilt from the kept sections.
func Apply(result *models.ExtractionResult, strategy *Strategy) *models.ExtractionResult {
	if strategy == nil || result == nil {
		return result
	}

	filtered := &models.ExtractionResult{
		KeyInformation:   result.KeyInformation,
		TablesByType:     make(map[models.Category][]models.ClassifiedTable),
		NarrativeText:    result.NarrativeText,
		DocumentSections: result.DocumentSections,
		Warnings:         result.Warnings,
	}

	for category, tables := range result.TablesByType {
		if len(strategy.Categories) > 0 {
			if _, ok := strategy.Categories[category]; !ok {
				continue
			}
		}
		var kept []models.ClassifiedTable
		for _, t := range tables {
			if t.RowCount >= strategy.MinRows {
				kept = append(kept, t)
			}
		}
		if len(kept) > 0 {
			filtered.TablesByType[category] = kept
		}
	}

	if len(strategy.SectionTypes) > 0 {
		sections := []models.DocumentSection{}
		var bodies []string
		for _, s := range result.DocumentSections {
			if _, ok := strategy.SectionTypes[s.Type]; !ok {
				continue
			}
			sections = append(sections, s)
			if strings.TrimSpace(s.Body) != "" {
				bodies = append(bodies, s.Body)
			}
		}
		filtered.DocumentSections = sections
		filtered.NarrativeText = strings.Join(bodies, "\n\n")
	}

	return filtered
}

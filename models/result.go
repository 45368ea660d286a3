package models

import "sort"

// Category is the semantic type assigned to a table.
type Category string

const (
	CategoryRoomRates Category = "room_rates"
	CategoryMealPlans Category = "meal_plans"
	CategoryTransport Category = "transport"
	CategoryOther     Category = "other"
)

// Categories lists every valid category, fallback last.
func Categories() []Category {
	return []Category{CategoryRoomRates, CategoryMealPlans, CategoryTransport, CategoryOther}
}

// IsValid reports whether c is one of the fixed categories.
func (c Category) IsValid() bool {
	for _, v := range Categories() {
		if v == c {
			return true
		}
	}
	return false
}

// ClassifiedTable is a table tagged with its category and the keyword that decided it.
type ClassifiedTable struct {
	ID             int        `json:"id" yaml:"id"`
	Category       Category   `json:"category" yaml:"category"`
	MatchedKeyword string     `json:"matched_keyword,omitempty" yaml:"matched_keyword,omitempty"`
	AlsoMatched    []Category `json:"also_matched,omitempty" yaml:"also_matched,omitempty"`
	Headers        []string   `json:"headers" yaml:"headers"`
	Rows           [][]string `json:"rows" yaml:"rows"`
	RowCount       int        `json:"row_count" yaml:"row_count"`
	Position       Position   `json:"position" yaml:"position"`
}

// KeyInformation holds the facts pulled out by pattern matching. Nil scalar
// fields mean "not found"; they are never set to an empty string.
type KeyInformation struct {
	ResortName     *string `json:"resort_name" yaml:"resort_name"`
	ValidityPeriod *string `json:"validity_period" yaml:"validity_period"`
	Currency       *string `json:"currency" yaml:"currency"`
	SpecialOffers  []string `json:"special_offers" yaml:"special_offers"`

	RoomCount              *int     `json:"room_count" yaml:"room_count"`
	MealPlansAvailable     []string `json:"meal_plans_available" yaml:"meal_plans_available"`
	HasChristmasSupplement bool     `json:"has_christmas_supplement" yaml:"has_christmas_supplement"`
	HasTransferIncluded    bool     `json:"has_transfer_included" yaml:"has_transfer_included"`
}

// PageRange is the [first, last] page of a section.
type PageRange [2]int

// DocumentSection is a contiguous run of narrative blocks.
type DocumentSection struct {
	Title     *string   `json:"title" yaml:"title"`
	Type      string    `json:"type" yaml:"type"`
	Body      string    `json:"body" yaml:"body"`
	PageRange PageRange `json:"page_range" yaml:"page_range"`
	HasTables bool      `json:"has_tables" yaml:"has_tables"`
	Blocks    []int     `json:"blocks" yaml:"blocks"` // seq of every constituent block
}

// WarningKind names a contained, non-fatal extraction problem.
type WarningKind string

const (
	WarningClassificationAmbiguity WarningKind = "classification_ambiguity"
	WarningClassificationFallback  WarningKind = "classification_fallback"
	WarningExtractionSkipped       WarningKind = "extraction_skipped"
)

// Warning records an item that was flagged but did not abort extraction.
type Warning struct {
	Kind    WarningKind `json:"kind" yaml:"kind"`
	Seq     int         `json:"seq" yaml:"seq"`
	Page    int         `json:"page" yaml:"page"`
	Message string      `json:"message" yaml:"message"`
}

// ExtractionResult is the sole externally visible artifact of the core.
type ExtractionResult struct {
	KeyInformation   KeyInformation                 `json:"key_information" yaml:"key_information"`
	TablesByType     map[Category][]ClassifiedTable `json:"tables_by_type" yaml:"tables_by_type"`
	NarrativeText    string                         `json:"narrative_text" yaml:"narrative_text"`
	DocumentSections []DocumentSection              `json:"document_sections" yaml:"document_sections"`
	Warnings         []Warning                      `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// AllTables returns every classified table in document order.
func (r *ExtractionResult) AllTables() []ClassifiedTable {
	var out []ClassifiedTable
	for _, c := range Categories() {
		out = append(out, r.TablesByType[c]...)
	}
	// Categories are grouped, restore document order by id.
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

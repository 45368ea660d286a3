package classifier

import (
	"testing"

	"github.com/dtnitsch/llm-pdf-parser/models"
)

func table(rows ...[]string) models.TableBlock {
	return models.TableBlock{Rows: rows, Position: models.Position{Page: 1, Seq: 7}}
}

func TestClassify(t *testing.T) {
	c := New(Config{})

	tests := []struct {
		name        string
		table       models.TableBlock
		want        models.Category
		wantKeyword string
	}{
		{
			name:        "room rates by header",
			table:       table([]string{"Room Type", "USD Rate"}, []string{"Beach Villa", "500"}),
			want:        models.CategoryRoomRates,
			wantKeyword: "rate",
		},
		{
			name:        "meal plans",
			table:       table([]string{"Plan", "Supplement"}, []string{"Half Board", "85"}),
			want:        models.CategoryMealPlans,
			wantKeyword: "half board",
		},
		{
			name:        "transport",
			table:       table([]string{"Mode", "Adult", "Child"}, []string{"Seaplane", "750", "375"}),
			want:        models.CategoryTransport,
			wantKeyword: "seaplane",
		},
		{
			name:  "no keyword",
			table: table([]string{"Name", "Age"}, []string{"Ann", "12"}),
			want:  models.CategoryOther,
		},
		{
			name:        "keyword in leading row only",
			table:       table([]string{"A", "B"}, []string{"x", "y"}, []string{"Full Board", "z"}),
			want:        models.CategoryMealPlans,
			wantKeyword: "full board",
		},
		{
			name:        "non-breaking space normalised",
			table:       table([]string{"All\u00a0Inclusive"}),
			want:        models.CategoryMealPlans,
			wantKeyword: "all inclusive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := c.Classify(1, tt.table)
			if got.Category != tt.want {
				t.Errorf("Classify() category = %s, want %s", got.Category, tt.want)
			}
			if got.MatchedKeyword != tt.wantKeyword {
				t.Errorf("Classify() keyword = %q, want %q", got.MatchedKeyword, tt.wantKeyword)
			}
		})
	}
}

func TestClassify_Precedence(t *testing.T) {
	c := New(Config{})
	tb := table([]string{"Room", "USD", "Breakfast"}, []string{"Villa", "500", "included"})

	got, warnings := c.Classify(3, tb)
	if got.Category != models.CategoryRoomRates {
		t.Fatalf("category = %s, want room_rates", got.Category)
	}
	if len(got.AlsoMatched) != 1 || got.AlsoMatched[0] != models.CategoryMealPlans {
		t.Errorf("AlsoMatched = %v, want [meal_plans]", got.AlsoMatched)
	}
	if len(warnings) != 1 || warnings[0].Kind != models.WarningClassificationAmbiguity {
		t.Errorf("warnings = %+v, want one ambiguity warning", warnings)
	}

	// Reversing the declaration order flips the winner.
	reversed := New(Config{Signatures: []Signature{
		{Name: string(models.CategoryMealPlans), Keywords: []string{"breakfast"}},
		{Name: string(models.CategoryRoomRates), Keywords: []string{"usd"}},
	}})
	got, _ = reversed.Classify(3, tb)
	if got.Category != models.CategoryMealPlans {
		t.Errorf("reversed category = %s, want meal_plans", got.Category)
	}
}

func TestClassify_Deterministic(t *testing.T) {
	c := New(Config{})
	tb := table([]string{"Transfer", "Rate", "Dinner"}, []string{"a", "b", "c"})

	first, _ := c.Classify(0, tb)
	for i := 0; i < 50; i++ {
		got, _ := c.Classify(0, tb)
		if got.Category != first.Category || got.MatchedKeyword != first.MatchedKeyword {
			t.Fatalf("run %d = %s/%q, want %s/%q", i, got.Category, got.MatchedKeyword, first.Category, first.MatchedKeyword)
		}
	}
}

func TestClassify_EmptyTable(t *testing.T) {
	c := New(Config{})

	tests := []struct {
		name  string
		table models.TableBlock
	}{
		{name: "zero rows", table: table()},
		{name: "blank cells", table: table([]string{" ", ""}, []string{"", ""})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, warnings := c.Classify(0, tt.table)
			if got.Category != models.CategoryOther {
				t.Errorf("category = %s, want other", got.Category)
			}
			if got.MatchedKeyword != "" {
				t.Errorf("keyword = %q, want empty", got.MatchedKeyword)
			}
			if len(warnings) != 1 || warnings[0].Kind != models.WarningClassificationFallback {
				t.Errorf("warnings = %+v, want one fallback warning", warnings)
			}
			if got.Headers == nil || got.Rows == nil {
				t.Error("headers and rows should serialise as empty arrays")
			}
		})
	}
}

func TestClassify_LeadingRowsLimit(t *testing.T) {
	c := New(Config{LeadingRows: 1})
	tb := table([]string{"A"}, []string{"x"}, []string{"breakfast"})

	got, _ := c.Classify(0, tb)
	if got.Category != models.CategoryOther {
		t.Errorf("category = %s, want other (keyword beyond leading rows)", got.Category)
	}
}

func TestSectionType(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"ROOM RATES 2025", "rates"},
		{"Terms & Conditions", "terms"},
		{"Child Policy", "policies"},
		{"Special Offers", "offers"},
		{"Complimentary Services", "amenities"},
		{"Airport Transfers", "transfers"},
		{"Dining", "meals"},
		{"Cancellation", "cancellation"},
		{"Welcome", "general"},
		{"", "general"},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			if got := SectionType(tt.title); got != tt.want {
				t.Errorf("SectionType(%q) = %q, want %q", tt.title, got, tt.want)
			}
		})
	}
}

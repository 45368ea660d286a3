package assembler

import (
	"strings"
	"testing"

	"github.com/dtnitsch/llm-pdf-parser/models"
)

func tbl(id, seq int, cat models.Category) models.ClassifiedTable {
	return models.ClassifiedTable{ID: id, Category: cat, Headers: []string{}, Rows: [][]string{}, Position: models.Position{Seq: seq}}
}

func section(body string, blocks ...int) models.DocumentSection {
	return models.DocumentSection{Type: "general", Body: body, Blocks: blocks}
}

func TestAssemble(t *testing.T) {
	p := Parts{
		Tables: []models.ClassifiedTable{
			tbl(0, 1, models.CategoryRoomRates),
			tbl(1, 2, models.CategoryTransport),
			tbl(2, 5, models.CategoryRoomRates),
		},
		Sections: []models.DocumentSection{
			section("intro", 0),
			section("", 3),
			section("rates text", 4, 6),
		},
		BlockCount: 7,
	}

	got, err := Assemble(p)
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}

	if n := len(got.TablesByType[models.CategoryRoomRates]); n != 2 {
		t.Errorf("room_rates tables = %d, want 2", n)
	}
	if ids := got.TablesByType[models.CategoryRoomRates]; ids[0].ID != 0 || ids[1].ID != 2 {
		t.Errorf("room_rates order = %d,%d, want 0,2", ids[0].ID, ids[1].ID)
	}
	if _, ok := got.TablesByType[models.CategoryMealPlans]; ok {
		t.Error("empty category should be omitted")
	}
	if got.NarrativeText != "intro\n\nrates text" {
		t.Errorf("NarrativeText = %q", got.NarrativeText)
	}

	wantTables := []bool{true, false, true}
	for i, w := range wantTables {
		if got.DocumentSections[i].HasTables != w {
			t.Errorf("section %d HasTables = %v, want %v", i, got.DocumentSections[i].HasTables, w)
		}
	}
	if p.Sections[0].HasTables {
		t.Error("Assemble must not mutate its input sections")
	}
}

func TestAssemble_Empty(t *testing.T) {
	got, err := Assemble(Parts{})
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}
	if got.NarrativeText != "" || len(got.DocumentSections) != 0 || len(got.TablesByType) != 0 {
		t.Errorf("Assemble(empty) = %+v", got)
	}
	if got.TablesByType == nil || got.DocumentSections == nil {
		t.Error("empty result should serialise as {} and []")
	}
}

func TestAssemble_Errors(t *testing.T) {
	tests := []struct {
		name    string
		parts   Parts
		wantErr string
	}{
		{
			name: "block claimed twice",
			parts: Parts{
				Tables:   []models.ClassifiedTable{tbl(0, 1, models.CategoryOther)},
				Sections: []models.DocumentSection{section("x", 0, 1)},
			},
			wantErr: "claimed by both",
		},
		{
			name:    "unknown category",
			parts:   Parts{Tables: []models.ClassifiedTable{tbl(0, 0, "spa")}},
			wantErr: "unknown category",
		},
		{
			name: "missing block",
			parts: Parts{
				Sections:   []models.DocumentSection{section("x", 0)},
				BlockCount: 2,
			},
			wantErr: "accounted for 1 of 2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Assemble(tt.parts)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Assemble() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

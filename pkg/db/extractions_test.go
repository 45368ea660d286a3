package db

import (
	"errors"
	"testing"
	"time"

	"github.com/dtnitsch/llm-pdf-parser/models"
)

// setupTestDB creates an in-memory SQLite database for testing
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	database := &DB{path: ":memory:"}
	var err error
	database.DB, err = openDB(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	if err := database.InitSchema(); err != nil {
		t.Fatalf("failed to initialize schema: %v", err)
	}

	return database
}

func strp(s string) *string { return &s }

func sampleResponse() models.Response {
	result := &models.ExtractionResult{
		KeyInformation: models.KeyInformation{
			ResortName:    strp("Resort XYZ"),
			Currency:      strp("USD"),
			SpecialOffers: []string{"Free Breakfast Included", "Early Bird discount"},
		},
		TablesByType: map[models.Category][]models.ClassifiedTable{
			models.CategoryRoomRates: {{
				ID: 0, Category: models.CategoryRoomRates, MatchedKeyword: "rate",
				Headers: []string{"Room", "Rate"}, Rows: [][]string{{"Deluxe", "200"}, {"Suite", "400"}},
				RowCount: 2, Position: models.Position{Page: 1, Seq: 1},
			}},
			models.CategoryTransport: {{
				ID: 1, Category: models.CategoryTransport, MatchedKeyword: "seaplane",
				Headers: []string{"Mode", "Adult"}, Rows: [][]string{{"Seaplane", "700"}},
				RowCount: 1, Position: models.Position{Page: 2, Seq: 3},
			}},
		},
		DocumentSections: []models.DocumentSection{{Type: "general", Body: "x"}},
	}
	return models.NewSuccessResponse("rates.json", result, &models.Summary{Language: "english"})
}

func TestRecordExtraction(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	id, err := db.RecordExtraction(RecordInput{
		Source:      "rates.json",
		Format:      "json",
		ContentHash: "abc123",
		Response:    sampleResponse(),
		OutputPath:  "out/rates_extracted.json",
		Duration:    1500 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("RecordExtraction() error = %v", err)
	}
	if len(id) != 36 {
		t.Errorf("id = %q, want a uuid", id)
	}

	got, err := db.GetExtraction(id[:8])
	if err != nil {
		t.Fatalf("GetExtraction() error = %v", err)
	}
	if !got.Success || got.TableCount != 2 || got.SectionCount != 1 {
		t.Errorf("GetExtraction() = %+v", got)
	}
	if !got.ResortName.Valid || got.ResortName.String != "Resort XYZ" {
		t.Errorf("ResortName = %+v", got.ResortName)
	}
	if got.ValidityPeriod.Valid {
		t.Errorf("ValidityPeriod should be NULL, got %q", got.ValidityPeriod.String)
	}
	if got.Language.String != "english" {
		t.Errorf("Language = %q", got.Language.String)
	}
	if got.Duration != 1500*time.Millisecond {
		t.Errorf("Duration = %v", got.Duration)
	}

	offers, err := db.GetOffers(id)
	if err != nil {
		t.Fatalf("GetOffers() error = %v", err)
	}
	if len(offers) != 2 || offers[0] != "Free Breakfast Included" {
		t.Errorf("GetOffers() = %v", offers)
	}
}

func TestRecordExtraction_Failure(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	id, err := db.RecordExtraction(RecordInput{
		Source:      "broken.json",
		Format:      "json",
		ContentHash: "deadbeef",
		Response:    models.NewErrorResponse(errors.New("invalid document input at page 1 block 0: unknown block type")),
	})
	if err != nil {
		t.Fatalf("RecordExtraction() error = %v", err)
	}

	failed, err := db.ListExtractions(10, true)
	if err != nil {
		t.Fatalf("ListExtractions() error = %v", err)
	}
	if len(failed) != 1 || failed[0].ID != id {
		t.Fatalf("ListExtractions(failedOnly) = %+v", failed)
	}
	if !failed[0].Error.Valid {
		t.Error("error message should be stored")
	}

	if _, err := db.FindByContentHash("deadbeef", ""); !errors.Is(err, ErrNotFound) {
		t.Errorf("FindByContentHash(failed) error = %v, want ErrNotFound", err)
	}
}

func TestQueryTables(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	if _, err := db.RecordExtraction(RecordInput{Source: "rates.json", Format: "json", ContentHash: "h1", Response: sampleResponse()}); err != nil {
		t.Fatalf("RecordExtraction() error = %v", err)
	}

	tests := []struct {
		name string
		q    TableQuery
		want int
	}{
		{"all", TableQuery{}, 2},
		{"by category", TableQuery{Categories: []string{"transport"}}, 1},
		{"several categories", TableQuery{Categories: []string{"transport", "room_rates"}}, 2},
		{"min rows", TableQuery{MinRows: 2}, 1},
		{"source match", TableQuery{Source: "rates"}, 2},
		{"source miss", TableQuery{Source: "other"}, 0},
		{"limit", TableQuery{Limit: 1}, 1},
		{"extraction miss", TableQuery{ExtractionID: "nope"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := db.QueryTables(tt.q)
			if err != nil {
				t.Fatalf("QueryTables() error = %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("QueryTables() returned %d rows, want %d", len(got), tt.want)
			}
		})
	}

	got, _ := db.QueryTables(TableQuery{Categories: []string{"room_rates"}})
	if len(got) == 1 && (len(got[0].Headers) != 2 || got[0].Headers[0] != "Room") {
		t.Errorf("headers = %v", got[0].Headers)
	}
}

func TestGetExtraction_NotFound(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	if _, err := db.GetExtraction("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetExtraction() error = %v, want ErrNotFound", err)
	}
	if err := db.DeleteExtraction("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("DeleteExtraction() error = %v, want ErrNotFound", err)
	}
}

func TestDeleteExtraction_Cascades(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	id, err := db.RecordExtraction(RecordInput{Source: "rates.json", Format: "json", ContentHash: "h1", Response: sampleResponse()})
	if err != nil {
		t.Fatalf("RecordExtraction() error = %v", err)
	}
	if err := db.DeleteExtraction(id); err != nil {
		t.Fatalf("DeleteExtraction() error = %v", err)
	}

	tables, err := db.QueryTables(TableQuery{})
	if err != nil {
		t.Fatalf("QueryTables() error = %v", err)
	}
	if len(tables) != 0 {
		t.Errorf("tables left after delete: %d", len(tables))
	}
	offers, _ := db.GetOffers(id)
	if len(offers) != 0 {
		t.Errorf("offers left after delete: %v", offers)
	}
}

func TestFindByContentHash(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	id, err := db.RecordExtraction(RecordInput{
		Source:       "a.json",
		Format:       "json",
		ContentHash:  "same",
		SettingsHash: "rules-a",
		Response:     sampleResponse(),
	})
	if err != nil {
		t.Fatalf("RecordExtraction() error = %v", err)
	}
	got, err := db.FindByContentHash("same", "rules-a")
	if err != nil {
		t.Fatalf("FindByContentHash() error = %v", err)
	}
	if got.ID != id {
		t.Errorf("FindByContentHash() id = %s, want %s", got.ID, id)
	}
	if got.SettingsHash != "rules-a" {
		t.Errorf("SettingsHash = %q, want rules-a", got.SettingsHash)
	}

	if _, err := db.FindByContentHash("same", "rules-b"); !errors.Is(err, ErrNotFound) {
		t.Errorf("FindByContentHash(other settings) error = %v, want ErrNotFound", err)
	}
}

func TestEnsureSchema_AddsSettingsHash(t *testing.T) {
	database := &DB{path: ":memory:"}
	var err error
	database.DB, err = openDB(":memory:")
	if err != nil {
		t.Fatalf("openDB() error = %v", err)
	}
	defer database.Close()

	if _, err := database.Exec(`CREATE TABLE extractions (
		extraction_id TEXT PRIMARY KEY, source TEXT NOT NULL, format TEXT NOT NULL,
		content_hash TEXT NOT NULL, success BOOLEAN NOT NULL, error TEXT,
		table_count INTEGER DEFAULT 0, section_count INTEGER DEFAULT 0, warning_count INTEGER DEFAULT 0,
		resort_name TEXT, validity_period TEXT, currency TEXT, language TEXT,
		result_json TEXT, output_path TEXT, duration_ms INTEGER DEFAULT 0,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP)`); err != nil {
		t.Fatalf("create old table: %v", err)
	}
	if _, err := database.Exec(`INSERT INTO extractions (extraction_id, source, format, content_hash, success)
		VALUES ('old', 'a.json', 'json', 'h', 1)`); err != nil {
		t.Fatalf("insert old row: %v", err)
	}

	if err := database.ensureSchemaExists(); err != nil {
		t.Fatalf("ensureSchemaExists() error = %v", err)
	}
	if err := database.ensureSchemaExists(); err != nil {
		t.Fatalf("ensureSchemaExists() second run error = %v", err)
	}

	got, err := database.FindByContentHash("h", "")
	if err != nil {
		t.Fatalf("FindByContentHash() error = %v", err)
	}
	if got.ID != "old" {
		t.Errorf("FindByContentHash() id = %s, want old", got.ID)
	}
}

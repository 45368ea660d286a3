package db

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/urfave/cli/v2"

	"github.com/dtnitsch/llm-pdf-parser/models"
	dbpkg "github.com/dtnitsch/llm-pdf-parser/pkg/db"
)

func seed(t *testing.T) (string, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "history.db")
	database, err := dbpkg.Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer database.Close()

	resort := "Resort XYZ"
	resp := models.NewSuccessResponse("rates.md", &models.ExtractionResult{
		KeyInformation: models.KeyInformation{ResortName: &resort, SpecialOffers: []string{"Free Breakfast Included"}},
		TablesByType: map[models.Category][]models.ClassifiedTable{
			models.CategoryRoomRates: {{ID: 0, Category: models.CategoryRoomRates, Headers: []string{"Room", "Rate"}, RowCount: 2, Position: models.Position{Page: 1}}},
		},
	}, nil)
	id, err := database.RecordExtraction(dbpkg.RecordInput{Source: "rates.md", Format: "markdown", ContentHash: "h", Response: resp})
	if err != nil {
		t.Fatalf("RecordExtraction() error = %v", err)
	}
	return path, id
}

func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := &cli.App{
		Name:     "lpp",
		Writer:   &out,
		Commands: []*cli.Command{{Name: "db", Subcommands: Commands()}},
	}
	err := app.Run(append([]string{"lpp", "db"}, args...))
	return out.String(), err
}

func TestListAction(t *testing.T) {
	path, id := seed(t)

	out, err := runApp(t, "list", "--db", path)
	if err != nil {
		t.Fatalf("list error = %v", err)
	}
	if !strings.Contains(out, id[:8]) || !strings.Contains(out, "Resort XYZ") || !strings.Contains(out, "Total: 1 extractions") {
		t.Errorf("unexpected list output:\n%s", out)
	}

	out, err = runApp(t, "list", "--db", path, "--failed")
	if err != nil {
		t.Fatalf("list --failed error = %v", err)
	}
	if !strings.Contains(out, "No extractions found") {
		t.Errorf("unexpected list --failed output:\n%s", out)
	}
}

func TestShowAction(t *testing.T) {
	path, id := seed(t)

	out, err := runApp(t, "show", "--db", path, id[:8])
	if err != nil {
		t.Fatalf("show error = %v", err)
	}
	for _, want := range []string{"Resort:      Resort XYZ", "Validity:    (none)", "Free Breakfast Included", "[room_rates] page 1, 2 rows: Room | Rate"} {
		if !strings.Contains(out, want) {
			t.Errorf("show output missing %q:\n%s", want, out)
		}
	}

	out, err = runApp(t, "show", "--db", path, "--json", id)
	if err != nil {
		t.Fatalf("show --json error = %v", err)
	}
	if !strings.Contains(out, `"success":true`) {
		t.Errorf("show --json output:\n%s", out)
	}

	if _, err := runApp(t, "show", "--db", path); err == nil {
		t.Error("show without id should fail")
	}
	if _, err := runApp(t, "show", "--db", path, "zzzz"); err == nil {
		t.Error("show with unknown id should fail")
	}
}

func TestQueryAction(t *testing.T) {
	path, _ := seed(t)

	out, err := runApp(t, "query", "--db", path, "--type", "room_rates|transport")
	if err != nil {
		t.Fatalf("query error = %v", err)
	}
	if !strings.Contains(out, "Found: 1 tables") {
		t.Errorf("unexpected query output:\n%s", out)
	}

	out, err = runApp(t, "query", "--db", path, "--min-rows", "5")
	if err != nil {
		t.Fatalf("query error = %v", err)
	}
	if !strings.Contains(out, "rows >= 5") {
		t.Errorf("unexpected empty query output:\n%s", out)
	}
}

func TestDeleteAction(t *testing.T) {
	path, id := seed(t)

	out, err := runApp(t, "delete", "--db", path, id[:8])
	if err != nil {
		t.Fatalf("delete error = %v", err)
	}
	if !strings.Contains(out, "Deleted extraction "+id) {
		t.Errorf("unexpected delete output:\n%s", out)
	}

	out, _ = runApp(t, "list", "--db", path)
	if !strings.Contains(out, "No extractions found") {
		t.Errorf("extraction still listed after delete:\n%s", out)
	}
}
